package epmc

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/embo-press/matchpub/internal/search"
)

func testWindow() search.Window {
	return search.Window{
		Start: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestBuildAuthorQuery(t *testing.T) {
	alternatives := [][]string{
		{"smith"},
		{"villanueva-meyer", "villanueva", "meyer", "meyer-villanueva"},
	}

	got := BuildAuthorQuery(alternatives, testWindow(), search.ExcludePreprints)
	want := `(AUTH:"smith") AND (AUTH:"villanueva-meyer" OR AUTH:"villanueva" OR AUTH:"meyer" OR AUTH:"meyer-villanueva") AND PUB_YEAR:[2019 TO 2021] AND NOT SRC:"PPR"`
	if got != want {
		t.Errorf("query =\n%s\nwant\n%s", got, want)
	}
}

func TestBuildAuthorQueryEmpty(t *testing.T) {
	if got := BuildAuthorQuery(nil, testWindow(), search.ExcludePreprints); got != "" {
		t.Errorf("query for no authors = %q", got)
	}
	if got := BuildAuthorQuery([][]string{{}}, testWindow(), search.ExcludePreprints); got != "" {
		t.Errorf("query for empty alternative lists = %q", got)
	}
}

func TestBuildTitleQuery(t *testing.T) {
	got := BuildTitleQuery("a novel kinase", testWindow(), search.OnlyPreprints)
	want := `TITLE:"a novel kinase" AND PUB_YEAR:[2019 TO 2021] AND SRC:"PPR"`
	if got != want {
		t.Errorf("query = %s, want %s", got, want)
	}

	if got := BuildTitleQuery("  ", testWindow(), search.WithPreprints); got != "" {
		t.Errorf("query for blank title = %q", got)
	}
}

func TestQueryDefaultWindow(t *testing.T) {
	got := BuildTitleQuery("x", search.Window{}, search.WithPreprints)
	want := `TITLE:"x" AND PUB_YEAR:[1970 TO 3000]`
	if got != want {
		t.Errorf("query = %s, want %s", got, want)
	}
}

const sampleResponse = `{
	"hitCount": 1,
	"resultList": {
		"result": [{
			"pmid": "12345",
			"doi": "10.1038/xyz",
			"title": "A novel kinase",
			"abstractText": "We describe a kinase.",
			"pubTypeList": {"pubType": ["research-article", "Journal Article"]},
			"authorList": {"author": [
				{"firstName": "Jane", "lastName": "Smith"},
				{"firstName": "Tom", "lastName": "Villanueva-Meyer"}
			]},
			"journalInfo": {
				"yearOfPublication": 2020,
				"journal": {"title": "Nature", "medlineAbbreviation": "Nature"}
			},
			"firstPublicationDate": "2020-11-03"
		}]
	}
}`

const preprintResponse = `{
	"hitCount": 1,
	"resultList": {
		"result": [{
			"doi": "10.1101/2020.01.01.000001",
			"title": "A novel kinase",
			"pubTypeList": {"pubType": ["Preprint"]},
			"authorList": {"author": [{"lastName": "Smith"}]},
			"bookOrReportDetails": {"publisher": "bioRxiv"},
			"firstPublicationDate": "2020-01-01"
		}]
	}
}`

func TestSearchByAuthor(t *testing.T) {
	var gotForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		gotForm = map[string]string{
			"query":      r.PostFormValue("query"),
			"resultType": r.PostFormValue("resultType"),
			"format":     r.PostFormValue("format"),
			"pageSize":   r.PostFormValue("pageSize"),
		}
		io.WriteString(w, sampleResponse)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	articles := c.SearchByAuthor(context.Background(), [][]string{{"smith"}}, testWindow())

	if len(articles) != 1 {
		t.Fatalf("articles = %d, want 1", len(articles))
	}
	a := articles[0]
	if a.Title != "A novel kinase" || a.PMID != "12345" || a.DOI != "10.1038/xyz" {
		t.Errorf("article = %+v", a)
	}
	if a.IsPreprint {
		t.Error("journal article flagged as preprint")
	}
	if a.JournalName != "Nature" {
		t.Errorf("journal = %q", a.JournalName)
	}
	if a.PubDate.ISO() != "2020-11-03" {
		t.Errorf("pub date = %q", a.PubDate.ISO())
	}
	if len(a.Authors) != 2 || a.Authors[1] != "Villanueva-Meyer" {
		t.Errorf("authors = %v", a.Authors)
	}
	// compound surnames arrive pre-expanded for the matcher
	if len(a.Alternatives) != 2 || len(a.Alternatives[1]) != 4 {
		t.Errorf("alternatives = %v", a.Alternatives)
	}

	if gotForm["resultType"] != "core" || gotForm["format"] != "json" || gotForm["pageSize"] != "5" {
		t.Errorf("form = %v", gotForm)
	}
	if gotForm["query"] == "" {
		t.Error("empty query posted")
	}
}

func TestSearchByTitlePreprint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, preprintResponse)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithPreprintPolicy(search.OnlyPreprints))
	articles := c.SearchByTitle(context.Background(), "a novel kinase", testWindow())

	if len(articles) != 1 {
		t.Fatalf("articles = %d, want 1", len(articles))
	}
	a := articles[0]
	if !a.IsPreprint {
		t.Error("preprint not flagged")
	}
	if a.JournalName != "bioRxiv" {
		t.Errorf("journal = %q, want preprint server", a.JournalName)
	}
}

func TestSearchFailureYieldsZeroCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	if articles := c.SearchByTitle(context.Background(), "x", testWindow()); articles != nil {
		t.Errorf("articles = %v, want nil on backend failure", articles)
	}
}

func TestSearchRetriesTransient(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		io.WriteString(w, sampleResponse)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	articles := c.SearchByTitle(context.Background(), "a novel kinase", testWindow())
	if len(articles) != 1 {
		t.Fatalf("articles = %d after retry, want 1", len(articles))
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestSearchEmptyQueryShortCircuits(t *testing.T) {
	c := NewClient(WithBaseURL("http://127.0.0.1:0"))
	if articles := c.SearchByAuthor(context.Background(), nil, testWindow()); articles != nil {
		t.Errorf("articles = %v, want nil without a query", articles)
	}
}
