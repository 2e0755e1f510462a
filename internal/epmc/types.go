package epmc

import (
	"strconv"
	"strings"

	"github.com/embo-press/matchpub/internal/normalize"
	"github.com/embo-press/matchpub/internal/submission"
)

// searchResponse is the JSON envelope of the Europe PMC search endpoint
// (resultType=core, format=json).
type searchResponse struct {
	HitCount   int `json:"hitCount"`
	ResultList struct {
		Result []pmcResult `json:"result"`
	} `json:"resultList"`
}

// pmcResult is one article record from the core result set.
type pmcResult struct {
	PMID         string `json:"pmid"`
	DOI          string `json:"doi"`
	Title        string `json:"title"`
	AbstractText string `json:"abstractText"`
	PubTypeList  struct {
		PubType []string `json:"pubType"`
	} `json:"pubTypeList"`
	AuthorList struct {
		Author []struct {
			FirstName string `json:"firstName"`
			LastName  string `json:"lastName"`
			FullName  string `json:"fullName"`
		} `json:"author"`
	} `json:"authorList"`
	JournalInfo struct {
		YearOfPublication  int `json:"yearOfPublication"`
		MonthOfPublication int `json:"monthOfPublication"`
		Journal            struct {
			Title                string `json:"title"`
			MedlineAbbreviation string `json:"medlineAbbreviation"`
		} `json:"journal"`
	} `json:"journalInfo"`
	BookOrReportDetails struct {
		Publisher string `json:"publisher"`
	} `json:"bookOrReportDetails"`
	FirstPublicationDate string `json:"firstPublicationDate"`
}

// toArticle maps a raw Europe PMC record onto the domain Article type.
// Preprints carry their server under bookOrReportDetails.publisher
// instead of journalInfo.
func (r pmcResult) toArticle() submission.Article {
	art := submission.Article{
		Title:    r.Title,
		Abstract: r.AbstractText,
		DOI:      r.DOI,
		PMID:     r.PMID,
	}

	for _, pt := range r.PubTypeList.PubType {
		if strings.EqualFold(pt, "preprint") {
			art.IsPreprint = true
		}
	}
	art.PubType = strings.ToLower(strings.Join(r.PubTypeList.PubType, "; "))

	if art.IsPreprint {
		art.JournalName = r.BookOrReportDetails.Publisher
		art.JournalAbbrev = r.BookOrReportDetails.Publisher
	} else {
		art.JournalName = r.JournalInfo.Journal.Title
		art.JournalAbbrev = r.JournalInfo.Journal.MedlineAbbreviation
	}

	art.PubDate = parseDate(r.FirstPublicationDate)
	if art.PubDate.Year == 0 {
		art.PubDate.Year = r.JournalInfo.YearOfPublication
		art.PubDate.Month = r.JournalInfo.MonthOfPublication
	}

	for _, au := range r.AuthorList.Author {
		if au.LastName != "" {
			art.Authors = append(art.Authors, au.LastName)
		}
	}
	art.Alternatives = normalize.ExpandAlternatives(art.Authors)

	return art
}

// parseDate parses the YYYY-MM-DD firstPublicationDate field.
func parseDate(s string) submission.PublicationDate {
	var d submission.PublicationDate
	parts := strings.Split(s, "-")
	if len(parts) >= 1 {
		if y, err := strconv.Atoi(parts[0]); err == nil {
			d.Year = y
		}
	}
	if len(parts) >= 2 {
		if m, err := strconv.Atoi(parts[1]); err == nil && m >= 1 && m <= 12 {
			d.Month = m
		}
	}
	if len(parts) >= 3 {
		if day, err := strconv.Atoi(parts[2]); err == nil && day >= 1 && day <= 31 {
			d.Day = day
		}
	}
	return d
}
