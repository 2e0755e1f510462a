package submission

import (
	"reflect"
	"testing"
)

func TestSplitAuthorList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "simple list",
			input: "Jane Smith, Tom Jones",
			want:  []string{"Smith", "Jones"},
		},
		{
			name:  "duplicate with extra space",
			input: "Jane Smith, Jane  Smith, Tom Jones",
			want:  []string{"Smith", "Jones"},
		},
		{
			name:  "corresponding author suffix",
			input: "Jane Smith-corr, Tom Jones",
			want:  []string{"Smith", "Jones"},
		},
		{
			name:  "particle surname",
			input: "John van der Putten, Maria de la Cruz",
			want:  []string{"van der Putten", "de la Cruz"},
		},
		{
			name:  "empty fragments dropped",
			input: "Jane Smith,, ,Tom Jones",
			want:  []string{"Smith", "Jones"},
		},
		{
			name:  "empty string",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitAuthorList(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitAuthorList(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPublicationDateISO(t *testing.T) {
	tests := []struct {
		date PublicationDate
		want string
	}{
		{PublicationDate{}, ""},
		{PublicationDate{Year: 2021}, "2021"},
		{PublicationDate{Year: 2021, Month: 3}, "2021-03"},
		{PublicationDate{Year: 2021, Month: 3, Day: 9}, "2021-03-09"},
		{PublicationDate{Year: 2021, Day: 9}, "2021"}, // day without month is dropped
	}

	for _, tt := range tests {
		if got := tt.date.ISO(); got != tt.want {
			t.Errorf("%+v.ISO() = %q, want %q", tt.date, got, tt.want)
		}
	}
}
