package http

import (
	"net/url"
	"reflect"
	"testing"

	"travelspend/internal/core"
	"travelspend/internal/dataset/memory"
)

func TestParseSelection(t *testing.T) {
	tbl := memory.Fallback()
	tests := []struct {
		name  string
		query string
		want  core.Selection
	}{
		{
			name:  "defaults without filtered",
			query: "status=Onboarded",
			want:  core.Selection{Status: []string{"Onboarded", "Unmanaged"}, OrgType: []string{"Enterprise", "SME"}},
		},
		{
			name:  "explicit empty selection",
			query: "filtered=1",
			want:  core.Selection{Status: []string{}, OrgType: []string{}},
		},
		{
			name:  "unknown and duplicate values dropped",
			query: "filtered=1&status=Unmanaged&status=Pending&status=Unmanaged&org_type=%20SME%20",
			want:  core.Selection{Status: []string{"Unmanaged"}, OrgType: []string{"SME"}},
		},
		{
			name:  "observed order kept",
			query: "filtered=1&org_type=SME&org_type=Enterprise",
			want:  core.Selection{Status: []string{}, OrgType: []string{"Enterprise", "SME"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatal(err)
			}
			if got := ParseSelection(q, tbl); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ParseSelection() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSelectionQueryRoundTrip(t *testing.T) {
	tbl := memory.Fallback()
	sel := core.Selection{Status: []string{"Onboarded"}, OrgType: []string{}}
	if got := ParseSelection(SelectionQuery(sel), tbl); !reflect.DeepEqual(got, sel) {
		t.Fatalf("round trip = %+v", got)
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  SME\x00\x07 "); got != "SME" {
		t.Fatalf("sanitizeInput = %q", got)
	}
}
