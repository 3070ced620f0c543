package http

import (
	"net/url"

	"travelspend/internal/core"
)

// Filter query parameters. FilteredParam marks an explicit submission of the
// filter form; without it the default selection applies.
const (
	StatusParam   = "status"
	OrgTypeParam  = "org_type"
	FilteredParam = "filtered"
)

// ParseSelection reads the filter selection from query values. Without
// filtered=1 every observed value is selected. With it, an absent field is an
// empty selection. Values that do not occur in the table are ignored.
func ParseSelection(query url.Values, t core.Table) core.Selection {
	if query.Get(FilteredParam) != "1" {
		return core.DefaultSelection(t)
	}
	return core.Selection{
		Status:  pickKnown(query[StatusParam], t.Distinct(core.FieldStatus)),
		OrgType: pickKnown(query[OrgTypeParam], t.Distinct(core.FieldOrgType)),
	}
}

// pickKnown returns the known values that were requested, in the order of
// known, without duplicates.
func pickKnown(requested, known []string) []string {
	want := make(map[string]struct{}, len(requested))
	for _, v := range requested {
		want[sanitizeInput(v)] = struct{}{}
	}
	out := []string{}
	for _, k := range known {
		if _, ok := want[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// SelectionQuery encodes sel so that ParseSelection returns it again.
func SelectionQuery(sel core.Selection) url.Values {
	q := url.Values{}
	q.Set(FilteredParam, "1")
	for _, v := range sel.Status {
		q.Add(StatusParam, v)
	}
	for _, v := range sel.OrgType {
		q.Add(OrgTypeParam, v)
	}
	return q
}
