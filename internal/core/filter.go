package core

// Selection holds the chosen values for each filterable field.
type Selection struct {
	Status  []string `json:"status"`
	OrgType []string `json:"org_type"`
}

// DefaultSelection selects every observed value, which is what a viewer sees
// on first render.
func DefaultSelection(t Table) Selection {
	return Selection{
		Status:  t.Distinct(FieldStatus),
		OrgType: t.Distinct(FieldOrgType),
	}
}

// Filter returns the rows whose Status is in sel.Status and whose Org Type is
// in sel.OrgType, keeping the source row order. An empty set for either
// field matches nothing.
func Filter(t Table, sel Selection) Table {
	status := toSet(sel.Status)
	orgType := toSet(sel.OrgType)
	out := make([]Record, 0, len(t.rows))
	for _, r := range t.rows {
		if _, ok := status[r.Status]; !ok {
			continue
		}
		if _, ok := orgType[r.OrgType]; !ok {
			continue
		}
		out = append(out, r)
	}
	return Table{rows: out}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
