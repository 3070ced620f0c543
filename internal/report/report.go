// Package report turns a filtered travel spend table into the render
// description shown by the dashboard and the CLI.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"travelspend/internal/core"
)

// TopUnmanagedLimit caps the unmanaged spend ranking.
const TopUnmanagedLimit = 5

type (
	// StatusTotal is the spend of one Status value within the filtered rows.
	StatusTotal struct {
		Status  string          `json:"status"`
		Spend   decimal.Decimal `json:"spend"`
		Percent float64         `json:"percent"`
		Color   string          `json:"color"`
	}

	// OrgTotal is the spend of one organisation within the filtered rows.
	OrgTotal struct {
		Organisation string          `json:"organisation"`
		Spend        decimal.Decimal `json:"spend"`
	}

	// Options are the values a viewer can choose from in each filter.
	Options struct {
		Status  []string `json:"status"`
		OrgType []string `json:"org_type"`
	}

	// Report is everything needed to render one dashboard interaction.
	Report struct {
		TotalSpend        decimal.Decimal `json:"total_spend"`
		TotalSpendDisplay string          `json:"total_spend_display"`
		ActiveOrgs        int             `json:"active_orgs"`
		ByStatus          []StatusTotal   `json:"by_status"`
		TopUnmanaged      []OrgTotal      `json:"top_unmanaged"`
		HasUnmanaged      bool            `json:"has_unmanaged"`
		Options           Options         `json:"options"`
		Selection         core.Selection  `json:"selection"`
		Rows              []core.Record   `json:"-"`
	}
)

// Build filters the full table with sel and aggregates the result. Options
// always come from the full table so deselected values stay selectable.
func Build(full core.Table, sel core.Selection) Report {
	filtered := core.Filter(full, sel)
	total := core.SumSpend(filtered)
	top := TopUnmanaged(filtered)
	return Report{
		TotalSpend:        total,
		TotalSpendDisplay: core.FormatSpend(total),
		ActiveOrgs:        ActiveOrgs(filtered),
		ByStatus:          SpendByStatus(filtered),
		TopUnmanaged:      top,
		HasUnmanaged:      len(top) > 0,
		Options: Options{
			Status:  full.Distinct(core.FieldStatus),
			OrgType: full.Distinct(core.FieldOrgType),
		},
		Selection: sel,
		Rows:      filtered.Rows(),
	}
}

// ActiveOrgs counts distinct organisation names.
func ActiveOrgs(t core.Table) int {
	seen := map[string]struct{}{}
	for _, r := range t.Rows() {
		seen[r.Organisation] = struct{}{}
	}
	return len(seen)
}

// SpendByStatus sums spend per Status value present in t, ordered by status
// name. Percentages are shares of the grand total (zero when the total is).
func SpendByStatus(t core.Table) []StatusTotal {
	sums := map[string]decimal.Decimal{}
	grand := decimal.Zero
	for _, r := range t.Rows() {
		sums[r.Status] = sums[r.Status].Add(r.Spend)
		grand = grand.Add(r.Spend)
	}
	out := make([]StatusTotal, 0, len(sums))
	for status, spend := range sums {
		pct := 0.0
		if grand.IsPositive() {
			pct = spend.Div(grand).Mul(decimal.NewFromInt(100)).InexactFloat64()
		}
		out = append(out, StatusTotal{Status: status, Spend: spend, Percent: pct, Color: StatusColor(status)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out
}

// TopUnmanaged ranks organisations with Unmanaged rows by summed spend,
// descending, keeping at most TopUnmanagedLimit. Equal totals are ordered by
// organisation name.
func TopUnmanaged(t core.Table) []OrgTotal {
	sums := map[string]decimal.Decimal{}
	for _, r := range t.Rows() {
		if r.Status != core.StatusUnmanaged {
			continue
		}
		sums[r.Organisation] = sums[r.Organisation].Add(r.Spend)
	}
	out := make([]OrgTotal, 0, len(sums))
	for org, spend := range sums {
		out = append(out, OrgTotal{Organisation: org, Spend: spend})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Spend.Cmp(out[j].Spend); c != 0 {
			return c > 0
		}
		return out[i].Organisation < out[j].Organisation
	})
	if len(out) > TopUnmanagedLimit {
		out = out[:TopUnmanagedLimit]
	}
	return out
}
