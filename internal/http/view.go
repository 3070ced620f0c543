package http

import (
	"time"

	"travelspend/internal/core"
	"travelspend/internal/dataset"
	"travelspend/internal/report"
)

type (
	loginView struct {
		Title  string
		Prompt string
		Denied bool
	}

	errorView struct {
		Title     string
		Heading   string
		Message   string
		RequestID string
	}

	option struct {
		Value    string
		Selected bool
	}

	rowView struct {
		Organisation string
		Month        string
		Spend        string
		Status       string
		OrgType      string
	}

	dashboardView struct {
		Title          string
		TotalSpend     string
		ActiveOrgs     int
		Pie            []report.PieSlice
		Bars           []report.BarRow
		HasUnmanaged   bool
		StatusOptions  []option
		OrgTypeOptions []option
		Columns        []string
		Rows           []rowView
		ExportURL      string
		Source         string
		Fallback       bool
		LoadedAt       time.Time
	}
)

func newDashboardView(rep report.Report, res dataset.Result) dashboardView {
	rows := make([]rowView, 0, len(rep.Rows))
	for _, r := range rep.Rows {
		rows = append(rows, rowView{
			Organisation: r.Organisation,
			Month:        r.Month,
			Spend:        core.FormatAmount(r.Spend),
			Status:       r.Status,
			OrgType:      r.OrgType,
		})
	}
	return dashboardView{
		Title:          DashboardTitle,
		TotalSpend:     rep.TotalSpendDisplay,
		ActiveOrgs:     rep.ActiveOrgs,
		Pie:            report.PieSlices(rep.ByStatus),
		Bars:           report.Bars(rep.TopUnmanaged),
		HasUnmanaged:   rep.HasUnmanaged,
		StatusOptions:  options(rep.Options.Status, rep.Selection.Status),
		OrgTypeOptions: options(rep.Options.OrgType, rep.Selection.OrgType),
		Columns:        core.Columns,
		Rows:           rows,
		ExportURL:      "/export.csv?" + SelectionQuery(rep.Selection).Encode(),
		Source:         res.Source,
		Fallback:       res.Fallback,
		LoadedAt:       res.LoadedAt,
	}
}

func options(all, selected []string) []option {
	chosen := make(map[string]struct{}, len(selected))
	for _, v := range selected {
		chosen[v] = struct{}{}
	}
	out := make([]option, 0, len(all))
	for _, v := range all {
		_, ok := chosen[v]
		out = append(out, option{Value: v, Selected: ok})
	}
	return out
}

// reportResponse is the JSON form of one dashboard interaction.
type reportResponse struct {
	report.Report
	Rows     []rowJSON `json:"rows"`
	Source   string    `json:"source"`
	Fallback bool      `json:"fallback"`
}

type rowJSON struct {
	Organisation string `json:"organisation"`
	Month        string `json:"month"`
	Spend        string `json:"spend"`
	Status       string `json:"status"`
	OrgType      string `json:"org_type"`
}

func newReportResponse(rep report.Report, res dataset.Result) reportResponse {
	rows := make([]rowJSON, 0, len(rep.Rows))
	for _, r := range rep.Rows {
		rows = append(rows, rowJSON{
			Organisation: r.Organisation,
			Month:        r.Month,
			Spend:        r.Spend.String(),
			Status:       r.Status,
			OrgType:      r.OrgType,
		})
	}
	return reportResponse{Report: rep, Rows: rows, Source: res.Source, Fallback: res.Fallback}
}
