package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	StatusOnboarded = "Onboarded"
	StatusUnmanaged = "Unmanaged"
)

// Column headers expected in every dataset source.
const (
	ColOrganisation = "Organisation Name"
	ColMonth        = "Month"
	ColSpend        = "Spend"
	ColStatus       = "Status"
	ColOrgType      = "Org Type"
)

// Columns lists the dataset headers in their canonical order.
var Columns = []string{ColOrganisation, ColMonth, ColSpend, ColStatus, ColOrgType}

type (
	// Record is one row of the travel spend dataset.
	Record struct {
		Organisation string
		Month        string
		Spend        decimal.Decimal
		Status       string
		OrgType      string
	}

	// Table is an immutable, ordered set of records.
	Table struct {
		rows []Record
	}

	// Field names one of the two categorical columns a viewer can filter on.
	Field int
)

const (
	FieldStatus Field = iota
	FieldOrgType
)

var (
	ErrEmptyOrganisation = errors.New("empty organisation name")
	ErrNegativeSpend     = errors.New("negative spend")
)

// NewTable copies rows into a new Table.
func NewTable(rows []Record) Table {
	return Table{rows: append([]Record(nil), rows...)}
}

// Rows returns a copy of the table rows in source order.
func (t Table) Rows() []Record {
	return append([]Record(nil), t.rows...)
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.rows)
}

// Distinct returns the distinct values of a categorical field in
// first-occurrence order.
func (t Table) Distinct(f Field) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, r := range t.rows {
		v := r.value(f)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func (r Record) value(f Field) string {
	if f == FieldOrgType {
		return r.OrgType
	}
	return r.Status
}

func (r Record) Validate() error {
	if strings.TrimSpace(r.Organisation) == "" {
		return ErrEmptyOrganisation
	}
	if r.Spend.IsNegative() {
		return ErrNegativeSpend
	}
	return nil
}

// Cells renders the record in Columns order.
func (r Record) Cells() []string {
	return []string{r.Organisation, r.Month, r.Spend.String(), r.Status, r.OrgType}
}

func (f Field) String() string {
	switch f {
	case FieldStatus:
		return ColStatus
	case FieldOrgType:
		return ColOrgType
	default:
		return fmt.Sprintf("Field(%d)", int(f))
	}
}
