package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// SchemaError reports a dataset that was readable but does not match the
// expected columns or value types.
type SchemaError struct {
	Row     int // 1-based sheet row, 0 for header problems
	Column  string
	Missing []string
	Err     error
}

func (e *SchemaError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("dataset schema: missing columns %s", strings.Join(e.Missing, ", "))
	}
	if e.Err != nil {
		return fmt.Sprintf("dataset schema: row %d column %q: %v", e.Row, e.Column, e.Err)
	}
	return fmt.Sprintf("dataset schema: row %d column %q", e.Row, e.Column)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// ParseTable converts a header row and its data rows (as read from a
// spreadsheet) into a typed Table. Columns are matched by name, ignoring case
// and surrounding spaces; extra columns are ignored and fully blank rows are
// skipped. Sheet row numbers in errors assume the header is row 1.
func ParseTable(header []string, rows [][]string) (Table, error) {
	idx := make(map[string]int, len(Columns))
	var missing []string
	for _, col := range Columns {
		i := indexOf(header, col)
		if i == -1 {
			missing = append(missing, col)
			continue
		}
		idx[col] = i
	}
	if len(missing) > 0 {
		return Table{}, &SchemaError{Missing: missing}
	}

	out := make([]Record, 0, len(rows))
	for n, row := range rows {
		if isBlank(row) {
			continue
		}
		sheetRow := n + 2
		spendStr := safeGet(row, idx[ColSpend])
		spend, err := ParseSpend(spendStr)
		if err != nil {
			return Table{}, &SchemaError{Row: sheetRow, Column: ColSpend, Err: err}
		}
		rec := Record{
			Organisation: strings.TrimSpace(safeGet(row, idx[ColOrganisation])),
			Month:        strings.TrimSpace(safeGet(row, idx[ColMonth])),
			Spend:        spend,
			Status:       strings.TrimSpace(safeGet(row, idx[ColStatus])),
			OrgType:      strings.TrimSpace(safeGet(row, idx[ColOrgType])),
		}
		if err := rec.Validate(); err != nil {
			col := ColSpend
			if errors.Is(err, ErrEmptyOrganisation) {
				col = ColOrganisation
			}
			return Table{}, &SchemaError{Row: sheetRow, Column: col, Err: err}
		}
		out = append(out, rec)
	}
	return Table{rows: out}, nil
}

// ParseSpend parses a non-negative amount. Thousands separators, surrounding
// spaces and a leading rupee sign are tolerated.
func ParseSpend(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₹")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, errors.New("empty spend")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid spend %q", s)
	}
	if d.IsNegative() {
		return decimal.Zero, ErrNegativeSpend
	}
	return d, nil
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
