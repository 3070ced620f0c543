package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"travelspend/internal/core"
)

// Store is an in-process dataset source.
type Store struct {
	table core.Table
}

// New returns a store serving tbl.
func New(tbl core.Table) *Store {
	return &Store{table: tbl}
}

// NewSample returns a store serving the built-in sample table.
func NewSample() *Store {
	return New(Fallback())
}

// Fallback is the four-row sample shown when no real dataset can be read.
func Fallback() core.Table {
	return core.NewTable([]core.Record{
		{Organisation: "Alpha Corp", Month: "June", Spend: decimal.NewFromInt(150000), Status: core.StatusOnboarded, OrgType: "Enterprise"},
		{Organisation: "Beta Ltd", Month: "June", Spend: decimal.NewFromInt(45000), Status: core.StatusUnmanaged, OrgType: "SME"},
		{Organisation: "Gamma Inc", Month: "July", Spend: decimal.NewFromInt(160000), Status: core.StatusOnboarded, OrgType: "Enterprise"},
		{Organisation: "Delta Sol", Month: "July", Spend: decimal.NewFromInt(50000), Status: core.StatusUnmanaged, OrgType: "SME"},
	})
}

func (s *Store) Name() string { return "memory" }

// ReadTable returns the stored table.
func (s *Store) ReadTable(_ context.Context) (core.Table, error) {
	return s.table, nil
}
