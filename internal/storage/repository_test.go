package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"travelspend/internal/core"
	"travelspend/internal/dataset"
)

func newRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "travelspend.db"), nil)
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sample() core.Table {
	return core.NewTable([]core.Record{
		{Organisation: "Alpha Corp", Month: "June", Spend: decimal.RequireFromString("150000.25"), Status: core.StatusOnboarded, OrgType: "Enterprise"},
		{Organisation: "Beta Ltd", Month: "June", Spend: decimal.NewFromInt(45000), Status: core.StatusUnmanaged, OrgType: "SME"},
	})
}

func TestEmptyStoreIsNotFound(t *testing.T) {
	repo := newRepo(t)
	_, err := repo.ReadTable(context.Background())
	if !errors.Is(err, dataset.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, ok, err := repo.LastImport(context.Background()); ok || err != nil {
		t.Fatalf("last import ok=%v err=%v", ok, err)
	}
}

func TestReplaceAllRoundTrip(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	imp, err := repo.ReplaceAll(ctx, sample(), "xlsx:travel_data.xlsx")
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if imp.Rows != 2 {
		t.Fatalf("import rows = %d", imp.Rows)
	}

	tbl, err := repo.ReadTable(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	rows := tbl.Rows()
	if len(rows) != 2 || rows[0].Organisation != "Alpha Corp" || rows[1].Organisation != "Beta Ltd" {
		t.Fatalf("rows = %+v", rows)
	}
	if !rows[0].Spend.Equal(decimal.RequireFromString("150000.25")) {
		t.Fatalf("spend = %s", rows[0].Spend)
	}

	last, ok, err := repo.LastImport(ctx)
	if err != nil || !ok || last.Source != "xlsx:travel_data.xlsx" || last.Rows != 2 {
		t.Fatalf("last import = %+v ok=%v err=%v", last, ok, err)
	}
}

func TestReplaceAllReplaces(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	if _, err := repo.ReplaceAll(ctx, sample(), "first"); err != nil {
		t.Fatal(err)
	}
	one := core.NewTable([]core.Record{{Organisation: "Gamma Inc", Month: "July", Spend: decimal.NewFromInt(160000), Status: core.StatusOnboarded, OrgType: "Enterprise"}})
	if _, err := repo.ReplaceAll(ctx, one, "second"); err != nil {
		t.Fatal(err)
	}
	tbl, err := repo.ReadTable(ctx)
	if err != nil || tbl.Len() != 1 || tbl.Rows()[0].Organisation != "Gamma Inc" {
		t.Fatalf("read = %+v err %v", tbl.Rows(), err)
	}
}

func TestReadTableRejectsBadStoredSpend(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	if _, err := repo.db.ExecContext(ctx,
		`INSERT INTO travel_spend (position, organisation, month, spend, status, org_type) VALUES (1, 'X', 'June', 'lots', 'Onboarded', 'SME')`); err != nil {
		t.Fatal(err)
	}
	_, err := repo.ReadTable(ctx)
	var se *core.SchemaError
	if !errors.As(err, &se) || se.Row != 2 {
		t.Fatalf("err = %v", err)
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	v1, err := RunMigrations(path)
	if err != nil {
		t.Fatal(err)
	}
	v2, err := RunMigrations(path)
	if err != nil || v1 != v2 || v2 != 2 {
		t.Fatalf("versions %d %d err %v", v1, v2, err)
	}
}
