package dataset

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"travelspend/internal/core"
)

type stubSource struct {
	calls atomic.Int32
	tbl   core.Table
	err   error
	delay time.Duration
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) ReadTable(ctx context.Context) (core.Table, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.tbl, s.err
}

func oneRow(org string) core.Table {
	return core.NewTable([]core.Record{{Organisation: org, Spend: decimal.NewFromInt(1), Status: core.StatusOnboarded}})
}

func fallbackTable() core.Table { return oneRow("Sample") }

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestLoaderUsesSource(t *testing.T) {
	logger, _ := newTestLogger()
	src := &stubSource{tbl: oneRow("Real")}
	res, err := NewLoader(src, fallbackTable, logger).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Fallback || res.Table.Rows()[0].Organisation != "Real" || res.Source != "stub" {
		t.Fatalf("result = %+v", res)
	}
}

func TestLoaderFallsBack(t *testing.T) {
	cases := []struct {
		name  string
		err   error
		level string
	}{
		{"not found logs info", NotFound("stub", errors.New("no such file")), "level=INFO"},
		{"unreadable logs warning", Unavailable("stub", errors.New("zip: not a valid zip file")), "level=WARN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logger, buf := newTestLogger()
			res, err := NewLoader(&stubSource{err: tc.err}, fallbackTable, logger).Load(context.Background())
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if !res.Fallback || res.Table.Rows()[0].Organisation != "Sample" {
				t.Fatalf("result = %+v", res)
			}
			if !strings.Contains(buf.String(), tc.level) {
				t.Fatalf("log %q missing %s", buf.String(), tc.level)
			}
		})
	}
}

func TestLoaderSchemaErrorIsFatal(t *testing.T) {
	logger, _ := newTestLogger()
	schema := &core.SchemaError{Missing: []string{core.ColSpend}}
	_, err := NewLoader(&stubSource{err: schema}, fallbackTable, logger).Load(context.Background())
	var se *core.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want schema error", err)
	}
}

func TestCacheMemoizesSuccess(t *testing.T) {
	logger, _ := newTestLogger()
	src := &stubSource{tbl: oneRow("Real")}
	c := NewCache(NewLoader(src, fallbackTable, logger).Load)

	for i := 0; i < 3; i++ {
		if _, err := c.Get(context.Background()); err != nil {
			t.Fatalf("get: %v", err)
		}
	}
	if n := src.calls.Load(); n != 1 {
		t.Fatalf("source read %d times, want 1", n)
	}

	c.Invalidate()
	if _, err := c.Get(context.Background()); err != nil {
		t.Fatalf("get after invalidate: %v", err)
	}
	if n := src.calls.Load(); n != 2 {
		t.Fatalf("source read %d times after invalidate, want 2", n)
	}
}

func TestCacheDoesNotMemoizeFailures(t *testing.T) {
	logger, _ := newTestLogger()
	src := &stubSource{err: &core.SchemaError{Missing: []string{core.ColStatus}}}
	c := NewCache(NewLoader(src, fallbackTable, logger).Load)

	if _, err := c.Get(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if _, ok, lastErr := c.Status(); ok || lastErr == nil {
		t.Fatalf("status ok=%v lastErr=%v", ok, lastErr)
	}
	if _, err := c.Get(context.Background()); err == nil {
		t.Fatal("expected error on retry")
	}
	if n := src.calls.Load(); n != 2 {
		t.Fatalf("source read %d times, want 2", n)
	}
}

func TestCacheSharesConcurrentLoads(t *testing.T) {
	logger, _ := newTestLogger()
	src := &stubSource{tbl: oneRow("Real"), delay: 50 * time.Millisecond}
	c := NewCache(NewLoader(src, fallbackTable, logger).Load)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Get(context.Background()); err != nil {
				t.Errorf("get: %v", err)
			}
		}()
	}
	wg.Wait()
	if n := src.calls.Load(); n != 1 {
		t.Fatalf("source read %d times, want 1", n)
	}
	res, ok, err := c.Status()
	if !ok || err != nil || res.Table.Len() != 1 {
		t.Fatalf("status = %+v %v %v", res, ok, err)
	}
}
