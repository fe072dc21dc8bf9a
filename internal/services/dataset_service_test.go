package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"orderdash/internal/cache"
	"orderdash/internal/core"
	"orderdash/internal/report"
)

type fakeLoader struct {
	mu    sync.Mutex
	lines []core.OrderLine
	err   error
	calls int
}

func (f *fakeLoader) Load(_ context.Context) (*report.Dataset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return report.NewDataset(f.lines), nil
}

func (f *fakeLoader) Describe() string { return "fake" }

func (f *fakeLoader) set(lines []core.OrderLine, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines, f.err = lines, err
}

func order(num string, month time.Month, status core.Status, cents int64) core.OrderLine {
	return core.OrderLine{
		OrderNumber: num,
		OrderDate:   time.Date(2025, month, 10, 12, 0, 0, 0, time.UTC),
		Status:      status,
		Subtotal:    core.Money{Cents: cents},
		ItemName:    "Seeds",
		BillingCity: "Pune",
	}
}

func sampleLines() []core.OrderLine {
	return []core.OrderLine{
		order("1", time.June, core.StatusCompleted, 1000),
		order("2", time.July, core.StatusCompleted, 2500),
		order("3", time.July, core.StatusRefunded, 400),
	}
}

func TestDatasetService_NotLoaded(t *testing.T) {
	svc := NewDatasetService(&fakeLoader{}, nil)

	if svc.Ready() {
		t.Error("service should not be ready before the first load")
	}
	if svc.Generation() != 0 {
		t.Errorf("expected generation 0, got %d", svc.Generation())
	}
	if svc.Lines() != 0 {
		t.Errorf("expected 0 lines, got %d", svc.Lines())
	}
	if _, err := svc.Periods(); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("expected ErrNotLoaded, got %v", err)
	}
	if _, err := svc.Metrics(context.Background(), core.AllPeriods); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("expected ErrNotLoaded, got %v", err)
	}
}

func TestDatasetService_ReloadAndMetrics(t *testing.T) {
	loader := &fakeLoader{lines: sampleLines()}
	svc := NewDatasetService(loader, cache.NewLRUCache[core.MetricBundle](10, time.Minute))
	ctx := context.Background()

	if err := svc.Reload(ctx); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if !svc.Ready() || svc.Generation() != 1 {
		t.Fatalf("expected ready at generation 1, got ready=%v gen=%d", svc.Ready(), svc.Generation())
	}
	if svc.LoadedAt().IsZero() {
		t.Error("LoadedAt should be set after a load")
	}
	if svc.Lines() != len(sampleLines()) {
		t.Errorf("expected %d lines, got %d", len(sampleLines()), svc.Lines())
	}

	periods, err := svc.Periods()
	if err != nil {
		t.Fatalf("Periods() error = %v", err)
	}
	want := []string{"All", "July 2025", "June 2025"}
	if len(periods) != len(want) {
		t.Fatalf("Periods() = %v, want %v", periods, want)
	}
	for i := range want {
		if periods[i] != want[i] {
			t.Errorf("Periods()[%d] = %q, want %q", i, periods[i], want[i])
		}
	}

	b, err := svc.Metrics(ctx, "July 2025")
	if err != nil {
		t.Fatalf("Metrics() error = %v", err)
	}
	if b.Orders != 2 {
		t.Errorf("expected 2 orders in July, got %d", b.Orders)
	}
	if got := b.Status(core.StatusCompleted).Value.Cents; got != 2500 {
		t.Errorf("expected completed value 2500, got %d", got)
	}
}

func TestDatasetService_UnknownPeriod(t *testing.T) {
	svc := NewDatasetService(&fakeLoader{lines: sampleLines()}, nil)
	if err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	_, err := svc.Metrics(context.Background(), "March 2019")
	if !errors.Is(err, ErrUnknownPeriod) {
		t.Errorf("expected ErrUnknownPeriod, got %v", err)
	}
}

func TestDatasetService_FailedReloadKeepsPreviousDataset(t *testing.T) {
	loader := &fakeLoader{lines: sampleLines()}
	svc := NewDatasetService(loader, nil)
	ctx := context.Background()

	if err := svc.Reload(ctx); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	loader.set(nil, &core.DataFormatError{Row: 3, Column: core.ColOrderDate, Value: "bad", Err: core.ErrInvalidDate})
	err := svc.Reload(ctx)
	if !errors.Is(err, core.ErrDataFormat) {
		t.Fatalf("expected data format error, got %v", err)
	}

	if svc.Generation() != 1 {
		t.Errorf("generation should stay at 1, got %d", svc.Generation())
	}
	b, err := svc.Metrics(ctx, core.AllPeriods)
	if err != nil {
		t.Fatalf("Metrics() error = %v", err)
	}
	if b.Lines != 3 {
		t.Errorf("expected previous dataset with 3 lines, got %d", b.Lines)
	}
}

func TestDatasetService_ReloadInvalidatesCache(t *testing.T) {
	loader := &fakeLoader{lines: sampleLines()}
	metrics := cache.NewLRUCache[core.MetricBundle](10, time.Minute)
	svc := NewDatasetService(loader, metrics)
	ctx := context.Background()

	if err := svc.Reload(ctx); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if _, err := svc.Metrics(ctx, core.AllPeriods); err != nil {
		t.Fatalf("Metrics() error = %v", err)
	}
	if metrics.Size() != 1 {
		t.Fatalf("expected one cached bundle, got %d", metrics.Size())
	}

	loader.set(append(sampleLines(), order("4", time.July, core.StatusCancelled, 50)), nil)
	if err := svc.Reload(ctx); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if metrics.Size() != 0 {
		t.Errorf("reload should purge the cache, size = %d", metrics.Size())
	}

	b, err := svc.Metrics(ctx, core.AllPeriods)
	if err != nil {
		t.Fatalf("Metrics() error = %v", err)
	}
	if b.Lines != 4 {
		t.Errorf("expected fresh bundle with 4 lines, got %d", b.Lines)
	}
}

func TestDatasetService_CachedBundleIsReused(t *testing.T) {
	metrics := cache.NewLRUCache[core.MetricBundle](10, time.Minute)
	svc := NewDatasetService(&fakeLoader{lines: sampleLines()}, metrics)
	ctx := context.Background()
	if err := svc.Reload(ctx); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.Metrics(ctx, "June 2025"); err != nil {
			t.Fatalf("Metrics() error = %v", err)
		}
	}
	stats := metrics.Stats()
	if stats.Misses != 1 || stats.Hits != 2 {
		t.Errorf("expected 1 miss and 2 hits, got %+v", stats)
	}
}

func TestDatasetService_ConcurrentReadsDuringReload(t *testing.T) {
	loader := &fakeLoader{lines: sampleLines()}
	svc := NewDatasetService(loader, cache.NewLRUCache[core.MetricBundle](10, time.Minute))
	ctx := context.Background()
	if err := svc.Reload(ctx); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	var failures atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				b, err := svc.Metrics(ctx, core.AllPeriods)
				// Every reader sees one complete dataset, never a mix.
				if err != nil || (b.Lines != 3 && b.Lines != 4) {
					failures.Add(1)
				}
			}
		}()
	}
	for i := 0; i < 5; i++ {
		loader.set(append(sampleLines(), order("9", time.June, core.StatusProcessing, 10)), nil)
		if err := svc.Reload(ctx); err != nil {
			t.Errorf("Reload() error = %v", err)
		}
	}
	wg.Wait()

	if n := failures.Load(); n > 0 {
		t.Errorf("%d reads saw an inconsistent dataset", n)
	}
	if svc.Generation() != 6 {
		t.Errorf("expected generation 6, got %d", svc.Generation())
	}
}
