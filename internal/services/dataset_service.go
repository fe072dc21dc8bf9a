package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"orderdash/internal/cache"
	"orderdash/internal/core"
	"orderdash/internal/report"
)

var (
	ErrUnknownPeriod = errors.New("unknown period")
	ErrNotLoaded     = errors.New("dataset not loaded")
)

// Loader produces a complete dataset. backend.Source satisfies it.
type Loader interface {
	Load(ctx context.Context) (*report.Dataset, error)
	Describe() string
}

// loaded is one immutable dataset version.
type loaded struct {
	ds         *report.Dataset
	generation uint64
	loadedAt   time.Time
}

// DatasetService owns the current dataset and serves metric bundles for it.
// Readers never block on a reload: a reload builds the new dataset aside and
// swaps the pointer once it is complete.
type DatasetService struct {
	loader  Loader
	current atomic.Pointer[loaded]
	cache   cache.Cache[core.MetricBundle]
	group   singleflight.Group

	reloadMu sync.Mutex
	now      func() time.Time
}

// NewDatasetService creates a service around loader. metrics may be nil, in
// which case every request recomputes its bundle.
func NewDatasetService(loader Loader, metrics cache.Cache[core.MetricBundle]) *DatasetService {
	return &DatasetService{loader: loader, cache: metrics, now: time.Now}
}

// Reload loads a fresh dataset and makes it current. On failure the previous
// dataset stays in place.
func (s *DatasetService) Reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	start := s.now()
	ds, err := s.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load dataset from %s: %w", s.loader.Describe(), err)
	}

	var gen uint64 = 1
	if prev := s.current.Load(); prev != nil {
		gen = prev.generation + 1
	}
	s.current.Store(&loaded{ds: ds, generation: gen, loadedAt: s.now()})
	if s.cache != nil {
		s.cache.Purge()
	}

	slog.InfoContext(ctx, "Dataset loaded",
		"source", s.loader.Describe(),
		"lines", ds.Len(),
		"periods", len(ds.Periods()),
		"generation", gen,
		"duration", s.now().Sub(start))
	return nil
}

// Ready reports whether a dataset has been loaded.
func (s *DatasetService) Ready() bool { return s.current.Load() != nil }

// Generation is the version of the current dataset, 0 before the first load.
func (s *DatasetService) Generation() uint64 {
	if cur := s.current.Load(); cur != nil {
		return cur.generation
	}
	return 0
}

// Lines is the number of order lines in the current dataset, 0 before the
// first load.
func (s *DatasetService) Lines() int {
	if cur := s.current.Load(); cur != nil {
		return cur.ds.Len()
	}
	return 0
}

// LoadedAt is when the current dataset was swapped in.
func (s *DatasetService) LoadedAt() time.Time {
	if cur := s.current.Load(); cur != nil {
		return cur.loadedAt
	}
	return time.Time{}
}

// Dataset returns the current dataset.
func (s *DatasetService) Dataset() (*report.Dataset, error) {
	cur := s.current.Load()
	if cur == nil {
		return nil, ErrNotLoaded
	}
	return cur.ds, nil
}

// Periods returns the selector options, "All" first.
func (s *DatasetService) Periods() ([]string, error) {
	ds, err := s.Dataset()
	if err != nil {
		return nil, err
	}
	return report.ListPeriods(ds), nil
}

// Metrics returns the bundle for period. Periods not present in the dataset
// yield ErrUnknownPeriod. Concurrent misses for the same key share one
// computation.
func (s *DatasetService) Metrics(ctx context.Context, period string) (core.MetricBundle, error) {
	cur := s.current.Load()
	if cur == nil {
		return core.MetricBundle{}, ErrNotLoaded
	}
	if !cur.ds.HasPeriod(period) {
		return core.MetricBundle{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, period)
	}

	key := cacheKey(cur.generation, period)
	if s.cache != nil {
		if b, ok := s.cache.Get(key); ok {
			return b, nil
		}
	}

	v, _, shared := s.group.Do(key, func() (interface{}, error) {
		b := report.ComputeMetrics(cur.ds, period)
		if s.cache != nil {
			s.cache.Set(key, b)
		}
		return b, nil
	})
	if shared {
		slog.DebugContext(ctx, "Metrics computation shared", "period", period, "generation", cur.generation)
	}
	return v.(core.MetricBundle), nil
}

func cacheKey(generation uint64, period string) string {
	return strconv.FormatUint(generation, 10) + "|" + period
}
