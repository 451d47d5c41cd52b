package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/ufo-sightings-etl/internal/domain"
	"github.com/couchcryptid/ufo-sightings-etl/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Extractor supplies the raw records of one run.
type Extractor interface {
	Extract(ctx context.Context) ([]domain.RawRecord, error)
}

// RawLoader persists raw records before they are cleaned.
type RawLoader interface {
	LoadRaw(ctx context.Context, records []domain.RawRecord) error
}

// Loader persists a normalized dataset.
type Loader interface {
	Load(ctx context.Context, ds domain.Dataset) error
}

// Pipeline orchestrates one resolve-extract-normalize-load run.
type Pipeline struct {
	extractor Extractor
	resolver  domain.CountryResolver
	rawLoader RawLoader
	loaders   []Loader
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
	ready     atomic.Bool
	last      atomic.Pointer[Report]
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithRawLoader persists the raw records before cleaning.
func WithRawLoader(l RawLoader) Option {
	return func(p *Pipeline) { p.rawLoader = l }
}

// WithClock swaps the time source used for stage timings and the run report.
func WithClock(c clockwork.Clock) Option {
	return func(p *Pipeline) { p.clock = c }
}

// New creates a Pipeline with the given stages and observability.
func New(e Extractor, r domain.CountryResolver, loaders []Loader, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor: e,
		resolver:  r,
		loaders:   loaders,
		logger:    logger,
		metrics:   metrics,
		clock:     clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckReadiness returns nil once a run has completed and every sink was written.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a run yet")
	}
	return nil
}

// LastRun returns the report of the most recent successful run.
func (p *Pipeline) LastRun() (Report, bool) {
	r := p.last.Load()
	if r == nil {
		return Report{}, false
	}
	return *r, true
}

// Run executes a single run. Nothing is loaded unless every earlier stage
// succeeded; the first sink error aborts the run.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	report := Report{RunID: uuid.NewString(), StartedAt: p.clock.Now()}
	logger := p.logger.With("run_id", report.RunID)
	logger.Info("pipeline started")

	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	var entries []domain.CountryEntry
	err := p.timed("resolve", func() (err error) {
		entries, err = p.resolver.Countries(ctx)
		return err
	})
	if err != nil {
		return report, fmt.Errorf("resolve countries: %w", err)
	}
	countries := domain.NewCountryTable(entries)
	logger.Info("country reference loaded", "countries", countries.Len())

	var raw []domain.RawRecord
	err = p.timed("extract", func() (err error) {
		raw, err = p.extractor.Extract(ctx)
		return err
	})
	if err != nil {
		return report, fmt.Errorf("extract: %w", err)
	}
	p.metrics.RecordsExtracted.Add(float64(len(raw)))
	report.Extracted = len(raw)
	logger.Info("raw records extracted", "records", len(raw))

	if p.rawLoader != nil {
		if err := p.timed("load_raw", func() error { return p.rawLoader.LoadRaw(ctx, raw) }); err != nil {
			return report, fmt.Errorf("load raw: %w", err)
		}
	}

	var ds domain.Dataset
	err = p.timed("normalize", func() (err error) {
		ds, err = Normalize(raw, countries)
		return err
	})
	if err != nil {
		return report, fmt.Errorf("normalize: %w", err)
	}
	p.recordRetention(ds)
	report.Retention = ds.Retention
	report.Loaded = len(ds.Records)
	report.MedianDuration = ds.MedianDuration
	report.ImputedDurations = ds.ImputedDurations
	logger.Info("normalization complete",
		"records", len(ds.Records),
		"annotated", len(ds.Annotated),
		"hoaxes", len(ds.Hoaxes),
		"madar", len(ds.Madar),
		"median_duration", ds.MedianDuration,
		"imputed_durations", ds.ImputedDurations,
	)

	err = p.timed("load", func() error {
		for _, l := range p.loaders {
			if err := l.Load(ctx, ds); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("load: %w", err)
	}
	p.metrics.RecordsLoaded.Add(float64(len(ds.Records)))

	report.FinishedAt = p.clock.Now()
	p.metrics.RunDuration.Set(report.FinishedAt.Sub(report.StartedAt).Seconds())
	p.last.Store(&report)
	p.ready.Store(true)
	logger.Info("pipeline finished", "duration", report.FinishedAt.Sub(report.StartedAt))
	return report, nil
}

// timed runs fn and observes its wall time under stage.
func (p *Pipeline) timed(stage string, fn func() error) error {
	start := p.clock.Now()
	err := fn()
	p.metrics.StageDuration.WithLabelValues(stage).Observe(p.clock.Since(start).Seconds())
	return err
}

func (p *Pipeline) recordRetention(ds domain.Dataset) {
	for _, st := range ds.Retention {
		if st.Excluded == 0 {
			continue
		}
		if st.Subset != "" {
			p.metrics.RecordsPartitioned.WithLabelValues(string(st.Subset)).Add(float64(st.Excluded))
			continue
		}
		p.metrics.RecordsDropped.WithLabelValues(st.Stage).Add(float64(st.Excluded))
		p.logger.Debug("records dropped", "stage", st.Stage, "records", st.Excluded)
	}
	p.metrics.DurationsImputed.Add(float64(ds.ImputedDurations))
	p.metrics.MedianDuration.Set(ds.MedianDuration)
}

// Report summarizes a completed run.
type Report struct {
	RunID            string             `json:"run_id"`
	StartedAt        time.Time          `json:"started_at"`
	FinishedAt       time.Time          `json:"finished_at"`
	Extracted        int                `json:"extracted"`
	Loaded           int                `json:"loaded"`
	MedianDuration   float64            `json:"median_duration_seconds"`
	ImputedDurations int                `json:"imputed_durations"`
	Retention        []domain.StageStat `json:"retention"`
}
