// Package nuforc scrapes the public NUFORC event index and its monthly report pages.
package nuforc

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/couchcryptid/ufo-sightings-etl/internal/config"
	"github.com/couchcryptid/ufo-sightings-etl/internal/domain"
	"github.com/couchcryptid/ufo-sightings-etl/internal/observability"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("internal/adapter/nuforc")

const (
	metricsSource = "nuforc"
	// reportColumns is the number of cells in a month page row.
	reportColumns = 7

	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Scraper implements pipeline.Extractor against the NUFORC web reports.
type Scraper struct {
	client    *resty.Client
	baseURL   string
	indexPage string
	retries   int
	backoff   time.Duration
	limiter   *rate.Limiter
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewScraper creates a scraper for the configured NUFORC site.
func NewScraper(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Scraper {
	return &Scraper{
		client:    resty.New().SetTimeout(cfg.ScrapeTimeout),
		baseURL:   cfg.NUFORCBaseURL,
		indexPage: cfg.NUFORCIndexPage,
		retries:   cfg.ScrapeRetries,
		backoff:   initialBackoff,
		limiter:   rate.NewLimiter(rate.Limit(cfg.ScrapeRate), 1),
		metrics:   metrics,
		logger:    logger,
	}
}

// Extract fetches every month page listed on the index and returns their
// rows in index order. Any failed page aborts the scrape.
func (s *Scraper) Extract(ctx context.Context) ([]domain.RawRecord, error) {
	ctx, span := tracer.Start(ctx, "Extract")
	defer span.End()

	pages, err := s.MonthPages(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	s.logger.Info("nuforc index scraped", "pages", len(pages))

	var records []domain.RawRecord
	for i, page := range pages {
		rows, err := s.scrapeMonth(ctx, page)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		records = append(records, rows...)
		s.logger.Debug("month page scraped", "page", page, "rows", len(rows), "progress", fmt.Sprintf("%d/%d", i+1, len(pages)))
	}

	span.SetAttributes(attribute.Int("records", len(records)))
	return records, nil
}

// MonthPages returns the absolute URLs of the month pages linked from the index.
func (s *Scraper) MonthPages(ctx context.Context) ([]string, error) {
	doc, err := s.fetch(ctx, s.baseURL+s.indexPage)
	if err != nil {
		return nil, err
	}

	var pages []string
	doc.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		href, ok := row.Find("a").First().Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		pages = append(pages, s.baseURL+strings.TrimSpace(href))
	})

	if len(pages) == 0 {
		return nil, fmt.Errorf("index %s lists no month pages: %w", s.indexPage, domain.ErrSourceUnavailable)
	}
	return pages, nil
}

func (s *Scraper) scrapeMonth(ctx context.Context, page string) ([]domain.RawRecord, error) {
	ctx, span := tracer.Start(ctx, "scrapeMonth")
	defer span.End()
	span.SetAttributes(attribute.String("page_url", page))

	doc, err := s.fetch(ctx, page)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var records []domain.RawRecord
	doc.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < reportColumns {
			return
		}
		text := func(i int) string { return strings.TrimSpace(cells.Eq(i).Text()) }
		records = append(records, domain.RawRecord{
			DateTime: text(0),
			City:     text(1),
			State:    text(2),
			Shape:    text(3),
			Duration: text(4),
			Summary:  text(5),
			Posted:   text(6),
			Source:   page,
		})
	})
	return records, nil
}

// fetch downloads and parses one page, retrying transport failures and 5xx
// responses up to the configured number of extra attempts.
func (s *Scraper) fetch(ctx context.Context, url string) (*goquery.Document, error) {
	backoff := s.backoff
	for attempt := 0; ; attempt++ {
		doc, transient, err := s.fetchOnce(ctx, url)
		if err == nil || !transient || attempt >= s.retries {
			return doc, err
		}
		s.logger.Warn("page fetch failed, retrying", "url", url, "attempt", attempt+1, "backoff", backoff, "error", err)
		if !retry.SleepWithContext(ctx, backoff) {
			return nil, fmt.Errorf("get %s: %w", url, ctx.Err())
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
}

// fetchOnce makes a single rate-limited request. transient reports whether
// the failure is worth another attempt.
func (s *Scraper) fetchOnce(ctx context.Context, url string) (doc *goquery.Document, transient bool, err error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, false, fmt.Errorf("wait for rate limiter: %w", err)
	}

	res, err := s.client.R().SetContext(ctx).Get(url)
	if err != nil {
		s.metrics.SourceRequests.WithLabelValues(metricsSource, "error").Inc()
		return nil, ctx.Err() == nil, fmt.Errorf("get %s: %w: %w", url, domain.ErrSourceUnavailable, err)
	}
	if res.StatusCode() != http.StatusOK {
		s.metrics.SourceRequests.WithLabelValues(metricsSource, "error").Inc()
		return nil, res.StatusCode() >= http.StatusInternalServerError,
			fmt.Errorf("get %s: status %d: %w", url, res.StatusCode(), domain.ErrSourceUnavailable)
	}

	doc, err = goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		s.metrics.SourceRequests.WithLabelValues(metricsSource, "error").Inc()
		return nil, false, fmt.Errorf("parse %s: %w: %w", url, domain.ErrSourceUnavailable, err)
	}
	s.metrics.SourceRequests.WithLabelValues(metricsSource, "success").Inc()
	return doc, false, nil
}
