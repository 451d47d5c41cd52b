// Package wikipedia resolves the ISO 3166 country reference from the
// ISO 3166-2 article's code table.
package wikipedia

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/couchcryptid/ufo-sightings-etl/internal/domain"
	"github.com/couchcryptid/ufo-sightings-etl/internal/observability"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("internal/adapter/wikipedia")

const metricsSource = "iso3166"

// Resolver implements domain.CountryResolver by scraping the first
// wikitable of the reference page.
type Resolver struct {
	client  *resty.Client
	url     string
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewResolver creates a resolver for the given reference page.
func NewResolver(url string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Resolver {
	return &Resolver{
		client:  resty.New().SetTimeout(timeout),
		url:     url,
		metrics: metrics,
		logger:  logger,
	}
}

// Countries returns the (code, name) pairs in table order. Names are not
// corrected here; see [domain.NewCountryTable].
func (r *Resolver) Countries(ctx context.Context) ([]domain.CountryEntry, error) {
	ctx, span := tracer.Start(ctx, "Countries")
	defer span.End()

	entries, err := r.countries(ctx)
	if err != nil {
		r.metrics.SourceRequests.WithLabelValues(metricsSource, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	r.metrics.SourceRequests.WithLabelValues(metricsSource, "success").Inc()
	span.SetAttributes(attribute.Int("countries", len(entries)))
	r.logger.Debug("iso 3166 table scraped", "countries", len(entries))
	return entries, nil
}

func (r *Resolver) countries(ctx context.Context) ([]domain.CountryEntry, error) {
	res, err := r.client.R().SetContext(ctx).Get(r.url)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w: %w", r.url, domain.ErrSourceUnavailable, err)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("get %s: status %d: %w", r.url, res.StatusCode(), domain.ErrSourceUnavailable)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w: %w", r.url, domain.ErrSourceUnavailable, err)
	}

	table := doc.Find("table.wikitable").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("no wikitable on %s: %w", r.url, domain.ErrSourceUnavailable)
	}

	// Header links sit in th cells; only data cells carry codes and names.
	entries := parseAnchors(table.Find("tr td a").Map(func(_ int, a *goquery.Selection) string {
		return strings.TrimSpace(a.Text())
	}))
	if len(entries) == 0 {
		return nil, fmt.Errorf("no country rows on %s: %w", r.url, domain.ErrSourceUnavailable)
	}
	return entries, nil
}

// parseAnchors pairs each two-letter code anchor with the anchor that
// follows it, which holds the country name.
func parseAnchors(texts []string) []domain.CountryEntry {
	var entries []domain.CountryEntry
	for i := 0; i+1 < len(texts); i++ {
		if !isAlpha2(texts[i]) || isAlpha2(texts[i+1]) || texts[i+1] == "" {
			continue
		}
		entries = append(entries, domain.CountryEntry{Code: texts[i], Name: texts[i+1]})
		i++
	}
	return entries
}

func isAlpha2(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
