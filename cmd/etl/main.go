package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/ufo-sightings-etl/internal/adapter/csvfile"
	httpadapter "github.com/couchcryptid/ufo-sightings-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/ufo-sightings-etl/internal/adapter/kafka"
	"github.com/couchcryptid/ufo-sightings-etl/internal/adapter/nuforc"
	"github.com/couchcryptid/ufo-sightings-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/ufo-sightings-etl/internal/adapter/wikipedia"
	"github.com/couchcryptid/ufo-sightings-etl/internal/config"
	"github.com/couchcryptid/ufo-sightings-etl/internal/observability"
	"github.com/couchcryptid/ufo-sightings-etl/internal/pipeline"
	"github.com/spf13/cobra"
)

var writeRaw bool

var rootCmd = &cobra.Command{
	Use:           "sightings-etl [--write-raw]",
	Short:         "Scrapes NUFORC sighting reports and writes a cleaned table.",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return run(cmd.Context(), cfg, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.Flags().BoolVar(&writeRaw, "write-raw", false, "Write the scraped records to RAW_DATA_FILE before cleaning.")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("run failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	rawStore := csvfile.NewRawStore(filepath.Join(cfg.OutputDir, cfg.RawDataFile), logger)

	var extractor pipeline.Extractor = nuforc.NewScraper(cfg, metrics, logger)
	if cfg.UseRawCache {
		extractor = rawStore
		logger.Info("reading raw records from cache", "path", filepath.Join(cfg.OutputDir, cfg.RawDataFile))
	}
	resolver := wikipedia.NewResolver(cfg.ISOReferenceURL, cfg.ScrapeTimeout, metrics, logger)

	loaders, closers, err := buildLoaders(ctx, cfg, logger)
	defer func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				logger.Error("sink close error", "error", err)
			}
		}
	}()
	if err != nil {
		return err
	}

	var opts []pipeline.Option
	if writeRaw && !cfg.UseRawCache {
		opts = append(opts, pipeline.WithRawLoader(rawStore))
	}
	p := pipeline.New(extractor, resolver, loaders, logger, metrics, opts...)

	if cfg.HTTPAddr != "" {
		srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
		defer shutdown(srv, cfg, logger)
	}

	report, err := p.Run(ctx)
	if err != nil {
		return err
	}
	pipeline.RenderRetention(out, report)

	if cfg.MetricsTextfile != "" {
		if err := observability.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Error("metrics textfile write error", "error", err)
		}
	}
	return nil
}

// buildLoaders returns the configured sinks in run order. The CSV table comes
// last so it is only replaced once every other sink has accepted the run.
func buildLoaders(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]pipeline.Loader, []io.Closer, error) {
	var (
		loaders []pipeline.Loader
		closers []io.Closer
	)
	if cfg.SQLitePath != "" {
		store, err := sqlite.Open(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, closers, err
		}
		closers = append(closers, store)
		loaders = append(loaders, store)
		logger.Info("sqlite sink enabled", "path", cfg.SQLitePath)
	}
	if cfg.KafkaEnabled() {
		writer := kafkaadapter.NewWriter(cfg, logger)
		closers = append(closers, writer)
		loaders = append(loaders, writer)
		logger.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic, "batch_size", cfg.BatchSize)
	}
	loaders = append(loaders, csvfile.NewTableWriter(cfg.OutputDir, logger))
	return loaders, closers, nil
}

func shutdown(srv *httpadapter.Server, cfg *config.Config, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}
