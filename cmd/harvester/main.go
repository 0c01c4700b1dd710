package main

import (
	"context"
	"net/http"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/user/fut-harvester/internal/api"
	"github.com/user/fut-harvester/internal/config"
	"github.com/user/fut-harvester/internal/crawler"
	"github.com/user/fut-harvester/internal/fetch"
	"github.com/user/fut-harvester/internal/monitoring"
	"github.com/user/fut-harvester/internal/storage"
)

func main() {
	// Initialize structured logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("could not load config", zap.Error(err))
	}

	// Initialize Storage Layer
	archive, err := storage.NewRecordArchive(filepath.Join(cfg.DataDir, "players"))
	if err != nil {
		logger.Fatal("failed to open record archive", zap.Error(err))
	}
	var mirror *storage.PostgresMirror
	if cfg.PostgresURL != "" {
		mirror, err = storage.NewPostgresMirror(cfg.PostgresURL)
		if err != nil {
			logger.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer mirror.Close()
	}

	metrics := monitoring.NewMetrics()
	session := fetch.NewSession(fetch.Options{
		Timeout:   time.Duration(cfg.FetchTimeout) * time.Second,
		Retries:   cfg.MaxRetries,
		RetryWait: time.Duration(cfg.RetryWaitMs) * time.Millisecond,
		UserAgent: cfg.UserAgent,
		Platform:  cfg.Platform,
		SessionID: cfg.SessionID,
	})

	// Ops server for metrics and progress while the run is in flight
	server := api.NewServer(cfg, archive, mirror, logger)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("ops server stopped", zap.Error(err))
		}
	}()
	logger.Info("ops server started", zap.String("port", cfg.ServerPort))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, session, archive, mirror, metrics, logger); err != nil {
		logger.Error("harvest interrupted", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("ops server forced to shutdown", zap.Error(err))
	}
	logger.Info("harvester exiting")
}

// run executes the configured pipeline stages in order. Stages exchange
// data only through files under the data dir, so each one can also run
// alone against the artifacts of a previous invocation.
func run(ctx context.Context, cfg *config.Config, session *fetch.Session, archive *storage.RecordArchive, mirror *storage.PostgresMirror, metrics *monitoring.Metrics, logger *zap.Logger) error {
	urlsPath := filepath.Join(cfg.DataDir, "player_urls.csv")
	playersPath := filepath.Join(cfg.DataDir, "player_data.csv")
	pricesPath := filepath.Join(cfg.DataDir, "price_data.csv")

	for _, stage := range strings.Split(cfg.Stages, ",") {
		switch strings.TrimSpace(stage) {
		case "listing":
			sink, err := storage.NewCSVSink(urlsPath, storage.RefsHeader)
			if err != nil {
				return err
			}
			lc := crawler.NewListingCrawler(session, cfg.ListingURL, cfg.BaseURL, cfg.ListingWorkers, metrics, logger)
			total, err := lc.Run(ctx, cfg.ListingPages, sink)
			sink.Close()
			if err != nil {
				return err
			}
			logger.Info("listing stage finished", zap.Int("players", total))

		case "details":
			refs, err := storage.ReadRefs(urlsPath)
			if err != nil {
				return err
			}
			dc := crawler.NewDetailCrawler(session, archive, mirror, cfg.DetailWorkers, metrics, logger)
			if err := dc.Run(ctx, refs); err != nil {
				return err
			}
			logger.Info("details stage finished")

		case "aggregate":
			count, err := storage.ExportPlayers(archive, playersPath, logger)
			if err != nil {
				return err
			}
			logger.Info("aggregate stage finished", zap.Int("players", count))

		case "prices":
			ids, err := storage.ReadRatedIDs(playersPath)
			if err != nil {
				return err
			}
			sink, err := storage.NewCSVSink(pricesPath, storage.PricesHeader)
			if err != nil {
				return err
			}
			pf := crawler.NewPriceFetcher(session, cfg.PriceURL, cfg.PriceWorkers, metrics, logger)
			err = pf.Run(ctx, ids, cfg.MinRating, sink)
			sink.Close()
			if err != nil {
				return err
			}
			logger.Info("prices stage finished")

		default:
			logger.Warn("unknown stage, skipping", zap.String("stage", stage))
		}
	}
	return nil
}
