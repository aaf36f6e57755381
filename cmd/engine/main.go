// Command engine is the local resume-to-jobs matching daemon: it scrapes
// postings, stores them in SQLite, and serves recommendation generation
// over a local HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"resumatch-engine/internal/artifact"
	"resumatch-engine/internal/config"
	"resumatch-engine/internal/events"
	"resumatch-engine/internal/httpapi"
	"resumatch-engine/internal/logger"
	"resumatch-engine/internal/poll"
	"resumatch-engine/internal/recommend"
	"resumatch-engine/internal/score"
	"resumatch-engine/internal/scrape"
	"resumatch-engine/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "engine:", err)
		os.Exit(1)
	}
}

func run() error {
	dataDir, err := resolveDataDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	// One engine per data dir. A second instance would fight over the
	// SQLite file and the artifact exchange.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire instance lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another engine instance is already running in %s", dataDir)
	}
	defer func() { _ = lock.Unlock() }()

	cfgPath, err := config.EnsureUserConfig(dataDir, defaultConfigPath())
	if err != nil {
		return fmt.Errorf("bootstrap config: %w", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", cfgPath, err)
	}
	if cfg.App.DataDir == "" {
		cfg.App.DataDir = dataDir
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	log, err := logger.New(cfg.App.LogJSON, cfg.App.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := store.Open(filepath.Join(dataDir, "engine.db"))
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()
	if err := store.Migrate(db.Pool); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	hub := events.NewHub()

	cfgVal := &atomic.Value{}
	cfgVal.Store(cfg)
	scrapeStatus := &scrape.Tracker{}

	exchange := artifact.NewExchange(filepath.Join(dataDir, "exchange"), log)
	orch := &recommend.Orchestrator{
		DB:       db.Pool,
		Exchange: exchange,
		Invoker: &score.PythonInvoker{
			Python:  cfg.Scorer.Python,
			Script:  cfg.Scorer.Script,
			Timeout: time.Duration(cfg.Scorer.TimeoutSeconds) * time.Second,
			Log:     log,
		},
		Hub: hub,
		Log: log,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poll.Start(ctx, db.Pool, cfgVal, scrapeStatus, hub, log)

	deps := &httpapi.Deps{
		DB:           db.Pool,
		Hub:          hub,
		Log:          log,
		CfgVal:       cfgVal,
		ScrapeStatus: scrapeStatus,
		UserCfgPath:  cfgPath,
		LoadCfg:      func() (config.Config, error) { return config.Load(cfgPath) },
		Generate:     orch.Generate,
		RunScrape: func(ctx context.Context, cfg config.Config) (int, error) {
			return scrape.RunOnce(ctx, db.Pool, cfg, log, hub)
		},
	}

	handler := httpapi.Chain(httpapi.NewMux(deps),
		httpapi.RequestID,
		httpapi.AccessLog(log),
		httpapi.Recover(log),
		httpapi.Cors,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", cfg.App.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("engine listening",
			zap.String("addr", srv.Addr),
			zap.String("data_dir", dataDir))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func resolveDataDir() (string, error) {
	if v := os.Getenv("RESUMATCH_DATA_DIR"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".resumatch"), nil
}

func defaultConfigPath() string {
	if v := os.Getenv("RESUMATCH_DEFAULT_CONFIG"); v != "" {
		return v
	}
	return filepath.Join("config", "config.yml")
}
