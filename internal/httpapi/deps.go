package httpapi

import (
	"context"
	"database/sql"
	"sync/atomic"

	"go.uber.org/zap"

	"resumatch-engine/internal/config"
	"resumatch-engine/internal/events"
	"resumatch-engine/internal/recommend"
	"resumatch-engine/internal/score"
	"resumatch-engine/internal/scrape"
)

type Deps struct {
	DB  *sql.DB
	Hub *events.Hub
	Log *zap.Logger

	CfgVal       *atomic.Value // stores config.Config
	ScrapeStatus *scrape.Tracker

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// Pipeline entrypoints (injected for testability)
	Generate  func(ctx context.Context, req recommend.Request) (*score.Result, error)
	RunScrape func(ctx context.Context, cfg config.Config) (added int, err error)
}

func (d *Deps) loadCfg() *config.Config {
	if d.CfgVal == nil {
		return nil
	}
	if cfg, ok := d.CfgVal.Load().(config.Config); ok {
		return &cfg
	}
	return nil
}
