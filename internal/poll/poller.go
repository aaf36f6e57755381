package poll

import (
	"context"
	"database/sql"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"resumatch-engine/internal/config"
	"resumatch-engine/internal/events"
	"resumatch-engine/internal/scrape"
)

// Start runs the scrape pipeline on the configured interval until ctx is
// done. A zero interval disables the poller. The tracker arbitrates with
// manual runs from the API; a tick that loses the slot is skipped.
func Start(ctx context.Context, db *sql.DB, cfgVal *atomic.Value, tracker *scrape.Tracker, hub *events.Hub, log *zap.Logger) {
	go func() {
		for {
			cfgAny := cfgVal.Load()
			if cfgAny == nil {
				return
			}
			cfg := cfgAny.(config.Config)
			if cfg.Polling.ScrapeSeconds <= 0 {
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(cfg.Polling.ScrapeSeconds) * time.Second):
			}

			if !tracker.TryStart() {
				continue
			}
			added, err := scrape.RunOnce(ctx, db, cfg, log, hub)
			tracker.Finish(added, err)

			if err != nil {
				log.Warn("scrape poll failed", zap.Error(err))
			} else {
				log.Info("scrape poll ok", zap.Int("added", added))
			}
		}
	}()
}
