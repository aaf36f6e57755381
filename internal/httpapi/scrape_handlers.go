package httpapi

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

func (d *Deps) handleScrapeStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, d.ScrapeStatus.Load())
}

// handleScrapeRun kicks off one scrape pass in the background and returns
// immediately. The tracker's TryStart is the only admission gate, so a
// concurrent request or a poller tick cannot start an overlapping pass.
func (d *Deps) handleScrapeRun(w http.ResponseWriter, r *http.Request) {
	cfg := d.loadCfg()
	if cfg == nil || d.RunScrape == nil {
		WriteError(w, r, http.StatusServiceUnavailable, "unavailable", "scraping is not configured")
		return
	}

	if !d.ScrapeStatus.TryStart() {
		WriteError(w, r, http.StatusConflict, "already_running", "a scrape pass is already running")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		added, err := d.RunScrape(ctx, *cfg)
		d.ScrapeStatus.Finish(added, err)

		if err != nil {
			d.Log.Warn("manual scrape failed", zap.Error(err))
		} else {
			d.Log.Info("manual scrape ok", zap.Int("added", added))
		}
	}()

	WriteJSON(w, http.StatusAccepted, map[string]any{"started": true})
}
