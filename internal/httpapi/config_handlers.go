package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"resumatch-engine/internal/config"
)

func (d *Deps) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := d.loadCfg()
	if cfg == nil {
		WriteError(w, r, http.StatusInternalServerError, "internal_error", "config not loaded")
		return
	}
	writeJSON(w, cfg)
}

// handlePutConfig validates, saves atomically, then swaps the in-memory
// copy so the poller and handlers pick up the change without a restart.
func (d *Deps) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	var cfg config.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	if err := config.SaveAtomic(d.UserCfgPath, cfg); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_config", err.Error())
		return
	}

	// Re-read what was written so the stored copy is exactly what is on
	// disk.
	if d.LoadCfg != nil {
		fresh, err := d.LoadCfg()
		if err != nil {
			d.Log.Error("reload config after save", zap.Error(err))
			WriteError(w, r, http.StatusInternalServerError, "internal_error", "saved but could not reload config")
			return
		}
		cfg = fresh
	}
	d.CfgVal.Store(cfg)

	writeJSON(w, map[string]any{"ok": true})
}

func (d *Deps) handleConfigPath(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"path": d.UserCfgPath})
}
