package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"resumatch-engine/internal/secrets"
)

// handleSetIMAPPassword stores the mail password in the OS keychain. The
// password never touches the config file or the database.
func (d *Deps) handleSetIMAPPassword(w http.ResponseWriter, r *http.Request) {
	cfg := d.loadCfg()
	if cfg == nil {
		WriteError(w, r, http.StatusInternalServerError, "internal_error", "config not loaded")
		return
	}
	if strings.TrimSpace(cfg.Email.Username) == "" || strings.TrimSpace(cfg.Email.IMAPHost) == "" {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "set email.username and email.imap_host first")
		return
	}

	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	account := secrets.IMAPKeyringAccount(*cfg)
	if err := secrets.SetIMAPPassword(account, body.Password); err != nil {
		d.Log.Error("store imap password", zap.Error(err))
		WriteError(w, r, http.StatusBadRequest, "keyring_error", err.Error())
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}

func (d *Deps) handleDeleteIMAPPassword(w http.ResponseWriter, r *http.Request) {
	cfg := d.loadCfg()
	if cfg == nil {
		WriteError(w, r, http.StatusInternalServerError, "internal_error", "config not loaded")
		return
	}
	account := secrets.IMAPKeyringAccount(*cfg)
	if err := secrets.DeleteIMAPPassword(account); err != nil {
		WriteError(w, r, http.StatusNotFound, "keyring_error", err.Error())
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}
