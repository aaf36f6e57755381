// Package httpapi exposes the engine over a small local HTTP surface.
package httpapi

import "net/http"

func NewMux(d *Deps) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("/api/jobs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  d.handleListJobs,
		http.MethodPost: d.handleIngestJobs,
	}))
	mux.HandleFunc("/api/jobs/", d.handleJobByID)

	mux.HandleFunc("/api/recommendations", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: d.handleListRecommendations,
	}))
	mux.HandleFunc("/api/recommendations/generate", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: d.handleGenerateRecommendations,
	}))

	mux.HandleFunc("/api/scrape/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: d.handleScrapeStatus,
	}))
	mux.HandleFunc("/api/scrape/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: d.handleScrapeRun,
	}))

	mux.HandleFunc("/api/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: d.handleGetConfig,
		http.MethodPut: d.handlePutConfig,
	}))
	mux.HandleFunc("/api/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: d.handleConfigPath,
	}))

	mux.HandleFunc("/api/secrets/imap", methodMux(map[string]http.HandlerFunc{
		http.MethodPost:   d.handleSetIMAPPassword,
		http.MethodDelete: d.handleDeleteIMAPPassword,
	}))

	mux.HandleFunc("/api/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: d.handleEvents,
	}))

	return mux
}
