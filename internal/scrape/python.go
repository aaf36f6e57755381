package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"resumatch-engine/internal/domain"
	"resumatch-engine/internal/subproc"
)

// PythonFetcher invokes the external scraping procedure with a search
// query and location and reads {success, jobs} from stdout. Same output
// cap and stderr policy as the scorer boundary.
type PythonFetcher struct {
	Python   string
	Script   string
	Query    string
	Location string
	Timeout  time.Duration
}

func (f *PythonFetcher) Name() string { return "scraper" }

func (f *PythonFetcher) Fetch(ctx context.Context) ([]domain.Job, error) {
	bin := f.Python
	if bin == "" {
		bin = "python3"
	}
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	out, err := subproc.Run(ctx, subproc.Options{Timeout: timeout},
		bin, f.Script, f.Query, f.Location)
	if err != nil {
		return nil, fmt.Errorf("scraper: %w", err)
	}

	switch {
	case out.TimedOut:
		return nil, fmt.Errorf("scraper exceeded %s", timeout)
	case out.TooLarge:
		return nil, fmt.Errorf("scraper output exceeded cap")
	}

	stdout := bytes.TrimSpace(out.Stdout)
	if len(stdout) == 0 {
		if out.Stderr != "" {
			return nil, fmt.Errorf("scraper: %s", out.Stderr)
		}
		if out.ExitErr != nil {
			return nil, fmt.Errorf("scraper: %w", out.ExitErr)
		}
		return nil, fmt.Errorf("scraper produced no output")
	}

	var payload struct {
		Success bool         `json:"success"`
		Jobs    []domain.Job `json:"jobs"`
		Error   string       `json:"error"`
	}
	if err := json.Unmarshal(stdout, &payload); err != nil {
		return nil, fmt.Errorf("scraper: parse output: %w", err)
	}
	if !payload.Success {
		msg := payload.Error
		if msg == "" {
			msg = "scraping procedure reported failure"
		}
		return nil, fmt.Errorf("scraper: %s", msg)
	}
	return payload.Jobs, nil
}
