package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

func Validate(cfg Config) error {
	var errs []string

	if cfg.App.Port <= 0 || cfg.App.Port > 65535 {
		errs = append(errs, "app.port must be 1..65535")
	}

	if strings.TrimSpace(cfg.Scorer.Script) == "" {
		errs = append(errs, "scorer.script is required")
	}
	if cfg.Scorer.TimeoutSeconds <= 0 {
		errs = append(errs, "scorer.timeout_seconds must be > 0")
	}
	if cfg.Scorer.FetchLimit < 0 {
		errs = append(errs, "scorer.fetch_limit must be >= 0")
	}

	if cfg.Scraper.Enabled {
		if strings.TrimSpace(cfg.Scraper.Script) == "" {
			errs = append(errs, "scraper.script is required when scraper.enabled=true")
		}
		if cfg.Scraper.TimeoutSeconds <= 0 {
			errs = append(errs, "scraper.timeout_seconds must be > 0")
		}
	}

	if cfg.Sources.Greenhouse.Enabled {
		for i, c := range cfg.Sources.Greenhouse.Companies {
			if strings.TrimSpace(c.Slug) == "" {
				errs = append(errs, fmt.Sprintf("sources.greenhouse.companies[%d].slug is required", i))
			}
		}
	}

	if cfg.Email.Enabled {
		if strings.TrimSpace(cfg.Email.IMAPHost) == "" {
			errs = append(errs, "email.imap_host is required when email.enabled=true")
		}
		if cfg.Email.IMAPPort == 0 {
			errs = append(errs, "email.imap_port is required when email.enabled=true")
		}
		if strings.TrimSpace(cfg.Email.Username) == "" {
			errs = append(errs, "email.username is required when email.enabled=true")
		}
		if strings.TrimSpace(cfg.Email.Mailbox) == "" {
			errs = append(errs, "email.mailbox is required when email.enabled=true")
		}
	}

	if cfg.Polling.ScrapeSeconds < 0 {
		errs = append(errs, "polling.scrape_seconds must be >= 0 (0 disables the poller)")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n- " + strings.Join(errs, "\n- "))
	}
	return nil
}

// SaveAtomic validates and writes the config with a .tmp/.bak swap so a
// crash mid-write never leaves a torn file.
func SaveAtomic(path string, cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	bak := path + ".bak"

	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}

	_ = os.Remove(bak)
	_ = os.Rename(path, bak)

	return os.Rename(tmp, path)
}
