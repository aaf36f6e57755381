package scrape

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"resumatch-engine/internal/config"
	"resumatch-engine/internal/domain"
	"resumatch-engine/internal/events"
	"resumatch-engine/internal/scrape/email"
	"resumatch-engine/internal/scrape/greenhouse"
	"resumatch-engine/internal/store"
)

type sourceResult struct {
	source string
	jobs   []domain.Job
}

// RunOnce runs every enabled fetcher concurrently and ingests whatever
// they found, one ingestion call per source. A failing source never
// cancels its siblings; the run is best effort.
func RunOnce(ctx context.Context, db *sql.DB, cfg config.Config, log *zap.Logger, hub *events.Hub) (added int, err error) {
	if log == nil {
		log = zap.NewNop()
	}

	var fetchers []Fetcher
	if cfg.Scraper.Enabled {
		fetchers = append(fetchers, &PythonFetcher{
			Python:   cfg.Scraper.Python,
			Script:   cfg.Scraper.Script,
			Query:    cfg.Scraper.Query,
			Location: cfg.Scraper.Location,
			Timeout:  time.Duration(cfg.Scraper.TimeoutSeconds) * time.Second,
		})
	}
	if cfg.Sources.Greenhouse.Enabled {
		fetchers = append(fetchers, greenhouse.New(greenhouse.Config{
			Companies: mapCompanies(cfg.Sources.Greenhouse.Companies),
		}, log))
	}
	if cfg.Email.Enabled {
		fetchers = append(fetchers, email.NewFetcher(cfg, log))
	}
	if len(fetchers) == 0 {
		return 0, nil
	}

	results := make(chan sourceResult, len(fetchers))

	var g errgroup.Group
	for _, f := range fetchers {
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			defer cancel()

			log.Info("fetcher running", zap.String("source", f.Name()))
			jobs, ferr := f.Fetch(fctx)
			if ferr != nil {
				log.Warn("fetcher failed", zap.String("source", f.Name()), zap.Error(ferr))
				return nil
			}
			results <- sourceResult{source: f.Name(), jobs: jobs}
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	ictx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	for res := range results {
		if len(res.jobs) == 0 {
			continue
		}
		n, ierr := store.IngestJobs(ictx, db, res.jobs)
		if ierr != nil {
			log.Error("ingest failed", zap.String("source", res.source),
				zap.Int("jobs", len(res.jobs)), zap.Error(ierr))
			err = ierr
			continue
		}
		log.Info("ingested", zap.String("source", res.source),
			zap.Int("fetched", len(res.jobs)), zap.Int("new", n))
		added += n
		if hub != nil && n > 0 {
			hub.Publish(events.JobCreated("", res.source, n))
		}
	}
	return added, err
}

func mapCompanies(in []config.Company) []greenhouse.Company {
	out := make([]greenhouse.Company, 0, len(in))
	for _, c := range in {
		out = append(out, greenhouse.Company{Slug: c.Slug, Name: c.Name})
	}
	return out
}
