// Package greenhouse scrapes public Greenhouse job boards into Job
// records for ingestion.
package greenhouse

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"resumatch-engine/internal/domain"
	"resumatch-engine/internal/scrape/util"
)

const defaultBaseURL = "https://boards.greenhouse.io"

type Config struct {
	Companies []Company
	BaseURL   string // test override; defaultBaseURL when empty
}

type Company struct {
	Slug string // boards.greenhouse.io/<slug>
	Name string // display name
}

type Fetcher struct {
	cfg Config
	hc  *http.Client
	lim *util.HostLimiter
	log *zap.Logger
}

func New(cfg Config, log *zap.Logger) *Fetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{
		cfg: cfg,
		hc:  &http.Client{Timeout: 20 * time.Second},
		lim: util.NewHostLimiter(2, 4),
		log: log,
	}
}

func (f *Fetcher) Name() string { return "greenhouse" }

func (f *Fetcher) Fetch(ctx context.Context) (jobs []domain.Job, err error) {
	for _, co := range f.cfg.Companies {
		found, cerr := f.fetchCompany(ctx, co)
		if cerr != nil {
			// one board being down should not fail the whole run
			f.log.Warn("board fetch failed",
				zap.String("slug", co.Slug), zap.Error(cerr))
			continue
		}
		jobs = append(jobs, found...)
	}
	return jobs, nil
}

func (f *Fetcher) fetchCompany(ctx context.Context, co Company) ([]domain.Job, error) {
	boardURL := fmt.Sprintf("%s/%s", f.cfg.BaseURL, co.Slug)

	doc, err := f.get(ctx, boardURL)
	if err != nil {
		return nil, fmt.Errorf("board %s: %w", co.Slug, err)
	}

	seen := map[string]bool{}
	var jobs []domain.Job

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}

		abs := href
		if strings.HasPrefix(href, "/") {
			abs = f.cfg.BaseURL + href
		}
		if !strings.Contains(strings.ToLower(abs), "/jobs/") {
			return
		}
		if extractJobID(abs) == "" {
			return
		}
		if seen[abs] {
			return
		}
		seen[abs] = true

		title := cleanText(a.Text())
		if looksLikeJunkTitle(title) {
			title = ""
		}

		jobs = append(jobs, domain.Job{
			Title:   title,
			Company: co.Name,
			URL:     abs,
			Source:  "greenhouse",
		})
	})

	// Hydrate details by fetching each job page; a failed hydrate keeps
	// the minimal entry.
	out := jobs[:0]
	for i := range jobs {
		if err := f.hydrate(ctx, &jobs[i]); err != nil {
			f.log.Debug("hydrate failed", zap.String("url", jobs[i].URL), zap.Error(err))
		}
		if jobs[i].Title != "" {
			out = append(out, jobs[i])
		}
	}
	return out, nil
}

func (f *Fetcher) hydrate(ctx context.Context, j *domain.Job) error {
	doc, err := f.get(ctx, j.URL)
	if err != nil {
		return err
	}

	if j.Title == "" {
		j.Title = cleanText(doc.Find("h1").First().Text())
	}
	if loc := cleanText(doc.Find(".location").First().Text()); loc != "" {
		j.Location = loc
	}
	if sel := doc.Find("#content").First(); sel.Length() > 0 {
		// plain text, not HTML: the description feeds the scorer
		j.Description = cleanText(sel.Text())
	}
	if j.PostedDate.IsZero() {
		j.PostedDate = time.Now().UTC()
	}
	return nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) (*goquery.Document, error) {
	if err := f.lim.WaitURL(ctx, rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "ResuMatch/1.0 (+local)")

	res, err := f.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("status %d", res.StatusCode)
	}
	return goquery.NewDocumentFromReader(res.Body)
}

func extractJobID(u string) string {
	parts := strings.Split(u, "/jobs/")
	if len(parts) < 2 {
		return ""
	}
	id := ""
	for _, r := range parts[1] {
		if r < '0' || r > '9' {
			break
		}
		id += string(r)
	}
	return id
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}

func looksLikeJunkTitle(t string) bool {
	l := strings.ToLower(t)
	return strings.Contains(l, "view") || strings.Contains(l, "apply")
}
