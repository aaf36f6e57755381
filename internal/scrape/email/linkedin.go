package email

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"resumatch-engine/internal/domain"
)

var (
	reSalary = regexp.MustCompile(`\$\s?\d[\d,]*(?:K|M)?\s*(?:-\s*\$\s?\d[\d,]*(?:K|M)?)?\s*/\s*year`)
	reJobID  = regexp.MustCompile(`/jobs/view/(\d+)`)
)

// parseLinkedInAlertHTML extracts job cards from a LinkedIn alert mail.
// Several anchors usually point at the same job id (logo, title, body);
// they are merged by id so a text-less logo anchor never shadows the
// titled one.
func parseLinkedInAlertHTML(htmlBody string) ([]domain.Job, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return nil, err
	}

	byID := map[string]*domain.Job{}
	var order []string

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}

		lh := strings.ToLower(href)
		if !strings.Contains(lh, "/jobs/view/") || !strings.Contains(lh, "linkedin.com") {
			return
		}

		jobURL := canonicalJobURL(href)
		if jobURL == "" {
			return
		}

		key := jobURL
		if m := reJobID.FindStringSubmatch(jobURL); m != nil {
			key = m[1]
		}

		j, ok := byID[key]
		if !ok {
			j = &domain.Job{URL: jobURL, Source: "linkedin-email"}
			byID[key] = j
			order = append(order, key)
		}

		if t := clean(a.Text()); betterTitle(t, j.Title) {
			j.Title = t
		}

		// the surrounding card carries "Company · Location"
		card := a.Closest("table")
		if card.Length() == 0 {
			card = a.Closest("tr")
		}
		if card.Length() == 0 {
			card = a.Parent()
		}

		card.Find("p").Each(func(_ int, p *goquery.Selection) {
			t := clean(p.Text())
			if t == "" {
				return
			}
			if j.Company == "" && j.Location == "" && strings.Contains(t, " · ") {
				parts := strings.SplitN(t, " · ", 2)
				j.Company = strings.TrimSpace(parts[0])
				j.Location = strings.TrimSpace(parts[1])
			}
		})

		if j.Salary == "" {
			if m := reSalary.FindString(clean(card.Text())); m != "" {
				j.Salary = strings.TrimSpace(m)
			}
		}
	})

	out := make([]domain.Job, 0, len(byID))
	for _, key := range order {
		j := byID[key]
		if j.Title == "" || j.Company == "" {
			continue
		}
		out = append(out, *j)
	}
	return out, nil
}

// canonicalJobURL strips tracking junk and resolves redirect wrappers.
func canonicalJobURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	// alert links sometimes wrap the target in a ?url= redirect
	if target := u.Query().Get("url"); target != "" {
		if tu, err := url.Parse(target); err == nil && tu.Host != "" {
			u = tu
		}
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

func betterTitle(candidate, current string) bool {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" || strings.Contains(candidate, " · ") {
		return false
	}
	lc := strings.ToLower(candidate)
	if strings.HasPrefix(lc, "see ") || lc == "view job" || lc == "apply" {
		return false
	}
	return len(candidate) > len(current)
}

func clean(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}
