package email

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"resumatch-engine/internal/config"
	"resumatch-engine/internal/domain"
	"resumatch-engine/internal/secrets"
)

// Fetcher reads unseen job-alert mails from the configured mailbox and
// parses them into Job records. The IMAP password comes from the OS
// keychain, never from config.
type Fetcher struct {
	cfg config.Config
	log *zap.Logger
}

func NewFetcher(cfg config.Config, log *zap.Logger) *Fetcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{cfg: cfg, log: log}
}

func (f *Fetcher) Name() string { return "email" }

func (f *Fetcher) Fetch(ctx context.Context) ([]domain.Job, error) {
	ec := f.cfg.Email

	password, err := secrets.GetIMAPPassword(secrets.IMAPKeyringAccount(f.cfg))
	if err != nil {
		return nil, fmt.Errorf("email fetch: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", ec.IMAPHost, ec.IMAPPort)
	c, err := dialAndLogin(ctx, addr, ec.Username, password)
	if err != nil {
		return nil, err
	}
	defer logoutAndClose(c)

	if err := selectMailbox(c, ec.Mailbox); err != nil {
		return nil, err
	}

	msgs, err := fetchUnseen(ctx, c, ec.MaxMessages)
	if err != nil {
		return nil, err
	}

	var jobs []domain.Job
	for _, m := range msgs {
		if !subjectMatches(m.Subject, ec.SearchSubjectAny) {
			continue
		}
		html := htmlPart(m.Raw)
		if html == "" {
			continue
		}
		parsed, perr := parseLinkedInAlertHTML(html)
		if perr != nil {
			f.log.Debug("alert parse failed", zap.String("subject", m.Subject), zap.Error(perr))
			continue
		}
		for i := range parsed {
			if parsed[i].PostedDate.IsZero() && !m.Date.IsZero() {
				parsed[i].PostedDate = m.Date.UTC()
			}
		}
		jobs = append(jobs, parsed...)
	}

	f.log.Info("email fetch done",
		zap.Int("messages", len(msgs)), zap.Int("jobs", len(jobs)))
	return jobs, nil
}

func subjectMatches(subject string, needles []string) bool {
	if len(needles) == 0 {
		return true
	}
	ls := strings.ToLower(subject)
	for _, needle := range needles {
		if strings.Contains(ls, strings.ToLower(strings.TrimSpace(needle))) {
			return true
		}
	}
	return false
}
