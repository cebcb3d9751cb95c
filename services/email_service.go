package services

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/officesports/matchday/config"
	"github.com/officesports/matchday/repositories"
)

// Notifier is the delivery contract the email flow depends on. draftOnly asks
// the backend to queue the message without sending, where supported; the
// SMTP notifier logs and skips delivery in that case.
type Notifier interface {
	Send(ctx context.Context, recipients []string, subject, body string, draftOnly bool) error
}

// FixtureEmailResult reports one fixture's notification attempt during a
// category batch send.
type FixtureEmailResult struct {
	FixtureID int     `json:"fixture_id"`
	Sent      bool    `json:"sent"`
	Error     *string `json:"error,omitempty"`
}

type EmailService interface {
	SendFixtureEmails(ctx context.Context, fixtureID int, draftOnly bool) error
	SendCategoryEmails(ctx context.Context, category string, draftOnly bool) ([]FixtureEmailResult, error)
}

type emailService struct {
	fixtureRepo repositories.FixtureRepository
	notifier    Notifier
	logger      *slog.Logger
}

func NewEmailService(fixtureRepo repositories.FixtureRepository, notifier Notifier, logger *slog.Logger) EmailService {
	return &emailService{fixtureRepo: fixtureRepo, notifier: notifier, logger: logger}
}

// SendFixtureEmails notifies the participants of one per-side fixture row and
// marks the row once delivery succeeds.
func (s *emailService) SendFixtureEmails(ctx context.Context, fixtureID int, draftOnly bool) error {
	side, err := s.fixtureRepo.GetSide(ctx, fixtureID)
	if err != nil {
		if errors.Is(err, repositories.ErrFixtureNotFound) {
			return ErrFixtureNotFound
		}
		return err
	}
	if len(side.Emails) == 0 {
		return fmt.Errorf("%w: fixture %d has no recipient emails", ErrValidationFailed, fixtureID)
	}

	subject := fmt.Sprintf("Match Schedule - %s", side.Category)
	body := fixtureEmailBody(side)

	if err := s.notifier.Send(ctx, side.Emails, subject, body, draftOnly); err != nil {
		return fmt.Errorf("failed to send fixture %d emails: %w", fixtureID, err)
	}
	if err := s.fixtureRepo.MarkEmailsSent(ctx, fixtureID); err != nil {
		return err
	}

	s.logger.Info("fixture emails sent",
		slog.Int("fixture_id", fixtureID),
		slog.Int("recipients", len(side.Emails)),
		slog.Bool("draft_only", draftOnly),
	)
	return nil
}

// SendCategoryEmails fans out over every unsent fixture in a category with a
// bounded worker count. A failed fixture does not abort the batch; each
// fixture's outcome is reported individually.
func (s *emailService) SendCategoryEmails(ctx context.Context, category string, draftOnly bool) ([]FixtureEmailResult, error) {
	fixtures, err := s.fixtureRepo.ListUnsent(ctx, category)
	if err != nil {
		return nil, err
	}

	results := make([]FixtureEmailResult, len(fixtures))
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, fixture := range fixtures {
		i, fixture := i, fixture
		g.Go(func() error {
			result := FixtureEmailResult{FixtureID: fixture.ID, Sent: true}
			if sendErr := s.SendFixtureEmails(gCtx, fixture.ID, draftOnly); sendErr != nil {
				msg := sendErr.Error()
				result.Sent = false
				result.Error = &msg
			}
			mu.Lock()
			results[i] = result
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func fixtureEmailBody(side *repositories.FixtureSide) string {
	location := "TBD"
	if side.Location != nil {
		location = *side.Location
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Dear %s,\n\n", strings.Join(side.Names, ", ")))
	b.WriteString("Your match has been scheduled. Details below:\n\n")
	b.WriteString(fmt.Sprintf("- Category: %s\n", side.Category))
	b.WriteString(fmt.Sprintf("- Time Slot: %s\n", side.TimeSlot))
	b.WriteString(fmt.Sprintf("- Court Number: %d\n", side.CourtNumber))
	b.WriteString(fmt.Sprintf("- Location: %s\n", location))
	b.WriteString("\nPlease report to the registration desk 10 minutes before your slot.\n")
	b.WriteString("\nGood luck!\nTournament Desk\n")
	return b.String()
}

// SMTPNotifier delivers over plain SMTP with TLS, port 465 for a direct TLS
// connection and STARTTLS otherwise.
type SMTPNotifier struct {
	cfg    *config.Config
	logger *slog.Logger
}

func NewSMTPNotifier(cfg *config.Config, logger *slog.Logger) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, logger: logger}
}

func (n *SMTPNotifier) Send(ctx context.Context, recipients []string, subject, body string, draftOnly bool) error {
	if draftOnly {
		n.logger.Info("draft-only send requested, skipping delivery",
			slog.Int("recipients", len(recipients)),
			slog.String("subject", subject),
		)
		return nil
	}

	msg := []byte("To: " + strings.Join(recipients, ", ") + "\r\n" +
		"From: " + n.cfg.SMTPFrom + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-version: 1.0;\r\nContent-Type: text/plain; charset=\"UTF-8\";\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := fmt.Sprintf("%s:%d", n.cfg.SMTPHost, n.cfg.SMTPPort)
	tlsConfig := &tls.Config{ServerName: n.cfg.SMTPHost}

	var client *smtp.Client
	if n.cfg.SMTPPort == 465 {
		conn, err := tls.Dial("tcp", addr, tlsConfig)
		if err != nil {
			return fmt.Errorf("smtp tls dial failed: %w", err)
		}
		client, err = smtp.NewClient(conn, n.cfg.SMTPHost)
		if err != nil {
			conn.Close()
			return fmt.Errorf("smtp client creation failed: %w", err)
		}
	} else {
		c, err := smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("smtp dial failed: %w", err)
		}
		client = c
		if err = client.StartTLS(tlsConfig); err != nil {
			client.Close()
			return fmt.Errorf("smtp starttls failed: %w", err)
		}
	}
	defer client.Quit()

	auth := smtp.PlainAuth("", n.cfg.SMTPUser, n.cfg.SMTPPass, n.cfg.SMTPHost)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth failed: %w", err)
	}
	if err := client.Mail(n.cfg.SMTPFrom); err != nil {
		return fmt.Errorf("smtp mail from failed: %w", err)
	}
	for _, rcpt := range recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp rcpt to %s failed: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data failed: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("smtp message write failed: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("smtp data close failed: %w", err)
	}
	return nil
}
