package notify

import (
	"context"
	"fmt"
	"log"
	"net/smtp"

	"github.com/dom/contacts-api/internal/config"
)

// VerificationNotifier delivers the email-confirmation link. Callers treat it
// as fire-and-forget: a failed send is logged upstream and never fails the
// signup or resend request that triggered it.
type VerificationNotifier interface {
	NotifyVerification(ctx context.Context, email, username, token string) error
}

type smtpNotifier struct {
	host    string
	port    string
	user    string
	pass    string
	from    string
	baseURL string
}

// NewNotifier returns an SMTP-backed notifier, or a log-only one when no mail
// server is configured (local development).
func NewNotifier(cfg *config.Config) VerificationNotifier {
	if cfg.MailHost == "" {
		return &logNotifier{}
	}
	return &smtpNotifier{
		host:    cfg.MailHost,
		port:    cfg.MailPort,
		user:    cfg.MailUser,
		pass:    cfg.MailPass,
		from:    cfg.MailFrom,
		baseURL: cfg.PublicBaseURL,
	}
}

func (n *smtpNotifier) NotifyVerification(ctx context.Context, email, username, token string) error {
	link := fmt.Sprintf("%s/api/auth/confirmed_email/%s", n.baseURL, token)
	body := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Confirm your email\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n"+
			"Hi %s,\r\n\r\nConfirm your email address by opening the link below:\r\n\r\n%s\r\n",
		n.from, email, username, link,
	)

	// smtp.SendMail speaks plaintext-then-STARTTLS, so the configured port
	// must be the submission port (587), not implicit-TLS 465.
	auth := smtp.PlainAuth("", n.user, n.pass, n.host)
	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(n.host+":"+n.port, auth, n.from, []string{email}, []byte(body))
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

type logNotifier struct{}

func (n *logNotifier) NotifyVerification(_ context.Context, email, username, token string) error {
	log.Printf("verification email for %s (%s): token %s", email, username, token)
	return nil
}
