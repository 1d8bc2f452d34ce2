// Package mailer provides the SMTP notifier used when summaries should
// not be sent through the Gmail API (e.g. a dedicated SMTP relay).
package mailer

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"altitude-backend/pkg/config"
)

// SMTPNotifier implements domain.Notifier over plain SMTP with STARTTLS.
type SMTPNotifier struct {
	server    string
	port      int
	username  string
	password  string
	recipient string
}

// NewSMTPNotifier creates a new SMTP notifier from configuration.
func NewSMTPNotifier(cfg *config.Config) (*SMTPNotifier, error) {
	if cfg.SMTPUsername == "" || cfg.SMTPPassword == "" || cfg.RecipientEmail == "" {
		return nil, fmt.Errorf("SMTP configuration incomplete: set SMTP_USERNAME, SMTP_PASSWORD, RECIPIENT_EMAIL")
	}
	return &SMTPNotifier{
		server:    cfg.SMTPServer,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		recipient: cfg.RecipientEmail,
	}, nil
}

// Send delivers the summary as a multipart/alternative message.
func (n *SMTPNotifier) Send(ctx context.Context, subject, textBody, htmlBody string) error {
	boundary := "alt_summary_boundary"

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", n.username))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", n.recipient))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary))

	msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	msg.WriteString(textBody)
	msg.WriteString("\r\n")

	msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	msg.WriteString(htmlBody)
	msg.WriteString("\r\n")

	msg.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	addr := fmt.Sprintf("%s:%d", n.server, n.port)
	auth := smtp.PlainAuth("", n.username, n.password, n.server)
	if err := smtp.SendMail(addr, auth, n.username, []string{n.recipient}, []byte(msg.String())); err != nil {
		return fmt.Errorf("unable to send summary email: %w", err)
	}

	log.Printf("[SMTP] Sent summary email to %s", n.recipient)
	return nil
}
