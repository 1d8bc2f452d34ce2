// Package gmail provides the Gmail-backed mail source and notifier.
// It uses a pre-generated OAuth token (token.json); the interactive
// consent flow runs once, out of band, on a developer machine.
package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"altitude-backend/internal/activity/domain"
	"altitude-backend/pkg/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const user = "me"

// maxMessagesPerDay caps one date's fetch; Altitude sends well under this.
const maxMessagesPerDay = 100

// Service implements domain.MailSource and domain.Notifier on the Gmail API.
type Service struct {
	srv       *gmail.Service
	label     string
	from      string
	fromName  string
	recipient string
}

// NewService builds the Gmail client from the configured credentials and
// token file. The token must already exist; a batch job cannot run the
// browser consent flow.
func NewService(ctx context.Context, cfg *config.Config) (*Service, error) {
	credentials := []byte(cfg.CredentialsJSON)
	if len(credentials) == 0 {
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("unable to read Gmail credentials: %w", err)
		}
		credentials = b
	}

	oauthConfig, err := google.ConfigFromJSON(credentials, gmail.GmailReadonlyScope, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse Gmail credentials: %w", err)
	}

	token, err := tokenFromFile(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read Gmail token (generate one first): %w", err)
	}

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(oauthConfig.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %w", err)
	}

	return &Service{
		srv:       srv,
		label:     cfg.AltitudeLabel,
		from:      cfg.SenderEmail,
		fromName:  cfg.SenderName,
		recipient: cfg.RecipientEmail,
	}, nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

// Fetch returns the labeled messages received on the given date.
func (s *Service) Fetch(ctx context.Context, date string) ([]domain.RawMessage, error) {
	day, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}
	nextDay := day.AddDate(0, 0, 1).Format(domain.DateLayout)

	query := fmt.Sprintf("label:%s after:%s before:%s", s.label, date, nextDay)
	list, err := s.srv.Users.Messages.List(user).Q(query).MaxResults(maxMessagesPerDay).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to list messages: %w", err)
	}

	messages := make([]domain.RawMessage, 0, len(list.Messages))
	for _, m := range list.Messages {
		full, err := s.srv.Users.Messages.Get(user, m.Id).Format("full").Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve message %s: %w", m.Id, err)
		}

		messages = append(messages, domain.RawMessage{
			MessageID:  full.Id,
			Snippet:    full.Snippet,
			Body:       plainTextBody(full.Payload),
			ReceivedAt: time.UnixMilli(full.InternalDate),
		})
	}
	log.Printf("[Gmail] Fetched %d messages for %s", len(messages), date)
	return messages, nil
}

// plainTextBody walks the MIME tree for the first text/plain part.
func plainTextBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}
	if payload.MimeType == "text/plain" && payload.Body != nil && payload.Body.Data != "" {
		data, err := base64.URLEncoding.DecodeString(payload.Body.Data)
		if err == nil {
			return string(data)
		}
		log.Printf("[Gmail] Error decoding message body: %v", err)
	}
	for _, part := range payload.Parts {
		if body := plainTextBody(part); body != "" {
			return body
		}
	}
	return ""
}

// Send delivers the summary email through the Gmail API as a
// multipart/alternative message with text and HTML bodies.
func (s *Service) Send(ctx context.Context, subject, textBody, htmlBody string) error {
	if s.recipient == "" {
		return fmt.Errorf("recipient email not configured")
	}

	var msg bytes.Buffer
	boundary := "alt_summary_boundary"

	if s.fromName != "" && s.from != "" {
		encodedName := fmt.Sprintf("=?utf-8?B?%s?=", base64.StdEncoding.EncodeToString([]byte(s.fromName)))
		msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", encodedName, s.from))
	}
	msg.WriteString(fmt.Sprintf("To: %s\r\n", s.recipient))
	encodedSubject := fmt.Sprintf("=?utf-8?B?%s?=", base64.StdEncoding.EncodeToString([]byte(subject)))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", encodedSubject))
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

	_, err := s.srv.Users.Messages.Send(user, &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(msg.Bytes()),
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to send summary email: %w", err)
	}
	log.Printf("[Gmail] Sent summary email to %s", s.recipient)
	return nil
}
