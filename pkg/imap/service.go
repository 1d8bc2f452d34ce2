// Package imap provides an IMAP-backed mail source for mailboxes that
// are not on Gmail. It fetches by receipt date only; there is no snippet,
// so the parser works from the full body alone.
package imap

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"altitude-backend/internal/activity/domain"
	"altitude-backend/pkg/config"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
)

// Service implements domain.MailSource over IMAP.
type Service struct {
	server   string
	port     int
	username string
	password string
	folder   string
}

// NewService creates a new IMAP mail source from configuration.
func NewService(cfg *config.Config) *Service {
	return &Service{
		server:   cfg.ImapServer,
		port:     cfg.ImapPort,
		username: cfg.ImapUsername,
		password: cfg.ImapPassword,
		folder:   cfg.ImapFolder,
	}
}

// Fetch connects, searches the folder for messages received on the given
// date and returns their plain-text bodies. A fresh connection per run
// keeps the once-daily batch free of session state.
func (s *Service) Fetch(ctx context.Context, date string) ([]domain.RawMessage, error) {
	day, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	c, err := client.DialTLS(fmt.Sprintf("%s:%d", s.server, s.port), nil)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to IMAP server: %w", err)
	}
	defer c.Logout()

	if err := c.Login(s.username, s.password); err != nil {
		return nil, fmt.Errorf("IMAP login failed: %w", err)
	}

	if _, err := c.Select(s.folder, true); err != nil {
		return nil, fmt.Errorf("unable to select folder %s: %w", s.folder, err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.Since = day
	criteria.Before = day.AddDate(0, 0, 1)
	ids, err := c.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("IMAP search failed: %w", err)
	}
	if len(ids) == 0 {
		return []domain.RawMessage{}, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchInternalDate, section.FetchItem()}

	msgChan := make(chan *imap.Message, len(ids))
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, items, msgChan)
	}()

	var messages []domain.RawMessage
	for msg := range msgChan {
		raw := domain.RawMessage{ReceivedAt: msg.InternalDate}
		if msg.Envelope != nil {
			raw.MessageID = msg.Envelope.MessageId
		}
		if raw.MessageID == "" {
			raw.MessageID = fmt.Sprintf("imap-%s-%d", date, msg.SeqNum)
		}
		if body := msg.GetBody(section); body != nil {
			raw.Body = plainTextBody(body)
		}
		messages = append(messages, raw)
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("IMAP fetch failed: %w", err)
	}

	log.Printf("[IMAP] Fetched %d messages for %s", len(messages), date)
	return messages, nil
}

// plainTextBody extracts the first text/plain part from a raw message.
func plainTextBody(r io.Reader) string {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return ""
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return ""
		}
		if err != nil {
			return ""
		}
		if header, ok := part.Header.(*mail.InlineHeader); ok {
			contentType, _, _ := header.ContentType()
			if strings.HasPrefix(contentType, "text/plain") {
				body, err := io.ReadAll(part.Body)
				if err != nil {
					return ""
				}
				return string(body)
			}
		}
	}
}
