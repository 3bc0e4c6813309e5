// Package mailer sends the transactional emails of the identity provider.
package mailer

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
)

type Mailer interface {
	SendPasswordReset(ctx context.Context, to, link string) error
	SendMagicLink(ctx context.Context, to, link string) error
}

type Message struct {
	To      string
	Subject string
	Body    string
}

func passwordResetMessage(to, link string) Message {
	return Message{
		To:      to,
		Subject: "Reset your password",
		Body:    fmt.Sprintf("Open this link within one hour to choose a new password:\n\n%s\n\nIf you did not ask for it, ignore this email.", link),
	}
}

func magicLinkMessage(to, link string) Message {
	return Message{
		To:      to,
		Subject: "Your sign-in link",
		Body:    fmt.Sprintf("Open this link within 15 minutes to sign in:\n\n%s", link),
	}
}

// LogMailer writes emails to the log instead of sending them. It keeps the
// sent messages for inspection in dev mode and tests.
type LogMailer struct {
	mu   sync.Mutex
	sent []Message
}

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (m *LogMailer) SendPasswordReset(_ context.Context, to, link string) error {
	m.record(passwordResetMessage(to, link))
	return nil
}

func (m *LogMailer) SendMagicLink(_ context.Context, to, link string) error {
	m.record(magicLinkMessage(to, link))
	return nil
}

func (m *LogMailer) record(msg Message) {
	log.WithField("to", msg.To).Infof("mail: %s\n%s", msg.Subject, msg.Body)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
}

// Sent returns a copy of every message recorded so far.
func (m *LogMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sent...)
}
