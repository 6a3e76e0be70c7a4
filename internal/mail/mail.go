// Package mail delivers transactional messages such as temporary password
// notifications.
package mail

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// Sender delivers a plain-text message to a single recipient.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTP sends messages through a plain SMTP relay.
type SMTP struct {
	addr string
	from string
	auth smtp.Auth
}

// NewSMTP configures a sender for host:port. Auth is enabled only when
// username is non-empty.
func NewSMTP(host string, port int, username, password, from string) *SMTP {
	s := &SMTP{addr: fmt.Sprintf("%s:%d", host, port), from: from}
	if username != "" {
		s.auth = smtp.PlainAuth("", username, password, host)
	}
	return s
}

func (s *SMTP) Send(to, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// Noop logs instead of sending. Used when SMTP is not configured so password
// resets still work in development.
type Noop struct {
	Logger *zap.Logger
}

func (n Noop) Send(to, subject, _ string) error {
	if n.Logger != nil {
		n.Logger.Info("mail delivery skipped, SMTP not configured",
			zap.String("to", to), zap.String("subject", subject))
	}
	return nil
}
