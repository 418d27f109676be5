package notifications

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"
	"sync"
	"time"

	"cineplex/internal/shared/config"
	"cineplex/pkg/logger"
)

// EmailService delivers rendered notifications. Bcc recipients receive the
// message without appearing in its headers.
type EmailService interface {
	SendNotification(ctx context.Context, notification *EmailNotification) error
	SendHTML(ctx context.Context, to string, bcc []string, subject, htmlBody, textBody string) error
}

// SMTPConfig holds SMTP configuration
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	UseTLS    bool
	Timeout   time.Duration
}

func NewSMTPConfig(cfg config.EmailConfig) *SMTPConfig {
	return &SMTPConfig{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		FromEmail: cfg.FromEmail,
		FromName:  cfg.FromName,
		UseTLS:    true,
		Timeout:   30 * time.Second,
	}
}

// Validate checks that the configuration can reach a server
func (c *SMTPConfig) Validate() error {
	if c == nil {
		return errors.New("SMTP config is nil")
	}
	if c.Host == "" {
		return errors.New("SMTP host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return errors.New("SMTP port must be between 1 and 65535")
	}
	if c.FromEmail == "" {
		return errors.New("from email is required")
	}
	return nil
}

// SMTPEmailService sends mail through an SMTP relay
type SMTPEmailService struct {
	config *SMTPConfig
	log    *logger.Logger
}

func NewSMTPEmailService(cfg *SMTPConfig, log *logger.Logger) (*SMTPEmailService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid SMTP configuration: %w", err)
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &SMTPEmailService{config: cfg, log: log.WithComponent("smtp")}, nil
}

func (s *SMTPEmailService) SendNotification(ctx context.Context, notification *EmailNotification) error {
	htmlBody, textBody := renderContent(notification)
	return s.SendHTML(ctx, notification.RecipientEmail, notification.Bcc, notification.Subject, htmlBody, textBody)
}

func (s *SMTPEmailService) SendHTML(ctx context.Context, to string, bcc []string, subject, htmlBody, textBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	recipients := envelopeRecipients(to, bcc)
	if len(recipients) == 0 {
		return errors.New("email has no recipients")
	}

	message := buildMessage(s.config, to, subject, htmlBody, textBody, time.Now())

	var auth smtp.Auth
	if s.config.Username != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}
	addr := s.config.Host + ":" + strconv.Itoa(s.config.Port)

	var err error
	if s.config.UseTLS {
		err = s.sendWithSTARTTLS(addr, auth, recipients, message)
	} else {
		err = smtp.SendMail(addr, auth, s.config.FromEmail, recipients, message)
	}
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.log.DebugWithContext(ctx, "Email sent", map[string]interface{}{
		"subject":    subject,
		"recipients": len(recipients),
	})
	return nil
}

func (s *SMTPEmailService) sendWithSTARTTLS(addr string, auth smtp.Auth, recipients []string, message []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Quit()

	if err = client.StartTLS(&tls.Config{ServerName: s.config.Host}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	if auth != nil {
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}

	for _, rcpt := range recipients {
		if err = client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to add recipient %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write(message); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return w.Close()
}

// envelopeRecipients merges to and bcc, dropping blanks and duplicates
func envelopeRecipients(to string, bcc []string) []string {
	seen := make(map[string]struct{}, len(bcc)+1)
	out := make([]string, 0, len(bcc)+1)
	for _, addr := range append([]string{to}, bcc...) {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		key := strings.ToLower(addr)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, addr)
	}
	return out
}

// buildMessage writes a multipart/alternative message. Headers are emitted in
// a fixed order and never include Bcc.
func buildMessage(cfg *SMTPConfig, to, subject, htmlBody, textBody string, now time.Time) []byte {
	boundary := "boundary_" + strconv.FormatInt(now.UnixNano(), 10)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", cfg.FromName, cfg.FromEmail)
	if to == "" {
		to = "undisclosed-recipients:;"
	}
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", boundary)

	if textBody != "" {
		fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n", boundary, textBody)
	}
	if htmlBody != "" {
		fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n", boundary, htmlBody)
	}
	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	return []byte(b.String())
}

// SentEmail is a message captured by MockEmailService
type SentEmail struct {
	To       string
	Bcc      []string
	Subject  string
	HTMLBody string
	TextBody string
}

// MockEmailService logs and records messages instead of sending them
type MockEmailService struct {
	mu   sync.Mutex
	sent []SentEmail
	err  error
	log  *logger.Logger
}

func NewMockEmailService(log *logger.Logger) *MockEmailService {
	if log == nil {
		log = logger.GetDefault()
	}
	return &MockEmailService{log: log.WithComponent("mock_email")}
}

// FailWith makes every later send return err
func (s *MockEmailService) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *MockEmailService) SendNotification(ctx context.Context, notification *EmailNotification) error {
	htmlBody, textBody := renderContent(notification)
	return s.SendHTML(ctx, notification.RecipientEmail, notification.Bcc, notification.Subject, htmlBody, textBody)
}

func (s *MockEmailService) SendHTML(ctx context.Context, to string, bcc []string, subject, htmlBody, textBody string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}

	s.sent = append(s.sent, SentEmail{
		To:       to,
		Bcc:      append([]string(nil), bcc...),
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: textBody,
	})

	s.log.InfoWithContext(ctx, "Mock email", map[string]interface{}{
		"to":      to,
		"bcc":     len(bcc),
		"subject": subject,
	})
	return nil
}

// Sent returns a copy of every recorded message
func (s *MockEmailService) Sent() []SentEmail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SentEmail(nil), s.sent...)
}
