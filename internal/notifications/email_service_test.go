package notifications

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestEnvelopeRecipients(t *testing.T) {
	got := envelopeRecipients("noreply@cineplex.local", []string{"a@x.com", " ", "A@x.com", "b@x.com", "noreply@cineplex.local"})

	want := []string{"noreply@cineplex.local", "a@x.com", "b@x.com"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("envelopeRecipients() = %v, want %v", got, want)
	}
}

func TestBuildMessageHidesBcc(t *testing.T) {
	cfg := &SMTPConfig{FromEmail: "noreply@cineplex.local", FromName: "Cineplex"}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	msg := string(buildMessage(cfg, "", subjectPromotionBroadcast, "<p>hi</p>", "hi", now))

	if strings.Contains(strings.ToLower(msg), "bcc:") {
		t.Errorf("message must not carry a Bcc header:\n%s", msg)
	}
	if !strings.Contains(msg, "To: undisclosed-recipients:;\r\n") {
		t.Errorf("empty To should be undisclosed:\n%s", msg)
	}
	if !strings.Contains(msg, "Subject: Cineplex - Special Promotion\r\n") {
		t.Errorf("subject header missing:\n%s", msg)
	}
	if !strings.Contains(msg, "Content-Type: text/plain") || !strings.Contains(msg, "Content-Type: text/html") {
		t.Errorf("both parts expected:\n%s", msg)
	}
}

func TestSMTPConfigValidate(t *testing.T) {
	valid := SMTPConfig{Host: "smtp.example.com", Port: 587, FromEmail: "noreply@example.com"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	for name, mutate := range map[string]func(*SMTPConfig){
		"no host": func(c *SMTPConfig) { c.Host = "" },
		"port":    func(c *SMTPConfig) { c.Port = 70000 },
		"from":    func(c *SMTPConfig) { c.FromEmail = "" },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := valid
			mutate(&cfg)
			if cfg.Validate() == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestMockEmailServiceRecords(t *testing.T) {
	mock := NewMockEmailService(nil)
	ctx := context.Background()

	if err := mock.SendHTML(ctx, "a@x.com", []string{"b@x.com"}, "s", "<p>h</p>", "h"); err != nil {
		t.Fatal(err)
	}
	sent := mock.Sent()
	if len(sent) != 1 || sent[0].Bcc[0] != "b@x.com" {
		t.Fatalf("Sent() = %+v", sent)
	}

	mock.FailWith(errors.New("smtp down"))
	if err := mock.SendHTML(ctx, "a@x.com", nil, "s", "", ""); err == nil {
		t.Errorf("expected configured failure")
	}
	if len(mock.Sent()) != 1 {
		t.Errorf("failed sends must not be recorded")
	}
}
