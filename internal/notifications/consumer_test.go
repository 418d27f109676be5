package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cineplex/pkg/logger"

	"github.com/IBM/sarama"
)

type flakyEmailService struct {
	mu       sync.Mutex
	failures int
	calls    int
}

func (f *flakyEmailService) SendNotification(ctx context.Context, n *EmailNotification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return errors.New("temporary failure")
	}
	return nil
}

func (f *flakyEmailService) SendHTML(ctx context.Context, to string, bcc []string, subject, htmlBody, textBody string) error {
	return nil
}

func newTestHandler(email EmailService, maxRetries int) *ConsumerGroupHandler {
	cfg := DefaultConsumerConfig()
	cfg.MaxRetries = maxRetries
	cfg.RetryBackoffDuration = time.Millisecond
	return newConsumerGroupHandler(0, email, cfg, logger.Discard())
}

func message(t *testing.T, n *EmailNotification) *sarama.ConsumerMessage {
	t.Helper()
	body, err := n.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	return &sarama.ConsumerMessage{Topic: "cineplex-notifications", Value: body}
}

func TestProcessMessageRetriesThenSucceeds(t *testing.T) {
	email := &flakyEmailService{failures: 2}
	h := newTestHandler(email, 3)

	n := NewNotificationBuilder().WithType(NotificationTypeBookingConfirmed).WithRecipient("a@x.com", "").Build()
	if err := h.processMessage(context.Background(), message(t, n)); err != nil {
		t.Fatalf("processMessage() = %v", err)
	}
	if email.calls != 3 {
		t.Errorf("calls = %d, want 3", email.calls)
	}
}

func TestProcessMessageGivesUp(t *testing.T) {
	email := &flakyEmailService{failures: 10}
	h := newTestHandler(email, 2)

	n := NewNotificationBuilder().WithType(NotificationTypeBookingConfirmed).WithRecipient("a@x.com", "").Build()
	if err := h.processMessage(context.Background(), message(t, n)); err == nil {
		t.Fatalf("expected failure after retries")
	}
	if email.calls != 3 {
		t.Errorf("calls = %d, want 3", email.calls)
	}
}

func TestProcessMessageSkipsExpired(t *testing.T) {
	email := &flakyEmailService{}
	h := newTestHandler(email, 3)

	past := time.Now().Add(-time.Minute)
	n := NewNotificationBuilder().WithType(NotificationTypePromotionBroadcast).WithExpiration(&past).Build()
	if err := h.processMessage(context.Background(), message(t, n)); err != nil {
		t.Fatalf("processMessage() = %v", err)
	}
	if email.calls != 0 {
		t.Errorf("expired notification should not be sent")
	}
}

func TestProcessMessageRejectsGarbage(t *testing.T) {
	h := newTestHandler(&flakyEmailService{}, 0)

	if err := h.processMessage(context.Background(), &sarama.ConsumerMessage{Value: []byte("{")}); err == nil {
		t.Errorf("expected unmarshal error")
	}
}
