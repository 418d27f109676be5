package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"cineplex/pkg/logger"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
)

func subscriberEmails(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("fan%d@example.com", i)
	}
	return out
}

func TestSendBookingConfirmationDirect(t *testing.T) {
	mock := NewMockEmailService(logger.Discard())
	svc := NewDirectService(mock, "noreply@cineplex.local", logger.Discard())

	err := svc.SendBookingConfirmation(context.Background(), "c7@example.com", BookingConfirmation{
		BookingID:  9,
		CustomerID: 7,
		Tickets:    []TicketLine{{MovieID: 1, ShowDate: "2024-06-01", StartTime: "18:00", SeatNumber: "F12", TicketType: "adult", Price: 12}},
		Total:      12,
	})
	if err != nil {
		t.Fatalf("SendBookingConfirmation() = %v", err)
	}

	sent := mock.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sent))
	}
	if sent[0].To != "c7@example.com" || sent[0].Subject != subjectBookingConfirmed {
		t.Errorf("unexpected email %+v", sent[0])
	}
	if !strings.Contains(sent[0].TextBody, "Movie #1 - 2024-06-01 18:00 - F12 - adult - $12.00") {
		t.Errorf("ticket line missing:\n%s", sent[0].TextBody)
	}
}

func TestSendBookingConfirmationErrors(t *testing.T) {
	mock := NewMockEmailService(logger.Discard())
	svc := NewDirectService(mock, "noreply@cineplex.local", logger.Discard())

	if err := svc.SendBookingConfirmation(context.Background(), "", BookingConfirmation{BookingID: 1}); err == nil {
		t.Errorf("expected error without recipient")
	}

	mock.FailWith(errors.New("smtp down"))
	if err := svc.SendBookingConfirmation(context.Background(), "a@x.com", BookingConfirmation{BookingID: 1}); err == nil {
		t.Errorf("expected email failure to surface to the dispatcher")
	}
}

func TestSendPromotionBroadcastChunksBcc(t *testing.T) {
	mock := NewMockEmailService(logger.Discard())
	svc := NewDirectService(mock, "noreply@cineplex.local", logger.Discard())

	emails := append(subscriberEmails(120), "fan0@example.com")
	err := svc.SendPromotionBroadcast(context.Background(), emails, PromotionBroadcast{PromotionID: 5, Code: "PROMO-XYZ789", DiscountPercentage: 20, Description: "Weekend"})
	if err != nil {
		t.Fatalf("SendPromotionBroadcast() = %v", err)
	}

	sent := mock.Sent()
	if len(sent) != 3 {
		t.Fatalf("sent %d messages, want 3", len(sent))
	}
	total := 0
	for _, msg := range sent {
		if msg.To != "noreply@cineplex.local" {
			t.Errorf("broadcast should address the sender, got %q", msg.To)
		}
		if len(msg.Bcc) > DefaultBccChunkSize {
			t.Errorf("chunk of %d exceeds %d", len(msg.Bcc), DefaultBccChunkSize)
		}
		total += len(msg.Bcc)
	}
	if total != 120 {
		t.Errorf("bcc total = %d, want 120 distinct subscribers", total)
	}
}

func TestSendPromotionBroadcastNoRecipients(t *testing.T) {
	svc := NewDirectService(NewMockEmailService(logger.Discard()), "noreply@cineplex.local", logger.Discard())

	if err := svc.SendPromotionBroadcast(context.Background(), []string{" "}, PromotionBroadcast{}); err == nil {
		t.Errorf("expected error for an empty recipient list")
	}
}

func TestQueuedServicePublishesToKafka(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var n EmailNotification
		if err := json.Unmarshal(val, &n); err != nil {
			return err
		}
		if n.Type != NotificationTypeBookingConfirmed || n.BookingID == nil || *n.BookingID != 9 {
			return fmt.Errorf("unexpected notification %+v", n)
		}
		if n.Status != NotificationStatusQueued {
			return fmt.Errorf("status = %s, want QUEUED", n.Status)
		}
		return nil
	})

	cfg := DefaultKafkaProducerConfig()
	kafka := NewKafkaNotificationProducerWithClient(producer, cfg, logger.Discard())
	mock := NewMockEmailService(logger.Discard())
	svc := NewQueuedService(mock, kafka, "noreply@cineplex.local", logger.Discard())

	if err := svc.SendBookingConfirmation(context.Background(), "c7@example.com", BookingConfirmation{BookingID: 9}); err != nil {
		t.Fatalf("SendBookingConfirmation() = %v", err)
	}
	if len(mock.Sent()) != 0 {
		t.Errorf("queued service must not send directly")
	}

	if err := kafka.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

func TestQueuedServicePublishError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	kafka := NewKafkaNotificationProducerWithClient(producer, DefaultKafkaProducerConfig(), logger.Discard())
	svc := NewQueuedService(NewMockEmailService(logger.Discard()), kafka, "noreply@cineplex.local", logger.Discard())

	err := svc.SendBookingConfirmation(context.Background(), "c7@example.com", BookingConfirmation{BookingID: 9})
	if !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Errorf("SendBookingConfirmation() = %v, want broker error", err)
	}
	_ = kafka.Close()
}

func TestQueuedBroadcastPublishesBatch(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndSucceed()
	producer.ExpectSendMessageAndSucceed()

	kafka := NewKafkaNotificationProducerWithClient(producer, DefaultKafkaProducerConfig(), logger.Discard())
	svc := NewQueuedService(NewMockEmailService(logger.Discard()), kafka, "noreply@cineplex.local", logger.Discard())

	if err := svc.SendPromotionBroadcast(context.Background(), subscriberEmails(60), PromotionBroadcast{PromotionID: 1}); err != nil {
		t.Fatalf("SendPromotionBroadcast() = %v", err)
	}
	_ = kafka.Close()
}

func TestServiceLifecycleWithoutKafka(t *testing.T) {
	svc := NewDirectService(NewMockEmailService(logger.Discard()), "noreply@cineplex.local", logger.Discard())
	ctx := context.Background()

	if err := svc.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if err := svc.Start(ctx); err == nil {
		t.Errorf("second Start should fail")
	}
	if err := svc.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() = %v", err)
	}
	if err := svc.Stop(); err != nil {
		t.Errorf("Stop() = %v", err)
	}
}
