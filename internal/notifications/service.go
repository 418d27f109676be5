package notifications

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cineplex/internal/shared/config"
	"cineplex/pkg/logger"
)

// DefaultBccChunkSize caps the recipients of one broadcast message
const DefaultBccChunkSize = 50

// Service builds emails for the core's notification triggers. With a producer
// configured they go through Kafka; otherwise they are sent directly.
type Service struct {
	emailService EmailService
	producer     NotificationProducer
	consumer     NotificationConsumer
	numWorkers   int
	fromEmail    string
	bccChunkSize int
	log          *logger.Logger

	mu        sync.Mutex
	isRunning bool
}

// NewService wires the pipeline from configuration. The mock email service is
// used when EMAIL_MOCK is set or no SMTP host is configured.
func NewService(cfg *config.Config, log *logger.Logger) (*Service, error) {
	if log == nil {
		log = logger.GetDefault()
	}

	var emailService EmailService
	if cfg.Email.UseMock || cfg.Email.SMTPHost == "" {
		emailService = NewMockEmailService(log)
	} else {
		smtpService, err := NewSMTPEmailService(NewSMTPConfig(cfg.Email), log)
		if err != nil {
			return nil, err
		}
		emailService = smtpService
	}

	svc := NewDirectService(emailService, cfg.Email.FromEmail, log)
	if !cfg.Kafka.Enabled {
		return svc, nil
	}

	producerConfig := DefaultKafkaProducerConfig()
	producerConfig.Brokers = cfg.Kafka.Brokers
	producerConfig.NotificationTopic = cfg.Kafka.NotificationTopic

	producer, err := NewKafkaNotificationProducer(producerConfig, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification producer: %w", err)
	}

	consumerConfig := DefaultConsumerConfig()
	consumerConfig.Brokers = cfg.Kafka.Brokers
	consumerConfig.Topics = []string{cfg.Kafka.NotificationTopic}
	consumerConfig.GroupID = cfg.Kafka.ConsumerGroupID

	consumer, err := NewKafkaNotificationConsumer(consumerConfig, emailService, log)
	if err != nil {
		_ = producer.Close()
		return nil, fmt.Errorf("failed to create notification consumer: %w", err)
	}

	svc.producer = producer
	svc.consumer = consumer
	svc.numWorkers = cfg.Kafka.NumConsumerWorkers
	return svc, nil
}

// NewDirectService sends every notification synchronously through emailService
func NewDirectService(emailService EmailService, fromEmail string, log *logger.Logger) *Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Service{
		emailService: emailService,
		fromEmail:    fromEmail,
		bccChunkSize: DefaultBccChunkSize,
		log:          log.WithComponent("notifications"),
	}
}

// NewQueuedService publishes notifications through producer
func NewQueuedService(emailService EmailService, producer NotificationProducer, fromEmail string, log *logger.Logger) *Service {
	svc := NewDirectService(emailService, fromEmail, log)
	svc.producer = producer
	return svc
}

func (s *Service) SendBookingConfirmation(ctx context.Context, email string, confirmation BookingConfirmation) error {
	if email == "" {
		return errors.New("booking confirmation has no recipient")
	}

	notification := NewNotificationBuilder().
		WithType(NotificationTypeBookingConfirmed).
		WithRecipient(email, "").
		WithSubject(subjectBookingConfirmed).
		WithTemplateData(bookingConfirmationData(confirmation)).
		WithBookingContext(confirmation.BookingID).
		Build()

	return s.deliver(ctx, notification)
}

// SendPromotionBroadcast addresses the sender and lists subscribers in Bcc,
// split into chunks of bccChunkSize.
func (s *Service) SendPromotionBroadcast(ctx context.Context, emails []string, promotion PromotionBroadcast) error {
	recipients := envelopeRecipients("", emails)
	if len(recipients) == 0 {
		return errors.New("promotion broadcast has no recipients")
	}

	batch := make([]*EmailNotification, 0, len(recipients)/s.bccChunkSize+1)
	for start := 0; start < len(recipients); start += s.bccChunkSize {
		end := min(start+s.bccChunkSize, len(recipients))
		batch = append(batch, NewNotificationBuilder().
			WithType(NotificationTypePromotionBroadcast).
			WithRecipient(s.fromEmail, "").
			WithBcc(recipients[start:end]).
			WithSubject(subjectPromotionBroadcast).
			WithTemplateData(promotionData(promotion)).
			WithPromotionContext(promotion.PromotionID).
			Build())
	}

	if s.producer != nil {
		return s.producer.PublishBatchNotifications(ctx, batch)
	}

	var errs []error
	for _, notification := range batch {
		if err := s.deliver(ctx, notification); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Service) deliver(ctx context.Context, notification *EmailNotification) error {
	if s.producer != nil {
		return s.producer.PublishNotification(ctx, notification)
	}

	if err := s.emailService.SendNotification(ctx, notification); err != nil {
		notification.MarkFailed(err)
		return err
	}
	notification.MarkSent()
	return nil
}

// Start launches the consumer workers when the Kafka pipeline is configured
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return errors.New("notification service is already running")
	}
	if s.consumer != nil {
		if err := s.consumer.StartConsumers(ctx, s.numWorkers); err != nil {
			return fmt.Errorf("failed to start consumers: %w", err)
		}
	}
	s.isRunning = true
	return nil
}

func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	var errs []error
	if s.consumer != nil {
		errs = append(errs, s.consumer.Stop())
	}
	if s.producer != nil {
		errs = append(errs, s.producer.Close())
	}
	s.isRunning = false
	return errors.Join(errs...)
}

func (s *Service) HealthCheck(ctx context.Context) error {
	if s.producer != nil {
		if err := s.producer.HealthCheck(ctx); err != nil {
			return fmt.Errorf("producer health check failed: %w", err)
		}
	}
	if s.consumer != nil {
		if err := s.consumer.HealthCheck(ctx); err != nil {
			return fmt.Errorf("consumer health check failed: %w", err)
		}
	}
	return nil
}
