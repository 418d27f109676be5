package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"cineplex/pkg/logger"

	"github.com/IBM/sarama"
)

type NotificationConsumer interface {
	StartConsumers(ctx context.Context, numWorkers int) error
	Stop() error
	HealthCheck(ctx context.Context) error
}

type ConsumerConfig struct {
	Brokers              []string
	GroupID              string
	Topics               []string
	SessionTimeout       time.Duration
	Heartbeat            time.Duration
	MaxProcessingTime    time.Duration
	OffsetOldest         bool
	MaxRetries           int
	RetryBackoffDuration time.Duration
}

func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:              []string{"localhost:9092"},
		GroupID:              "cineplex-notification-workers",
		Topics:               []string{"cineplex-notifications"},
		SessionTimeout:       30 * time.Second,
		Heartbeat:            3 * time.Second,
		MaxProcessingTime:    5 * time.Minute,
		OffsetOldest:         false,
		MaxRetries:           3,
		RetryBackoffDuration: time.Second,
	}
}

type KafkaNotificationConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	emailService  EmailService
	log           *logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
	done   chan struct{}
}

func NewKafkaNotificationConsumer(cfg *ConsumerConfig, emailService EmailService, log *logger.Logger) (*KafkaNotificationConsumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = cfg.SessionTimeout
	saramaConfig.Consumer.Group.Heartbeat.Interval = cfg.Heartbeat
	saramaConfig.Consumer.MaxProcessingTime = cfg.MaxProcessingTime
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second
	if cfg.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	consumerGroup, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	if log == nil {
		log = logger.GetDefault()
	}

	return &KafkaNotificationConsumer{
		consumerGroup: consumerGroup,
		config:        cfg,
		emailService:  emailService,
		log:           log.WithComponent("notification_consumer"),
		done:          make(chan struct{}),
	}, nil
}

func (knc *KafkaNotificationConsumer) StartConsumers(ctx context.Context, numWorkers int) error {
	if numWorkers < 1 {
		numWorkers = 1
	}

	ctx, knc.cancel = context.WithCancel(ctx)

	go knc.handleErrors()

	for i := 0; i < numWorkers; i++ {
		knc.wg.Add(1)
		go func(workerID int) {
			defer knc.wg.Done()
			knc.runWorker(ctx, workerID)
		}(i)
	}

	knc.log.InfoWithContext(ctx, "Notification consumers started", map[string]interface{}{
		"workers": numWorkers,
		"topics":  knc.config.Topics,
	})
	return nil
}

func (knc *KafkaNotificationConsumer) runWorker(ctx context.Context, workerID int) {
	handler := newConsumerGroupHandler(workerID, knc.emailService, knc.config, knc.log)

	for {
		if err := knc.consumerGroup.Consume(ctx, knc.config.Topics, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return
			}
			knc.log.ErrorWithContext(ctx, "Consume failed", err, map[string]interface{}{"worker": workerID})
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (knc *KafkaNotificationConsumer) handleErrors() {
	for err := range knc.consumerGroup.Errors() {
		knc.log.WithError(err).Warn("Consumer group error")
	}
}

func (knc *KafkaNotificationConsumer) Stop() error {
	select {
	case <-knc.done:
		return nil
	default:
		close(knc.done)
	}

	if knc.cancel != nil {
		knc.cancel()
	}
	knc.wg.Wait()

	if err := knc.consumerGroup.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	return nil
}

func (knc *KafkaNotificationConsumer) HealthCheck(ctx context.Context) error {
	select {
	case <-knc.done:
		return errors.New("consumer stopped")
	default:
	}
	if knc.emailService == nil {
		return errors.New("email service not configured")
	}
	return nil
}

// ConsumerGroupHandler sends each consumed notification with bounded retries
type ConsumerGroupHandler struct {
	workerID     int
	emailService EmailService
	maxRetries   int
	backoff      time.Duration
	log          *logger.Logger
}

func newConsumerGroupHandler(workerID int, emailService EmailService, cfg *ConsumerConfig, log *logger.Logger) *ConsumerGroupHandler {
	return &ConsumerGroupHandler{
		workerID:     workerID,
		emailService: emailService,
		maxRetries:   cfg.MaxRetries,
		backoff:      cfg.RetryBackoffDuration,
		log:          log,
	}
}

func (h *ConsumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *ConsumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim marks every message once handled. A notification that still
// fails after its retries is logged and dropped.
func (h *ConsumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.processMessage(session.Context(), message); err != nil {
				h.log.ErrorWithContext(session.Context(), "Notification dropped", err, map[string]interface{}{
					"worker":    h.workerID,
					"partition": message.Partition,
					"offset":    message.Offset,
				})
			}
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *ConsumerGroupHandler) processMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	var notification EmailNotification
	if err := json.Unmarshal(message.Value, &notification); err != nil {
		return fmt.Errorf("failed to unmarshal notification: %w", err)
	}

	if notification.IsExpired() {
		notification.Status = NotificationStatusExpired
		return nil
	}

	notification.Status = NotificationStatusSending

	if err := h.executeWithRetry(ctx, &notification); err != nil {
		notification.MarkFailed(err)
		h.log.LogNotificationFailed(ctx, string(notification.Type), err, map[string]interface{}{
			"notification_id": notification.ID.String(),
			"attempts":        notification.RetryCount + 1,
		})
		return err
	}

	notification.MarkSent()
	return nil
}

func (h *ConsumerGroupHandler) executeWithRetry(ctx context.Context, notification *EmailNotification) error {
	maxRetries := h.maxRetries
	if notification.MaxRetries > 0 && notification.MaxRetries < maxRetries {
		maxRetries = notification.MaxRetries
	}

	for attempt := 0; ; attempt++ {
		err := h.emailService.SendNotification(ctx, notification)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries {
			return err
		}

		notification.RetryCount = attempt + 1
		notification.Status = NotificationStatusRetrying

		delay := h.backoff * time.Duration(1<<attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
