package notifications

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cineplex/pkg/logger"

	"github.com/IBM/sarama"
)

// NotificationProducer publishes notifications for the consumer workers
type NotificationProducer interface {
	PublishNotification(ctx context.Context, notification *EmailNotification) error
	PublishBatchNotifications(ctx context.Context, notifications []*EmailNotification) error
	Close() error
	HealthCheck(ctx context.Context) error
}

// KafkaProducerConfig contains configuration for the Kafka notification producer
type KafkaProducerConfig struct {
	Brokers           []string
	NotificationTopic string
	RetryMax          int
	Timeout           time.Duration
	RequiredAcks      sarama.RequiredAcks
	CompressionType   sarama.CompressionCodec
	IdempotentWrites  bool
	MaxMessageBytes   int
}

func DefaultKafkaProducerConfig() *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:           []string{"localhost:9092"},
		NotificationTopic: "cineplex-notifications",
		RetryMax:          3,
		Timeout:           10 * time.Second,
		RequiredAcks:      sarama.WaitForAll,
		CompressionType:   sarama.CompressionSnappy,
		IdempotentWrites:  true,
		MaxMessageBytes:   1000000,
	}
}

// SaramaConfig translates the producer settings
func (c *KafkaProducerConfig) SaramaConfig() *sarama.Config {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = c.RequiredAcks
	saramaConfig.Producer.Compression = c.CompressionType
	saramaConfig.Producer.Retry.Max = c.RetryMax
	saramaConfig.Producer.Timeout = c.Timeout
	saramaConfig.Producer.Idempotent = c.IdempotentWrites
	saramaConfig.Producer.MaxMessageBytes = c.MaxMessageBytes
	if c.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}
	// same key, same partition: one booking's messages stay ordered
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner
	return saramaConfig
}

type KafkaNotificationProducer struct {
	producer sarama.SyncProducer
	config   *KafkaProducerConfig
	log      *logger.Logger
}

func NewKafkaNotificationProducer(cfg *KafkaProducerConfig, log *logger.Logger) (*KafkaNotificationProducer, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers, cfg.SaramaConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return NewKafkaNotificationProducerWithClient(producer, cfg, log), nil
}

// NewKafkaNotificationProducerWithClient wraps an existing sarama producer
func NewKafkaNotificationProducerWithClient(producer sarama.SyncProducer, cfg *KafkaProducerConfig, log *logger.Logger) *KafkaNotificationProducer {
	if log == nil {
		log = logger.GetDefault()
	}
	return &KafkaNotificationProducer{
		producer: producer,
		config:   cfg,
		log:      log.WithComponent("notification_producer"),
	}
}

func (knp *KafkaNotificationProducer) PublishNotification(ctx context.Context, notification *EmailNotification) error {
	message, err := knp.buildMessage(notification)
	if err != nil {
		return err
	}

	partition, offset, err := knp.producer.SendMessage(message)
	if err != nil {
		notification.MarkFailed(err)
		return fmt.Errorf("failed to send notification to Kafka: %w", err)
	}

	knp.log.DebugWithContext(ctx, "Notification published", map[string]interface{}{
		"topic":     knp.config.NotificationTopic,
		"partition": partition,
		"offset":    offset,
		"type":      notification.Type,
	})
	return nil
}

func (knp *KafkaNotificationProducer) PublishBatchNotifications(ctx context.Context, notifications []*EmailNotification) error {
	if len(notifications) == 0 {
		return nil
	}

	messages := make([]*sarama.ProducerMessage, 0, len(notifications))
	for _, notification := range notifications {
		message, err := knp.buildMessage(notification)
		if err != nil {
			return err
		}
		messages = append(messages, message)
	}

	if err := knp.producer.SendMessages(messages); err != nil {
		for _, notification := range notifications {
			notification.MarkFailed(err)
		}
		return fmt.Errorf("failed to send batch notifications to Kafka: %w", err)
	}

	knp.log.DebugWithContext(ctx, "Notification batch published", map[string]interface{}{
		"topic": knp.config.NotificationTopic,
		"count": len(messages),
	})
	return nil
}

func (knp *KafkaNotificationProducer) buildMessage(notification *EmailNotification) (*sarama.ProducerMessage, error) {
	notification.Status = NotificationStatusQueued
	notification.UpdatedAt = time.Now()

	body, err := notification.ToJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification: %w", err)
	}

	return &sarama.ProducerMessage{
		Topic:     knp.config.NotificationTopic,
		Key:       sarama.StringEncoder(notification.GetPartitionKey()),
		Value:     sarama.ByteEncoder(body),
		Headers:   createHeaders(notification),
		Timestamp: notification.CreatedAt,
	}, nil
}

func createHeaders(notification *EmailNotification) []sarama.RecordHeader {
	headers := []sarama.RecordHeader{
		{Key: []byte("notification_id"), Value: []byte(notification.ID.String())},
		{Key: []byte("notification_type"), Value: []byte(notification.Type)},
		{Key: []byte("priority"), Value: []byte(notification.Priority)},
		{Key: []byte("producer"), Value: []byte("cineplex-notifications")},
		{Key: []byte("created_at"), Value: []byte(notification.CreatedAt.Format(time.RFC3339))},
	}

	if notification.BookingID != nil {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte("booking_id"),
			Value: []byte(strconv.FormatUint(uint64(*notification.BookingID), 10)),
		})
	}
	if notification.PromotionID != nil {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte("promotion_id"),
			Value: []byte(strconv.FormatUint(uint64(*notification.PromotionID), 10)),
		})
	}
	if notification.ExpiresAt != nil {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte("expires_at"),
			Value: []byte(notification.ExpiresAt.Format(time.RFC3339)),
		})
	}

	return headers
}

func (knp *KafkaNotificationProducer) Close() error {
	if knp.producer == nil {
		return nil
	}
	if err := knp.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	return nil
}

// HealthCheck validates configuration; broker reachability surfaces on the
// first send.
func (knp *KafkaNotificationProducer) HealthCheck(ctx context.Context) error {
	if knp.producer == nil {
		return errors.New("kafka producer is nil")
	}
	if knp.config == nil || knp.config.NotificationTopic == "" {
		return errors.New("notification topic not configured")
	}
	return nil
}
