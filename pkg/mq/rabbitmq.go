// Package mq holds the RabbitMQ plumbing shared by delayed jobs.
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DelayQueue describes a TTL queue whose expired messages are dead-lettered
// into a work queue. Producers publish to Delay; consumers read from Work.
type DelayQueue struct {
	Delay      string
	Exchange   string
	Work       string
	RoutingKey string
	TTL        time.Duration
}

func Dial(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return conn, nil
}

// Declare creates the delay queue, the dead-letter exchange and the work queue.
// Declarations are idempotent as long as the arguments do not change.
func (q DelayQueue) Declare(ch *amqp.Channel) error {
	delayArgs := amqp.Table{
		"x-message-ttl":             int32(q.TTL.Milliseconds()),
		"x-dead-letter-exchange":    q.Exchange,
		"x-dead-letter-routing-key": q.RoutingKey,
	}

	if _, err := ch.QueueDeclare(q.Delay, true, false, false, false, delayArgs); err != nil {
		return fmt.Errorf("declare delay queue %s: %w", q.Delay, err)
	}

	if err := ch.ExchangeDeclare(q.Exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", q.Exchange, err)
	}

	if _, err := ch.QueueDeclare(q.Work, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare work queue %s: %w", q.Work, err)
	}

	return ch.QueueBind(q.Work, q.RoutingKey, q.Exchange, false, nil)
}

// PublishJSON publishes message as a persistent JSON body to queueName on the
// default exchange.
func PublishJSON(ctx context.Context, ch *amqp.Channel, queueName string, message any) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = ch.PublishWithContext(
		ctx,
		"",
		queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message to queue %s: %w", queueName, err)
	}

	return nil
}
