package bookings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"cineplex/pkg/logger"
	"cineplex/pkg/mq"

	amqp "github.com/rabbitmq/amqp091-go"
)

// expiryClockSkew absorbs the gap between a booking's created_at and the
// moment its timer message was published
const expiryClockSkew = 5 * time.Second

// BookingExpirer is the part of the booking service the timer drives
type BookingExpirer interface {
	ExpireBooking(ctx context.Context, id uint, threshold time.Duration) (bool, error)
}

// ExpiryQueue arms one RabbitMQ timer per booking. Messages wait in a TTL
// queue and are dead-lettered to the work queue once the pending window has
// passed; the consumer then expires the booking if it is still pending.
type ExpiryQueue struct {
	ch      *amqp.Channel
	queue   mq.DelayQueue
	expirer BookingExpirer
	log     *logger.Logger

	publishMu sync.Mutex
	wg        sync.WaitGroup
}

func NewBookingExpiryQueue(ttl time.Duration) mq.DelayQueue {
	return mq.DelayQueue{
		Delay:      "cineplex.bookings.expiry.delay",
		Exchange:   "cineplex.bookings.expiry",
		Work:       "cineplex.bookings.expiry.work",
		RoutingKey: "booking.expire",
		TTL:        ttl,
	}
}

func NewExpiryQueue(conn *amqp.Connection, ttl time.Duration, expirer BookingExpirer, log *logger.Logger) (*ExpiryQueue, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	queue := NewBookingExpiryQueue(ttl)
	if err := queue.Declare(ch); err != nil {
		ch.Close()
		return nil, err
	}

	if log == nil {
		log = logger.GetDefault()
	}

	return &ExpiryQueue{
		ch:      ch,
		queue:   queue,
		expirer: expirer,
		log:     log.WithComponent("booking_expiry_queue"),
	}, nil
}

func (q *ExpiryQueue) ScheduleExpiry(ctx context.Context, msg ExpiryMessage) error {
	q.publishMu.Lock()
	defer q.publishMu.Unlock()
	return mq.PublishJSON(ctx, q.ch, q.queue.Delay, msg)
}

// Start consumes dead-lettered timers until ctx is done or the channel closes
func (q *ExpiryQueue) Start(ctx context.Context) error {
	if err := q.ch.Qos(10, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := q.ch.Consume(q.queue.Work, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume %s: %w", q.queue.Work, err)
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				if err := q.handle(ctx, d.Body); err != nil {
					q.log.ErrorWithContext(ctx, "Booking expiry timer failed", err, nil)
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (q *ExpiryQueue) handle(ctx context.Context, body []byte) error {
	var msg ExpiryMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("failed to decode expiry message: %w", err)
	}
	if msg.BookingID == 0 {
		return errors.New("expiry message without booking id")
	}

	threshold := q.queue.TTL - expiryClockSkew
	if threshold <= 0 {
		threshold = q.queue.TTL
	}

	expired, err := q.expirer.ExpireBooking(ctx, msg.BookingID, threshold)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return nil
		}
		return err
	}
	if expired {
		q.log.DebugWithContext(ctx, "Booking expired by timer", map[string]interface{}{"booking_id": msg.BookingID})
	}
	return nil
}

func (q *ExpiryQueue) Close() error {
	err := q.ch.Close()
	q.wg.Wait()
	return err
}
