package notifications

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeBookingConfirmed   NotificationType = "BOOKING_CONFIRMED"
	NotificationTypePromotionBroadcast NotificationType = "PROMOTION_BROADCAST"
)

type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "LOW"
	NotificationPriorityMedium NotificationPriority = "MEDIUM"
	NotificationPriorityHigh   NotificationPriority = "HIGH"
)

type NotificationStatus string

const (
	NotificationStatusPending  NotificationStatus = "PENDING"
	NotificationStatusQueued   NotificationStatus = "QUEUED"
	NotificationStatusSending  NotificationStatus = "SENDING"
	NotificationStatusSent     NotificationStatus = "SENT"
	NotificationStatusFailed   NotificationStatus = "FAILED"
	NotificationStatusRetrying NotificationStatus = "RETRYING"
	NotificationStatusExpired  NotificationStatus = "EXPIRED"
)

// EmailNotification is one outbound email. Broadcasts address the sender and
// list recipients in Bcc.
type EmailNotification struct {
	ID       uuid.UUID            `json:"id"`
	Type     NotificationType     `json:"type"`
	Priority NotificationPriority `json:"priority"`

	RecipientEmail string   `json:"recipient_email"`
	RecipientName  string   `json:"recipient_name"`
	Bcc            []string `json:"bcc,omitempty"`

	Subject      string                 `json:"subject"`
	TemplateData map[string]interface{} `json:"template_data"`

	BookingID   *uint `json:"booking_id,omitempty"`
	PromotionID *uint `json:"promotion_id,omitempty"`

	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	Status     NotificationStatus `json:"status"`
	RetryCount int                `json:"retry_count"`
	MaxRetries int                `json:"max_retries"`
	LastError  *string            `json:"last_error,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
	SentAt     *time.Time         `json:"sent_at,omitempty"`
}

// TicketLine is one ticket as listed in a confirmation email
type TicketLine struct {
	MovieID    uint    `json:"movie_id"`
	ShowDate   string  `json:"date"`
	StartTime  string  `json:"start_time"`
	SeatNumber string  `json:"seat_number"`
	TicketType string  `json:"ticket_type"`
	Price      float64 `json:"price"`
}

type BookingConfirmation struct {
	BookingID  uint         `json:"booking_id"`
	CustomerID uint         `json:"customer_id"`
	Tickets    []TicketLine `json:"tickets"`
	Total      float64      `json:"total"`
}

type PromotionBroadcast struct {
	PromotionID        uint    `json:"promotion_id"`
	Code               string  `json:"code"`
	DiscountPercentage float64 `json:"discount_percentage"`
	Description        string  `json:"description"`
}

type NotificationBuilder struct {
	notification *EmailNotification
}

func NewNotificationBuilder() *NotificationBuilder {
	now := time.Now()
	return &NotificationBuilder{
		notification: &EmailNotification{
			ID:           uuid.New(),
			Status:       NotificationStatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
			MaxRetries:   3,
			TemplateData: make(map[string]interface{}),
		},
	}
}

func (nb *NotificationBuilder) WithType(notType NotificationType) *NotificationBuilder {
	nb.notification.Type = notType
	nb.notification.Priority = GetDefaultPriority(notType)
	return nb
}

func (nb *NotificationBuilder) WithRecipient(email, name string) *NotificationBuilder {
	nb.notification.RecipientEmail = email
	nb.notification.RecipientName = name
	return nb
}

func (nb *NotificationBuilder) WithBcc(emails []string) *NotificationBuilder {
	nb.notification.Bcc = append([]string(nil), emails...)
	return nb
}

func (nb *NotificationBuilder) WithSubject(subject string) *NotificationBuilder {
	nb.notification.Subject = subject
	return nb
}

func (nb *NotificationBuilder) WithTemplateData(data map[string]interface{}) *NotificationBuilder {
	nb.notification.TemplateData = data
	return nb
}

func (nb *NotificationBuilder) WithBookingContext(bookingID uint) *NotificationBuilder {
	nb.notification.BookingID = &bookingID
	return nb
}

func (nb *NotificationBuilder) WithPromotionContext(promotionID uint) *NotificationBuilder {
	nb.notification.PromotionID = &promotionID
	return nb
}

func (nb *NotificationBuilder) WithExpiration(expiresAt *time.Time) *NotificationBuilder {
	nb.notification.ExpiresAt = expiresAt
	return nb
}

func (nb *NotificationBuilder) WithMaxRetries(maxRetries int) *NotificationBuilder {
	nb.notification.MaxRetries = maxRetries
	return nb
}

func (nb *NotificationBuilder) Build() *EmailNotification {
	return nb.notification
}

func GetDefaultPriority(notType NotificationType) NotificationPriority {
	switch notType {
	case NotificationTypeBookingConfirmed:
		return NotificationPriorityHigh
	case NotificationTypePromotionBroadcast:
		return NotificationPriorityLow
	default:
		return NotificationPriorityMedium
	}
}

// GetPartitionKey keeps messages about one booking or promotion in order
func (en *EmailNotification) GetPartitionKey() string {
	switch {
	case en.BookingID != nil:
		return "booking-" + strconv.FormatUint(uint64(*en.BookingID), 10)
	case en.PromotionID != nil:
		return "promotion-" + strconv.FormatUint(uint64(*en.PromotionID), 10)
	default:
		return en.RecipientEmail
	}
}

// Recipients lists every address the message is delivered to
func (en *EmailNotification) Recipients() []string {
	out := make([]string, 0, 1+len(en.Bcc))
	if en.RecipientEmail != "" {
		out = append(out, en.RecipientEmail)
	}
	return append(out, en.Bcc...)
}

func (en *EmailNotification) ToJSON() ([]byte, error) {
	return json.Marshal(en)
}

func (en *EmailNotification) IsExpired() bool {
	return en.ExpiresAt != nil && time.Now().After(*en.ExpiresAt)
}

func (en *EmailNotification) MarkSent() {
	now := time.Now()
	en.Status = NotificationStatusSent
	en.SentAt = &now
	en.UpdatedAt = now
}

func (en *EmailNotification) MarkFailed(err error) {
	en.Status = NotificationStatusFailed
	en.UpdatedAt = time.Now()

	errorStr := err.Error()
	en.LastError = &errorStr
}
