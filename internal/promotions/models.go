package promotions

import "time"

// Promotion is a discount code that is broadcast to subscribers exactly once.
// A code only validates after its broadcast.
type Promotion struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	Code               string     `gorm:"type:varchar(32);not null;uniqueIndex" json:"code"`
	DiscountPercentage float64    `gorm:"type:numeric(5,2);not null;check:discount_percentage > 0 AND discount_percentage <= 100" json:"discount_percentage"`
	Description        string     `gorm:"type:text;not null" json:"description"`
	IsSent             bool       `gorm:"not null;default:false" json:"is_sent"`
	SentAt             *time.Time `json:"sent_at,omitempty"`
	CreatedAt          time.Time  `gorm:"not null" json:"created_at"`
}

func (Promotion) TableName() string {
	return "promotions"
}

type ValidationResult struct {
	Code               string  `json:"code"`
	DiscountPercentage float64 `json:"discount_percentage"`
}

type SendResult struct {
	PromotionID uint `json:"promotion_id"`
	Recipients  int  `json:"recipients"`
}
