package customers

import "time"

type Role string

const (
	RoleCustomer Role = "USER"
	RoleAdmin    Role = "ADMIN"
)

// Customer mirrors the account table owned by the identity service. This
// module reads it to resolve ids, emails and promotion opt-ins.
type Customer struct {
	ID                    uint      `json:"id" gorm:"primaryKey"`
	Email                 string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	FirstName             string    `json:"first_name" gorm:"type:varchar(100);not null"`
	LastName              string    `json:"last_name" gorm:"type:varchar(100);not null"`
	PasswordHash          string    `json:"-" gorm:"not null"`
	Role                  Role      `json:"role" gorm:"type:varchar(20);not null;default:'USER'"`
	PromotionSubscription bool      `json:"promotion_subscription" gorm:"not null;default:false"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}

func (c *Customer) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

func IsValidRole(role string) bool {
	switch role {
	case string(RoleCustomer), string(RoleAdmin):
		return true
	default:
		return false
	}
}
