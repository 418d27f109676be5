package customers

import (
	"context"
	"errors"

	"cineplex/internal/shared/apperr"

	"gorm.io/gorm"
)

var ErrCustomerNotFound = apperr.NotFound("customer_not_found", "customer not found")

// Directory answers identity questions for the booking and promotion
// services. Every storage failure is reported as a dependency error.
type Directory struct {
	db *gorm.DB
}

func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{db: db}
}

func (d *Directory) CustomerExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&Customer{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, apperr.Dependency("check customer", err)
	}
	return count > 0, nil
}

func (d *Directory) CustomerEmail(ctx context.Context, id uint) (string, error) {
	var customer Customer
	err := d.db.WithContext(ctx).Select("id", "email").Where("id = ?", id).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrCustomerNotFound.WithDetail("id %d", id)
		}
		return "", apperr.Dependency("load customer email", err)
	}
	return customer.Email, nil
}

// SubscribedCustomerEmails lists the addresses of customers that opted in to
// promotions, ordered by id.
func (d *Directory) SubscribedCustomerEmails(ctx context.Context) ([]string, error) {
	var emails []string
	err := d.db.WithContext(ctx).
		Model(&Customer{}).
		Where("promotion_subscription = ?", true).
		Where("email <> ''").
		Order("id ASC").
		Pluck("email", &emails).Error
	if err != nil {
		return nil, apperr.Dependency("list subscribed customers", err)
	}
	return emails, nil
}
