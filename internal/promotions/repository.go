package promotions

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, promotion *Promotion) error
	GetByID(ctx context.Context, id uint) (*Promotion, error)
	GetByCode(ctx context.Context, code string) (*Promotion, error)
	List(ctx context.Context) ([]Promotion, error)
	Delete(ctx context.Context, id uint) error
	// MarkSent flips is_sent only if it is still false
	MarkSent(ctx context.Context, id uint, at time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, promotion *Promotion) error {
	return r.db.WithContext(ctx).Create(promotion).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Promotion, error) {
	var promotion Promotion
	if err := r.db.WithContext(ctx).First(&promotion, id).Error; err != nil {
		return nil, err
	}
	return &promotion, nil
}

func (r *repository) GetByCode(ctx context.Context, code string) (*Promotion, error) {
	var promotion Promotion
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&promotion).Error; err != nil {
		return nil, err
	}
	return &promotion, nil
}

func (r *repository) List(ctx context.Context) ([]Promotion, error) {
	var promotions []Promotion
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&promotions).Error
	if err != nil {
		return nil, err
	}
	return promotions, nil
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&Promotion{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) MarkSent(ctx context.Context, id uint, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&Promotion{}).
		Where("id = ? AND is_sent = ?", id, false).
		Updates(map[string]interface{}{"is_sent": true, "sent_at": at})
	return result.RowsAffected == 1, result.Error
}
