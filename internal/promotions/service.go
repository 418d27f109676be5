package promotions

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"cineplex/internal/notifications"
	"cineplex/internal/shared/apperr"
	"cineplex/internal/shared/utils/validation"
	"cineplex/pkg/logger"
)

// SubscriberDirectory lists the customers that opted in to promotions
type SubscriberDirectory interface {
	SubscribedCustomerEmails(ctx context.Context) ([]string, error)
}

type Broadcaster interface {
	SendPromotionBroadcast(ctx context.Context, emails []string, promotion notifications.PromotionBroadcast) error
}

// AsyncRunner runs a job after the caller returns
type AsyncRunner interface {
	Go(ctx context.Context, kind string, fields map[string]interface{}, job func(ctx context.Context) error)
}

type Service interface {
	SetBroadcaster(broadcaster Broadcaster, runner AsyncRunner)

	CreatePromotion(ctx context.Context, req CreateRequest) (*Promotion, error)
	SendToSubscribers(ctx context.Context, id uint) (*SendResult, error)
	ValidateCode(ctx context.Context, code string) (*ValidationResult, error)
	DeletePromotion(ctx context.Context, id uint) error
	ListPromotions(ctx context.Context) ([]Promotion, error)
	GetPromotion(ctx context.Context, id uint) (*Promotion, error)
}

const (
	generatedCodePrefix  = "PROMO-"
	generatedCodeLength  = 6
	maxGenerateAttempts  = 5
	generatedCodeLetters = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

type service struct {
	repo        Repository
	subscribers SubscriberDirectory
	log         *logger.Logger
	now         func() time.Time

	broadcaster Broadcaster
	runner      AsyncRunner
}

func NewService(repo Repository, subscribers SubscriberDirectory, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{
		repo:        repo,
		subscribers: subscribers,
		log:         log.WithComponent("promotions"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) SetBroadcaster(broadcaster Broadcaster, runner AsyncRunner) {
	s.broadcaster = broadcaster
	s.runner = runner
}

func (s *service) CreatePromotion(ctx context.Context, req CreateRequest) (*Promotion, error) {
	req.Code = strings.TrimSpace(req.Code)
	req.Description = strings.TrimSpace(req.Description)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	promotion := &Promotion{
		Code:               strings.ToUpper(req.Code),
		DiscountPercentage: req.DiscountPercentage,
		Description:        req.Description,
		CreatedAt:          s.now(),
	}

	if promotion.Code != "" {
		if err := s.repo.Create(ctx, promotion); err != nil {
			return nil, apperr.FromStorage("create promotion", err, nil, ErrDuplicateCode.WithDetail("code %s", promotion.Code))
		}
		return promotion, nil
	}

	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		code, err := generateCode()
		if err != nil {
			return nil, apperr.Dependency("generate promotion code", err)
		}
		promotion.ID = 0
		promotion.Code = code

		err = apperr.FromStorage("create promotion", s.repo.Create(ctx, promotion), nil, ErrDuplicateCode)
		if err == nil {
			return promotion, nil
		}
		if !errors.Is(err, ErrDuplicateCode) {
			return nil, err
		}
	}
	return nil, apperr.Dependency("create promotion", errors.New("could not generate a unique code"))
}

func generateCode() (string, error) {
	suffix := make([]byte, generatedCodeLength)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(generatedCodeLetters))))
		if err != nil {
			return "", err
		}
		suffix[i] = generatedCodeLetters[n.Int64()]
	}
	return generatedCodePrefix + string(suffix), nil
}

// SendToSubscribers marks the promotion sent and then broadcasts it. The flag
// flips before delivery so a second call can never send twice; a broadcast
// that fails after the flip is logged and not retried.
func (s *service) SendToSubscribers(ctx context.Context, id uint) (*SendResult, error) {
	promotion, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.FromStorage("get promotion", err, ErrPromotionNotFound, nil)
	}
	if promotion.IsSent {
		return nil, ErrAlreadySent.WithDetail("promotion %d", id)
	}

	emails, err := s.subscribers.SubscribedCustomerEmails(ctx)
	if err != nil {
		return nil, apperr.FromStorage("list subscribers", err, nil, nil)
	}
	if len(emails) == 0 {
		return nil, ErrNoSubscribers
	}

	ok, err := s.repo.MarkSent(ctx, id, s.now())
	if err != nil {
		return nil, apperr.Dependency("mark promotion sent", err)
	}
	if !ok {
		return nil, ErrAlreadySent.WithDetail("promotion %d", id)
	}

	s.broadcast(ctx, promotion, emails)
	s.log.LogPromotionSent(ctx, promotion.ID, len(emails))

	return &SendResult{PromotionID: promotion.ID, Recipients: len(emails)}, nil
}

func (s *service) broadcast(ctx context.Context, promotion *Promotion, emails []string) {
	if s.broadcaster == nil {
		return
	}

	payload := notifications.PromotionBroadcast{
		PromotionID:        promotion.ID,
		Code:               promotion.Code,
		DiscountPercentage: promotion.DiscountPercentage,
		Description:        promotion.Description,
	}
	job := func(ctx context.Context) error {
		return s.broadcaster.SendPromotionBroadcast(ctx, emails, payload)
	}

	fields := map[string]interface{}{"promotion_id": promotion.ID, "recipients": len(emails)}
	if s.runner != nil {
		s.runner.Go(ctx, "promotion_broadcast", fields, job)
		return
	}
	if err := job(ctx); err != nil {
		s.log.LogNotificationFailed(ctx, "promotion_broadcast", err, fields)
	}
}

func (s *service) ValidateCode(ctx context.Context, code string) (*ValidationResult, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrInvalidCode
	}

	promotion, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, apperr.FromStorage("get promotion by code", err, ErrInvalidCode.WithDetail("code %s", code), nil)
	}
	if !promotion.IsSent {
		return nil, ErrInvalidCode.WithDetail("code %s", code)
	}

	return &ValidationResult{Code: promotion.Code, DiscountPercentage: promotion.DiscountPercentage}, nil
}

func (s *service) DeletePromotion(ctx context.Context, id uint) error {
	return apperr.FromStorage("delete promotion", s.repo.Delete(ctx, id), ErrPromotionNotFound, nil)
}

func (s *service) ListPromotions(ctx context.Context) ([]Promotion, error) {
	promotions, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Dependency("list promotions", err)
	}
	return promotions, nil
}

func (s *service) GetPromotion(ctx context.Context, id uint) (*Promotion, error) {
	promotion, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.FromStorage("get promotion", err, ErrPromotionNotFound, nil)
	}
	return promotion, nil
}
