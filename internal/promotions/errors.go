package promotions

import "cineplex/internal/shared/apperr"

var (
	ErrPromotionNotFound = apperr.NotFound("promotion_not_found", "promotion not found")
	ErrAlreadySent       = apperr.New(apperr.KindConflict, "promotion_already_sent", "promotion was already sent")
	ErrNoSubscribers     = apperr.New(apperr.KindState, "no_subscribers", "no customers are subscribed to promotions")
	ErrInvalidCode       = apperr.NotFound("invalid_promotion_code", "promotion code is not valid")
	ErrDuplicateCode     = apperr.New(apperr.KindConflict, "duplicate_promotion_code", "promotion code already exists")
)
