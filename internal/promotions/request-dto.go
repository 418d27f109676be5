package promotions

// CreateRequest creates an unsent promotion. Code is generated when empty.
type CreateRequest struct {
	Code               string  `json:"code" validate:"omitempty,alphanum,min=4,max=32"`
	DiscountPercentage float64 `json:"discount_percentage" validate:"gt=0,lte=100"`
	Description        string  `json:"description" validate:"required,max=500"`
}
