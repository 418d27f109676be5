package tickets

import (
	"math"
	"strings"

	"cineplex/internal/shared/config"
	"cineplex/internal/showtimes"
)

// PricingStrategy computes the price captured on a ticket at issue time.
type PricingStrategy interface {
	Price(showtime *showtimes.Showtime, ticketType TicketType) float64
}

// FlatPricing charges the showtime's price for every ticket type.
type FlatPricing struct{}

func (FlatPricing) Price(showtime *showtimes.Showtime, _ TicketType) float64 {
	return showtime.Price
}

// TicketTypePricing scales the showtime's price per ticket type. Types without
// a multiplier pay the full price.
type TicketTypePricing struct {
	Multipliers map[TicketType]float64
}

func NewTicketTypePricing(senior, child float64) TicketTypePricing {
	return TicketTypePricing{Multipliers: map[TicketType]float64{
		TicketTypeSenior: senior,
		TicketTypeChild:  child,
	}}
}

func (p TicketTypePricing) Price(showtime *showtimes.Showtime, ticketType TicketType) float64 {
	m, ok := p.Multipliers[ticketType]
	if !ok || m < 0 {
		m = 1
	}
	return roundCents(showtime.Price * m)
}

// PricingFromConfig returns the configured strategy, flat unless
// ticket_type is selected.
func PricingFromConfig(cfg config.PricingConfig) PricingStrategy {
	if strings.EqualFold(cfg.Strategy, "ticket_type") {
		return NewTicketTypePricing(cfg.SeniorMultiplier, cfg.ChildMultiplier)
	}
	return FlatPricing{}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
