package tickets

import (
	"testing"

	"cineplex/internal/shared/config"
	"cineplex/internal/showtimes"
)

func TestFlatPricingIgnoresTicketType(t *testing.T) {
	st := &showtimes.Showtime{Price: 12.5}
	for _, tt := range []TicketType{TicketTypeAdult, TicketTypeSenior, TicketTypeChild} {
		if got := (FlatPricing{}).Price(st, tt); got != 12.5 {
			t.Errorf("%s price = %v, want 12.5", tt, got)
		}
	}
}

func TestTicketTypePricing(t *testing.T) {
	st := &showtimes.Showtime{Price: 10}
	p := NewTicketTypePricing(0.7, 0.5)

	tests := []struct {
		ticketType TicketType
		want       float64
	}{
		{TicketTypeAdult, 10},
		{TicketTypeSenior, 7},
		{TicketTypeChild, 5},
	}
	for _, tt := range tests {
		if got := p.Price(st, tt.ticketType); got != tt.want {
			t.Errorf("%s price = %v, want %v", tt.ticketType, got, tt.want)
		}
	}

	odd := &showtimes.Showtime{Price: 9.99}
	if got := NewTicketTypePricing(1, 1.0/3).Price(odd, TicketTypeChild); got != 3.33 {
		t.Errorf("price should be rounded to cents, got %v", got)
	}
}

func TestPricingFromConfig(t *testing.T) {
	if _, ok := PricingFromConfig(config.PricingConfig{Strategy: "flat"}).(FlatPricing); !ok {
		t.Errorf("flat strategy expected")
	}
	if _, ok := PricingFromConfig(config.PricingConfig{}).(FlatPricing); !ok {
		t.Errorf("flat is the default")
	}
	if _, ok := PricingFromConfig(config.PricingConfig{Strategy: "ticket_type", SeniorMultiplier: 0.8, ChildMultiplier: 0.5}).(TicketTypePricing); !ok {
		t.Errorf("ticket_type strategy expected")
	}
}
