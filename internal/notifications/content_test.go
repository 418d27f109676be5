package notifications

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestFormatTicketLine(t *testing.T) {
	line := TicketLine{MovieID: 12, ShowDate: "2024-06-01", StartTime: "14:00", SeatNumber: "F12", TicketType: "adult", Price: 12.5}

	want := "Movie #12 - 2024-06-01 14:00 - F12 - adult - $12.50"
	if got := FormatTicketLine(line); got != want {
		t.Errorf("FormatTicketLine() = %q, want %q", got, want)
	}
}

func TestRenderBookingConfirmationAfterJSON(t *testing.T) {
	confirmation := BookingConfirmation{
		BookingID: 42,
		Tickets: []TicketLine{
			{MovieID: 3, ShowDate: "2024-06-01", StartTime: "20:00", SeatNumber: "A1", TicketType: "adult", Price: 10},
			{MovieID: 3, ShowDate: "2024-06-01", StartTime: "20:00", SeatNumber: "A2", TicketType: "child", Price: 7.5},
		},
		Total: 17.5,
	}
	n := NewNotificationBuilder().
		WithType(NotificationTypeBookingConfirmed).
		WithTemplateData(bookingConfirmationData(confirmation)).
		Build()

	// the consumer sees template data after a JSON round trip
	body, err := n.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	var decoded EmailNotification
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatal(err)
	}

	html, text := renderContent(&decoded)

	for _, want := range []string{
		"Booking ID: 42",
		"Movie #3 - 2024-06-01 20:00 - A1 - adult - $10.00",
		"Movie #3 - 2024-06-01 20:00 - A2 - child - $7.50",
		"Total: $17.50",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("text body missing %q:\n%s", want, text)
		}
	}
	if !strings.Contains(html, "<li>Movie #3 - 2024-06-01 20:00 - A1 - adult - $10.00</li>") {
		t.Errorf("html body missing ticket line:\n%s", html)
	}
}

func TestRenderPromotion(t *testing.T) {
	n := NewNotificationBuilder().
		WithType(NotificationTypePromotionBroadcast).
		WithTemplateData(promotionData(PromotionBroadcast{Code: "PROMO-ABC123", DiscountPercentage: 15, Description: "Summer <deal>"})).
		Build()

	html, text := renderContent(n)

	for _, want := range []string{"Summer <deal>", "Discount: 15% off", "Use promotion code: PROMO-ABC123"} {
		if !strings.Contains(text, want) {
			t.Errorf("text body missing %q:\n%s", want, text)
		}
	}
	if !strings.Contains(html, "Summer &lt;deal&gt;") {
		t.Errorf("html body should escape the description:\n%s", html)
	}
}
