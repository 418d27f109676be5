package notifications

import (
	"fmt"
	"html/template"
	"strings"
)

const (
	subjectPrefix             = "Cineplex"
	subjectBookingConfirmed   = subjectPrefix + " - Order Confirmation"
	subjectPromotionBroadcast = subjectPrefix + " - Special Promotion"
)

// FormatTicketLine renders "Movie #12 - 2024-06-01 14:00 - F12 - adult - $12.50"
func FormatTicketLine(l TicketLine) string {
	return fmt.Sprintf("Movie #%d - %s %s - %s - %s - $%.2f",
		l.MovieID, l.ShowDate, l.StartTime, l.SeatNumber, l.TicketType, l.Price)
}

func bookingConfirmationData(c BookingConfirmation) map[string]interface{} {
	lines := make([]string, 0, len(c.Tickets))
	for _, t := range c.Tickets {
		lines = append(lines, FormatTicketLine(t))
	}
	return map[string]interface{}{
		"booking_id":   c.BookingID,
		"ticket_lines": lines,
		"total_amount": c.Total,
	}
}

func promotionData(p PromotionBroadcast) map[string]interface{} {
	return map[string]interface{}{
		"code":                p.Code,
		"discount_percentage": p.DiscountPercentage,
		"description":         p.Description,
	}
}

// renderContent builds the HTML and plain text bodies for a notification.
// Template data may have passed through JSON, so numbers arrive as float64
// and lists as []interface{}.
func renderContent(n *EmailNotification) (string, string) {
	data := n.TemplateData

	switch n.Type {
	case NotificationTypeBookingConfirmed:
		lines := stringList(data["ticket_lines"])

		var text strings.Builder
		text.WriteString("Dear customer,\n\n")
		text.WriteString("Thank you for your booking! Your order has been confirmed.\n\n")
		fmt.Fprintf(&text, "Booking ID: %v\n\nTickets:\n", number(data["booking_id"]))
		for _, l := range lines {
			text.WriteString(l + "\n")
		}
		fmt.Fprintf(&text, "\nTotal: $%.2f\n\n", toFloat(data["total_amount"]))
		text.WriteString("If you did not make this booking, please contact our support team.\n\nBest Regards,\nCineplex Team")

		var html strings.Builder
		html.WriteString("<h2>Order Confirmation</h2>")
		fmt.Fprintf(&html, "<p>Booking ID: <strong>%v</strong></p><ul>", number(data["booking_id"]))
		for _, l := range lines {
			html.WriteString("<li>" + template.HTMLEscapeString(l) + "</li>")
		}
		fmt.Fprintf(&html, "</ul><p>Total: <strong>$%.2f</strong></p><p>Best Regards,<br>Cineplex Team</p>", toFloat(data["total_amount"]))

		return html.String(), text.String()

	case NotificationTypePromotionBroadcast:
		description := fmt.Sprint(data["description"])
		code := fmt.Sprint(data["code"])
		discount := toFloat(data["discount_percentage"])

		text := fmt.Sprintf("Dear Valued Customer,\n\n"+
			"We're excited to offer you a special promotion!\n\n"+
			"%s\n\n"+
			"Discount: %g%% off your next purchase!\n\n"+
			"Use promotion code: %s\n\n"+
			"Simply enter this code at checkout to redeem your discount.\n\n"+
			"Best Regards,\nCineplex Team", description, discount, code)

		html := fmt.Sprintf("<h2>Special Promotion</h2><p>%s</p>"+
			"<p>Discount: <strong>%g%%</strong> off your next purchase!</p>"+
			"<p>Use promotion code: <strong>%s</strong></p>"+
			"<p>Best Regards,<br>Cineplex Team</p>",
			template.HTMLEscapeString(description), discount, template.HTMLEscapeString(code))

		return html, text

	default:
		text := fmt.Sprintf("Hi %s,\n\nThis is a notification from Cineplex.\n\nBest Regards,\nCineplex Team", n.RecipientName)
		html := fmt.Sprintf("<h2>%s</h2><p>This is a notification from Cineplex.</p>", template.HTMLEscapeString(n.Subject))
		return html, text
	}
}

func stringList(v interface{}) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, fmt.Sprint(item))
		}
		return out
	}
	return nil
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case uint:
		return float64(n)
	}
	return 0
}

// number prints whole floats without a fraction
func number(v interface{}) string {
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprint(v)
}
