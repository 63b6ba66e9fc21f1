package notify

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize/english"
	"github.com/your-org/solar-storefront/internal/domain/order"
)

// FormatOrderMessage renders a new order for the operators' chat
func FormatOrderMessage(o *order.Order, currency string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🛒 New order %s\n", o.ID)
	fmt.Fprintf(&b, "Payment: %s\n", o.PaymentMethod)
	fmt.Fprintf(&b, "Total: %s (%s)\n", order.FormatAmount(o.Total, currency), english.Plural(o.ItemCount(), "item", "items"))
	b.WriteString("\n")

	for _, item := range o.Items {
		fmt.Fprintf(&b, "• %s × %d = %s\n", item.Name, item.Quantity, order.FormatAmount(item.Price*int64(item.Quantity), currency))
	}

	s := o.Shipping
	b.WriteString("\n")
	fmt.Fprintf(&b, "Customer: %s\n", s.FullName)
	fmt.Fprintf(&b, "Phone: %s\n", s.Phone)
	if email := firstNonEmpty(s.Email, o.Email); email != "" {
		fmt.Fprintf(&b, "Email: %s\n", email)
	}
	address := s.Address + ", " + s.City
	if s.Region != "" {
		address += ", " + s.Region
	}
	fmt.Fprintf(&b, "Address: %s\n", address)
	if s.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", s.Notes)
	}

	if o.CompatibilityWarning != "" {
		fmt.Fprintf(&b, "\n⚠️ %s\n", o.CompatibilityWarning)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Review is the subset of a review shown in notifications
type Review struct {
	Author      string
	Rating      int
	Comment     string
	ProductName string // empty for store-wide reviews
}

// FormatReviewMessage renders a new review
func FormatReviewMessage(r Review) string {
	var b strings.Builder

	rating := r.Rating
	if rating < 0 {
		rating = 0
	} else if rating > 5 {
		rating = 5
	}

	b.WriteString("⭐ New review")
	if r.ProductName != "" {
		fmt.Fprintf(&b, " for %s", r.ProductName)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s%s (%d/5)\n", strings.Repeat("★", rating), strings.Repeat("☆", 5-rating), r.Rating)
	fmt.Fprintf(&b, "By: %s\n", firstNonEmpty(r.Author, "Customer"))
	fmt.Fprintf(&b, "\n%s", r.Comment)
	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
