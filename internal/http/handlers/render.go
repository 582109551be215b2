package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"artlease/internal/domain"
	"artlease/internal/pricing"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if u := c.Locals("user"); u != nil {
		data["User"] = u
	}
	if tok, _ := c.Locals("CSRFToken").(string); tok != "" {
		data["CSRFToken"] = tok
	} else if cookTok := c.Cookies("csrf_"); cookTok != "" {
		data["CSRFToken"] = cookTok
	}
	return c.Render(tmpl, data)
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

// escape makes a shopper-facing message safe to carry in a redirect query.
func escape(msg string) string { return url.QueryEscape(msg) }

// orderTotal recomputes an order's grand total from its snapshotted lines
// plus the stored delivery fee.
func orderTotal(o *domain.Order) decimal.Decimal {
	total := o.DeliveryFee
	for _, l := range o.Lines {
		total = total.Add(pricing.LineTotal(l.UnitPrice, l.Quantity, l.Weeks))
	}
	return total
}
