package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	applog "artlease/internal/log"
	"artlease/internal/repos"
	"artlease/internal/validate"
)

type AdminHandler struct {
	Orders *repos.OrderRepo
}

// orderRow is one admin console row with its recomputed grand total.
type orderRow struct {
	repos.OrderSummary
	Total decimal.Decimal
}

// OrdersPage lists the latest orders with totals derived from the
// snapshotted line prices.
func (h *AdminHandler) OrdersPage(c *fiber.Ctx) error {
	sums, err := h.Orders.ListLatest(100)
	if err != nil {
		applog.Error(c, "admin.orders.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load orders"})
	}

	rows := make([]orderRow, 0, len(sums))
	for _, s := range sums {
		o, err := h.Orders.Get(s.ID)
		if err != nil {
			applog.Error(c, "admin.orders.total.fail", err, map[string]any{"order_id": s.ID})
			continue
		}
		rows = append(rows, orderRow{OrderSummary: s, Total: orderTotal(&o)})
	}
	return render(c, "admin_orders", fiber.Map{"Orders": rows, "Message": c.Query("msg")})
}

// OrderDetail shows one order with its lines.
func (h *AdminHandler) OrderDetail(c *fiber.Ctx) error {
	id := c.Params("id")
	o, err := h.Orders.Get(id)
	if err != nil {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Order not found"})
	}
	return render(c, "admin_order", fiber.Map{"Order": o, "Total": orderTotal(&o)})
}

// UpdateOrderStatus moves an order through its lifecycle.
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	status, ok := validate.OrderStatus(c.FormValue("status"))
	if id == "" || !ok {
		return c.Status(400).SendString("invalid order or status")
	}
	if _, err := h.Orders.Get(id); err != nil {
		return c.Status(404).SendString("order not found")
	}
	if err := h.Orders.UpdateStatus(id, status); err != nil {
		applog.Error(c, "admin.orders.update.fail", err, map[string]any{"order_id": id})
		return c.Status(400).SendString("could not update status")
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": id, "status": status})
	return c.Redirect("/manage/orders?msg=" + escape("Order updated."))
}
