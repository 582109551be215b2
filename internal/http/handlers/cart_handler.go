package handlers

import (
	"errors"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	applog "artlease/internal/log"
	"artlease/internal/services"
	"artlease/internal/validate"
)

type CartHandler struct {
	Sessions *session.Store
	Cart     *services.CartStore
	Guard    *services.AvailabilityGuard
}

// View renders the cart rehydrated against the live catalog, with the
// delivery estimate for the remembered postcode.
func (h *CartHandler) View(c *fiber.Ctx) error {
	sess, err := getSession(h.Sessions, c)
	if err != nil {
		return err
	}
	bag := sessionBag{sess}

	lines, err := h.Cart.Snapshot(bag)
	if err != nil {
		applog.Error(c, "cart.view", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
	}
	total, err := h.Cart.Total(bag, bag.Postcode())
	if err != nil {
		applog.Error(c, "cart.total", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
	}

	return render(c, "cart", fiber.Map{
		"Lines":    lines,
		"Total":    total,
		"Postcode": bag.Postcode(),
		"Message":  c.Query("msg"),
	})
}

// Add handles POST /cart/add/:id. An optional posted postcode is remembered
// for delivery estimates on later pages.
func (h *CartHandler) Add(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(400).SendString("missing artwork id")
	}
	qty := validate.Qty(c.FormValue("quantity"))
	weeks := validate.Weeks(c.FormValue("weeks"))

	sess, err := getSession(h.Sessions, c)
	if err != nil {
		return err
	}
	bag := sessionBag{sess}

	if pc, ok := validate.Postcode(c.FormValue("postcode")); ok {
		bag.SetPostcode(pc)
	}

	ok, reason := h.Cart.Add(bag, id, qty, weeks)
	if err := sess.Save(); err != nil {
		return err
	}
	if !ok {
		applog.Info(c, "cart.add.reject", map[string]any{"artwork_id": id, "reason": reason})
		return c.Redirect("/cart?msg=" + url.QueryEscape(reason))
	}
	applog.Info(c, "cart.add", map[string]any{"artwork_id": id, "qty": qty, "weeks": weeks})
	return c.Redirect("/cart")
}

// Update handles POST /cart/update/:line with a quantity (or an
// increase/decrease direction from the +/- buttons).
func (h *CartHandler) Update(c *fiber.Ctx) error {
	lineID, ok := validate.ID(c.Params("line"))
	if !ok {
		return c.Status(400).SendString("missing cart line id")
	}
	qty := validate.Qty(c.FormValue("quantity"))
	switch c.FormValue("direction") {
	case "increase":
		qty++
	case "decrease":
		if qty > 1 {
			qty--
		}
	}

	sess, err := getSession(h.Sessions, c)
	if err != nil {
		return err
	}

	uerr := h.Cart.Update(sessionBag{sess}, lineID, qty)
	if err := sess.Save(); err != nil {
		return err
	}
	if errors.Is(uerr, services.ErrLineNotFound) {
		return c.Redirect("/cart?msg=" + url.QueryEscape("Item not found in cart"))
	}
	if uerr != nil {
		if services.GuardKindOf(uerr) != "" {
			return c.Redirect("/cart?msg=" + url.QueryEscape(uerr.Error()))
		}
		applog.Error(c, "cart.update", uerr, map[string]any{"line_id": lineID})
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not update your cart"})
	}
	return c.Redirect("/cart")
}

// Remove handles POST /cart/remove/:line. Removing a vanished line is not
// an error; the shopper just sees the cart without it.
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	lineID, ok := validate.ID(c.Params("line"))
	if !ok {
		return c.Status(400).SendString("missing cart line id")
	}
	sess, err := getSession(h.Sessions, c)
	if err != nil {
		return err
	}
	removed := h.Cart.Remove(sessionBag{sess}, lineID)
	if err := sess.Save(); err != nil {
		return err
	}
	if !removed {
		return c.Redirect("/cart?msg=" + url.QueryEscape("Item not found in cart"))
	}
	return c.Redirect("/cart")
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	sess, err := getSession(h.Sessions, c)
	if err != nil {
		return err
	}
	h.Cart.Clear(sessionBag{sess})
	if err := sess.Save(); err != nil {
		return err
	}
	return c.Redirect("/cart")
}

// CheckAvailability is the JSON endpoint the artwork page polls before
// enabling the add-to-cart button.
func (h *CartHandler) CheckAvailability(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Query("artworkId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing artworkId"})
	}
	qty := validate.Qty(c.Query("qty"))
	weeks := validate.Weeks(c.Query("weeks"))

	if err := h.Guard.Check(id, qty, weeks, time.Time{}); err != nil {
		if kind := services.GuardKindOf(err); kind != "" {
			return c.JSON(fiber.Map{"ok": false, "kind": string(kind), "reason": err.Error()})
		}
		applog.Error(c, "availability.check", err, map[string]any{"artwork_id": id})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "availability check failed"})
	}
	return c.JSON(fiber.Map{"ok": true})
}
