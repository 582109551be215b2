package handlers

import (
	"github.com/gofiber/fiber/v2"

	"artlease/internal/domain"
	applog "artlease/internal/log"
)

// Role gating is one policy check over the user the session middleware
// attached; every guard below is a thin wrapper naming its policy.

func allow(policy func(*domain.User) bool, deny fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if policy(currentUser(c)) {
			return c.Next()
		}
		return deny(c)
	}
}

func denyToLogin(action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		applog.Security(c, action, nil)
		return c.Redirect("/login")
	}
}

func denyForbidden(action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		applog.Security(c, action, nil)
		return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Access denied"})
	}
}

func RequireAdmin() fiber.Handler {
	return allow(func(u *domain.User) bool { return u.IsAdmin() }, denyForbidden("access.denied.admin"))
}

func RequireVendor() fiber.Handler {
	return allow(func(u *domain.User) bool { return u.IsVendor() }, denyToLogin("access.denied.vendor"))
}

// GuestsOrCustomers gates the shopping surface: carts belong to shoppers,
// not to vendor or admin accounts.
func GuestsOrCustomers() fiber.Handler {
	return allow(func(u *domain.User) bool { return u == nil || u.IsCustomer() },
		func(c *fiber.Ctx) error {
			applog.Security(c, "access.denied.cart", nil)
			return c.Redirect("/")
		})
}

// GuestsOnly keeps logged-in users off the login/register pages.
func GuestsOnly() fiber.Handler {
	return allow(func(u *domain.User) bool { return u == nil },
		func(c *fiber.Ctx) error { return c.Redirect("/") })
}
