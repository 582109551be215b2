package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/session"
	html "github.com/gofiber/template/html/v2"

	"artlease/internal/config"
	"artlease/internal/http/handlers"
	applog "artlease/internal/log"
	"artlease/internal/repos"
)

func main() {
	cfg := config.Load()

	// Log to stdout, plus the log file when one is configured.
	var sink io.Writer = os.Stdout
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			sink = io.MultiWriter(os.Stdout, f)
		}
	}
	applog.Init(sink, cfg.LogLevel)

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	// Sessions hold the shopper's cart, the remembered postcode and the
	// signed-in user id. Cart contents never touch the database.
	store := session.New(session.Config{
		KeyLookup:      "cookie:sid",
		Expiration:     24 * time.Hour,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
	})

	deps := handlers.NewDeps(db, cfg, store)

	engine := html.New("./web/templates", ".html")
	engine.Reload(true)

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			if rerr := c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
				"Message": "Something went wrong. Please try again.",
			}); rerr != nil {
				return c.Status(fiber.StatusInternalServerError).SendString("Something went wrong. Please try again.")
			}
			return nil
		},
	})
	// Image uploads stay small
	app.Server().MaxRequestBodySize = 8 << 20

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(deps.AttachUser())
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := string(c.Request().URI().Path())
			return strings.HasPrefix(p, "/static/") || strings.HasPrefix(p, "/media/")
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"form": c.FormValue("csrf")})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok := c.Locals("csrf"); tok != nil {
			c.Locals("CSRFToken", tok.(string))
		}
		return c.Next()
	})

	// ---------- Static assets ----------
	mediaDir := cfg.MediaDir
	if !filepath.IsAbs(mediaDir) {
		if abs, err := filepath.Abs(mediaDir); err == nil {
			mediaDir = abs
		}
	}
	app.Static("/static", "./web/static")
	// Guarded media to avoid traversal
	app.Get("/media/*", func(c *fiber.Ctx) error {
		path := c.Params("*")
		rawLower := strings.ToLower(path)
		if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		clean := filepath.Clean(path)
		if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendFile(filepath.Join(mediaDir, clean), true)
	})

	// ---------- Public catalog ----------
	app.Get("/", deps.CatalogHandler.Home)
	app.Get("/category/:id", deps.CatalogHandler.Category)
	app.Get("/artworks/:id", deps.CatalogHandler.Detail)
	app.Get("/vendors/:id", deps.CatalogHandler.VendorGallery)

	// ---------- API ----------
	api := app.Group("/api/v1")
	availLimiter := limiter.New(limiter.Config{
		Max:        15,
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|avail"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.availability.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})
	api.Get("/availability", availLimiter, deps.CartHandler.CheckAvailability)

	// ---------- Cart & checkout (shoppers only) ----------
	shop := app.Group("", handlers.GuestsOrCustomers())
	shop.Get("/cart", deps.CartHandler.View)
	shop.Post("/cart/add/:id", deps.CartHandler.Add)
	shop.Post("/cart/update/:line", deps.CartHandler.Update)
	shop.Post("/cart/remove/:line", deps.CartHandler.Remove)
	shop.Post("/cart/clear", deps.CartHandler.Clear)
	shop.Get("/checkout", deps.CheckoutHandler.Page)
	shop.Post("/checkout", deps.CheckoutHandler.Place)
	app.Get("/order/:id", deps.CheckoutHandler.Order)
	app.Get("/orders", deps.CheckoutHandler.MyOrders)

	// ---------- Auth (login throttled) ----------
	app.Get("/login", handlers.GuestsOnly(), deps.AuthHandler.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	}), deps.AuthHandler.Login)
	app.Post("/logout", deps.AuthHandler.Logout)
	app.Get("/register", handlers.GuestsOnly(), deps.AuthHandler.RegisterForm)
	app.Post("/register", deps.AuthHandler.Register)

	// ---------- Vendor management ----------
	vendor := app.Group("/vendor", handlers.RequireVendor())
	vendor.Get("/", deps.VendorHandler.Dashboard)
	vendor.Get("/gallery", deps.VendorHandler.Gallery)
	vendor.Post("/artworks", deps.VendorHandler.Publish)
	vendor.Get("/artworks/:id/edit", deps.VendorHandler.EditForm)
	vendor.Post("/artworks/:id/edit", deps.VendorHandler.Edit)
	vendor.Post("/artworks/:id/list", deps.VendorHandler.Relist)
	vendor.Post("/artworks/:id/unlist", deps.VendorHandler.Archive)
	vendor.Post("/artworks/:id/delete", deps.VendorHandler.Delete)

	// ---------- Admin order console ----------
	manage := app.Group("/manage", handlers.RequireAdmin())
	manage.Get("/orders", deps.AdminHandler.OrdersPage)
	manage.Get("/orders/:id", deps.AdminHandler.OrderDetail)
	manage.Post("/orders/:id/status", deps.AdminHandler.UpdateOrderStatus)

	// ---------- Health & 404 ----------
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Page not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
