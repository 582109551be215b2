package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/session"
	html "github.com/gofiber/template/html/v2"

	"artlease/internal/config"
	"artlease/internal/http/handlers"
	"artlease/internal/repos"
)

// newApp wires the full route surface against a seeded in-memory database,
// mirroring the server entrypoint minus static assets and logging.
func newApp(t *testing.T) *fiber.App {
	t.Helper()
	cfg := config.Config{DBDSN: ":memory:", MediaDir: t.TempDir()}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	store := session.New(session.Config{KeyLookup: "cookie:sid", Expiration: time.Hour})
	deps := handlers.NewDeps(db, cfg, store)

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	app.Use(requestid.New())
	app.Use(deps.AttachUser())
	app.Use(csrf.New(csrf.Config{KeyLookup: "form:csrf", CookieName: "csrf_", CookieSameSite: "Lax"}))

	app.Get("/", deps.CatalogHandler.Home)
	app.Get("/artworks/:id", deps.CatalogHandler.Detail)
	app.Get("/api/v1/availability", deps.CartHandler.CheckAvailability)

	shop := app.Group("", handlers.GuestsOrCustomers())
	shop.Get("/cart", deps.CartHandler.View)
	shop.Post("/cart/add/:id", deps.CartHandler.Add)
	shop.Post("/cart/update/:line", deps.CartHandler.Update)
	shop.Post("/cart/remove/:line", deps.CartHandler.Remove)
	shop.Post("/cart/clear", deps.CartHandler.Clear)
	shop.Get("/checkout", deps.CheckoutHandler.Page)
	shop.Post("/checkout", deps.CheckoutHandler.Place)
	app.Get("/order/:id", deps.CheckoutHandler.Order)

	app.Get("/login", deps.AuthHandler.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{Max: 5, Expiration: time.Minute}), deps.AuthHandler.Login)
	app.Post("/logout", deps.AuthHandler.Logout)
	app.Get("/register", handlers.GuestsOnly(), deps.AuthHandler.RegisterForm)
	app.Post("/register", deps.AuthHandler.Register)

	vendor := app.Group("/vendor", handlers.RequireVendor())
	vendor.Get("/", deps.VendorHandler.Dashboard)

	manage := app.Group("/manage", handlers.RequireAdmin())
	manage.Get("/orders", deps.AdminHandler.OrdersPage)
	manage.Post("/orders/:id/status", deps.AdminHandler.UpdateOrderStatus)

	return app
}

// client carries cookies (sid, csrf_) across app.Test requests the way a
// browser would.
type client struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func newClient(t *testing.T, app *fiber.App) *client {
	return &client{t: t, app: app, cookies: map[string]string{}}
}

func (c *client) do(method, path string, form url.Values) *http.Response {
	c.t.Helper()
	var body io.Reader
	if form != nil {
		if tok := c.cookies["csrf_"]; tok != "" {
			form.Set("csrf", tok)
		}
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for name, val := range c.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: val})
	}
	resp, err := c.app.Test(req)
	if err != nil {
		c.t.Fatal(err)
	}
	for _, ck := range resp.Cookies() {
		if ck.MaxAge < 0 || (!ck.Expires.IsZero() && ck.Expires.Before(time.Now())) {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck.Value
	}
	return resp
}

func (c *client) get(path string) *http.Response { return c.do("GET", path, nil) }

// prime fetches a page so the client holds csrf and session cookies.
func (c *client) prime() {
	resp := c.get("/login")
	if c.cookies["csrf_"] == "" {
		c.t.Fatalf("csrf cookie missing after prime (status %d)", resp.StatusCode)
	}
}

func (c *client) login(email, password string) {
	c.t.Helper()
	c.prime()
	resp := c.do("POST", "/login", url.Values{"email": {email}, "password": {password}})
	if resp.StatusCode != http.StatusFound {
		c.t.Fatalf("login as %s: expected redirect, got %d", email, resp.StatusCode)
	}
}

func bodyOf(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}
