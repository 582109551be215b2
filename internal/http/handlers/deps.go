package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/jmoiron/sqlx"

	"artlease/internal/config"
	"artlease/internal/repos"
	"artlease/internal/services"
)

type Deps struct {
	Auth     *services.AuthService
	Sessions *session.Store

	AuthHandler     *AuthHandler
	CatalogHandler  *CatalogHandler
	CartHandler     *CartHandler
	CheckoutHandler *CheckoutHandler
	VendorHandler   *VendorHandler
	AdminHandler    *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, store *session.Store) *Deps {
	catRepo := repos.NewCategoryRepo(db)
	artRepo := repos.NewArtworkRepo(db)
	addrRepo := repos.NewAddressRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	userRepo := repos.NewUserRepo(db)

	guard := services.NewAvailabilityGuard(artRepo)
	cartStore := services.NewCartStore(artRepo, guard)
	catalogSvc := services.NewCatalogService(catRepo, artRepo, userRepo)
	checkoutSvc := services.NewCheckoutService(cartStore, guard, orderRepo, addrRepo)
	vendorSvc := services.NewVendorService(artRepo, orderRepo)
	authSvc := &services.AuthService{Users: userRepo, Addrs: addrRepo}

	return &Deps{
		Auth:     authSvc,
		Sessions: store,

		AuthHandler:     &AuthHandler{Sessions: store, Auth: authSvc},
		CatalogHandler:  &CatalogHandler{Catalog: catalogSvc},
		CartHandler:     &CartHandler{Sessions: store, Cart: cartStore, Guard: guard},
		CheckoutHandler: &CheckoutHandler{Sessions: store, Cart: cartStore, Checkout: checkoutSvc, Addrs: addrRepo},
		VendorHandler:   &VendorHandler{Vendor: vendorSvc, Catalog: catalogSvc, MediaDir: cfg.MediaDir},
		AdminHandler:    &AdminHandler{Orders: orderRepo},
	}
}

// AttachUser loads the session's user (if any) into request locals so
// templates and role guards can see it.
func (d *Deps) AttachUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := d.Sessions.Get(c)
		if err != nil {
			return c.Next()
		}
		if uid := sessionUserID(sess); uid > 0 {
			if u, err := d.Auth.UserByID(uid); err == nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	}
}
