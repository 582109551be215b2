package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"artlease/internal/domain"
	applog "artlease/internal/log"
	"artlease/internal/services"
	"artlease/internal/validate"
)

type AuthHandler struct {
	Sessions *session.Store
	Auth     *services.AuthService
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	email := c.FormValue("email")
	pass := c.FormValue("password")
	if _, ok := validate.Email(email); !ok {
		applog.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_format"})
		return c.Status(401).Render("login", fiber.Map{"Err": "Invalid email or password", "CSRFToken": c.Cookies("csrf_")})
	}
	if !validate.Password(pass) {
		applog.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_password_format"})
		return c.Status(401).Render("login", fiber.Map{"Err": "Invalid email or password", "CSRFToken": c.Cookies("csrf_")})
	}

	u, err := h.Auth.Login(email, pass)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": email})
		return c.Status(401).Render("login", fiber.Map{"Err": "Invalid email or password", "CSRFToken": c.Cookies("csrf_")})
	}

	sess, err := getSession(h.Sessions, c)
	if err != nil {
		return err
	}
	// Rotate the session id on privilege change. Regenerate keeps the
	// data, so a guest cart survives logging in.
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(keyUserID, u.ID)
	if err := sess.Save(); err != nil {
		return err
	}

	applog.Audit(c, "auth.login.success", map[string]any{"email": email, "user_id": u.ID})
	switch u.Role {
	case domain.RoleAdmin:
		return c.Redirect("/manage/orders")
	case domain.RoleVendor:
		return c.Redirect("/vendor")
	}
	if c.Query("next") == "checkout" {
		return c.Redirect("/checkout")
	}
	return c.Redirect("/")
}

// Logout destroys the whole session: uid, cart, postcode, prefill.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess, err := getSession(h.Sessions, c)
	if err != nil {
		return err
	}
	uid := sessionUserID(sess)
	if err := sess.Destroy(); err != nil {
		return err
	}
	applog.Audit(c, "auth.logout", map[string]any{"user_id": uid})
	return c.Redirect("/")
}

// RegisterForm renders the signup page. Guests sent here mid-checkout get
// their checkout inputs prefilled.
func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	sess, err := getSession(h.Sessions, c)
	if err != nil {
		return err
	}
	data := fiber.Map{"Err": "", "Next": c.Query("next"), "AsVendor": c.Query("as") == "vendor"}
	if saved, ok := loadPrefill(sess); ok {
		data["Form"] = saved
	}
	return render(c, "register", data)
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	next := c.Query("next")
	fail := func(msg string) error {
		return c.Status(400).Render("register", fiber.Map{"Err": msg, "Next": next, "CSRFToken": c.Cookies("csrf_")})
	}

	email, ok := validate.Email(c.FormValue("email"))
	if !ok {
		return fail("Please enter a valid email address.")
	}
	phone, ok := validate.Phone(c.FormValue("phone"))
	if !ok {
		return fail("Please enter a valid phone number.")
	}
	first, ok := validate.Name(c.FormValue("firstname"))
	if !ok {
		return fail("Please enter your first name.")
	}
	last, ok := validate.Name(c.FormValue("surname"))
	if !ok {
		return fail("Please enter your surname.")
	}
	pass := c.FormValue("password")
	if !validate.Password(pass) {
		return fail("Password must be between 6 and 255 characters.")
	}
	if pass != c.FormValue("confirm_password") {
		return fail("Passwords do not match.")
	}
	postcode, ok := validate.Postcode(c.FormValue("postcode"))
	if !ok {
		return fail("Please enter a valid postcode.")
	}

	in := services.RegisterInput{
		Email:     email,
		Phone:     phone,
		FirstName: first,
		LastName:  last,
		Password:  pass,
		Address: domain.AddressInput{
			StreetNumber: c.FormValue("streetNumber"),
			StreetName:   c.FormValue("streetName"),
			City:         c.FormValue("city"),
			State:        c.FormValue("state"),
			Postcode:     postcode,
			Country:      c.FormValue("country", "Australia"),
		},
		Newsletter: c.FormValue("newsletter") != "",
	}
	if c.FormValue("role") == "vendor" {
		in.Role = domain.RoleVendor
		in.ArtisticName = c.FormValue("artistic_name")
		in.Bio = c.FormValue("bio")
		in.Image = c.FormValue("image")
		if _, ok := validate.Name(in.ArtisticName); !ok {
			return fail("Please enter your artistic name.")
		}
	}

	uid, err := h.Auth.Register(in)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			return fail("That email is already registered.")
		case errors.Is(err, services.ErrPhoneTaken):
			return fail("That phone number is already registered.")
		}
		applog.Error(c, "auth.register", err, map[string]any{"email": email})
		return fail("Could not create your account. Please try again.")
	}

	sess, err := getSession(h.Sessions, c)
	if err != nil {
		return err
	}
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(keyUserID, uid)
	if err := sess.Save(); err != nil {
		return err
	}

	applog.Audit(c, "auth.register.success", map[string]any{"email": email, "user_id": uid, "role": in.Role})
	if next == "checkout" && in.Role != domain.RoleVendor {
		return c.Redirect("/checkout")
	}
	return c.Redirect("/")
}
