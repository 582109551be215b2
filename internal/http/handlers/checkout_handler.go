package handlers

import (
	"encoding/json"
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"artlease/internal/domain"
	applog "artlease/internal/log"
	"artlease/internal/repos"
	"artlease/internal/services"
	"artlease/internal/validate"
)

type CheckoutHandler struct {
	Sessions *session.Store
	Cart     *services.CartStore
	Checkout *services.CheckoutService
	Addrs    *repos.AddressRepo
}

// checkoutForm mirrors the checkout page fields; it doubles as the prefill
// blob saved when a guest is sent off to register mid-checkout.
type checkoutForm struct {
	FirstName string `json:"firstname"`
	Surname   string `json:"surname"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`

	DelStreetNumber string `json:"del_streetNumber"`
	DelStreetName   string `json:"del_streetName"`
	DelCity         string `json:"del_city"`
	DelState        string `json:"del_state"`
	DelPostcode     string `json:"del_postcode"`
	DelCountry      string `json:"del_country"`

	BillStreetNumber string `json:"bill_streetNumber"`
	BillStreetName   string `json:"bill_streetName"`
	BillCity         string `json:"bill_city"`
	BillState        string `json:"bill_state"`
	BillPostcode     string `json:"bill_postcode"`
	BillCountry      string `json:"bill_country"`
}

func readCheckoutForm(c *fiber.Ctx) checkoutForm {
	return checkoutForm{
		FirstName:        c.FormValue("firstname"),
		Surname:          c.FormValue("surname"),
		Email:            c.FormValue("email"),
		Phone:            c.FormValue("phone"),
		DelStreetNumber:  c.FormValue("del_streetNumber"),
		DelStreetName:    c.FormValue("del_streetName"),
		DelCity:          c.FormValue("del_city"),
		DelState:         c.FormValue("del_state"),
		DelPostcode:      c.FormValue("del_postcode"),
		DelCountry:       c.FormValue("del_country"),
		BillStreetNumber: c.FormValue("bill_streetNumber"),
		BillStreetName:   c.FormValue("bill_streetName"),
		BillCity:         c.FormValue("bill_city"),
		BillState:        c.FormValue("bill_state"),
		BillPostcode:     c.FormValue("bill_postcode"),
		BillCountry:      c.FormValue("bill_country"),
	}
}

func (f checkoutForm) delivery() domain.AddressInput {
	country := f.DelCountry
	if country == "" {
		country = "Australia"
	}
	return domain.AddressInput{
		StreetNumber: f.DelStreetNumber, StreetName: f.DelStreetName,
		City: f.DelCity, State: f.DelState, Postcode: f.DelPostcode, Country: country,
	}
}

func (f checkoutForm) billing() domain.AddressInput {
	country := f.BillCountry
	if country == "" {
		country = "Australia"
	}
	return domain.AddressInput{
		StreetNumber: f.BillStreetNumber, StreetName: f.BillStreetName,
		City: f.BillCity, State: f.BillState, Postcode: f.BillPostcode, Country: country,
	}
}

func (f checkoutForm) billingComplete() bool {
	return f.BillStreetNumber != "" && f.BillStreetName != "" && f.BillCity != "" &&
		f.BillState != "" && f.BillPostcode != "" && f.BillCountry != ""
}

func (f checkoutForm) contactValid() (string, bool) {
	if _, ok := validate.Name(f.FirstName); !ok {
		return "Please enter your first name.", false
	}
	if _, ok := validate.Name(f.Surname); !ok {
		return "Please enter your surname.", false
	}
	if _, ok := validate.Email(f.Email); !ok {
		return "Please enter a valid email address.", false
	}
	if _, ok := validate.Phone(f.Phone); !ok {
		return "Please enter a valid phone number.", false
	}
	for _, field := range []string{f.DelStreetNumber, f.DelStreetName, f.DelCity, f.DelState, f.DelPostcode} {
		if field == "" {
			return "Please complete your delivery address.", false
		}
	}
	return "", true
}

func savePrefill(s *session.Session, f checkoutForm) {
	raw, _ := json.Marshal(f)
	s.Set(keyPrefill, raw)
}

func loadPrefill(s *session.Session) (checkoutForm, bool) {
	var f checkoutForm
	switch v := s.Get(keyPrefill).(type) {
	case []byte:
		return f, json.Unmarshal(v, &f) == nil
	case string:
		return f, json.Unmarshal([]byte(v), &f) == nil
	}
	return f, false
}

// Page renders the checkout form: contact and delivery prefilled for
// logged-in customers, overlaid with anything saved from a prior attempt,
// with the remembered postcode hint applied last.
func (h *CheckoutHandler) Page(c *fiber.Ctx) error {
	sess, err := getSession(h.Sessions, c)
	if err != nil {
		return err
	}
	bag := sessionBag{sess}

	lines, err := h.Cart.Snapshot(bag)
	if err != nil {
		applog.Error(c, "checkout.load", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
	}
	total, _ := h.Cart.Total(bag, bag.Postcode())

	var form checkoutForm
	if u := currentUser(c); u != nil {
		form.FirstName = u.FirstName
		form.Surname = u.LastName
		form.Email = u.Email
		form.Phone = u.Phone
		if u.AddressID > 0 {
			if addr, err := h.Addrs.Get(u.AddressID); err == nil {
				form.DelStreetNumber = addr.StreetNumber
				form.DelStreetName = addr.StreetName
				form.DelCity = addr.City
				form.DelState = addr.State
				form.DelPostcode = addr.Postcode
				form.DelCountry = addr.Country
			}
		}
	}
	if saved, ok := loadPrefill(sess); ok {
		form = overlay(form, saved)
	}
	// The postcode hint wins over any prefilled delivery postcode.
	if pc := bag.Postcode(); pc != "" {
		form.DelPostcode = pc
	}

	return render(c, "checkout", fiber.Map{"Form": form, "Lines": lines, "Total": total})
}

// overlay fills empty fields of base from saved, field by field.
func overlay(base, saved checkoutForm) checkoutForm {
	pick := func(cur, old string) string {
		if cur == "" {
			return old
		}
		return cur
	}
	base.FirstName = pick(base.FirstName, saved.FirstName)
	base.Surname = pick(base.Surname, saved.Surname)
	base.Email = pick(base.Email, saved.Email)
	base.Phone = pick(base.Phone, saved.Phone)
	base.DelStreetNumber = pick(base.DelStreetNumber, saved.DelStreetNumber)
	base.DelStreetName = pick(base.DelStreetName, saved.DelStreetName)
	base.DelCity = pick(base.DelCity, saved.DelCity)
	base.DelState = pick(base.DelState, saved.DelState)
	base.DelPostcode = pick(base.DelPostcode, saved.DelPostcode)
	base.DelCountry = pick(base.DelCountry, saved.DelCountry)
	base.BillStreetNumber = pick(base.BillStreetNumber, saved.BillStreetNumber)
	base.BillStreetName = pick(base.BillStreetName, saved.BillStreetName)
	base.BillCity = pick(base.BillCity, saved.BillCity)
	base.BillState = pick(base.BillState, saved.BillState)
	base.BillPostcode = pick(base.BillPostcode, saved.BillPostcode)
	base.BillCountry = pick(base.BillCountry, saved.BillCountry)
	return base
}

func (h *CheckoutHandler) rerender(c *fiber.Ctx, sess *session.Session, form checkoutForm, msg string) error {
	bag := sessionBag{sess}
	lines, _ := h.Cart.Snapshot(bag)
	total, _ := h.Cart.Total(bag, bag.Postcode())
	return render(c, "checkout", fiber.Map{"Form": form, "Lines": lines, "Total": total, "Message": msg})
}

// Place handles POST /checkout.
func (h *CheckoutHandler) Place(c *fiber.Ctx) error {
	sess, err := getSession(h.Sessions, c)
	if err != nil {
		return err
	}
	bag := sessionBag{sess}
	form := readCheckoutForm(c)

	// "Same as delivery" button: copy and re-render, no validation yet.
	if c.FormValue("copy_delivery") != "" {
		form.BillStreetNumber = form.DelStreetNumber
		form.BillStreetName = form.DelStreetName
		form.BillCity = form.DelCity
		form.BillState = form.DelState
		form.BillPostcode = form.DelPostcode
		form.BillCountry = form.DelCountry
		return h.rerender(c, sess, form, "Copied delivery address into billing.")
	}

	if msg, ok := form.contactValid(); !ok {
		return h.rerender(c, sess, form, msg)
	}

	lines, err := h.Cart.Snapshot(bag)
	if err != nil {
		applog.Error(c, "checkout.snapshot", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
	}
	if len(lines) == 0 {
		return h.rerender(c, sess, form, "Your cart is empty. Please add items before checking out.")
	}

	// Guests register first; their inputs survive the detour.
	u := currentUser(c)
	if u == nil || !u.IsCustomer() {
		savePrefill(sess, form)
		if err := sess.Save(); err != nil {
			return err
		}
		return c.Redirect("/register?next=checkout")
	}

	if !form.billingComplete() {
		return h.rerender(c, sess, form, `Please provide your billing address or click "Same as delivery".`)
	}

	orderID, err := h.Checkout.Place(bag, u.ID, form.delivery(), form.billing())
	if err != nil {
		var ce *services.CheckoutError
		if errors.As(err, &ce) {
			// Whole checkout aborted; the cart stays as it was.
			applog.Info(c, "checkout.revalidate.fail", map[string]any{
				"line_id": ce.LineID, "artwork_id": ce.ArtworkID, "kind": string(services.GuardKindOf(ce)),
			})
			if serr := sess.Save(); serr != nil {
				return serr
			}
			return c.Redirect("/cart?msg=" + url.QueryEscape(ce.Error()))
		}
		applog.Error(c, "checkout.place", err, nil)
		return h.rerender(c, sess, form, "Could not place your order. Please try again.")
	}

	sess.Delete(keyPrefill)
	if err := sess.Save(); err != nil {
		return err
	}
	applog.Audit(c, "order.place", map[string]any{"order_id": orderID, "customer_id": u.ID})
	return c.Redirect("/order/" + orderID)
}

// MyOrders lists the signed-in customer's past orders, newest first.
func (h *CheckoutHandler) MyOrders(c *fiber.Ctx) error {
	u := currentUser(c)
	if u == nil {
		return c.Redirect("/login")
	}
	sums, err := h.Checkout.Orders.ListByCustomer(u.ID)
	if err != nil {
		applog.Error(c, "orders.list", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load your orders"})
	}
	return render(c, "orders", fiber.Map{"Orders": sums})
}

// Order shows a confirmation page; customers see only their own orders.
func (h *CheckoutHandler) Order(c *fiber.Ctx) error {
	oid := c.Params("id")
	if oid == "" {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Order not found"})
	}
	o, err := h.Checkout.Orders.Get(oid)
	if err != nil {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Order not found"})
	}
	u := currentUser(c)
	if u == nil || (!u.IsAdmin() && u.ID != o.CustomerID) {
		applog.Security(c, "access.denied.order", map[string]any{"order_id": oid})
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Order not found"})
	}
	return render(c, "order", fiber.Map{"Order": o, "Total": orderTotal(&o)})
}
