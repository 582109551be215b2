package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// Session keys. The cart blob and remembered postcode live only in the
// client session, never in a database row.
const (
	keyCart     = "cart"
	keyPostcode = "checkout_postcode"
	keyUserID   = "uid"
	keyPrefill  = "checkout_prefill"
)

// sessionBag adapts a fiber session to the cart store's persistence
// contract. It stores and returns raw bytes; interpretation stays with
// the cart store.
type sessionBag struct{ s *session.Session }

func (b sessionBag) CartJSON() []byte {
	switch v := b.s.Get(keyCart).(type) {
	case []byte:
		return v
	case string:
		return []byte(v)
	}
	return nil
}

func (b sessionBag) SetCartJSON(raw []byte) { b.s.Set(keyCart, raw) }

func (b sessionBag) Postcode() string {
	v, _ := b.s.Get(keyPostcode).(string)
	return v
}

func (b sessionBag) SetPostcode(pc string) {
	if pc == "" {
		b.s.Delete(keyPostcode)
		return
	}
	b.s.Set(keyPostcode, pc)
}

// getSession loads (or creates) the request's session.
func getSession(store *session.Store, c *fiber.Ctx) (*session.Session, error) {
	return store.Get(c)
}

func sessionUserID(s *session.Session) int64 {
	v, _ := s.Get(keyUserID).(int64)
	return v
}
