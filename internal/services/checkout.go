package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"artlease/internal/domain"
	"artlease/internal/pricing"
	"artlease/internal/repos"
)

var ErrEmptyCart = errors.New("cart is empty")

// CheckoutError aborts the whole checkout: it carries the first cart line
// that failed re-validation and why. No partial order is ever persisted.
type CheckoutError struct {
	LineID    int64
	ArtworkID int64
	Title     string
	Reason    error
}

func (e *CheckoutError) Error() string {
	return fmt.Sprintf("%q cannot be ordered: %s", e.Title, e.Reason)
}

func (e *CheckoutError) Unwrap() error { return e.Reason }

// CheckoutService freezes a cart into a persisted order: re-validates every
// line, snapshots current weekly prices, resolves addresses and writes the
// order atomically.
type CheckoutService struct {
	Cart   *CartStore
	Guard  *AvailabilityGuard
	Orders *repos.OrderRepo
	Addrs  *repos.AddressRepo
}

func NewCheckoutService(cart *CartStore, guard *AvailabilityGuard, orders *repos.OrderRepo, addrs *repos.AddressRepo) *CheckoutService {
	return &CheckoutService{Cart: cart, Guard: guard, Orders: orders, Addrs: addrs}
}

// sameAddress compares two form addresses field by field, case-insensitively.
func sameAddress(a, b domain.AddressInput) bool {
	eq := func(x, y string) bool {
		return strings.EqualFold(strings.TrimSpace(x), strings.TrimSpace(y))
	}
	return eq(a.StreetNumber, b.StreetNumber) &&
		eq(a.StreetName, b.StreetName) &&
		eq(a.City, b.City) &&
		eq(a.State, b.State) &&
		eq(a.Postcode, b.Postcode) &&
		eq(a.Country, b.Country)
}

// Place converts the session cart into an order for the given customer.
//
// Every line is re-validated against the guard immediately before
// persistence; a vendor may have unlisted an item or cut its max quantity
// since the line was added, and the per-add check cannot be trusted at
// checkout time. Any failure aborts the whole order and leaves the cart
// intact so the shopper can correct it.
//
// On success the order starts Pending, the cart and the remembered postcode
// are cleared, and the new order id is returned.
func (s *CheckoutService) Place(sess CartSession, customerID int64, delivery, billing domain.AddressInput) (string, error) {
	lines, err := s.Cart.Snapshot(sess)
	if err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "", ErrEmptyCart
	}

	for _, l := range lines {
		if err := s.Guard.Check(l.Artwork.ID, l.Quantity, l.Weeks, time.Time{}); err != nil {
			var ge *GuardError
			if errors.As(err, &ge) {
				return "", &CheckoutError{LineID: l.ID, ArtworkID: l.Artwork.ID, Title: l.Artwork.Title, Reason: ge}
			}
			return "", err
		}
	}

	deliveryID, err := s.Addrs.Ensure(delivery)
	if err != nil {
		return "", err
	}
	billingID := deliveryID
	if !sameAddress(billing, delivery) {
		if billingID, err = s.Addrs.Ensure(billing); err != nil {
			return "", err
		}
	}

	order := &domain.Order{
		ID:                uuid.NewString(),
		CustomerID:        customerID,
		Status:            domain.OrderPending,
		DeliveryAddressID: deliveryID,
		BillingAddressID:  billingID,
		DeliveryFee:       pricing.DeliveryCost(delivery.Postcode),
	}
	for _, l := range lines {
		order.Lines = append(order.Lines, domain.OrderLine{
			ArtworkID: l.Artwork.ID,
			Quantity:  l.Quantity,
			Weeks:     l.Weeks,
			UnitPrice: l.Artwork.PricePerWeek, // frozen here, never recomputed
		})
	}

	// Not retried on failure: a blind retry could write the order twice.
	if err := s.Orders.Add(order); err != nil {
		return "", err
	}

	s.Cart.Clear(sess)
	sess.SetPostcode("")
	return order.ID, nil
}
