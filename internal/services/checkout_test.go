package services_test

import (
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artlease/internal/domain"
	"artlease/internal/repos"
	"artlease/internal/services"
)

// memdb opens a seeded in-memory database (demo vendors and artworks).
func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	return db
}

type checkoutEnv struct {
	db       *sqlx.DB
	arts     *repos.ArtworkRepo
	orders   *repos.OrderRepo
	cart     *services.CartStore
	checkout *services.CheckoutService
	customer int64
}

func newCheckoutEnv(t *testing.T) *checkoutEnv {
	t.Helper()
	db := memdb(t)
	arts := repos.NewArtworkRepo(db)
	orders := repos.NewOrderRepo(db)
	addrs := repos.NewAddressRepo(db)
	guard := services.NewAvailabilityGuard(arts)
	cart := services.NewCartStore(arts, guard)

	ada, err := repos.NewUserRepo(db).ByEmail("ada@artlease.test")
	require.NoError(t, err)

	return &checkoutEnv{
		db:       db,
		arts:     arts,
		orders:   orders,
		cart:     cart,
		checkout: services.NewCheckoutService(cart, guard, orders, addrs),
		customer: ada.ID,
	}
}

func addr(postcode string) domain.AddressInput {
	return domain.AddressInput{
		StreetNumber: "12", StreetName: "Gallery Lane", City: "Melbourne",
		State: "VIC", Postcode: postcode, Country: "Australia",
	}
}

func TestCheckoutPlacesPendingOrderAndClearsCart(t *testing.T) {
	env := newCheckoutEnv(t)
	sess := &memSession{postcode: "2000"}

	// Seeded: #1 Harbour Dawn 45.00/wk, #2 Saltmarsh 12.50/wk.
	ok, _ := env.cart.Add(sess, 1, 1, 2)
	require.True(t, ok)
	ok, _ = env.cart.Add(sess, 2, 3, 2)
	require.True(t, ok)

	oid, err := env.checkout.Place(sess, env.customer, addr("2000"), addr("2000"))
	require.NoError(t, err)
	require.NotEmpty(t, oid)

	o, err := env.orders.Get(oid)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPending, o.Status)
	assert.Equal(t, env.customer, o.CustomerID)
	// Postcode 2000 sits in the 1000-2999 delivery band.
	assert.True(t, o.DeliveryFee.Equal(price("10")), "got %s", o.DeliveryFee)
	require.Len(t, o.Lines, 2)
	assert.True(t, o.Lines[0].UnitPrice.Equal(price("45.00")))
	assert.True(t, o.Lines[1].UnitPrice.Equal(price("12.50")))
	// Billing equalled delivery, so both point at the same address row.
	assert.Equal(t, o.DeliveryAddressID, o.BillingAddressID)

	// Cart and remembered postcode are gone.
	lines, err := env.cart.Snapshot(sess)
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.Empty(t, sess.Postcode())
}

func TestCheckoutSnapshotsPriceAtPlacement(t *testing.T) {
	env := newCheckoutEnv(t)
	sess := &memSession{}
	ok, _ := env.cart.Add(sess, 2, 1, 1)
	require.True(t, ok)

	oid, err := env.checkout.Place(sess, env.customer, addr("3000"), addr("3000"))
	require.NoError(t, err)

	// Vendor 100 doubles the price afterwards.
	a, err := env.arts.Get(2)
	require.NoError(t, err)
	a.PricePerWeek = price("25.00")
	require.NoError(t, env.arts.Update(a))

	o, err := env.orders.Get(oid)
	require.NoError(t, err)
	assert.True(t, o.Lines[0].UnitPrice.Equal(price("12.50")), "snapshot moved: %s", o.Lines[0].UnitPrice)
}

func TestCheckoutAbortsWhenLineFailsRevalidation(t *testing.T) {
	env := newCheckoutEnv(t)
	sess := &memSession{}
	ok, _ := env.cart.Add(sess, 1, 1, 1)
	require.True(t, ok)
	ok, _ = env.cart.Add(sess, 2, 1, 1)
	require.True(t, ok)

	// Vendor unlists #2 between add and checkout.
	require.NoError(t, env.arts.SetStatus(2, 100, domain.StatusUnlisted))

	_, err := env.checkout.Place(sess, env.customer, addr("2000"), addr("2000"))
	var ce *services.CheckoutError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, int64(2), ce.ArtworkID)
	assert.Equal(t, services.GuardNotListed, services.GuardKindOf(err))

	// Nothing persisted, cart intact.
	var n int
	require.NoError(t, env.db.Get(&n, `SELECT COUNT(*) FROM orders`))
	assert.Zero(t, n)
	lines, err := env.cart.Snapshot(sess)
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

func TestCheckoutEmptyCart(t *testing.T) {
	env := newCheckoutEnv(t)
	_, err := env.checkout.Place(&memSession{}, env.customer, addr("2000"), addr("2000"))
	assert.ErrorIs(t, err, services.ErrEmptyCart)
}

func TestCheckoutDeduplicatesAddresses(t *testing.T) {
	env := newCheckoutEnv(t)

	place := func(delivery, billing domain.AddressInput) domain.Order {
		sess := &memSession{}
		ok, _ := env.cart.Add(sess, 1, 1, 1)
		require.True(t, ok)
		oid, err := env.checkout.Place(sess, env.customer, delivery, billing)
		require.NoError(t, err)
		o, err := env.orders.Get(oid)
		require.NoError(t, err)
		return o
	}

	first := place(addr("2000"), addr("4000"))
	assert.NotEqual(t, first.DeliveryAddressID, first.BillingAddressID)

	// Same address, different case and padding: reuses the existing rows.
	shouty := addr("2000")
	shouty.StreetName = "  GALLERY LANE "
	shouty.City = "melbourne"
	second := place(shouty, addr("4000"))
	assert.Equal(t, first.DeliveryAddressID, second.DeliveryAddressID)
	assert.Equal(t, first.BillingAddressID, second.BillingAddressID)

	var n int
	require.NoError(t, env.db.Get(&n, `SELECT COUNT(*) FROM addresses`))
	assert.Equal(t, 2, n)
}
