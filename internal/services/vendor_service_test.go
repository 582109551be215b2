package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artlease/internal/domain"
	"artlease/internal/services"
)

func TestVendorKPIFromSnapshottedLines(t *testing.T) {
	env := newCheckoutEnv(t)
	vendorSvc := services.NewVendorService(env.arts, env.orders)

	// Vendor 101 seeds two artworks: Wren (Listed) and Tidal Form (Leased).
	kpi, err := vendorSvc.KPI(101)
	require.NoError(t, err)
	assert.Equal(t, 2, kpi.InventoryTotal)
	assert.Equal(t, 1, kpi.InventoryActive)
	assert.Zero(t, kpi.OrdersCount)
	assert.True(t, kpi.Revenue.IsZero())

	// One order renting the Wren for 2 weeks: 80.00 * 2.
	sess := &memSession{}
	ok, _ := env.cart.Add(sess, 3, 1, 2)
	require.True(t, ok)
	_, err = env.checkout.Place(sess, env.customer, addr("2000"), addr("2000"))
	require.NoError(t, err)

	kpi, err = vendorSvc.KPI(101)
	require.NoError(t, err)
	assert.Equal(t, 1, kpi.OrdersCount)
	assert.True(t, kpi.Revenue.Equal(price("160.00")), "got %s", kpi.Revenue)

	// A later price hike never moves past revenue.
	a, err := env.arts.Get(3)
	require.NoError(t, err)
	a.PricePerWeek = price("999.00")
	require.NoError(t, env.arts.Update(a))

	kpi, err = vendorSvc.KPI(101)
	require.NoError(t, err)
	assert.True(t, kpi.Revenue.Equal(price("160.00")))
}

func TestVendorArchiveBreaksCheckout(t *testing.T) {
	env := newCheckoutEnv(t)
	vendorSvc := services.NewVendorService(env.arts, env.orders)

	sess := &memSession{}
	ok, _ := env.cart.Add(sess, 1, 1, 1)
	require.True(t, ok)

	require.NoError(t, vendorSvc.Archive(1, 100))
	_, err := env.checkout.Place(sess, env.customer, addr("2000"), addr("2000"))
	assert.Equal(t, services.GuardNotListed, services.GuardKindOf(err))

	require.NoError(t, vendorSvc.List(1, 100))
	oid, err := env.checkout.Place(sess, env.customer, addr("2000"), addr("2000"))
	require.NoError(t, err)
	assert.NotEmpty(t, oid)
}

func TestVendorScopingOnMutations(t *testing.T) {
	env := newCheckoutEnv(t)
	vendorSvc := services.NewVendorService(env.arts, env.orders)

	// Vendor 101 cannot touch vendor 100's artwork.
	_ = vendorSvc.Archive(1, 101)
	c, err := env.arts.Constraints(1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusListed, c.Status)
}
