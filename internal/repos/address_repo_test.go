package repos_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artlease/internal/domain"
	"artlease/internal/repos"
)

func TestAddressEnsureIsIdempotent(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	addrs := repos.NewAddressRepo(db)

	in := domain.AddressInput{
		StreetNumber: "7A", StreetName: "Foundry Road", City: "Sydney",
		State: "NSW", Postcode: "2000", Country: "Australia",
	}
	id1, err := addrs.Ensure(in)
	require.NoError(t, err)

	// Case and whitespace differences map to the same row.
	in2 := domain.AddressInput{
		StreetNumber: " 7a ", StreetName: "FOUNDRY ROAD", City: "sydney",
		State: " nsw", Postcode: "2000 ", Country: "australia",
	}
	id2, err := addrs.Ensure(in2)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	// A genuinely different address gets its own row.
	in.StreetNumber = "7B"
	id3, err := addrs.Ensure(in)
	require.NoError(t, err)
	assert.NotEqual(t, id1, id3)

	got, err := addrs.Get(id1)
	require.NoError(t, err)
	assert.Equal(t, "Foundry Road", got.StreetName)
}
