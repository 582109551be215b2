package handlers_test

import (
	"net/http"
	"testing"
)

// Role matrix over the guarded areas: the admin console is admin-only, the
// vendor area vendor-only, and the shopping surface refuses staff accounts.
func TestRoleGuards(t *testing.T) {
	app := newApp(t)

	anon := newClient(t, app)
	anon.prime()
	customer := newClient(t, app)
	customer.login("ada@artlease.test", "Passw0rd!")
	vendor := newClient(t, app)
	vendor.login("mira@artlease.test", "Passw0rd!")
	admin := newClient(t, app)
	admin.login("admin@artlease.test", "Passw0rd!")

	cases := []struct {
		name string
		cl   *client
		path string
		want int
	}{
		{"anon admin console", anon, "/manage/orders", http.StatusForbidden},
		{"customer admin console", customer, "/manage/orders", http.StatusForbidden},
		{"vendor admin console", vendor, "/manage/orders", http.StatusForbidden},
		{"admin admin console", admin, "/manage/orders", http.StatusOK},

		{"anon vendor area", anon, "/vendor", http.StatusFound},
		{"customer vendor area", customer, "/vendor", http.StatusFound},
		{"vendor vendor area", vendor, "/vendor", http.StatusOK},

		{"anon cart", anon, "/cart", http.StatusOK},
		{"customer cart", customer, "/cart", http.StatusOK},
		{"vendor cart", vendor, "/cart", http.StatusFound},
		{"admin cart", admin, "/cart", http.StatusFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := tc.cl.get(tc.path)
			if resp.StatusCode != tc.want {
				t.Fatalf("GET %s: expected %d, got %d", tc.path, tc.want, resp.StatusCode)
			}
		})
	}
}

func TestLoggedInUsersSkipLoginPage(t *testing.T) {
	app := newApp(t)
	cl := newClient(t, app)
	cl.login("ada@artlease.test", "Passw0rd!")

	resp := cl.get("/register")
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect away from /register, got %d", resp.StatusCode)
	}
}
