package handlers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"artlease/internal/repos"
)

func TestSeededPasswordsAreHashed(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	var hashes []string
	if err := db.Select(&hashes, `SELECT password_hash FROM users`); err != nil {
		t.Fatalf("select hashes: %v", err)
	}
	if len(hashes) == 0 {
		t.Fatal("no users seeded")
	}
	for _, h := range hashes {
		if strings.Contains(h, "Passw0rd!") {
			t.Fatal("hash contains plaintext password")
		}
		if !strings.HasPrefix(h, "$2") {
			t.Fatalf("unexpected hash format: %s", h)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(h), []byte("Passw0rd!")); err != nil {
			t.Fatalf("seed hash does not validate known password: %v", err)
		}
	}
}

func TestLoginSuccessFailAndThrottle(t *testing.T) {
	app := newApp(t)
	cl := newClient(t, app)
	cl.prime()

	// bad password -> 401
	resp := cl.do("POST", "/login", url.Values{"email": {"ada@artlease.test"}, "password": {"wrongpass!"}})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad creds, got %d", resp.StatusCode)
	}

	// good password -> redirect home
	resp = cl.do("POST", "/login", url.Values{"email": {"ada@artlease.test"}, "password": {"Passw0rd!"}})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect on success, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/" {
		t.Fatalf("customer should land on /, got %q", loc)
	}

	// limiter allows five attempts per window; the sixth is throttled
	for i := 0; i < 4; i++ {
		resp = cl.do("POST", "/login", url.Values{"email": {"ada@artlease.test"}, "password": {"wrongpass!"}})
	}
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after throttle, got %d", resp.StatusCode)
	}
}

func TestRoleLandingPages(t *testing.T) {
	app := newApp(t)

	vendor := newClient(t, app)
	vendor.prime()
	resp := vendor.do("POST", "/login", url.Values{"email": {"mira@artlease.test"}, "password": {"Passw0rd!"}})
	if loc := resp.Header.Get("Location"); loc != "/vendor" {
		t.Fatalf("vendor should land on /vendor, got %q", loc)
	}

	admin := newClient(t, app)
	admin.prime()
	resp = admin.do("POST", "/login", url.Values{"email": {"admin@artlease.test"}, "password": {"Passw0rd!"}})
	if loc := resp.Header.Get("Location"); loc != "/manage/orders" {
		t.Fatalf("admin should land on /manage/orders, got %q", loc)
	}
}

func TestLogoutEmptiesCart(t *testing.T) {
	app := newApp(t)
	cl := newClient(t, app)
	cl.login("ada@artlease.test", "Passw0rd!")

	resp := cl.do("POST", "/cart/add/1", url.Values{"quantity": {"1"}, "weeks": {"2"}})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("add to cart: %d", resp.StatusCode)
	}
	if body := bodyOf(t, cl.get("/cart")); !strings.Contains(body, "Harbour Dawn") {
		t.Fatal("cart should show the added artwork")
	}

	if resp := cl.do("POST", "/logout", url.Values{}); resp.StatusCode != http.StatusFound {
		t.Fatalf("logout: %d", resp.StatusCode)
	}
	if body := bodyOf(t, cl.get("/cart")); strings.Contains(body, "Harbour Dawn") {
		t.Fatal("cart should be empty after logout")
	}
}

func TestRegisterThenLogin(t *testing.T) {
	app := newApp(t)
	cl := newClient(t, app)
	cl.prime()

	form := url.Values{
		"firstname": {"Noa"}, "surname": {"Reyes"},
		"email": {"noa@example.test"}, "phone": {"0400999888"},
		"password": {"sup3rsecret"}, "confirm_password": {"sup3rsecret"},
		"streetNumber": {"3"}, "streetName": {"Pier St"}, "city": {"Hobart"},
		"state": {"TAS"}, "postcode": {"7000"}, "country": {"Australia"},
	}
	resp := cl.do("POST", "/register", form)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("register: expected redirect, got %d: %s", resp.StatusCode, bodyOf(t, resp))
	}

	// Duplicate email is refused.
	dup := newClient(t, app)
	dup.prime()
	resp = dup.do("POST", "/register", form)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate register: expected 400, got %d", resp.StatusCode)
	}

	fresh := newClient(t, app)
	fresh.login("noa@example.test", "sup3rsecret")
}
