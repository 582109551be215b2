package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func TestCartAddUpdateRemoveFlow(t *testing.T) {
	app := newApp(t)
	cl := newClient(t, app)
	cl.prime()

	// Guest adds Saltmarsh (#2) and remembers their postcode.
	resp := cl.do("POST", "/cart/add/2", url.Values{
		"quantity": {"2"}, "weeks": {"3"}, "postcode": {"3000"},
	})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("add: %d", resp.StatusCode)
	}

	body := bodyOf(t, cl.get("/cart"))
	if !strings.Contains(body, "Saltmarsh Series I") {
		t.Fatal("cart page missing added artwork")
	}
	// 12.50 * 2 * 3 + 15 delivery (postcode 3000) = 90.00
	if !strings.Contains(body, "90") {
		t.Fatalf("cart total should include the delivery estimate: %s", body)
	}

	// Over max quantity (5) is rejected with the shopper-readable reason.
	resp = cl.do("POST", "/cart/add/2", url.Values{"quantity": {"4"}, "weeks": {"3"}})
	loc := resp.Header.Get("Location")
	if !strings.Contains(loc, "msg=") {
		t.Fatalf("rejected add should redirect with a message, got %q", loc)
	}
	// The stored quantity is untouched, so the total still reads 90.00.
	if body = bodyOf(t, cl.get("/cart")); !strings.Contains(body, "90") {
		t.Fatal("rejected merge must not change the stored quantity")
	}

	// Remove the line; removing it again is politely refused.
	resp = cl.do("POST", "/cart/remove/1", url.Values{})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("remove: %d", resp.StatusCode)
	}
	resp = cl.do("POST", "/cart/remove/1", url.Values{})
	if loc := resp.Header.Get("Location"); !strings.Contains(loc, "msg=") {
		t.Fatalf("second remove should carry a message, got %q", loc)
	}
}

func TestAvailabilityAPI(t *testing.T) {
	app := newApp(t)
	cl := newClient(t, app)

	var ok struct {
		OK bool `json:"ok"`
	}
	resp := cl.get("/api/v1/availability?artworkId=1&qty=2&weeks=4")
	if err := json.NewDecoder(resp.Body).Decode(&ok); err != nil {
		t.Fatal(err)
	}
	if !ok.OK {
		t.Fatal("seeded artwork 1 should be available for qty 2")
	}

	var refused struct {
		OK     bool   `json:"ok"`
		Kind   string `json:"kind"`
		Reason string `json:"reason"`
	}
	resp = cl.get("/api/v1/availability?artworkId=4&qty=1&weeks=1")
	if err := json.NewDecoder(resp.Body).Decode(&refused); err != nil {
		t.Fatal(err)
	}
	if refused.OK || refused.Kind != "NotListed" || refused.Reason == "" {
		t.Fatalf("leased artwork should be refused with kind+reason: %+v", refused)
	}

	if resp = cl.get("/api/v1/availability?artworkId=abc"); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad artworkId should 400, got %d", resp.StatusCode)
	}
}

func TestGuestCheckoutDetoursThroughRegister(t *testing.T) {
	app := newApp(t)
	cl := newClient(t, app)
	cl.prime()

	resp := cl.do("POST", "/cart/add/1", url.Values{"quantity": {"1"}, "weeks": {"1"}})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("add: %d", resp.StatusCode)
	}

	form := url.Values{
		"firstname": {"Gil"}, "surname": {"Mason"},
		"email": {"gil@example.test"}, "phone": {"0400111222"},
		"del_streetNumber": {"1"}, "del_streetName": {"Wharf Rd"}, "del_city": {"Sydney"},
		"del_state": {"NSW"}, "del_postcode": {"2000"}, "del_country": {"Australia"},
	}
	resp = cl.do("POST", "/checkout", form)
	if loc := resp.Header.Get("Location"); !strings.HasPrefix(loc, "/register") {
		t.Fatalf("guest checkout should detour to register, got %q", loc)
	}

	// The detour preserved their inputs.
	body := bodyOf(t, cl.get("/register?next=checkout"))
	if !strings.Contains(body, "gil@example.test") || !strings.Contains(body, "Wharf Rd") {
		t.Fatal("register form should be prefilled from the checkout attempt")
	}
}

func TestCheckoutPlacesOrder(t *testing.T) {
	app := newApp(t)
	cl := newClient(t, app)
	cl.login("ada@artlease.test", "Passw0rd!")

	resp := cl.do("POST", "/cart/add/1", url.Values{"quantity": {"1"}, "weeks": {"2"}, "postcode": {"2000"}})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("add: %d", resp.StatusCode)
	}

	form := url.Values{
		"firstname": {"Ada"}, "surname": {"Nguyen"},
		"email": {"ada@artlease.test"}, "phone": {"0400123123"},
		"del_streetNumber": {"12"}, "del_streetName": {"Gallery Lane"}, "del_city": {"Melbourne"},
		"del_state": {"VIC"}, "del_postcode": {"2000"}, "del_country": {"Australia"},
		"bill_streetNumber": {"12"}, "bill_streetName": {"Gallery Lane"}, "bill_city": {"Melbourne"},
		"bill_state": {"VIC"}, "bill_postcode": {"2000"}, "bill_country": {"Australia"},
	}
	resp = cl.do("POST", "/checkout", form)
	loc := resp.Header.Get("Location")
	if resp.StatusCode != http.StatusFound || !strings.HasPrefix(loc, "/order/") {
		t.Fatalf("expected redirect to the order page, got %d %q", resp.StatusCode, loc)
	}

	body := bodyOf(t, cl.get(loc))
	// 45.00 * 2 weeks + 10 delivery (postcode 2000) = 100
	if !strings.Contains(body, "Pending") || !strings.Contains(body, "100") {
		t.Fatalf("order page should show Pending and the frozen total: %s", body)
	}

	// Cart is spent.
	if body = bodyOf(t, cl.get("/cart")); strings.Contains(body, "Harbour Dawn") {
		t.Fatal("cart should be empty after checkout")
	}

	// Another customer cannot open the order.
	stranger := newClient(t, app)
	stranger.prime()
	if resp := stranger.get(loc); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("foreign order lookup should 404, got %d", resp.StatusCode)
	}
}
