package domain

import "github.com/shopspring/decimal"

// Artwork availability lifecycle as managed by vendors.
const (
	StatusListed   = "Listed"
	StatusLeased   = "Leased"
	StatusUnlisted = "Unlisted"
)

// Order lifecycle. New orders always start Pending; admins move them on.
const (
	OrderPending   = "Pending"
	OrderConfirmed = "Confirmed"
	OrderCancelled = "Cancelled"
)

type Category struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type Artwork struct {
	ID             int64           `db:"id"`
	VendorID       int64           `db:"vendor_id"`
	CategoryID     int64           `db:"category_id"` // 0 = uncategorised
	Title          string          `db:"title"`
	Description    string          `db:"description"`
	PricePerWeek   decimal.Decimal `db:"price_per_week"`
	Image          string          `db:"image"`
	AvailableFrom  string          `db:"available_from"`  // YYYY-MM-DD, may be empty
	AvailableUntil string          `db:"available_until"` // YYYY-MM-DD, empty = unbounded
	MaxQuantity    int             `db:"max_quantity"`
	Status         string          `db:"status"`
	CreatedAt      string          `db:"created_at"`
}

// ArtworkConstraints is the slice of artwork state the availability guard reads.
type ArtworkConstraints struct {
	Status         string `db:"status"`
	MaxQuantity    int    `db:"max_quantity"`
	AvailableUntil string `db:"available_until"`
}

type Address struct {
	ID           int64  `db:"id"`
	StreetNumber string `db:"street_number"`
	StreetName   string `db:"street_name"`
	City         string `db:"city"`
	State        string `db:"state"`
	Postcode     string `db:"postcode"`
	Country      string `db:"country"`
}

// AddressInput is an address as captured from a form, before dedupe.
type AddressInput struct {
	StreetNumber string
	StreetName   string
	City         string
	State        string
	Postcode     string
	Country      string
}

type Order struct {
	ID                string          `db:"id"`
	CustomerID        int64           `db:"customer_id"`
	Status            string          `db:"status"`
	DeliveryAddressID int64           `db:"delivery_address_id"`
	BillingAddressID  int64           `db:"billing_address_id"`
	DeliveryFee       decimal.Decimal `db:"delivery_fee"`
	CreatedAt         string          `db:"created_at"`
	Lines             []OrderLine     `db:"-"`
}

// OrderLine snapshots the artwork's weekly price at order creation;
// it is never recomputed from the live catalog price.
type OrderLine struct {
	ID        int64           `db:"id"`
	OrderID   string          `db:"order_id"`
	ArtworkID int64           `db:"artwork_id"`
	Quantity  int             `db:"quantity"`
	Weeks     int             `db:"weeks"`
	UnitPrice decimal.Decimal `db:"unit_price"`
}
