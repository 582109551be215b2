package repos

import (
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"artlease/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// OrderSummary is the admin console row (no lines attached).
type OrderSummary struct {
	ID            string `db:"id"`
	CustomerID    int64  `db:"customer_id"`
	CustomerName  string `db:"customer_name"`
	CustomerEmail string `db:"customer_email"`
	Status        string `db:"status"`
	CreatedAt     string `db:"created_at"`
}

// Add persists the order header and every line in one transaction.
// All-or-nothing: a failed line insert rolls the header back too.
func (r *OrderRepo) Add(o *domain.Order) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
	  INSERT INTO orders(id, customer_id, status, delivery_address_id, billing_address_id, delivery_fee, created_at)
	  VALUES(?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, o.ID, o.CustomerID, o.Status, o.DeliveryAddressID, o.BillingAddressID, o.DeliveryFee); err != nil {
		return err
	}

	for _, l := range o.Lines {
		if _, err := tx.Exec(`
		  INSERT INTO order_lines(order_id, artwork_id, quantity, weeks, unit_price)
		  VALUES(?,?,?,?,?)
		`, o.ID, l.ArtworkID, l.Quantity, l.Weeks, l.UnitPrice); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *OrderRepo) Get(id string) (domain.Order, error) {
	var o domain.Order
	if err := r.db.Get(&o, `
	  SELECT id, customer_id, status, delivery_address_id, billing_address_id, delivery_fee,
	         COALESCE(created_at,'') AS created_at
	  FROM orders WHERE id = ?`, id); err != nil {
		return domain.Order{}, err
	}
	lines, err := r.Lines(id)
	if err != nil {
		return domain.Order{}, err
	}
	o.Lines = lines
	return o, nil
}

func (r *OrderRepo) Lines(orderID string) ([]domain.OrderLine, error) {
	var out []domain.OrderLine
	err := r.db.Select(&out, `
	  SELECT id, order_id, artwork_id, quantity, weeks, unit_price
	  FROM order_lines WHERE order_id = ? ORDER BY id`, orderID)
	return out, err
}

func (r *OrderRepo) ListLatest(limit int) ([]OrderSummary, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []OrderSummary
	err := r.db.Select(&out, `
	  SELECT o.id, o.customer_id,
	         u.first_name || ' ' || u.last_name AS customer_name,
	         u.email AS customer_email,
	         o.status, COALESCE(o.created_at,'') AS created_at
	  FROM orders o
	  JOIN users u ON u.id = o.customer_id
	  ORDER BY datetime(o.created_at) DESC
	  LIMIT ?`, limit)
	return out, err
}

func (r *OrderRepo) ListByCustomer(customerID int64) ([]OrderSummary, error) {
	var out []OrderSummary
	err := r.db.Select(&out, `
	  SELECT o.id, o.customer_id,
	         u.first_name || ' ' || u.last_name AS customer_name,
	         u.email AS customer_email,
	         o.status, COALESCE(o.created_at,'') AS created_at
	  FROM orders o
	  JOIN users u ON u.id = o.customer_id
	  WHERE o.customer_id = ?
	  ORDER BY datetime(o.created_at) DESC`, customerID)
	return out, err
}

// VendorSaleRow is one ordered line of a vendor's artwork, for KPI rollups.
type VendorSaleRow struct {
	OrderID   string          `db:"order_id"`
	Quantity  int             `db:"quantity"`
	Weeks     int             `db:"weeks"`
	UnitPrice decimal.Decimal `db:"unit_price"`
}

// VendorSales returns every order line referencing the vendor's artworks.
// Revenue is summed by the caller in decimal, not in SQL.
func (r *OrderRepo) VendorSales(vendorID int64) ([]VendorSaleRow, error) {
	var out []VendorSaleRow
	err := r.db.Select(&out, `
	  SELECT ol.order_id, ol.quantity, ol.weeks, ol.unit_price
	  FROM order_lines ol
	  JOIN artworks a ON a.id = ol.artwork_id
	  WHERE a.vendor_id = ?`, vendorID)
	return out, err
}

func (r *OrderRepo) UpdateStatus(id, status string) error {
	_, err := r.db.Exec(`UPDATE orders SET status = ? WHERE id = ?`, status, id)
	return err
}
