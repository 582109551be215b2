package repos

import (
	"artlease/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ArtworkRepo struct{ db *sqlx.DB }

func NewArtworkRepo(db *sqlx.DB) *ArtworkRepo { return &ArtworkRepo{db: db} }

const artworkCols = `
  id, vendor_id, COALESCE(category_id,0) AS category_id, title, description,
  price_per_week, image, available_from, available_until, max_quantity, status,
  COALESCE(created_at,'') AS created_at`

func (r *ArtworkRepo) Get(id int64) (domain.Artwork, error) {
	var a domain.Artwork
	err := r.db.Get(&a, `SELECT`+artworkCols+` FROM artworks WHERE id = ?`, id)
	return a, err
}

// Constraints returns just the state the availability guard needs.
// Returns sql.ErrNoRows if the artwork has vanished.
func (r *ArtworkRepo) Constraints(id int64) (domain.ArtworkConstraints, error) {
	var c domain.ArtworkConstraints
	err := r.db.Get(&c, `SELECT status, max_quantity, available_until FROM artworks WHERE id = ?`, id)
	return c, err
}

func (r *ArtworkRepo) ListByCategory(catID int64, limit, offset int) ([]domain.Artwork, error) {
	var out []domain.Artwork
	err := r.db.Select(&out, `
	  SELECT`+artworkCols+`
	  FROM artworks
	  WHERE category_id = ? AND status = 'Listed'
	  ORDER BY id DESC
	  LIMIT ? OFFSET ?
	`, catID, limit, offset)
	return out, err
}

// ListByVendor returns everything a vendor owns, Listed first (management view).
func (r *ArtworkRepo) ListByVendor(vendorID int64) ([]domain.Artwork, error) {
	var out []domain.Artwork
	err := r.db.Select(&out, `
	  SELECT`+artworkCols+`
	  FROM artworks
	  WHERE vendor_id = ?
	  ORDER BY
	    CASE status WHEN 'Listed' THEN 0 WHEN 'Leased' THEN 1 ELSE 2 END,
	    id DESC
	`, vendorID)
	return out, err
}

func (r *ArtworkRepo) Latest(limit int, catID int64) ([]domain.Artwork, error) {
	if limit <= 0 {
		limit = 12
	}
	where := `status = 'Listed'`
	args := []any{}
	if catID > 0 {
		where += ` AND category_id = ?`
		args = append(args, catID)
	}
	args = append(args, limit)
	var out []domain.Artwork
	err := r.db.Select(&out, `
	  SELECT`+artworkCols+`
	  FROM artworks
	  WHERE `+where+`
	  ORDER BY id DESC
	  LIMIT ?
	`, args...)
	return out, err
}

// Filter supports the catalog search page: text query, category and price window.
func (r *ArtworkRepo) Filter(q string, catID int64, minPrice, maxPrice string, limit, offset int) ([]domain.Artwork, error) {
	where := `status = 'Listed'`
	args := []any{}
	if q != "" {
		where += ` AND (LOWER(title) LIKE ? OR LOWER(description) LIKE ?)`
		like := "%" + q + "%"
		args = append(args, like, like)
	}
	if catID > 0 {
		where += ` AND category_id = ?`
		args = append(args, catID)
	}
	if minPrice != "" {
		where += ` AND price_per_week >= ?`
		args = append(args, minPrice)
	}
	if maxPrice != "" {
		where += ` AND price_per_week <= ?`
		args = append(args, maxPrice)
	}
	args = append(args, limit, offset)

	var out []domain.Artwork
	err := r.db.Select(&out, `
	  SELECT`+artworkCols+`
	  FROM artworks
	  WHERE `+where+`
	  ORDER BY id DESC
	  LIMIT ? OFFSET ?
	`, args...)
	return out, err
}

// Create inserts a vendor's artwork and returns its id.
func (r *ArtworkRepo) Create(a domain.Artwork) (int64, error) {
	var catID any
	if a.CategoryID > 0 {
		catID = a.CategoryID
	}
	res, err := r.db.Exec(`
	  INSERT INTO artworks(vendor_id, category_id, title, description, price_per_week,
	                       image, available_from, available_until, max_quantity, status)
	  VALUES(?,?,?,?,?,?,?,?,?,?)
	`, a.VendorID, catID, a.Title, a.Description, a.PricePerWeek,
		a.Image, a.AvailableFrom, a.AvailableUntil, a.MaxQuantity, a.Status)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Update rewrites an artwork's editable fields, scoped to its owner.
func (r *ArtworkRepo) Update(a domain.Artwork) error {
	var catID any
	if a.CategoryID > 0 {
		catID = a.CategoryID
	}
	_, err := r.db.Exec(`
	  UPDATE artworks
	     SET category_id=?, title=?, description=?, price_per_week=?, image=?,
	         available_from=?, available_until=?, max_quantity=?, status=?,
	         updated_at=CURRENT_TIMESTAMP
	   WHERE id=? AND vendor_id=?
	`, catID, a.Title, a.Description, a.PricePerWeek, a.Image,
		a.AvailableFrom, a.AvailableUntil, a.MaxQuantity, a.Status, a.ID, a.VendorID)
	return err
}

// SetStatus flips the availability status (publish/archive), scoped to the owner.
func (r *ArtworkRepo) SetStatus(id, vendorID int64, status string) error {
	_, err := r.db.Exec(`UPDATE artworks SET status=?, updated_at=CURRENT_TIMESTAMP WHERE id=? AND vendor_id=?`,
		status, id, vendorID)
	return err
}

// VendorCounts holds inventory tallies for the vendor KPI block.
type VendorCounts struct {
	Total  int `db:"total"`
	Listed int `db:"listed"`
}

func (r *ArtworkRepo) CountByVendor(vendorID int64) (VendorCounts, error) {
	var c VendorCounts
	err := r.db.Get(&c, `
	  SELECT COUNT(*) AS total,
	         COALESCE(SUM(status = 'Listed'),0) AS listed
	  FROM artworks WHERE vendor_id = ?`, vendorID)
	return c, err
}

func (r *ArtworkRepo) Delete(id, vendorID int64) error {
	_, err := r.db.Exec(`DELETE FROM artworks WHERE id=? AND vendor_id=?`, id, vendorID)
	return err
}
