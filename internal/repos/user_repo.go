package repos

import (
	"artlease/internal/domain"

	"github.com/jmoiron/sqlx"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `
  id, email, phone, first_name, last_name, password_hash, role,
  COALESCE(address_id,0) AS address_id, artistic_name, bio, image, newsletter`

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT`+userCols+` FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(id int64) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT`+userCols+` FROM users WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// EmailTaken reports whether an account already uses this email.
func (r *UserRepo) EmailTaken(email string) (bool, error) {
	var n int
	if err := r.DB.Get(&n, `SELECT COUNT(*) FROM users WHERE LOWER(email)=LOWER(?)`, email); err != nil {
		return false, err
	}
	return n > 0, nil
}

// PhoneTaken reports whether an account already uses this phone number.
func (r *UserRepo) PhoneTaken(phone string) (bool, error) {
	var n int
	if err := r.DB.Get(&n, `SELECT COUNT(*) FROM users WHERE phone=? AND phone != ''`, phone); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create inserts an account and returns its id.
func (r *UserRepo) Create(u domain.User) (int64, error) {
	var addr any
	if u.AddressID > 0 {
		addr = u.AddressID
	}
	res, err := r.DB.Exec(`
	  INSERT INTO users(email, phone, first_name, last_name, password_hash, role,
	                    address_id, artistic_name, bio, image, newsletter)
	  VALUES(?,?,?,?,?,?,?,?,?,?,?)
	`, u.Email, u.Phone, u.FirstName, u.LastName, u.Hash, u.Role,
		addr, u.ArtisticName, u.Bio, u.Image, u.Newsletter)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListVendors returns vendor profiles for the home page strip.
func (r *UserRepo) ListVendors(limit int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 12
	}
	var out []domain.User
	err := r.DB.Select(&out, `
	  SELECT`+userCols+`
	  FROM users
	  WHERE role = 'VENDOR'
	  ORDER BY artistic_name = '', artistic_name, first_name, last_name
	  LIMIT ?`, limit)
	return out, err
}

// SetDefaultAddress points the customer at a stored address.
func (r *UserRepo) SetDefaultAddress(userID, addressID int64) error {
	_, err := r.DB.Exec(`UPDATE users SET address_id=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`, addressID, userID)
	return err
}
