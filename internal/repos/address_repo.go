package repos

import (
	"database/sql"
	"errors"

	"artlease/internal/domain"

	"github.com/jmoiron/sqlx"
)

type AddressRepo struct{ db *sqlx.DB }

func NewAddressRepo(db *sqlx.DB) *AddressRepo { return &AddressRepo{db: db} }

func (r *AddressRepo) Get(id int64) (domain.Address, error) {
	var a domain.Address
	err := r.db.Get(&a, `
	  SELECT id, street_number, street_name, city, state, postcode, country
	  FROM addresses WHERE id = ?`, id)
	return a, err
}

// Ensure looks an address up by normalized equality (case/whitespace
// insensitive across every field) and inserts it when missing. Idempotent:
// the same address always yields the same id. A unique expression index
// backs the lookup, so a lost insert race is resolved by re-reading.
func (r *AddressRepo) Ensure(in domain.AddressInput) (int64, error) {
	if id, err := r.find(in); err == nil {
		return id, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	res, err := r.db.Exec(`
	  INSERT INTO addresses(street_number, street_name, city, state, postcode, country)
	  VALUES(?,?,?,?,?,?)
	`, in.StreetNumber, in.StreetName, in.City, in.State, in.Postcode, in.Country)
	if err != nil {
		// Another request may have inserted the same normalized address.
		if id, ferr := r.find(in); ferr == nil {
			return id, nil
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (r *AddressRepo) find(in domain.AddressInput) (int64, error) {
	var id int64
	err := r.db.Get(&id, `
	  SELECT id FROM addresses
	  WHERE LOWER(TRIM(street_number)) = LOWER(TRIM(?))
	    AND LOWER(TRIM(street_name))   = LOWER(TRIM(?))
	    AND LOWER(TRIM(city))          = LOWER(TRIM(?))
	    AND LOWER(TRIM(state))         = LOWER(TRIM(?))
	    AND LOWER(TRIM(postcode))      = LOWER(TRIM(?))
	    AND LOWER(TRIM(country))       = LOWER(TRIM(?))
	  LIMIT 1
	`, in.StreetNumber, in.StreetName, in.City, in.State, in.Postcode, in.Country)
	return id, err
}
