package domain

// Account roles. Admins are seeded, never self-registered.
const (
	RoleCustomer = "CUSTOMER"
	RoleVendor   = "VENDOR"
	RoleAdmin    = "ADMIN"
)

type User struct {
	ID        int64  `db:"id"`
	Email     string `db:"email"`
	Phone     string `db:"phone"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	Hash      string `db:"password_hash"`
	Role      string `db:"role"`
	AddressID int64  `db:"address_id"` // 0 = no default address

	// Vendor profile, empty for customers/admins.
	ArtisticName string `db:"artistic_name"`
	Bio          string `db:"bio"`
	Image        string `db:"image"`

	Newsletter bool `db:"newsletter"`
}

func (u *User) IsAdmin() bool    { return u != nil && u.Role == RoleAdmin }
func (u *User) IsVendor() bool   { return u != nil && u.Role == RoleVendor }
func (u *User) IsCustomer() bool { return u != nil && u.Role == RoleCustomer }
