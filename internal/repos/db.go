package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed baseline data if DB is empty (categories/vendors/artworks)
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	// Ensure accounts exist (idempotent; safe to run every start)
	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Categories
CREATE TABLE IF NOT EXISTS categories(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_nocase ON categories(LOWER(name));

-- Addresses (deduplicated by normalized equality)
CREATE TABLE IF NOT EXISTS addresses(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  street_number TEXT NOT NULL,
  street_name   TEXT NOT NULL,
  city          TEXT NOT NULL,
  state         TEXT NOT NULL,
  postcode      TEXT NOT NULL,
  country       TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_addresses_norm ON addresses(
  LOWER(TRIM(street_number)), LOWER(TRIM(street_name)), LOWER(TRIM(city)),
  LOWER(TRIM(state)), LOWER(TRIM(postcode)), LOWER(TRIM(country))
);

-- Users (customers, vendors, admins)
CREATE TABLE IF NOT EXISTS users(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  email TEXT NOT NULL UNIQUE,
  phone TEXT NOT NULL DEFAULT '',
  first_name TEXT NOT NULL,
  last_name  TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('CUSTOMER','VENDOR','ADMIN')),
  address_id INTEGER NULL REFERENCES addresses(id) ON DELETE SET NULL,
  artistic_name TEXT NOT NULL DEFAULT '',
  bio           TEXT NOT NULL DEFAULT '',
  image         TEXT NOT NULL DEFAULT '',
  newsletter INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

-- Artworks
CREATE TABLE IF NOT EXISTS artworks(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  vendor_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  category_id INTEGER NULL REFERENCES categories(id) ON DELETE SET NULL,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price_per_week NUMERIC NOT NULL CHECK (price_per_week >= 0),
  image TEXT NOT NULL DEFAULT '',
  available_from  TEXT NOT NULL DEFAULT '',
  available_until TEXT NOT NULL DEFAULT '',
  max_quantity INTEGER NOT NULL DEFAULT 1 CHECK (max_quantity >= 1),
  status TEXT NOT NULL DEFAULT 'Unlisted' CHECK (status IN ('Listed','Leased','Unlisted')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_artworks_vendor   ON artworks(vendor_id);
CREATE INDEX IF NOT EXISTS idx_artworks_category ON artworks(category_id);
CREATE INDEX IF NOT EXISTS idx_artworks_status   ON artworks(status);

-- Orders (lines snapshot unit price at creation)
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  customer_id INTEGER NOT NULL REFERENCES users(id),
  status TEXT NOT NULL DEFAULT 'Pending' CHECK (status IN ('Pending','Confirmed','Cancelled')),
  delivery_address_id INTEGER NOT NULL REFERENCES addresses(id),
  billing_address_id  INTEGER NOT NULL REFERENCES addresses(id),
  delivery_fee NUMERIC NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_orders_customer   ON orders(customer_id);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);

CREATE TABLE IF NOT EXISTS order_lines(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  artwork_id INTEGER NOT NULL REFERENCES artworks(id),
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  weeks    INTEGER NOT NULL CHECK (weeks >= 1),
  unit_price NUMERIC NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_order_lines_order ON order_lines(order_id);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo categories/vendors/artworks")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO categories(id,name) VALUES
	  (1,'Paintings'),
	  (2,'Sculptures'),
	  (3,'Photography'),
	  (4,'Prints')`)

	hash, _ := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), 12)
	tx.MustExec(`INSERT INTO users(id,email,phone,first_name,last_name,password_hash,role,artistic_name,bio,image) VALUES
	  (100,'mira@artlease.test','0400000001','Mira','Holt',?, 'VENDOR','Studio Mira','Oil and acrylic landscapes.','vendors/mira.jpg'),
	  (101,'theo@artlease.test','0400000002','Theo','Lang',?, 'VENDOR','Lang Bronzeworks','Small cast bronze pieces.','vendors/theo.jpg')`,
		string(hash), string(hash))

	tx.MustExec(`INSERT INTO artworks(vendor_id,category_id,title,description,price_per_week,image,available_from,available_until,max_quantity,status) VALUES
	  (100,1,'Harbour Dawn','Oil on canvas, 90x60cm.',45.00,'artworks/harbour-dawn.jpg','','',2,'Listed'),
	  (100,3,'Saltmarsh Series I','Framed giclee print.',12.50,'artworks/saltmarsh-1.jpg','','',5,'Listed'),
	  (101,2,'Wren, Cast Bronze','Edition of 8.',80.00,'artworks/wren.jpg','','2030-12-31',1,'Listed'),
	  (101,2,'Tidal Form','Currently with a client.',65.00,'artworks/tidal-form.jpg','','',1,'Leased')`)

	return tx.Commit()
}

// seedUsers ensures a demo customer and the admin exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		Email, First, Last, Role, Raw string
	}
	users := []u{
		{"ada@artlease.test", "Ada", "Nguyen", "CUSTOMER", "Passw0rd!"},
		{"admin@artlease.test", "Site", "Admin", "ADMIN", "Passw0rd!"},
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		h, err := bcrypt.GenerateFromPassword([]byte(x.Raw), 12)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`
			INSERT INTO users(email,first_name,last_name,password_hash,role)
			VALUES(?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.Email, x.First, x.Last, string(h), x.Role); err != nil {
			return err
		}
	}

	return tx.Commit()
}
