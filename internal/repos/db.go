package repos

import (
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	applog "storefront/internal/log"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// Every new connection to :memory: is a fresh database.
	if strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed the demo catalog if the products table is empty
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Catalog (read-only at runtime)
CREATE TABLE IF NOT EXISTS products(
  id INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  category TEXT NOT NULL,
  description TEXT,
  price TEXT NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  sizes_json TEXT NOT NULL DEFAULT '[]',
  images_json TEXT NOT NULL DEFAULT '[]',
  specs_json TEXT NOT NULL DEFAULT '[]',
  rating REAL NOT NULL DEFAULT 0,
  reviews INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(LOWER(category));

-- Named blobs (cart:<sid>, lastOrder:<sid>)
CREATE TABLE IF NOT EXISTS blobs(
  name TEXT PRIMARY KEY,
  body BLOB NOT NULL,
  updated_at TEXT
);

-- Order history
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL,
  shipping_method TEXT NOT NULL,
  email TEXT,
  subtotal TEXT NOT NULL,
  shipping TEXT NOT NULL,
  tax TEXT NOT NULL,
  total TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_orders_session ON orders(session_id);

CREATE TABLE IF NOT EXISTS order_items(
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id INTEGER NOT NULL,
  size TEXT NOT NULL DEFAULT '',
  name TEXT NOT NULL,
  qty INTEGER NOT NULL CHECK (qty >= 1),
  price TEXT NOT NULL,
  PRIMARY KEY (order_id, product_id, size)
);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	applog.Info(nil, "db.seed", map[string]any{"products": 6})

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO products(id,name,category,description,price,stock,sizes_json,images_json,specs_json,rating,reviews,created_at) VALUES
	  (1,'Wireless Headphones','Electronics','Over-ear, 30h battery','99.99',5,'[]','["/images/headphones-1.jpg","/images/headphones-2.jpg"]','["Bluetooth 5.3","Active noise cancelling"]',4,128,'2024-01-10T09:00:00Z'),
	  (2,'Classic Cotton Tee','Clothing','Heavyweight cotton crew neck','24.50',2,'["S","M","L"]','["/images/tee-1.jpg"]','["100% cotton"]',4.5,64,'2024-03-02T09:00:00Z'),
	  (3,'Field Notes Journal','Books','Dot grid, 192 pages','12.00',40,'[""]','["/images/journal-1.jpg"]','[]',4.2,31,'2023-11-20T09:00:00Z'),
	  (4,'Ceramic Pour-Over Set','Home','Dripper, server and two cups','48.00',0,'[]','["/images/pourover-1.jpg"]','["Dishwasher safe"]',4.8,12,'2024-02-14T09:00:00Z'),
	  (5,'Trail Running Shoes','Clothing','Lightweight, grippy outsole','129.00',6,'["40","41","42","43"]','["/images/shoes-1.jpg","/images/shoes-2.jpg"]','["Drop 6mm","Weight 280g"]',4.6,203,'2024-04-01T09:00:00Z'),
	  (6,'Mechanical Keyboard','Electronics','Tenkeyless, hot-swap switches','149.00',3,'[]','["/images/keyboard-1.jpg"]','["USB-C","PBT keycaps"]',4.4,77,'2023-12-05T09:00:00Z')`)

	return tx.Commit()
}
