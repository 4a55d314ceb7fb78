package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Timestamps are stored as INTEGER unix milliseconds (UTC).
var schema = []string{
	`CREATE TABLE IF NOT EXISTS ingredients (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		unit TEXT NOT NULL DEFAULT '',
		cost_per_unit REAL NOT NULL DEFAULT 0 CHECK (cost_per_unit >= 0),
		stock REAL NOT NULL DEFAULT 0,
		min_stock REAL NOT NULL DEFAULT 0 CHECK (min_stock >= 0)
	);`,
	`CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		category_id INTEGER,
		active INTEGER NOT NULL DEFAULT 1,
		public INTEGER NOT NULL DEFAULT 1,
		price REAL NOT NULL DEFAULT 0 CHECK (price >= 0)
	);`,
	`CREATE TABLE IF NOT EXISTS recipe_items (
		product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		ingredient_id INTEGER NOT NULL REFERENCES ingredients(id) ON DELETE CASCADE,
		quantity REAL NOT NULL CHECK (quantity > 0),
		PRIMARY KEY (product_id, ingredient_id)
	);`,
	`CREATE TABLE IF NOT EXISTS sales (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at INTEGER NOT NULL,
		total REAL NOT NULL DEFAULT 0,
		discount REAL NOT NULL DEFAULT 0,
		channel TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'PENDING'
			CHECK (status IN ('PENDING', 'IN_PROGRESS', 'READY', 'COMPLETED', 'REFUNDED')),
		client_name TEXT,
		customer_id INTEGER
	);`,
	`CREATE INDEX IF NOT EXISTS idx_sales_created_at ON sales (created_at);`,
	`CREATE TABLE IF NOT EXISTS sale_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sale_id INTEGER NOT NULL REFERENCES sales(id) ON DELETE CASCADE,
		product_id INTEGER NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		unit_price REAL NOT NULL CHECK (unit_price >= 0)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_sale_items_sale_id ON sale_items (sale_id);`,
	`CREATE TABLE IF NOT EXISTS platform_configs (
		channel TEXT PRIMARY KEY,
		commission_percent REAL NOT NULL DEFAULT 0
			CHECK (commission_percent >= 0 AND commission_percent <= 100)
	);`,
	`INSERT OR IGNORE INTO platform_configs (channel, commission_percent) VALUES
		('LOCAL', 0), ('PEYA', 0), ('RAPPI', 0), ('MERCADOPAGO', 0);`,
}

// DSNFromURL turns a sqlite:// store URL into a driver DSN. file: URIs and
// plain paths pass through.
func DSNFromURL(databaseURL string) string {
	dsn := strings.TrimSpace(databaseURL)
	if strings.HasPrefix(strings.ToLower(dsn), "sqlite://") {
		dsn = dsn[len("sqlite://"):]
	}
	return dsn
}

// Open connects to a SQLite database and creates the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply sqlite schema: %w", err)
		}
	}
	return New(db), nil
}
