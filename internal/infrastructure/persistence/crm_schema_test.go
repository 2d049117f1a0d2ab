package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// crmSchema mirrors migrations/ with SQLite column types
var crmSchema = []string{
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		created_by TEXT,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'vendedor',
		original_role TEXT NOT NULL DEFAULT 'vendedor',
		active INTEGER NOT NULL DEFAULT 1,
		last_login_at DATETIME
	)`,
	`CREATE TABLE clients (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		created_by TEXT,
		code TEXT NOT NULL UNIQUE,
		ruc TEXT NOT NULL UNIQUE,
		business_name TEXT NOT NULL,
		sector TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'Pendiente',
		notes TEXT,
		phone TEXT,
		website TEXT,
		address TEXT,
		potential_value TEXT NOT NULL DEFAULT '0',
		close_probability INTEGER NOT NULL DEFAULT 0,
		tags TEXT,
		last_contact_at DATETIME
	)`,
	`CREATE TABLE contacts (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		created_by TEXT,
		client_id TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT,
		title TEXT,
		phone TEXT,
		mobile TEXT,
		email TEXT,
		alt_email TEXT,
		is_primary INTEGER NOT NULL DEFAULT 0,
		notes TEXT
	)`,
	`CREATE UNIQUE INDEX idx_contacts_primary ON contacts (client_id) WHERE is_primary`,
	`CREATE TABLE visits (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		created_by TEXT,
		client_id TEXT NOT NULL,
		seller_id TEXT NOT NULL,
		manager_id TEXT,
		title TEXT NOT NULL,
		description TEXT,
		objectives TEXT,
		scheduled_at DATETIME NOT NULL,
		shift TEXT NOT NULL,
		estimated_duration INTEGER NOT NULL DEFAULT 60,
		actual_duration INTEGER,
		type TEXT NOT NULL,
		planning_type TEXT NOT NULL,
		priority TEXT NOT NULL,
		status TEXT NOT NULL,
		week INTEGER NOT NULL,
		year INTEGER NOT NULL,
		completed_at DATETIME,
		result TEXT,
		notes TEXT,
		comments TEXT,
		manager_comments TEXT,
		customer_satisfaction INTEGER,
		objectives_met INTEGER,
		requires_follow_up INTEGER NOT NULL DEFAULT 0,
		next_contact_at DATETIME,
		submitted_at DATETIME,
		approved_at DATETIME,
		probability_of_close INTEGER,
		estimated_value TEXT
	)`,
	`CREATE TABLE quotations (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		created_by TEXT,
		code TEXT NOT NULL UNIQUE,
		client_id TEXT NOT NULL,
		seller_id TEXT NOT NULL,
		visit_id TEXT,
		issued_at DATETIME NOT NULL,
		expires_at DATETIME NOT NULL,
		total TEXT NOT NULL DEFAULT '0',
		status TEXT NOT NULL,
		notes TEXT,
		sent_at DATETIME,
		decided_at DATETIME
	)`,
	`CREATE TABLE quotation_items (
		id TEXT PRIMARY KEY,
		quotation_id TEXT NOT NULL,
		product_id TEXT,
		description TEXT NOT NULL,
		quantity TEXT NOT NULL,
		unit_price TEXT NOT NULL,
		subtotal TEXT NOT NULL,
		position INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE orders (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		created_by TEXT,
		code TEXT NOT NULL UNIQUE,
		client_id TEXT NOT NULL,
		seller_id TEXT NOT NULL,
		quotation_id TEXT,
		ordered_at DATETIME NOT NULL,
		expected_delivery_at DATETIME,
		total TEXT NOT NULL DEFAULT '0',
		status TEXT NOT NULL,
		shipping_address TEXT,
		notes TEXT
	)`,
	`CREATE TABLE order_items (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL,
		product_id TEXT,
		description TEXT NOT NULL,
		quantity TEXT NOT NULL,
		unit_price TEXT NOT NULL,
		subtotal TEXT NOT NULL,
		position INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE channels (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE products (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		created_by TEXT,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		description TEXT,
		base_price TEXT NOT NULL DEFAULT '0',
		unit TEXT NOT NULL DEFAULT 'unidad'
	)`,
	`CREATE TABLE channel_prices (
		product_id TEXT NOT NULL,
		channel_id TEXT NOT NULL,
		price TEXT NOT NULL,
		PRIMARY KEY (product_id, channel_id)
	)`,
	`CREATE TABLE product_documents (
		id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL,
		name TEXT NOT NULL,
		storage_key TEXT NOT NULL,
		file_type TEXT,
		created_at DATETIME NOT NULL
	)`,
}

// setupCRMTestDB creates an in-memory SQLite database with the CRM tables
func setupCRMTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// a single connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	for _, stmt := range crmSchema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}
