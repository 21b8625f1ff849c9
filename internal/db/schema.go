package db

import (
	"fmt"
)

// sqliteSchema stores prices as decimal text; REAL would round them.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS barang (
    id          INTEGER PRIMARY KEY,
    nama_barang TEXT NOT NULL UNIQUE,
    category    TEXT NOT NULL,
    harga       TEXT NOT NULL,
    stok        INTEGER NOT NULL CHECK (stok >= 0)
);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS barang (
    id          BIGSERIAL PRIMARY KEY,
    nama_barang VARCHAR(100) NOT NULL UNIQUE,
    category    VARCHAR(50) NOT NULL,
    harga       NUMERIC(15,2) NOT NULL CHECK (harga > 0),
    stok        BIGINT NOT NULL CHECK (stok >= 0)
);
`

// EnsureSchema creates the item table if it doesn't already exist.
func EnsureSchema(d *DB) error {
	schema := sqliteSchema
	if d.Driver == DriverPostgres {
		schema = postgresSchema
	}

	if _, err := d.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
