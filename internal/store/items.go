package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/barang/internal/db"
	"github.com/erazemk/barang/internal/model"
)

var (
	// ErrNotFound is returned when no item has the requested ID.
	ErrNotFound = errors.New("item not found")
	// ErrDuplicateName is returned when another item already uses the name.
	ErrDuplicateName = errors.New("item name already exists")
)

const itemColumns = `id, nama_barang, category, harga, stok`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	item := &model.Item{}
	if err := row.Scan(&item.ID, &item.Name, &item.Category, &item.Price, &item.Stock); err != nil {
		return nil, err
	}
	return item, nil
}

// CreateItem inserts a new item and returns it with its generated ID.
// The UNIQUE constraint on the name makes the uniqueness check and the insert
// a single statement.
func CreateItem(ctx context.Context, d *db.DB, item model.Item) (*model.Item, error) {
	row := d.QueryRowContext(ctx,
		d.Rebind(`INSERT INTO barang (nama_barang, category, harga, stok) VALUES (?, ?, ?, ?)
		 RETURNING `+itemColumns),
		item.Name, item.Category, item.Price, item.Stock,
	)
	created, err := scanItem(row)
	if db.IsUniqueViolation(err) {
		return nil, ErrDuplicateName
	}
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}
	return created, nil
}

// GetItem returns an item by ID, or ErrNotFound.
func GetItem(ctx context.Context, d *db.DB, id int64) (*model.Item, error) {
	item, err := scanItem(d.QueryRowContext(ctx,
		d.Rebind(`SELECT `+itemColumns+` FROM barang WHERE id = ?`), id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns all items in the store's natural order.
func ListItems(ctx context.Context, d *db.DB) ([]model.Item, error) {
	rows, err := d.QueryContext(ctx, `SELECT `+itemColumns+` FROM barang`)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateItem replaces all fields of the item with the given ID and returns the
// updated row. It returns ErrNotFound when no such item exists and
// ErrDuplicateName when another item already has the new name.
func UpdateItem(ctx context.Context, d *db.DB, id int64, item model.Item) (*model.Item, error) {
	row := d.QueryRowContext(ctx,
		d.Rebind(`UPDATE barang SET nama_barang = ?, category = ?, harga = ?, stok = ?
		 WHERE id = ? RETURNING `+itemColumns),
		item.Name, item.Category, item.Price, item.Stock, id,
	)
	updated, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if db.IsUniqueViolation(err) {
		return nil, ErrDuplicateName
	}
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}
	return updated, nil
}

// DeleteItem permanently removes the item with the given ID. Deleting an ID
// that does not exist is not an error.
func DeleteItem(ctx context.Context, d *db.DB, id int64) error {
	_, err := d.ExecContext(ctx, d.Rebind(`DELETE FROM barang WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}
