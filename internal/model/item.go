package model

import "github.com/shopspring/decimal"

// Item represents an inventory record (barang).
type Item struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Stock    int64           `json:"stock"`
}

// Item field limits.
const (
	MaxNameLength     = 100
	MaxCategoryLength = 50

	// Prices are stored as NUMERIC(15,2).
	MaxPriceDigits = 15
	MaxPriceScale  = 2

	// maxNumberLength bounds numeric literals and their exponents.
	maxNumberLength = 32
)

func init() {
	// Prices travel as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}
