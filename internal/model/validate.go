package model

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Item field names, shared by JSON bodies, HTML forms and validation errors.
const (
	FieldName     = "name"
	FieldCategory = "category"
	FieldPrice    = "price"
	FieldStock    = "stock"
)

// ErrFieldsRequired is returned when any item field is missing.
var ErrFieldsRequired = errors.New("all fields are required")

// FieldError is a rejection of a single item field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

var fieldMessages = map[string]string{
	FieldName:     fmt.Sprintf("name must be text of at most %d characters", MaxNameLength),
	FieldCategory: fmt.Sprintf("category must be text of at most %d characters and must not contain digits", MaxCategoryLength),
	FieldPrice:    "price must be a positive number",
	FieldStock:    "stock must be a whole number and must not be negative",
}

// NewFieldError returns the standard rejection for the given field.
func NewFieldError(field string) *FieldError {
	return &FieldError{Field: field, Message: fieldMessages[field]}
}

var (
	validate = validator.New()

	maxPrice = decimal.New(1, MaxPriceDigits-MaxPriceScale)

	nameRule     = fmt.Sprintf("max=%d", MaxNameLength)
	categoryRule = fmt.Sprintf("max=%d,excludesall=0123456789", MaxCategoryLength)
)

// ItemInput holds candidate item values as submitted. A nil field was not
// submitted at all.
type ItemInput struct {
	Name     *string
	Category *string
	Price    *string
	Stock    *string

	// Malformed marks fields that were submitted with a value of the wrong
	// type. They count as present and fail their own rule.
	Malformed map[string]bool
}

// InputFromItem returns the input that describes item.
func InputFromItem(item Item) ItemInput {
	price := item.Price.String()
	stock := strconv.FormatInt(item.Stock, 10)
	return ItemInput{
		Name:     &item.Name,
		Category: &item.Category,
		Price:    &price,
		Stock:    &stock,
	}
}

// Validate checks the input and returns the item it describes, without an ID.
// Checks run in a fixed order (presence, name, category, price, stock) and
// stop at the first failure.
func (in ItemInput) Validate() (*Item, error) {
	if !in.present(FieldName, in.Name) || !in.present(FieldCategory, in.Category) ||
		!in.present(FieldPrice, in.Price) || !in.present(FieldStock, in.Stock) {
		return nil, ErrFieldsRequired
	}

	if err := in.check(FieldName, in.Name, checkName); err != nil {
		return nil, err
	}
	if err := in.check(FieldCategory, in.Category, checkCategory); err != nil {
		return nil, err
	}

	var price decimal.Decimal
	if err := in.check(FieldPrice, in.Price, func(s string) (err error) {
		price, err = parsePrice(s)
		return err
	}); err != nil {
		return nil, err
	}

	var stock int64
	if err := in.check(FieldStock, in.Stock, func(s string) (err error) {
		stock, err = parseStock(s)
		return err
	}); err != nil {
		return nil, err
	}

	return &Item{
		Name:     *in.Name,
		Category: *in.Category,
		Price:    price,
		Stock:    stock,
	}, nil
}

// ValidateAll runs every rule and returns a message per offending field.
// The map is empty when the input is valid.
func (in ItemInput) ValidateAll() map[string]string {
	errs := make(map[string]string)

	record := func(field string, value *string, rule func(string) error) {
		if !in.present(field, value) {
			errs[field] = field + " is required"
			return
		}
		if err := in.check(field, value, rule); err != nil {
			errs[field] = err.Error()
		}
	}

	record(FieldName, in.Name, checkName)
	record(FieldCategory, in.Category, checkCategory)
	record(FieldPrice, in.Price, func(s string) error {
		_, err := parsePrice(s)
		return err
	})
	record(FieldStock, in.Stock, func(s string) error {
		_, err := parseStock(s)
		return err
	})

	return errs
}

func (in ItemInput) present(field string, value *string) bool {
	return in.Malformed[field] || !missing(value)
}

// check applies rule to a present field.
func (in ItemInput) check(field string, value *string, rule func(string) error) error {
	if in.Malformed[field] {
		return NewFieldError(field)
	}
	return rule(*value)
}

func missing(s *string) bool {
	return s == nil || *s == ""
}

func checkName(name string) error {
	if err := validate.Var(name, nameRule); err != nil {
		return NewFieldError(FieldName)
	}
	return nil
}

func checkCategory(category string) error {
	if err := validate.Var(category, categoryRule); err != nil {
		return NewFieldError(FieldCategory)
	}
	return nil
}

// parseNumber parses a decimal literal. Long literals and exponents outside
// ±maxNumberLength are refused before any arithmetic touches them.
func parseNumber(s string) (decimal.Decimal, bool) {
	if len(s) > maxNumberLength {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if exp := d.Exponent(); exp < -maxNumberLength || exp > maxNumberLength {
		return decimal.Zero, false
	}
	return d, true
}

// parsePrice accepts positive prices that fit NUMERIC(MaxPriceDigits, MaxPriceScale).
func parsePrice(s string) (decimal.Decimal, error) {
	price, ok := parseNumber(s)
	if !ok || !price.IsPositive() || price.GreaterThanOrEqual(maxPrice) ||
		!price.Equal(price.Truncate(MaxPriceScale)) {
		return decimal.Zero, NewFieldError(FieldPrice)
	}
	return price, nil
}

// parseStock accepts any integral value, including forms like "10.0" or "1e3".
func parseStock(s string) (int64, error) {
	stock, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		d, ok := parseNumber(s)
		if !ok || !d.IsInteger() || !d.BigInt().IsInt64() {
			return 0, NewFieldError(FieldStock)
		}
		stock = d.IntPart()
	}
	if err := validate.Var(stock, "min=0"); err != nil {
		return 0, NewFieldError(FieldStock)
	}
	return stock, nil
}
