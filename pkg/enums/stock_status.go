package enums

import "fmt"

// StockStatus classifies an inventory row by its remaining quantity.
type StockStatus string

const (
	StockStatusInStock    StockStatus = "IN_STOCK"
	StockStatusLow        StockStatus = "LOW"
	StockStatusOutOfStock StockStatus = "OUT_OF_STOCK"
)

var validStockStatuses = []StockStatus{
	StockStatusInStock,
	StockStatusLow,
	StockStatusOutOfStock,
}

// String implements fmt.Stringer.
func (s StockStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StockStatus.
func (s StockStatus) IsValid() bool {
	for _, candidate := range validStockStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStockStatus converts raw input into a StockStatus.
func ParseStockStatus(value string) (StockStatus, error) {
	for _, candidate := range validStockStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock status %q", value)
}

// DeriveStockStatus computes the status from quantity and the optional
// low-stock threshold.
func DeriveStockStatus(quantity int, minQuantity *int) StockStatus {
	switch {
	case quantity <= 0:
		return StockStatusOutOfStock
	case minQuantity != nil && quantity <= *minQuantity:
		return StockStatusLow
	default:
		return StockStatusInStock
	}
}
