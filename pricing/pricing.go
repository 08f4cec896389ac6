// Package pricing resolves a base price for an uploaded file and turns it
// into per-seller quotes.
package pricing

import (
	"context"
	"fmt"
	"math"
	"strings"

	"plasticity-backend/apperr"
)

// Resolver produces the base price of the file named by fileID.
// Implementations must not have side effects.
type Resolver interface {
	Resolve(ctx context.Context, fileID string) (float64, error)
}

// Fixed prices every file at the same base price.
type Fixed struct {
	Price float64
}

func (f Fixed) Resolve(ctx context.Context, fileID string) (float64, error) {
	if strings.TrimSpace(fileID) == "" {
		return 0, fmt.Errorf("resolve price: %w: empty file identifier", apperr.ErrPricing)
	}
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("resolve price: %w: %w", apperr.ErrPricing, err)
	}
	if err := checkPrice(f.Price); err != nil {
		return 0, fmt.Errorf("resolve price: %w: %w", apperr.ErrPricing, err)
	}
	return f.Price, nil
}

// checkPrice rejects prices that cannot be quoted: NaN, infinities and
// negative amounts.
func checkPrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return fmt.Errorf("price %v is not a number", price)
	}
	if price < 0 {
		return fmt.Errorf("negative price %v", price)
	}
	return nil
}

// Quote applies a seller multiplier to a base price.
func Quote(multiplier, price float64) float64 {
	return multiplier * price
}

// FormatQuote renders multiplier*price as dollars with two decimals, e.g. "$25.00".
func FormatQuote(multiplier, price float64) string {
	return fmt.Sprintf("$%.2f", Quote(multiplier, price))
}
