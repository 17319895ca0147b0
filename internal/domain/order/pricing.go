package order

import (
	"fmt"

	"tradelink/internal/domain"
)

type LineRequest struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

// PricedLine is a validated line with its unit price frozen.
type PricedLine struct {
	Product   *domain.Product
	Quantity  int
	UnitPrice int64
}

// UnitPrice applies quantity-break pricing: the bulk price from the
// threshold quantity upwards, inclusive. Without a threshold or bulk price
// the retail price always applies.
func UnitPrice(p *domain.Product, quantity int) int64 {
	if p.Threshold != nil && p.BulkPrice != nil && quantity >= *p.Threshold {
		return *p.BulkPrice
	}
	return p.RetailPrice
}

// Price validates every requested line against the supplier catalog and
// returns the priced lines and the order total. products must hold the
// current row of every requested product id that exists.
func Price(supplierCompanyID int64, products map[int64]*domain.Product, lines []LineRequest) ([]PricedLine, int64, error) {
	if len(lines) == 0 {
		return nil, 0, ErrEmptyOrder
	}

	seen := make(map[int64]bool, len(lines))
	priced := make([]PricedLine, 0, len(lines))
	var total int64

	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, 0, fmt.Errorf("product %d: %w", line.ProductID, ErrInvalidQuantity)
		}
		if seen[line.ProductID] {
			return nil, 0, fmt.Errorf("product %d: %w", line.ProductID, ErrDuplicateLine)
		}
		seen[line.ProductID] = true

		p, ok := products[line.ProductID]
		if !ok {
			return nil, 0, fmt.Errorf("product %d: %w", line.ProductID, ErrProductUnavailable)
		}
		if p.CompanyID != supplierCompanyID {
			return nil, 0, fmt.Errorf("product %d: %w", line.ProductID, ErrProductNotInCatalog)
		}
		if line.Quantity < p.MinimumOrder {
			return nil, 0, fmt.Errorf("product %d needs at least %d: %w", p.ID, p.MinimumOrder, ErrBelowMinimumOrder)
		}
		if line.Quantity > p.StockQuantity {
			return nil, 0, fmt.Errorf("product %d has %d in stock: %w", p.ID, p.StockQuantity, ErrInsufficientStock)
		}

		unit := UnitPrice(p, line.Quantity)
		total += unit * int64(line.Quantity)
		priced = append(priced, PricedLine{Product: p, Quantity: line.Quantity, UnitPrice: unit})
	}
	return priced, total, nil
}
