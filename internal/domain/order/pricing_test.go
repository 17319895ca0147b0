package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelink/internal/domain"
)

func intPtr(v int) *int       { return &v }
func pricePtr(v int64) *int64 { return &v }

func widget() *domain.Product {
	return &domain.Product{
		ID:            1,
		CompanyID:     10,
		RetailPrice:   100,
		Threshold:     intPtr(10),
		BulkPrice:     pricePtr(40),
		StockQuantity: 50,
		MinimumOrder:  1,
	}
}

func TestUnitPrice_ThresholdIsInclusive(t *testing.T) {
	p := widget()

	assert.Equal(t, int64(100), UnitPrice(p, 9))
	assert.Equal(t, int64(40), UnitPrice(p, 10))
	assert.Equal(t, int64(40), UnitPrice(p, 11))
}

func TestUnitPrice_RetailWithoutBulkTier(t *testing.T) {
	p := widget()
	p.BulkPrice = nil
	assert.Equal(t, int64(100), UnitPrice(p, 500))

	p = widget()
	p.Threshold = nil
	assert.Equal(t, int64(100), UnitPrice(p, 500))
}

func TestPrice_Total(t *testing.T) {
	bolt := &domain.Product{ID: 2, CompanyID: 10, RetailPrice: 5, StockQuantity: 1000, MinimumOrder: 1}
	products := map[int64]*domain.Product{1: widget(), 2: bolt}

	priced, total, err := Price(10, products, []LineRequest{
		{ProductID: 1, Quantity: 10},
		{ProductID: 2, Quantity: 3},
	})
	require.NoError(t, err)
	require.Len(t, priced, 2)
	assert.Equal(t, int64(40), priced[0].UnitPrice)
	assert.Equal(t, int64(5), priced[1].UnitPrice)
	assert.Equal(t, int64(10*40+3*5), total)
}

func TestPrice_Rejections(t *testing.T) {
	foreign := &domain.Product{ID: 3, CompanyID: 99, RetailPrice: 1, StockQuantity: 10, MinimumOrder: 1}
	bulky := &domain.Product{ID: 4, CompanyID: 10, RetailPrice: 1, StockQuantity: 10, MinimumOrder: 5}
	products := map[int64]*domain.Product{1: widget(), 3: foreign, 4: bulky}

	tests := []struct {
		name  string
		lines []LineRequest
		err   error
		kind  error
	}{
		{"empty", nil, ErrEmptyOrder, domain.ErrValidation},
		{"zero quantity", []LineRequest{{ProductID: 1, Quantity: 0}}, ErrInvalidQuantity, domain.ErrValidation},
		{"negative quantity", []LineRequest{{ProductID: 1, Quantity: -2}}, ErrInvalidQuantity, domain.ErrValidation},
		{"duplicate", []LineRequest{{ProductID: 1, Quantity: 1}, {ProductID: 1, Quantity: 2}}, ErrDuplicateLine, domain.ErrValidation},
		{"missing product", []LineRequest{{ProductID: 77, Quantity: 1}}, ErrProductUnavailable, domain.ErrNotFound},
		{"other supplier", []LineRequest{{ProductID: 3, Quantity: 1}}, ErrProductNotInCatalog, domain.ErrValidation},
		{"below minimum", []LineRequest{{ProductID: 4, Quantity: 4}}, ErrBelowMinimumOrder, domain.ErrValidation},
		{"over stock", []LineRequest{{ProductID: 1, Quantity: 51}}, ErrInsufficientStock, domain.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Price(10, products, tt.lines)
			assert.ErrorIs(t, err, tt.err)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}
