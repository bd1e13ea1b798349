package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
)

func activeProduct(stock int) *models.Product {
	return &models.Product{
		Status:   models.ProductStatusActive,
		Quantity: stock,
	}
}

func TestValidateQuantity(t *testing.T) {
	minQty := 2
	maxQty := 10

	tests := []struct {
		name     string
		product  *models.Product
		quantity int
		wantErr  error
	}{
		{"in stock and within bounds", activeProduct(50), 5, nil},
		{"exactly available stock", activeProduct(5), 5, nil},
		{"exceeds stock", activeProduct(3), 4, ErrInsufficientStock},
		{"inactive product", &models.Product{Status: models.ProductStatusInactive, Quantity: 50}, 1, ErrProductNotAvailable},
		{"draft product", &models.Product{Status: models.ProductStatusDraft, Quantity: 50}, 1, ErrProductNotAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateQuantity(tt.product, tt.quantity)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}

	t.Run("below minimum order quantity", func(t *testing.T) {
		p := activeProduct(50)
		p.MinOrderQty = &minQty
		assert.ErrorIs(t, validateQuantity(p, 1), ErrBelowMinOrderQty)
		assert.NoError(t, validateQuantity(p, 2))
	})

	t.Run("above maximum order quantity", func(t *testing.T) {
		p := activeProduct(50)
		p.MaxOrderQty = &maxQty
		assert.ErrorIs(t, validateQuantity(p, 11), ErrAboveMaxOrderQty)
		assert.NoError(t, validateQuantity(p, 10))
	})

	t.Run("stock check runs before max order quantity", func(t *testing.T) {
		p := activeProduct(4)
		p.MaxOrderQty = &maxQty
		assert.ErrorIs(t, validateQuantity(p, 8), ErrInsufficientStock)
	})
}
