package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/repository"
)

var (
	ErrProductNotAvailable = errors.New("product is not available")
	ErrInsufficientStock   = errors.New("requested quantity exceeds available stock")
	ErrBelowMinOrderQty    = errors.New("quantity is below the product minimum order quantity")
	ErrAboveMaxOrderQty    = errors.New("quantity exceeds the product maximum order quantity")
)

// CartService manages the customer shopping cart. Prices are captured at add
// time; the staleness subscriber flags items whose product changed since.
type CartService struct {
	carts    *repository.CartsRepository
	products *repository.ProductsRepository
	logger   *logrus.Entry
}

func NewCartService(
	carts *repository.CartsRepository,
	products *repository.ProductsRepository,
	logger *logrus.Logger,
) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		logger:   logger.WithField("service", "cart"),
	}
}

// GetCart returns the customer's open cart, creating an empty one on first
// access.
func (s *CartService) GetCart(customerID uuid.UUID) (*models.Cart, error) {
	return s.carts.GetOrCreateOpenCart(customerID)
}

// validateQuantity checks quantity constraints for a product
func validateQuantity(product *models.Product, quantity int) error {
	if product.Status != models.ProductStatusActive {
		return ErrProductNotAvailable
	}
	if quantity > product.Quantity {
		return ErrInsufficientStock
	}
	if product.MinOrderQty != nil && quantity < *product.MinOrderQty {
		return ErrBelowMinOrderQty
	}
	if product.MaxOrderQty != nil && quantity > *product.MaxOrderQty {
		return ErrAboveMaxOrderQty
	}
	return nil
}

// AddItem adds a product to the open cart. Adding the same product again
// merges quantities and refreshes the captured price.
func (s *CartService) AddItem(customerID uuid.UUID, req *models.AddCartItemRequest) (*models.Cart, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("invalid product id: %w", err)
	}

	product, err := s.products.GetProductByID(productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.carts.GetOrCreateOpenCart(customerID)
	if err != nil {
		return nil, err
	}

	unitPrice, err := decimal.NewFromString(product.Price)
	if err != nil || unitPrice.LessThanOrEqual(decimal.Zero) {
		return nil, ErrProductNotAvailable
	}

	existing, err := s.carts.FindCartItemByProduct(cart.ID, productID)
	if err != nil && !repository.IsNotFound(err) {
		return nil, err
	}

	if existing != nil {
		newQty := existing.Quantity + req.Quantity
		if err := validateQuantity(product, newQty); err != nil {
			return nil, err
		}
		existing.Quantity = newQty
		unit, _ := unitPrice.Float64()
		total, _ := unitPrice.Mul(decimal.NewFromInt(int64(newQty))).Round(2).Float64()
		existing.UnitPrice = unit
		existing.TotalPrice = total
		existing.Stale = false
		existing.StaleReason = nil
		if err := s.carts.UpdateItem(cart.ID, existing); err != nil {
			return nil, err
		}
	} else {
		if err := validateQuantity(product, req.Quantity); err != nil {
			return nil, err
		}
		unit, _ := unitPrice.Float64()
		total, _ := unitPrice.Mul(decimal.NewFromInt(int64(req.Quantity))).Round(2).Float64()
		item := &models.CartItem{
			ProductID:   productID,
			SupplierID:  product.SupplierID,
			ProductName: product.Name,
			SKU:         product.SKU,
			Quantity:    req.Quantity,
			UnitPrice:   unit,
			TotalPrice:  total,
		}
		if product.Images != nil && len(*product.Images) > 0 {
			if first, ok := (*product.Images)[0].(map[string]interface{}); ok {
				if url, ok := first["url"].(string); ok {
					item.Image = &url
				}
			}
		}
		if err := s.carts.AddItem(cart.ID, item); err != nil {
			return nil, err
		}
	}

	s.logger.WithFields(logrus.Fields{
		"cartId":    cart.ID,
		"productId": productID,
		"quantity":  req.Quantity,
	}).Debug("Cart item added")

	return s.carts.GetCartByID(cart.ID)
}

// UpdateItem changes the quantity of a cart item. The price is re-captured
// from the current product so a stale item becomes fresh again.
func (s *CartService) UpdateItem(customerID, itemID uuid.UUID, req *models.UpdateCartItemRequest) (*models.Cart, error) {
	cart, err := s.carts.GetOpenCart(customerID)
	if err != nil {
		return nil, err
	}

	item, err := s.carts.GetCartItem(cart.ID, itemID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.GetProductByID(item.ProductID)
	if err != nil {
		return nil, err
	}
	if err := validateQuantity(product, req.Quantity); err != nil {
		return nil, err
	}

	unitPrice, err := decimal.NewFromString(product.Price)
	if err != nil {
		return nil, ErrProductNotAvailable
	}
	unit, _ := unitPrice.Float64()
	total, _ := unitPrice.Mul(decimal.NewFromInt(int64(req.Quantity))).Round(2).Float64()

	item.Quantity = req.Quantity
	item.UnitPrice = unit
	item.TotalPrice = total
	item.Stale = false
	item.StaleReason = nil

	if err := s.carts.UpdateItem(cart.ID, item); err != nil {
		return nil, err
	}
	return s.carts.GetCartByID(cart.ID)
}

// RemoveItem deletes an item from the open cart
func (s *CartService) RemoveItem(customerID, itemID uuid.UUID) (*models.Cart, error) {
	cart, err := s.carts.GetOpenCart(customerID)
	if err != nil {
		return nil, err
	}
	if err := s.carts.RemoveItem(cart.ID, itemID); err != nil {
		return nil, err
	}
	return s.carts.GetCartByID(cart.ID)
}

// ClearCart empties the open cart
func (s *CartService) ClearCart(customerID uuid.UUID) (*models.Cart, error) {
	cart, err := s.carts.GetOpenCart(customerID)
	if err != nil {
		return nil, err
	}
	if err := s.carts.ClearCart(cart.ID); err != nil {
		return nil, err
	}
	return s.carts.GetCartByID(cart.ID)
}

// RefreshStaleItems re-reads current product data for flagged items and
// returns the refreshed cart. Items whose product vanished are removed.
func (s *CartService) RefreshStaleItems(customerID uuid.UUID) (*models.Cart, error) {
	cart, err := s.carts.GetOpenCart(customerID)
	if err != nil {
		return nil, err
	}

	for i := range cart.Items {
		item := cart.Items[i]
		if !item.Stale {
			continue
		}

		product, err := s.products.GetProductByID(item.ProductID)
		if err != nil {
			if repository.IsNotFound(err) {
				if err := s.carts.RemoveItem(cart.ID, item.ID); err != nil {
					return nil, err
				}
				continue
			}
			return nil, err
		}
		if product.Status != models.ProductStatusActive {
			if err := s.carts.RemoveItem(cart.ID, item.ID); err != nil {
				return nil, err
			}
			continue
		}

		unitPrice, err := decimal.NewFromString(product.Price)
		if err != nil {
			continue
		}
		qty := item.Quantity
		if qty > product.Quantity {
			qty = product.Quantity
		}
		if qty <= 0 {
			if err := s.carts.RemoveItem(cart.ID, item.ID); err != nil {
				return nil, err
			}
			continue
		}
		unit, _ := unitPrice.Float64()
		total, _ := unitPrice.Mul(decimal.NewFromInt(int64(qty))).Round(2).Float64()
		item.Quantity = qty
		item.UnitPrice = unit
		item.TotalPrice = total
		item.Stale = false
		item.StaleReason = nil
		if err := s.carts.UpdateItem(cart.ID, &item); err != nil {
			return nil, err
		}
	}

	return s.carts.GetCartByID(cart.ID)
}
