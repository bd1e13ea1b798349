package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"gorm.io/gorm"
)

type CartsRepository struct {
	db *gorm.DB
}

func NewCartsRepository(db *gorm.DB) *CartsRepository {
	return &CartsRepository{db: db}
}

// GetOpenCart returns the customer's OPEN cart with its items, or ErrNotFound
func (r *CartsRepository) GetOpenCart(customerID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.Preload("Items").
		Where("customer_id = ? AND status = ?", customerID, models.CartStatusOpen).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetOrCreateOpenCart returns the customer's OPEN cart, creating one when
// none exists. At most one OPEN cart per customer.
func (r *CartsRepository) GetOrCreateOpenCart(customerID uuid.UUID) (*models.Cart, error) {
	cart, err := r.GetOpenCart(customerID)
	if err == nil {
		return cart, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	cart = &models.Cart{
		ID:             uuid.New(),
		CustomerID:     customerID,
		Status:         models.CartStatusOpen,
		LastActivityAt: time.Now(),
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
		Items:          []models.CartItem{},
	}
	if err := r.db.Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

// GetCartByID retrieves a cart with items regardless of status
func (r *CartsRepository) GetCartByID(cartID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.Preload("Items").Where("id = ?", cartID).First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetCartItem retrieves an item of a specific cart
func (r *CartsRepository) GetCartItem(cartID, itemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.Where("id = ? AND cart_id = ?", itemID, cartID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindCartItemByProduct retrieves the item of a cart holding a given product
func (r *CartsRepository) FindCartItemByProduct(cartID, productID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// AddItem inserts a cart item and refreshes cart totals
func (r *CartsRepository) AddItem(cartID uuid.UUID, item *models.CartItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.CartID = cartID
	item.CreatedAt = time.Now()
	item.UpdatedAt = time.Now()

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		return r.recalcTotals(tx, cartID)
	})
}

// UpdateItem updates a cart item and refreshes cart totals
func (r *CartsRepository) UpdateItem(cartID uuid.UUID, item *models.CartItem) error {
	item.UpdatedAt = time.Now()
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.CartItem{}).
			Where("id = ? AND cart_id = ?", item.ID, cartID).
			Updates(map[string]interface{}{
				"quantity":     item.Quantity,
				"unit_price":   item.UnitPrice,
				"total_price":  item.TotalPrice,
				"stale":        item.Stale,
				"stale_reason": item.StaleReason,
				"updated_at":   item.UpdatedAt,
			}).Error; err != nil {
			return err
		}
		return r.recalcTotals(tx, cartID)
	})
}

// RemoveItem deletes a cart item and refreshes cart totals
func (r *CartsRepository) RemoveItem(cartID, itemID uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND cart_id = ?", itemID, cartID).Delete(&models.CartItem{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return r.recalcTotals(tx, cartID)
	})
}

// ClearCart removes all items and refreshes totals
func (r *CartsRepository) ClearCart(cartID uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return r.recalcTotals(tx, cartID)
	})
}

// recalcTotals recomputes the denormalized subtotal and item count and bumps
// the activity timestamp.
func (r *CartsRepository) recalcTotals(tx *gorm.DB, cartID uuid.UUID) error {
	var agg struct {
		Subtotal  float64
		ItemCount int
	}
	if err := tx.Model(&models.CartItem{}).
		Select("COALESCE(SUM(total_price), 0) as subtotal, COALESCE(SUM(quantity), 0) as item_count").
		Where("cart_id = ?", cartID).
		Scan(&agg).Error; err != nil {
		return err
	}
	return tx.Model(&models.Cart{}).
		Where("id = ?", cartID).
		Updates(map[string]interface{}{
			"subtotal":         agg.Subtotal,
			"item_count":       agg.ItemCount,
			"last_activity_at": time.Now(),
			"updated_at":       time.Now(),
		}).Error
}

// UpdateCartStatus moves a cart into a terminal status
func (r *CartsRepository) UpdateCartStatus(cartID uuid.UUID, status models.CartStatus) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	now := time.Now()
	switch status {
	case models.CartStatusAbandoned:
		updates["abandoned_at"] = now
	case models.CartStatusExpired:
		updates["expired_at"] = now
	}
	return r.db.Model(&models.Cart{}).
		Where("id = ?", cartID).
		Updates(updates).Error
}

// MarkItemsStaleByProduct flags cart items in OPEN carts that reference a
// changed or removed product. Returns the number of flagged items.
func (r *CartsRepository) MarkItemsStaleByProduct(productID uuid.UUID, reason string) (int64, error) {
	result := r.db.Exec(`
		UPDATE cart_items SET stale = true, stale_reason = ?, updated_at = ?
		WHERE product_id = ?
		AND cart_id IN (SELECT id FROM carts WHERE status = ? AND deleted_at IS NULL)`,
		reason, time.Now(), productID, models.CartStatusOpen)
	return result.RowsAffected, result.Error
}

// FindInactiveCarts returns OPEN carts whose last activity predates the cutoff
func (r *CartsRepository) FindInactiveCarts(cutoff time.Time, limit int) ([]models.Cart, error) {
	var carts []models.Cart
	err := r.db.
		Where("status = ?", models.CartStatusOpen).
		Where("last_activity_at < ?", cutoff).
		Order("last_activity_at ASC").
		Limit(limit).
		Find(&carts).Error
	return carts, err
}

// FindAbandonedCartsBefore returns ABANDONED carts older than the cutoff,
// candidates for expiration.
func (r *CartsRepository) FindAbandonedCartsBefore(cutoff time.Time, limit int) ([]models.Cart, error) {
	var carts []models.Cart
	err := r.db.
		Where("status = ?", models.CartStatusAbandoned).
		Where("abandoned_at < ?", cutoff).
		Order("abandoned_at ASC").
		Limit(limit).
		Find(&carts).Error
	return carts, err
}
