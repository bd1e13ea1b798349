package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartStatus represents the lifecycle state of a shopping cart
type CartStatus string

const (
	CartStatusOpen       CartStatus = "OPEN"
	CartStatusCheckedOut CartStatus = "CHECKED_OUT"
	CartStatusAbandoned  CartStatus = "ABANDONED"
	CartStatusExpired    CartStatus = "EXPIRED"
)

// Cart represents a customer's shopping cart. One OPEN cart per customer.
type Cart struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CustomerID uuid.UUID  `json:"customerId" gorm:"type:uuid;not null;index:idx_carts_customer_status"`
	Status     CartStatus `json:"status" gorm:"type:varchar(20);not null;default:'OPEN';index:idx_carts_customer_status"`

	Subtotal  float64 `json:"subtotal" gorm:"type:decimal(12,2);default:0"`
	ItemCount int     `json:"itemCount" gorm:"default:0"`

	// LastActivityAt drives abandonment detection
	LastActivityAt time.Time  `json:"lastActivityAt" gorm:"not null;index"`
	AbandonedAt    *time.Time `json:"abandonedAt,omitempty"`
	ExpiredAt      *time.Time `json:"expiredAt,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Items []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

func (Cart) TableName() string {
	return "carts"
}

// CartItem represents a product offer placed in a cart. UnitPrice is captured
// at add time; the Stale flag marks items whose product changed since.
type CartItem struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CartID      uuid.UUID `json:"cartId" gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID `json:"productId" gorm:"type:uuid;not null;index"`
	SupplierID  uuid.UUID `json:"supplierId" gorm:"type:uuid;not null"`
	ProductName string    `json:"productName" gorm:"not null"`
	SKU         string    `json:"sku" gorm:"not null"`
	Image       *string   `json:"image,omitempty"`

	Quantity   int     `json:"quantity" gorm:"not null"`
	UnitPrice  float64 `json:"unitPrice" gorm:"type:decimal(12,2);not null"`
	TotalPrice float64 `json:"totalPrice" gorm:"type:decimal(12,2);not null"`

	Stale       bool    `json:"stale" gorm:"default:false"`
	StaleReason *string `json:"staleReason,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// AddCartItemRequest represents adding a product to the cart
type AddCartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest represents a quantity change for a cart item
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

type CartResponse struct {
	Success bool    `json:"success"`
	Data    *Cart   `json:"data"`
	Message *string `json:"message,omitempty"`
}
