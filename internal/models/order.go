package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderStatus represents the overall lifecycle status of an order
type OrderStatus string

const (
	OrderStatusPlaced     OrderStatus = "PLACED"     // Order created, awaiting payment
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"  // Payment successful, order accepted
	OrderStatusProcessing OrderStatus = "PROCESSING" // Being fulfilled/packed
	OrderStatusShipped    OrderStatus = "SHIPPED"    // Dispatched to carrier
	OrderStatusDelivered  OrderStatus = "DELIVERED"  // Successfully delivered
	OrderStatusCompleted  OrderStatus = "COMPLETED"  // Fully delivered and closed
	OrderStatusCancelled  OrderStatus = "CANCELLED"  // Cancelled before fulfillment
)

// PaymentStatus represents the payment/money flow status
type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "PENDING"
	PaymentStatusPaid              PaymentStatus = "PAID"
	PaymentStatusFailed            PaymentStatus = "FAILED"
	PaymentStatusPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
	PaymentStatusRefunded          PaymentStatus = "REFUNDED"
)

// Order represents a placed checkout
type Order struct {
	ID            uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrderNumber   string        `json:"orderNumber" gorm:"not null;uniqueIndex:idx_orders_order_number"`
	CustomerID    uuid.UUID     `json:"customerId" gorm:"type:uuid;not null;index:idx_orders_customer"`
	Status        OrderStatus   `json:"status" gorm:"type:varchar(20);not null;default:'PLACED';index:idx_orders_status"`
	PaymentStatus PaymentStatus `json:"paymentStatus" gorm:"type:varchar(30);not null;default:'PENDING'"`
	Currency      string        `json:"currency" gorm:"type:varchar(3);not null;default:'EUR'"`

	Subtotal        float64 `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	ShippingCost    float64 `json:"shippingCost" gorm:"type:decimal(12,2);default:0"`
	DiscountAmount  float64 `json:"discountAmount" gorm:"type:decimal(12,2);default:0"`
	Total           float64 `json:"total" gorm:"type:decimal(12,2);not null"`
	CommissionTotal float64 `json:"commissionTotal" gorm:"type:decimal(12,2);default:0"`

	Notes string `json:"notes" gorm:"type:text"`

	// Idempotency key for duplicate order prevention
	IdempotencyKey *string `json:"idempotencyKey,omitempty" gorm:"type:varchar(255);uniqueIndex:idx_orders_idempotency_key"`

	// Payment gateway references
	PaymentIntentID *string `json:"paymentIntentId,omitempty" gorm:"index"`

	// Receipt tracking
	ReceiptNumber      string     `json:"receiptNumber,omitempty" gorm:"type:varchar(50)"`
	ReceiptGeneratedAt *time.Time `json:"receiptGeneratedAt,omitempty"`

	CreatedAt time.Time      `json:"createdAt" gorm:"index:idx_orders_created,sort:desc"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Items    []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Customer *OrderCustomer  `json:"customer" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Shipping *OrderShipping  `json:"shipping" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payment  *OrderPayment   `json:"payment" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Timeline []OrderTimeline `json:"timeline" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem represents an item in an order. Commission is resolved and frozen
// at checkout time.
type OrderItem struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrderID     uuid.UUID `json:"orderId" gorm:"type:uuid;not null;index"`
	SupplierID  uuid.UUID `json:"supplierId" gorm:"type:uuid;not null;index:idx_order_items_supplier"`
	ProductID   uuid.UUID `json:"productId" gorm:"type:uuid;not null"`
	CategoryID  uuid.UUID `json:"categoryId" gorm:"type:uuid;not null"`
	ProductName string    `json:"productName" gorm:"not null"`
	SKU         string    `json:"sku" gorm:"not null"`
	Image       *string   `json:"image,omitempty"`

	Quantity   int     `json:"quantity" gorm:"not null"`
	UnitPrice  float64 `json:"unitPrice" gorm:"type:decimal(12,2);not null"`
	TotalPrice float64 `json:"totalPrice" gorm:"type:decimal(12,2);not null"`

	CommissionRate   float64 `json:"commissionRate" gorm:"type:decimal(5,2);default:0"`
	CommissionAmount float64 `json:"commissionAmount" gorm:"type:decimal(12,2);default:0"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// OrderCustomer represents customer information snapshot for an order
type OrderCustomer struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrderID   uuid.UUID `json:"orderId" gorm:"type:uuid;not null;unique"`
	FirstName string    `json:"firstName" gorm:"not null"`
	LastName  string    `json:"lastName" gorm:"not null"`
	Email     string    `json:"email" gorm:"not null;index"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

func (OrderCustomer) TableName() string {
	return "order_customers"
}

// OrderShipping represents the delivery address and method for an order
type OrderShipping struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrderID    uuid.UUID `json:"orderId" gorm:"type:uuid;not null;unique"`
	Method     string    `json:"method" gorm:"not null"`
	Carrier    string    `json:"carrier"`
	Cost       float64   `json:"cost" gorm:"type:decimal(12,2);default:0"`
	Street     string    `json:"street" gorm:"not null"`
	City       string    `json:"city" gorm:"not null"`
	State      string    `json:"state"`
	PostalCode string    `json:"postalCode" gorm:"not null"`
	Country    string    `json:"country" gorm:"not null"`

	TrackingNumber string     `json:"trackingNumber"`
	TrackingURL    string     `json:"trackingUrl"`
	ShippedAt      *time.Time `json:"shippedAt,omitempty"`
	DeliveredAt    *time.Time `json:"deliveredAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (OrderShipping) TableName() string {
	return "order_shipping"
}

// OrderPayment represents the payment record for an order
type OrderPayment struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrderID       uuid.UUID `json:"orderId" gorm:"type:uuid;not null;unique"`
	Method        string    `json:"method" gorm:"not null"`
	Gateway       string    `json:"gateway"`
	Amount        float64   `json:"amount" gorm:"type:decimal(12,2);not null"`
	Currency      string    `json:"currency" gorm:"type:varchar(3);not null"`
	TransactionID string    `json:"transactionId" gorm:"index"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
	RefundedAt    *time.Time `json:"refundedAt,omitempty"`
	RefundAmount  float64    `json:"refundAmount" gorm:"type:decimal(12,2);default:0"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (OrderPayment) TableName() string {
	return "order_payments"
}

// OrderSequence backs per-day order number generation. The value advances
// through an atomic upsert so concurrent checkouts never share a number.
type OrderSequence struct {
	Day   time.Time `gorm:"type:date;primary_key"`
	Value int64     `gorm:"not null;default:0"`
}

func (OrderSequence) TableName() string {
	return "order_sequences"
}

// OrderTimeline records status changes for order history display
type OrderTimeline struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrderID   uuid.UUID `json:"orderId" gorm:"type:uuid;not null;index"`
	Status    string    `json:"status" gorm:"not null"`
	Notes     string    `json:"notes"`
	CreatedBy *string   `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (OrderTimeline) TableName() string {
	return "order_timeline"
}

// CheckoutRequest turns the customer's open cart into an order
type CheckoutRequest struct {
	Currency string                  `json:"currency"`
	Customer CheckoutCustomerRequest `json:"customer" binding:"required"`
	Shipping CheckoutShippingRequest `json:"shipping" binding:"required"`
	Payment  CheckoutPaymentRequest  `json:"payment" binding:"required"`
	Notes    string                  `json:"notes"`
	// Set from the X-Idempotency-Key header
	IdempotencyKey string `json:"-"`
}

type CheckoutCustomerRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone"`
}

type CheckoutShippingRequest struct {
	Method     string  `json:"method" binding:"required"`
	Carrier    string  `json:"carrier"`
	Cost       float64 `json:"cost" binding:"min=0"`
	Street     string  `json:"street" binding:"required"`
	City       string  `json:"city" binding:"required"`
	State      string  `json:"state"`
	PostalCode string  `json:"postalCode" binding:"required"`
	Country    string  `json:"country" binding:"required"`
}

type CheckoutPaymentRequest struct {
	// Gateway is "stripe" or "razorpay"
	Gateway string `json:"gateway" binding:"required"`
	Method  string `json:"method" binding:"required"`
}

// UpdateOrderStatusRequest represents a status transition request
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
	Notes  string      `json:"notes"`
}

// RefundOrderRequest represents a (partial) refund request
type RefundOrderRequest struct {
	Amount *float64 `json:"amount,omitempty" binding:"omitempty,gt=0"`
	Reason string   `json:"reason" binding:"required"`
}

type OrderResponse struct {
	Success bool    `json:"success"`
	Data    *Order  `json:"data"`
	Message *string `json:"message,omitempty"`
}

type OrderListResponse struct {
	Success    bool            `json:"success"`
	Data       []Order         `json:"data"`
	Pagination *PaginationInfo `json:"pagination"`
}
