package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"gorm.io/gorm"
)

// OrderFilters narrows order list queries
type OrderFilters struct {
	CustomerID    *uuid.UUID
	SupplierID    *uuid.UUID
	Status        *models.OrderStatus
	PaymentStatus *models.PaymentStatus
	DateFrom      *time.Time
	DateTo        *time.Time
	Search        string
}

// OrderRepository is the persistence boundary for orders. The interface keeps
// the order service testable with fakes.
type OrderRepository interface {
	CreateOrderTx(tx *gorm.DB, order *models.Order) error
	GetOrderByID(orderID uuid.UUID) (*models.Order, error)
	GetOrderByNumber(orderNumber string) (*models.Order, error)
	GetOrderByIdempotencyKey(key string) (*models.Order, error)
	GetOrders(filters OrderFilters, page, limit int) ([]models.Order, int64, error)
	UpdateOrder(orderID uuid.UUID, updates map[string]interface{}) error
	UpdateShipping(orderID uuid.UUID, updates map[string]interface{}) error
	UpdatePayment(orderID uuid.UUID, updates map[string]interface{}) error
	AddTimelineEntry(entry *models.OrderTimeline) error
	NextOrderSequence(day time.Time) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	DB() *gorm.DB
}

type ordersRepository struct {
	db *gorm.DB
}

func NewOrdersRepository(db *gorm.DB) OrderRepository {
	return &ordersRepository{db: db}
}

func (r *ordersRepository) DB() *gorm.DB {
	return r.db
}

func (r *ordersRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// CreateOrderTx persists the order aggregate inside an existing transaction
func (r *ordersRepository) CreateOrderTx(tx *gorm.DB, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	return tx.Create(order).Error
}

func (r *ordersRepository) preloaded() *gorm.DB {
	return r.db.
		Preload("Items").
		Preload("Customer").
		Preload("Shipping").
		Preload("Payment").
		Preload("Timeline", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})
}

func (r *ordersRepository) GetOrderByID(orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.preloaded().Where("id = ?", orderID).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *ordersRepository) GetOrderByNumber(orderNumber string) (*models.Order, error) {
	var order models.Order
	if err := r.preloaded().Where("order_number = ?", orderNumber).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *ordersRepository) GetOrderByIdempotencyKey(key string) (*models.Order, error) {
	var order models.Order
	if err := r.preloaded().Where("idempotency_key = ?", key).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrders lists orders with filters and pagination. Supplier scoping joins
// through order items so a supplier sees every order containing its products.
func (r *ordersRepository) GetOrders(filters OrderFilters, page, limit int) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := r.db.Model(&models.Order{})

	if filters.CustomerID != nil {
		query = query.Where("customer_id = ?", *filters.CustomerID)
	}
	if filters.SupplierID != nil {
		query = query.Where(
			"id IN (SELECT DISTINCT order_id FROM order_items WHERE supplier_id = ?)",
			*filters.SupplierID,
		)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filters.PaymentStatus)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		query = query.Where(
			"order_number ILIKE ? OR id IN (SELECT order_id FROM order_customers WHERE email ILIKE ?)",
			pattern, pattern,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.
		Preload("Items").
		Preload("Customer").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *ordersRepository) UpdateOrder(orderID uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	return r.db.Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}

func (r *ordersRepository) UpdateShipping(orderID uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	return r.db.Model(&models.OrderShipping{}).
		Where("order_id = ?", orderID).
		Updates(updates).Error
}

func (r *ordersRepository) UpdatePayment(orderID uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	return r.db.Model(&models.OrderPayment{}).
		Where("order_id = ?", orderID).
		Updates(updates).Error
}

func (r *ordersRepository) AddTimelineEntry(entry *models.OrderTimeline) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	return r.db.Create(entry).Error
}

// NextOrderSequence returns the next per-day sequence number used in order
// numbers. The counter row advances through a single upsert statement, so
// concurrent checkouts each get a distinct value.
func (r *ordersRepository) NextOrderSequence(day time.Time) (int64, error) {
	var value int64
	err := r.db.Raw(
		`INSERT INTO order_sequences (day, value) VALUES (?, 1)
		ON CONFLICT (day) DO UPDATE SET value = order_sequences.value + 1
		RETURNING value`,
		day.Format("2006-01-02"),
	).Scan(&value).Error
	if err != nil {
		return 0, fmt.Errorf("advancing order sequence: %w", err)
	}
	return value, nil
}
