package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"gorm.io/gorm"
)

// DashboardRepository runs the aggregate queries behind the supplier and
// admin dashboards. Cancelled orders are excluded from revenue figures.
type DashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

var revenueStatuses = []models.OrderStatus{
	models.OrderStatusConfirmed,
	models.OrderStatusProcessing,
	models.OrderStatusShipped,
	models.OrderStatusDelivered,
	models.OrderStatusCompleted,
}

// SupplierSales aggregates a supplier's order item totals within a window
func (r *DashboardRepository) SupplierSales(supplierID uuid.UUID, from, to time.Time) (orders int, revenue float64, itemsSold int, err error) {
	var row struct {
		Orders    int
		Revenue   float64
		ItemsSold int
	}
	err = r.db.Model(&models.OrderItem{}).
		Select(`COUNT(DISTINCT order_items.order_id) as orders,
			COALESCE(SUM(order_items.total_price), 0) as revenue,
			COALESCE(SUM(order_items.quantity), 0) as items_sold`).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.supplier_id = ?", supplierID).
		Where("orders.status IN ?", revenueStatuses).
		Where("orders.created_at >= ? AND orders.created_at < ?", from, to).
		Where("orders.deleted_at IS NULL").
		Scan(&row).Error
	return row.Orders, row.Revenue, row.ItemsSold, err
}

// SupplierTopProducts returns a supplier's best sellers within a window
func (r *DashboardRepository) SupplierTopProducts(supplierID uuid.UUID, from, to time.Time, limit int) ([]models.TopProductRow, error) {
	if limit <= 0 {
		limit = 5
	}
	var rows []models.TopProductRow
	err := r.db.Model(&models.OrderItem{}).
		Select(`order_items.product_id,
			order_items.product_name,
			order_items.sku,
			SUM(order_items.quantity) as units_sold,
			SUM(order_items.total_price) as revenue`).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.supplier_id = ?", supplierID).
		Where("orders.status IN ?", revenueStatuses).
		Where("orders.created_at >= ? AND orders.created_at < ?", from, to).
		Where("orders.deleted_at IS NULL").
		Group("order_items.product_id, order_items.product_name, order_items.sku").
		Order("units_sold DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// SupplierRevenueTrend returns a per-day order/revenue series for a supplier
func (r *DashboardRepository) SupplierRevenueTrend(supplierID uuid.UUID, from, to time.Time) ([]models.TrendPoint, error) {
	var rows []models.TrendPoint
	err := r.db.Model(&models.OrderItem{}).
		Select(`TO_CHAR(orders.created_at, 'YYYY-MM-DD') as date,
			COUNT(DISTINCT order_items.order_id) as orders,
			COALESCE(SUM(order_items.total_price), 0) as revenue`).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.supplier_id = ?", supplierID).
		Where("orders.status IN ?", revenueStatuses).
		Where("orders.created_at >= ? AND orders.created_at < ?", from, to).
		Where("orders.deleted_at IS NULL").
		Group("date").
		Order("date ASC").
		Scan(&rows).Error
	return rows, err
}

// MarketplaceSales aggregates marketplace-wide order figures within a window
func (r *DashboardRepository) MarketplaceSales(from, to time.Time) (orders int, revenue, commission float64, err error) {
	var row struct {
		Orders     int
		Revenue    float64
		Commission float64
	}
	err = r.db.Model(&models.Order{}).
		Select(`COUNT(*) as orders,
			COALESCE(SUM(total), 0) as revenue,
			COALESCE(SUM(commission_total), 0) as commission`).
		Where("status IN ?", revenueStatuses).
		Where("created_at >= ? AND created_at < ?", from, to).
		Scan(&row).Error
	return row.Orders, row.Revenue, row.Commission, err
}

// OrderStatusDistribution counts orders per status within a window
func (r *DashboardRepository) OrderStatusDistribution(from, to time.Time) (map[models.OrderStatus]int, error) {
	var rows []struct {
		Status models.OrderStatus
		Count  int
	}
	err := r.db.Model(&models.Order{}).
		Select("status, COUNT(*) as count").
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make(map[models.OrderStatus]int, len(rows))
	for _, row := range rows {
		result[row.Status] = row.Count
	}
	return result, nil
}

// TopSuppliers ranks suppliers by revenue within a window
func (r *DashboardRepository) TopSuppliers(from, to time.Time, limit int) ([]models.SupplierRevenueRow, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []models.SupplierRevenueRow
	err := r.db.Model(&models.OrderItem{}).
		Select(`order_items.supplier_id,
			suppliers.name as supplier_name,
			COUNT(DISTINCT order_items.order_id) as orders,
			COALESCE(SUM(order_items.total_price), 0) as revenue,
			COALESCE(SUM(order_items.commission_amount), 0) as commission`).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN suppliers ON suppliers.id = order_items.supplier_id").
		Where("orders.status IN ?", revenueStatuses).
		Where("orders.created_at >= ? AND orders.created_at < ?", from, to).
		Where("orders.deleted_at IS NULL").
		Group("order_items.supplier_id, suppliers.name").
		Order("revenue DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// MarketplaceRevenueTrend returns a per-day order/revenue series marketplace-wide
func (r *DashboardRepository) MarketplaceRevenueTrend(from, to time.Time) ([]models.TrendPoint, error) {
	var rows []models.TrendPoint
	err := r.db.Model(&models.Order{}).
		Select(`TO_CHAR(created_at, 'YYYY-MM-DD') as date,
			COUNT(*) as orders,
			COALESCE(SUM(total), 0) as revenue`).
		Where("status IN ?", revenueStatuses).
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("date").
		Order("date ASC").
		Scan(&rows).Error
	return rows, err
}

// CountActiveSuppliers counts ACTIVE suppliers
func (r *DashboardRepository) CountActiveSuppliers() (int, error) {
	var count int64
	err := r.db.Model(&models.Supplier{}).
		Where("status = ?", models.SupplierStatusActive).
		Count(&count).Error
	return int(count), err
}

// CountActiveProducts counts ACTIVE products
func (r *DashboardRepository) CountActiveProducts() (int, error) {
	var count int64
	err := r.db.Model(&models.Product{}).
		Where("status = ?", models.ProductStatusActive).
		Count(&count).Error
	return int(count), err
}
