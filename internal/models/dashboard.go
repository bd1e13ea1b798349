package models

import "github.com/google/uuid"

// TrendPoint is one day of a revenue/order trend series
type TrendPoint struct {
	Date    string  `json:"date"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// SupplierDashboard aggregates a supplier's sales and commission position
type SupplierDashboard struct {
	TotalOrders     int     `json:"totalOrders"`
	TotalRevenue    float64 `json:"totalRevenue"`
	CommissionOwed  float64 `json:"commissionOwed"`
	ItemsSold       int     `json:"itemsSold"`
	AverageOrder    float64 `json:"averageOrder"`
	TopProducts     []TopProductRow `json:"topProducts"`
	LowStock        []Product       `json:"lowStock"`
	RevenueTrend    []TrendPoint    `json:"revenueTrend"`
}

// TopProductRow is one entry of a top-sellers list
type TopProductRow struct {
	ProductID   uuid.UUID `json:"productId"`
	ProductName string    `json:"productName"`
	SKU         string    `json:"sku"`
	UnitsSold   int       `json:"unitsSold"`
	Revenue     float64   `json:"revenue"`
}

// SupplierRevenueRow is one supplier line of the admin dashboard
type SupplierRevenueRow struct {
	SupplierID   uuid.UUID `json:"supplierId"`
	SupplierName string    `json:"supplierName"`
	Orders       int       `json:"orders"`
	Revenue      float64   `json:"revenue"`
	Commission   float64   `json:"commission"`
}

// AdminDashboard aggregates marketplace-wide sales and commission figures
type AdminDashboard struct {
	TotalOrders        int                  `json:"totalOrders"`
	TotalRevenue       float64              `json:"totalRevenue"`
	TotalCommission    float64              `json:"totalCommission"`
	ActiveSuppliers    int                  `json:"activeSuppliers"`
	ActiveProducts     int                  `json:"activeProducts"`
	StatusDistribution map[OrderStatus]int  `json:"statusDistribution"`
	TopSuppliers       []SupplierRevenueRow `json:"topSuppliers"`
	RevenueTrend       []TrendPoint         `json:"revenueTrend"`
}

type SupplierDashboardResponse struct {
	Success bool               `json:"success"`
	Data    *SupplierDashboard `json:"data"`
}

type AdminDashboardResponse struct {
	Success bool            `json:"success"`
	Data    *AdminDashboard `json:"data"`
}
