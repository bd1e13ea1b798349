package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/repository"
)

// DashboardService assembles the supplier and admin dashboard aggregates
type DashboardService struct {
	dashboard  *repository.DashboardRepository
	products   *repository.ProductsRepository
	commission *CommissionService
	logger     *logrus.Entry
}

func NewDashboardService(
	dashboard *repository.DashboardRepository,
	products *repository.ProductsRepository,
	commission *CommissionService,
	logger *logrus.Logger,
) *DashboardService {
	return &DashboardService{
		dashboard:  dashboard,
		products:   products,
		commission: commission,
		logger:     logger.WithField("service", "dashboard"),
	}
}

// windowOrDefault defaults to the trailing 30 days
func windowOrDefault(from, to *time.Time) (time.Time, time.Time) {
	end := time.Now()
	if to != nil {
		end = *to
	}
	start := end.AddDate(0, 0, -30)
	if from != nil {
		start = *from
	}
	return start, end
}

// SupplierDashboard builds a supplier's sales and commission overview
func (s *DashboardService) SupplierDashboard(supplierID uuid.UUID, from, to *time.Time) (*models.SupplierDashboard, error) {
	start, end := windowOrDefault(from, to)

	orders, revenue, itemsSold, err := s.dashboard.SupplierSales(supplierID, start, end)
	if err != nil {
		return nil, err
	}

	dashboard := &models.SupplierDashboard{
		TotalOrders:  orders,
		TotalRevenue: revenue,
		ItemsSold:    itemsSold,
	}
	if orders > 0 {
		avg, _ := decimal.NewFromFloat(revenue).
			Div(decimal.NewFromInt(int64(orders))).Round(2).Float64()
		dashboard.AverageOrder = avg
	}

	owed, err := s.commission.SupplierCommissionOwed(supplierID)
	if err != nil {
		return nil, err
	}
	dashboard.CommissionOwed = owed

	topProducts, err := s.dashboard.SupplierTopProducts(supplierID, start, end, 5)
	if err != nil {
		return nil, err
	}
	dashboard.TopProducts = topProducts

	lowStock, err := s.products.GetLowStockProducts(supplierID, 10)
	if err != nil {
		return nil, err
	}
	dashboard.LowStock = lowStock

	trend, err := s.dashboard.SupplierRevenueTrend(supplierID, start, end)
	if err != nil {
		return nil, err
	}
	dashboard.RevenueTrend = trend

	return dashboard, nil
}

// AdminDashboard builds the marketplace-wide overview
func (s *DashboardService) AdminDashboard(from, to *time.Time) (*models.AdminDashboard, error) {
	start, end := windowOrDefault(from, to)

	orders, revenue, commission, err := s.dashboard.MarketplaceSales(start, end)
	if err != nil {
		return nil, err
	}

	dashboard := &models.AdminDashboard{
		TotalOrders:     orders,
		TotalRevenue:    revenue,
		TotalCommission: commission,
	}

	dashboard.ActiveSuppliers, err = s.dashboard.CountActiveSuppliers()
	if err != nil {
		return nil, err
	}
	dashboard.ActiveProducts, err = s.dashboard.CountActiveProducts()
	if err != nil {
		return nil, err
	}

	dashboard.StatusDistribution, err = s.dashboard.OrderStatusDistribution(start, end)
	if err != nil {
		return nil, err
	}

	dashboard.TopSuppliers, err = s.dashboard.TopSuppliers(start, end, 10)
	if err != nil {
		return nil, err
	}

	dashboard.RevenueTrend, err = s.dashboard.MarketplaceRevenueTrend(start, end)
	if err != nil {
		return nil, err
	}

	return dashboard, nil
}
