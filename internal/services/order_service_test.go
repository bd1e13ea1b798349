package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/repository"
)

// MockOrderRepository is a mock implementation of OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

var _ repository.OrderRepository = (*MockOrderRepository)(nil)

func (m *MockOrderRepository) CreateOrderTx(tx *gorm.DB, order *models.Order) error {
	args := m.Called(tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetOrderByID(orderID uuid.UUID) (*models.Order, error) {
	args := m.Called(orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetOrderByNumber(orderNumber string) (*models.Order, error) {
	args := m.Called(orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetOrderByIdempotencyKey(key string) (*models.Order, error) {
	args := m.Called(key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetOrders(filters repository.OrderFilters, page, limit int) ([]models.Order, int64, error) {
	args := m.Called(filters, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) UpdateOrder(orderID uuid.UUID, updates map[string]interface{}) error {
	args := m.Called(orderID, updates)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateShipping(orderID uuid.UUID, updates map[string]interface{}) error {
	args := m.Called(orderID, updates)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdatePayment(orderID uuid.UUID, updates map[string]interface{}) error {
	args := m.Called(orderID, updates)
	return args.Error(0)
}

func (m *MockOrderRepository) AddTimelineEntry(entry *models.OrderTimeline) error {
	args := m.Called(entry)
	return args.Error(0)
}

func (m *MockOrderRepository) NextOrderSequence(day time.Time) (int64, error) {
	args := m.Called(day)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Transaction(fn func(tx *gorm.DB) error) error {
	args := m.Called(fn)
	return args.Error(0)
}

func (m *MockOrderRepository) DB() *gorm.DB {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*gorm.DB)
}

func newTestOrderService(orders repository.OrderRepository, commRepo repository.CommissionRepository) *OrderService {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return &OrderService{
		orders:   orders,
		commRepo: commRepo,
		logger:   logger.WithField("service", "orders"),
	}
}

// ============================================================================
// Order numbers
// ============================================================================

func TestGenerateOrderNumber(t *testing.T) {
	day := time.Date(2026, time.March, 5, 14, 30, 0, 0, time.UTC)

	assert.Equal(t, "GC-20260305-0007", generateOrderNumber(day, 7))
	assert.Equal(t, "GC-20260305-0042", generateOrderNumber(day, 42))
	assert.Equal(t, "GC-20260305-12345", generateOrderNumber(day, 12345))
}

// ============================================================================
// UpdateStatus
// ============================================================================

func TestUpdateStatus_ValidTransition(t *testing.T) {
	mockOrders := new(MockOrderRepository)
	mockComm := new(MockCommissionRepository)
	service := newTestOrderService(mockOrders, mockComm)

	orderID := uuid.New()
	placed := &models.Order{ID: orderID, OrderNumber: "GC-20260305-0001", Status: models.OrderStatusPlaced}
	confirmed := &models.Order{ID: orderID, OrderNumber: "GC-20260305-0001", Status: models.OrderStatusConfirmed}

	mockOrders.On("GetOrderByID", orderID).Return(placed, nil).Once()
	mockOrders.On("UpdateOrder", orderID, map[string]interface{}{"status": models.OrderStatusConfirmed}).Return(nil)
	mockOrders.On("AddTimelineEntry", mock.MatchedBy(func(e *models.OrderTimeline) bool {
		return e.OrderID == orderID && e.Status == string(models.OrderStatusConfirmed) && e.Notes == "approved"
	})).Return(nil)
	mockOrders.On("GetOrderByID", orderID).Return(confirmed, nil).Once()

	order, err := service.UpdateStatus(orderID, models.OrderStatusConfirmed, "approved", "admin")

	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, order.Status)
	mockOrders.AssertExpectations(t)
}

func TestUpdateStatus_RejectsInvalidTransition(t *testing.T) {
	mockOrders := new(MockOrderRepository)
	mockComm := new(MockCommissionRepository)
	service := newTestOrderService(mockOrders, mockComm)

	orderID := uuid.New()
	completed := &models.Order{ID: orderID, Status: models.OrderStatusCompleted}
	mockOrders.On("GetOrderByID", orderID).Return(completed, nil)

	_, err := service.UpdateStatus(orderID, models.OrderStatusCancelled, "", "admin")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid order status transition")
	mockOrders.AssertNotCalled(t, "UpdateOrder", mock.Anything, mock.Anything)
}

func TestUpdateStatus_ShippedStampsTimestamp(t *testing.T) {
	mockOrders := new(MockOrderRepository)
	mockComm := new(MockCommissionRepository)
	service := newTestOrderService(mockOrders, mockComm)

	orderID := uuid.New()
	processing := &models.Order{ID: orderID, Status: models.OrderStatusProcessing}
	shipped := &models.Order{ID: orderID, Status: models.OrderStatusShipped}

	mockOrders.On("GetOrderByID", orderID).Return(processing, nil).Once()
	mockOrders.On("UpdateOrder", orderID, map[string]interface{}{"status": models.OrderStatusShipped}).Return(nil)
	mockOrders.On("UpdateShipping", orderID, mock.MatchedBy(func(u map[string]interface{}) bool {
		_, ok := u["shipped_at"]
		return ok
	})).Return(nil)
	mockOrders.On("AddTimelineEntry", mock.Anything).Return(nil)
	mockOrders.On("GetOrderByID", orderID).Return(shipped, nil).Once()

	order, err := service.UpdateStatus(orderID, models.OrderStatusShipped, "", "supplier")

	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, order.Status)
	mockOrders.AssertExpectations(t)
}

func TestUpdateStatus_CompletionSettlesCommission(t *testing.T) {
	mockOrders := new(MockOrderRepository)
	mockComm := new(MockCommissionRepository)
	service := newTestOrderService(mockOrders, mockComm)

	orderID := uuid.New()
	delivered := &models.Order{ID: orderID, Status: models.OrderStatusDelivered}
	completed := &models.Order{ID: orderID, Status: models.OrderStatusCompleted}

	mockOrders.On("GetOrderByID", orderID).Return(delivered, nil).Once()
	mockOrders.On("UpdateOrder", orderID, map[string]interface{}{"status": models.OrderStatusCompleted}).Return(nil)
	mockComm.On("UpdateRecordStatusByOrder", orderID, models.CommissionStatusSettled).Return(nil)
	mockOrders.On("AddTimelineEntry", mock.Anything).Return(nil)
	mockOrders.On("GetOrderByID", orderID).Return(completed, nil).Once()

	_, err := service.UpdateStatus(orderID, models.OrderStatusCompleted, "", "system")

	assert.NoError(t, err)
	mockComm.AssertExpectations(t)
}

// ============================================================================
// Payments
// ============================================================================

func TestMarkPaid_ConfirmsPlacedOrder(t *testing.T) {
	mockOrders := new(MockOrderRepository)
	mockComm := new(MockCommissionRepository)
	service := newTestOrderService(mockOrders, mockComm)

	orderID := uuid.New()
	order := &models.Order{
		ID:            orderID,
		Status:        models.OrderStatusPlaced,
		PaymentStatus: models.PaymentStatusPending,
	}

	mockOrders.On("GetOrderByID", orderID).Return(order, nil)
	mockOrders.On("UpdateOrder", orderID, map[string]interface{}{
		"payment_status": models.PaymentStatusPaid,
	}).Return(nil)
	mockOrders.On("UpdatePayment", orderID, mock.MatchedBy(func(u map[string]interface{}) bool {
		_, hasPaidAt := u["paid_at"]
		return u["transaction_id"] == "pi_123" && hasPaidAt
	})).Return(nil)
	// Payment confirmation promotes the order
	mockOrders.On("UpdateOrder", orderID, map[string]interface{}{
		"status": models.OrderStatusConfirmed,
	}).Return(nil)
	mockOrders.On("AddTimelineEntry", mock.MatchedBy(func(e *models.OrderTimeline) bool {
		return e.Status == string(models.OrderStatusConfirmed) && e.Notes == "Payment received"
	})).Return(nil)

	_, err := service.MarkPaid(orderID, "pi_123")

	assert.NoError(t, err)
	mockOrders.AssertExpectations(t)
}

func TestMarkPaid_RejectsAlreadyPaid(t *testing.T) {
	mockOrders := new(MockOrderRepository)
	mockComm := new(MockCommissionRepository)
	service := newTestOrderService(mockOrders, mockComm)

	orderID := uuid.New()
	order := &models.Order{ID: orderID, Status: models.OrderStatusConfirmed, PaymentStatus: models.PaymentStatusPaid}
	mockOrders.On("GetOrderByID", orderID).Return(order, nil)

	_, err := service.MarkPaid(orderID, "pi_dup")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid payment status transition")
	mockOrders.AssertNotCalled(t, "UpdateOrder", mock.Anything, mock.Anything)
}

func TestMarkPaymentFailed(t *testing.T) {
	mockOrders := new(MockOrderRepository)
	mockComm := new(MockCommissionRepository)
	service := newTestOrderService(mockOrders, mockComm)

	orderID := uuid.New()
	order := &models.Order{ID: orderID, Status: models.OrderStatusPlaced, PaymentStatus: models.PaymentStatusPending}

	mockOrders.On("GetOrderByID", orderID).Return(order, nil)
	mockOrders.On("UpdateOrder", orderID, map[string]interface{}{
		"payment_status": models.PaymentStatusFailed,
	}).Return(nil)
	mockOrders.On("AddTimelineEntry", mock.MatchedBy(func(e *models.OrderTimeline) bool {
		return e.Status == "PAYMENT_FAILED" && e.Notes == "card declined"
	})).Return(nil)

	err := service.MarkPaymentFailed(orderID, "card declined")

	assert.NoError(t, err)
	mockOrders.AssertExpectations(t)
}
