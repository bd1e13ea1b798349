package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/repository"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/services"
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

func newTestOrdersHandler(orders repository.OrderRepository) *OrdersHandler {
	service := services.NewOrderService(orders, nil, nil, nil, nil, nil, nil, testLogger())
	return NewOrdersHandler(service, nil)
}

// newAuthedJSONContext builds a gin context with a JSON body and an order id
// path parameter.
func newAuthedJSONContext(user *models.User, method, target, body string, orderID uuid.UUID) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: orderID.String()}}
	c.Set("currentUser", user)
	return c, w
}

func supplierOrder(orderID, customerID, supplierID uuid.UUID, status models.OrderStatus) *models.Order {
	return &models.Order{
		ID:         orderID,
		CustomerID: customerID,
		Status:     status,
		Items: []models.OrderItem{
			{ID: uuid.New(), OrderID: orderID, SupplierID: supplierID, ProductID: uuid.New()},
		},
	}
}

func TestUpdateStatus_ForeignSupplierGetsNotFound(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	handler := newTestOrdersHandler(mockRepo)

	orderID := uuid.New()
	ownerSupplier := uuid.New()
	otherSupplier := uuid.New()
	order := supplierOrder(orderID, uuid.New(), ownerSupplier, models.OrderStatusConfirmed)
	mockRepo.On("GetOrderByID", orderID).Return(order, nil)

	intruder := &models.User{ID: uuid.New(), Role: models.RoleSupplier, SupplierID: &otherSupplier}
	c, w := newAuthedJSONContext(intruder, http.MethodPatch, "/orders/"+orderID.String()+"/status",
		`{"status":"SHIPPED"}`, orderID)

	handler.UpdateStatus(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	// The transition itself never ran
	mockRepo.AssertNotCalled(t, "UpdateOrder", mock.Anything, mock.Anything)
}

func TestUpdateStatus_OwnSupplierPassesOwnershipCheck(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	handler := newTestOrdersHandler(mockRepo)

	orderID := uuid.New()
	supplierID := uuid.New()
	// PLACED cannot jump straight to SHIPPED, so the request reaches the
	// transition validation and fails there instead of at ownership
	order := supplierOrder(orderID, uuid.New(), supplierID, models.OrderStatusPlaced)
	mockRepo.On("GetOrderByID", orderID).Return(order, nil)

	supplier := &models.User{ID: uuid.New(), Role: models.RoleSupplier, SupplierID: &supplierID}
	c, w := newAuthedJSONContext(supplier, http.MethodPatch, "/orders/"+orderID.String()+"/status",
		`{"status":"SHIPPED"}`, orderID)

	handler.UpdateStatus(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TRANSITION")
}

func TestCancelOrder_ForeignCustomerGetsNotFound(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	handler := newTestOrdersHandler(mockRepo)

	orderID := uuid.New()
	order := supplierOrder(orderID, uuid.New(), uuid.New(), models.OrderStatusPlaced)
	mockRepo.On("GetOrderByID", orderID).Return(order, nil)

	stranger := &models.User{ID: uuid.New(), Role: models.RoleCustomer}
	c, w := newAuthedJSONContext(stranger, http.MethodPost, "/orders/"+orderID.String()+"/cancel", "", orderID)

	handler.CancelOrder(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockRepo.AssertNotCalled(t, "UpdateOrder", mock.Anything, mock.Anything)
}

func TestCancelOrder_ForeignSupplierGetsNotFound(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	handler := newTestOrdersHandler(mockRepo)

	orderID := uuid.New()
	otherSupplier := uuid.New()
	order := supplierOrder(orderID, uuid.New(), uuid.New(), models.OrderStatusPlaced)
	mockRepo.On("GetOrderByID", orderID).Return(order, nil)

	intruder := &models.User{ID: uuid.New(), Role: models.RoleSupplier, SupplierID: &otherSupplier}
	c, w := newAuthedJSONContext(intruder, http.MethodPost, "/orders/"+orderID.String()+"/cancel", "", orderID)

	handler.CancelOrder(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockRepo.AssertNotCalled(t, "UpdateOrder", mock.Anything, mock.Anything)
}
