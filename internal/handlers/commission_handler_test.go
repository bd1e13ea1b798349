package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/repository"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/services"
)

// MockCommissionRepository is a mock implementation of CommissionRepository
type MockCommissionRepository struct {
	mock.Mock
}

var _ repository.CommissionRepository = (*MockCommissionRepository)(nil)

func (m *MockCommissionRepository) CreateSetting(setting *models.CommissionSetting) error {
	args := m.Called(setting)
	return args.Error(0)
}

func (m *MockCommissionRepository) GetSettingByID(settingID uuid.UUID) (*models.CommissionSetting, error) {
	args := m.Called(settingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CommissionSetting), args.Error(1)
}

func (m *MockCommissionRepository) GetSettings(supplierID, categoryID *uuid.UUID, page, limit int) ([]models.CommissionSetting, int64, error) {
	args := m.Called(supplierID, categoryID, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.CommissionSetting), args.Get(1).(int64), args.Error(2)
}

func (m *MockCommissionRepository) GetActiveSettingsFor(supplierID, categoryID uuid.UUID) ([]models.CommissionSetting, error) {
	args := m.Called(supplierID, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CommissionSetting), args.Error(1)
}

func (m *MockCommissionRepository) UpdateSetting(settingID uuid.UUID, updates map[string]interface{}) error {
	args := m.Called(settingID, updates)
	return args.Error(0)
}

func (m *MockCommissionRepository) DeleteSetting(settingID uuid.UUID) error {
	args := m.Called(settingID)
	return args.Error(0)
}

func (m *MockCommissionRepository) FindDuplicateSetting(supplierID, categoryID *uuid.UUID) (*models.CommissionSetting, error) {
	args := m.Called(supplierID, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CommissionSetting), args.Error(1)
}

func (m *MockCommissionRepository) CreateRecordTx(tx *gorm.DB, record *models.CommissionRecord) error {
	args := m.Called(tx, record)
	return args.Error(0)
}

func (m *MockCommissionRepository) GetRecords(filters repository.CommissionRecordFilters, page, limit int) ([]models.CommissionRecord, int64, error) {
	args := m.Called(filters, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.CommissionRecord), args.Get(1).(int64), args.Error(2)
}

func (m *MockCommissionRepository) UpdateRecordStatusByOrder(orderID uuid.UUID, status models.CommissionStatus) error {
	args := m.Called(orderID, status)
	return args.Error(0)
}

func (m *MockCommissionRepository) SumBySupplier(supplierID uuid.UUID, statuses []models.CommissionStatus) (float64, error) {
	args := m.Called(supplierID, statuses)
	return args.Get(0).(float64), args.Error(1)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// newAuthedContext builds a gin context carrying an authenticated user
func newAuthedContext(user *models.User, method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)
	c.Set("currentUser", user)
	return c, w
}

func TestListRecords_CustomerForbidden(t *testing.T) {
	mockRepo := new(MockCommissionRepository)
	handler := NewCommissionHandler(services.NewCommissionService(mockRepo, 5.0, testLogger()))

	customer := &models.User{ID: uuid.New(), Role: models.RoleCustomer}
	c, w := newAuthedContext(customer, http.MethodGet, "/commission/records")

	handler.ListRecords(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")
	mockRepo.AssertNotCalled(t, "GetRecords", mock.Anything, mock.Anything, mock.Anything)
}

func TestListRecords_SupplierScopedToOwnLedger(t *testing.T) {
	mockRepo := new(MockCommissionRepository)
	handler := NewCommissionHandler(services.NewCommissionService(mockRepo, 5.0, testLogger()))

	supplierID := uuid.New()
	foreignID := uuid.New()
	supplier := &models.User{ID: uuid.New(), Role: models.RoleSupplier, SupplierID: &supplierID}

	// The supplierId query parameter must not widen the scope
	c, w := newAuthedContext(supplier, http.MethodGet, "/commission/records?supplierId="+foreignID.String())

	mockRepo.On("GetRecords", mock.MatchedBy(func(f repository.CommissionRecordFilters) bool {
		return f.SupplierID != nil && *f.SupplierID == supplierID
	}), 1, 20).Return([]models.CommissionRecord{}, int64(0), nil)

	handler.ListRecords(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockRepo.AssertExpectations(t)
}

func TestListRecords_AdminMayFilterAnySupplier(t *testing.T) {
	mockRepo := new(MockCommissionRepository)
	handler := NewCommissionHandler(services.NewCommissionService(mockRepo, 5.0, testLogger()))

	filterID := uuid.New()
	admin := &models.User{ID: uuid.New(), Role: models.RoleAdmin}
	c, w := newAuthedContext(admin, http.MethodGet, "/commission/records?supplierId="+filterID.String())

	mockRepo.On("GetRecords", mock.MatchedBy(func(f repository.CommissionRecordFilters) bool {
		return f.SupplierID != nil && *f.SupplierID == filterID
	}), 1, 20).Return([]models.CommissionRecord{}, int64(0), nil)

	handler.ListRecords(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockRepo.AssertExpectations(t)
}
