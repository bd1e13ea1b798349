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

func newTestCommissionService(repo repository.CommissionRepository, defaultRate float64) *CommissionService {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewCommissionService(repo, defaultRate, logger)
}

// ============================================================================
// Resolve
// ============================================================================

func TestResolve_SupplierCategoryBeatsEverything(t *testing.T) {
	mockRepo := new(MockCommissionRepository)
	service := newTestCommissionService(mockRepo, 5.0)

	supplierID := uuid.New()
	categoryID := uuid.New()

	settings := []models.CommissionSetting{
		{ID: uuid.New(), Rate: 8.0},                                                               // global
		{ID: uuid.New(), SupplierID: &supplierID, Rate: 7.0},                                      // supplier
		{ID: uuid.New(), SupplierID: &supplierID, CategoryID: &categoryID, Rate: 4.5},             // supplier+category
		{ID: uuid.New(), CategoryID: &categoryID, Rate: 6.0},                                      // category
	}
	mockRepo.On("GetActiveSettingsFor", supplierID, categoryID).Return(settings, nil)

	resolved, err := service.Resolve(supplierID, categoryID)
	assert.NoError(t, err)
	assert.Equal(t, models.ScopeSupplierCategory, resolved.Scope)
	assert.Equal(t, 4.5, resolved.Rate)
	assert.NotNil(t, resolved.SettingID)
	assert.Equal(t, settings[2].ID, *resolved.SettingID)

	mockRepo.AssertExpectations(t)
}

func TestResolve_SupplierBeatsCategory(t *testing.T) {
	mockRepo := new(MockCommissionRepository)
	service := newTestCommissionService(mockRepo, 5.0)

	supplierID := uuid.New()
	categoryID := uuid.New()

	settings := []models.CommissionSetting{
		{ID: uuid.New(), CategoryID: &categoryID, Rate: 6.0},
		{ID: uuid.New(), SupplierID: &supplierID, Rate: 7.0},
	}
	mockRepo.On("GetActiveSettingsFor", supplierID, categoryID).Return(settings, nil)

	resolved, err := service.Resolve(supplierID, categoryID)
	assert.NoError(t, err)
	assert.Equal(t, models.ScopeSupplier, resolved.Scope)
	assert.Equal(t, 7.0, resolved.Rate)
}

func TestResolve_CategoryBeatsGlobal(t *testing.T) {
	mockRepo := new(MockCommissionRepository)
	service := newTestCommissionService(mockRepo, 5.0)

	supplierID := uuid.New()
	categoryID := uuid.New()

	settings := []models.CommissionSetting{
		{ID: uuid.New(), Rate: 8.0},
		{ID: uuid.New(), CategoryID: &categoryID, Rate: 6.0},
	}
	mockRepo.On("GetActiveSettingsFor", supplierID, categoryID).Return(settings, nil)

	resolved, err := service.Resolve(supplierID, categoryID)
	assert.NoError(t, err)
	assert.Equal(t, models.ScopeCategory, resolved.Scope)
	assert.Equal(t, 6.0, resolved.Rate)
}

func TestResolve_TieBreakByRowOrder(t *testing.T) {
	mockRepo := new(MockCommissionRepository)
	service := newTestCommissionService(mockRepo, 5.0)

	supplierID := uuid.New()
	categoryID := uuid.New()

	// Repository returns candidates ordered by updated_at descending; the
	// first row in a tied scope wins.
	newer := models.CommissionSetting{ID: uuid.New(), SupplierID: &supplierID, Rate: 9.0}
	older := models.CommissionSetting{ID: uuid.New(), SupplierID: &supplierID, Rate: 3.0}
	mockRepo.On("GetActiveSettingsFor", supplierID, categoryID).
		Return([]models.CommissionSetting{newer, older}, nil)

	resolved, err := service.Resolve(supplierID, categoryID)
	assert.NoError(t, err)
	assert.Equal(t, newer.ID, *resolved.SettingID)
	assert.Equal(t, 9.0, resolved.Rate)
}

func TestResolve_FallsBackToDefaultRate(t *testing.T) {
	mockRepo := new(MockCommissionRepository)
	service := newTestCommissionService(mockRepo, 5.0)

	supplierID := uuid.New()
	categoryID := uuid.New()
	mockRepo.On("GetActiveSettingsFor", supplierID, categoryID).
		Return([]models.CommissionSetting{}, nil)

	resolved, err := service.Resolve(supplierID, categoryID)
	assert.NoError(t, err)
	assert.Nil(t, resolved.SettingID)
	assert.Equal(t, models.ScopeGlobal, resolved.Scope)
	assert.Equal(t, 5.0, resolved.Rate)
}

// ============================================================================
// CreateSetting
// ============================================================================

func TestCreateSetting_RejectsOutOfRangeRate(t *testing.T) {
	mockRepo := new(MockCommissionRepository)
	service := newTestCommissionService(mockRepo, 5.0)

	_, err := service.CreateSetting(&models.CreateCommissionSettingRequest{Rate: 101}, "admin")
	assert.ErrorIs(t, err, ErrInvalidRate)

	_, err = service.CreateSetting(&models.CreateCommissionSettingRequest{Rate: -1}, "admin")
	assert.ErrorIs(t, err, ErrInvalidRate)
}

func TestCreateSetting_RejectsDuplicateScope(t *testing.T) {
	mockRepo := new(MockCommissionRepository)
	service := newTestCommissionService(mockRepo, 5.0)

	supplierStr := uuid.New().String()
	existing := &models.CommissionSetting{ID: uuid.New()}
	mockRepo.On("FindDuplicateSetting", mock.Anything, mock.Anything).Return(existing, nil)

	_, err := service.CreateSetting(&models.CreateCommissionSettingRequest{
		SupplierID: &supplierStr,
		Rate:       10,
	}, "admin")

	assert.ErrorIs(t, err, ErrDuplicateSetting)
	mockRepo.AssertNotCalled(t, "CreateSetting", mock.Anything)
}

func TestCreateSetting_PersistsNewSetting(t *testing.T) {
	mockRepo := new(MockCommissionRepository)
	service := newTestCommissionService(mockRepo, 5.0)

	supplierStr := uuid.New().String()
	categoryStr := uuid.New().String()

	mockRepo.On("FindDuplicateSetting", mock.Anything, mock.Anything).
		Return(nil, repository.ErrNotFound)
	mockRepo.On("CreateSetting", mock.MatchedBy(func(s *models.CommissionSetting) bool {
		return s.Rate == 12.5 && s.IsActive && s.Scope() == models.ScopeSupplierCategory
	})).Return(nil)

	setting, err := service.CreateSetting(&models.CreateCommissionSettingRequest{
		SupplierID: &supplierStr,
		CategoryID: &categoryStr,
		Rate:       12.5,
	}, "admin")

	assert.NoError(t, err)
	assert.Equal(t, 12.5, setting.Rate)
	assert.NotNil(t, setting.CreatedBy)
	assert.Equal(t, "admin", *setting.CreatedBy)
	mockRepo.AssertExpectations(t)
}

func TestCreateSetting_CarriesEffectiveWindow(t *testing.T) {
	mockRepo := new(MockCommissionRepository)
	service := newTestCommissionService(mockRepo, 5.0)

	from := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	until := from.AddDate(0, 3, 0)

	mockRepo.On("FindDuplicateSetting", mock.Anything, mock.Anything).
		Return(nil, repository.ErrNotFound)
	mockRepo.On("CreateSetting", mock.MatchedBy(func(s *models.CommissionSetting) bool {
		return s.EffectiveFrom != nil && s.EffectiveFrom.Equal(from) &&
			s.EffectiveUntil != nil && s.EffectiveUntil.Equal(until)
	})).Return(nil)

	setting, err := service.CreateSetting(&models.CreateCommissionSettingRequest{
		Rate:           9.0,
		EffectiveFrom:  &from,
		EffectiveUntil: &until,
	}, "admin")

	assert.NoError(t, err)
	assert.Equal(t, from, *setting.EffectiveFrom)
	assert.Equal(t, until, *setting.EffectiveUntil)
	mockRepo.AssertExpectations(t)
}

func TestCreateSetting_RejectsInvertedEffectiveWindow(t *testing.T) {
	mockRepo := new(MockCommissionRepository)
	service := newTestCommissionService(mockRepo, 5.0)

	from := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	until := from.Add(-time.Hour)

	_, err := service.CreateSetting(&models.CreateCommissionSettingRequest{
		Rate:           9.0,
		EffectiveFrom:  &from,
		EffectiveUntil: &until,
	}, "admin")

	assert.ErrorIs(t, err, ErrInvalidEffective)
	mockRepo.AssertNotCalled(t, "CreateSetting", mock.Anything)
}

func TestCreateSetting_RejectsMalformedSupplierID(t *testing.T) {
	mockRepo := new(MockCommissionRepository)
	service := newTestCommissionService(mockRepo, 5.0)

	bad := "not-a-uuid"
	_, err := service.CreateSetting(&models.CreateCommissionSettingRequest{
		SupplierID: &bad,
		Rate:       10,
	}, "admin")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid supplier id")
}

// ============================================================================
// UpdateSetting
// ============================================================================

func TestUpdateSetting_RejectsOutOfRangeRate(t *testing.T) {
	mockRepo := new(MockCommissionRepository)
	service := newTestCommissionService(mockRepo, 5.0)

	rate := 150.0
	_, err := service.UpdateSetting(uuid.New(), &models.UpdateCommissionSettingRequest{Rate: &rate}, "admin")
	assert.ErrorIs(t, err, ErrInvalidRate)
}

func TestUpdateSetting_AppliesEffectiveWindow(t *testing.T) {
	mockRepo := new(MockCommissionRepository)
	service := newTestCommissionService(mockRepo, 5.0)

	settingID := uuid.New()
	until := time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC)
	updated := &models.CommissionSetting{ID: settingID, Rate: 10, EffectiveUntil: &until}

	mockRepo.On("UpdateSetting", settingID, mock.MatchedBy(func(u map[string]interface{}) bool {
		return u["effective_until"] == until
	})).Return(nil)
	mockRepo.On("GetSettingByID", settingID).Return(updated, nil)

	setting, err := service.UpdateSetting(settingID, &models.UpdateCommissionSettingRequest{EffectiveUntil: &until}, "admin")
	assert.NoError(t, err)
	assert.Equal(t, until, *setting.EffectiveUntil)
	mockRepo.AssertExpectations(t)
}

func TestUpdateSetting_AppliesPartialUpdate(t *testing.T) {
	mockRepo := new(MockCommissionRepository)
	service := newTestCommissionService(mockRepo, 5.0)

	settingID := uuid.New()
	inactive := false
	updated := &models.CommissionSetting{ID: settingID, Rate: 10, IsActive: false}

	mockRepo.On("UpdateSetting", settingID, mock.MatchedBy(func(u map[string]interface{}) bool {
		_, hasRate := u["rate"]
		return !hasRate && u["is_active"] == false && u["updated_by"] == "admin"
	})).Return(nil)
	mockRepo.On("GetSettingByID", settingID).Return(updated, nil)

	setting, err := service.UpdateSetting(settingID, &models.UpdateCommissionSettingRequest{IsActive: &inactive}, "admin")
	assert.NoError(t, err)
	assert.False(t, setting.IsActive)
	mockRepo.AssertExpectations(t)
}

// ============================================================================
// CalculateAmount
// ============================================================================

func TestCalculateAmount(t *testing.T) {
	tests := []struct {
		name     string
		base     float64
		rate     float64
		expected float64
	}{
		{"whole percentage", 1000.00, 10.0, 100.00},
		{"fractional rate", 249.99, 7.5, 18.75},
		{"rounds half up", 12.34, 2.5, 0.31},
		{"sub cent rounds", 19.99, 3.33, 0.67},
		{"zero rate", 500.00, 0, 0},
		{"zero base", 0, 12.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, CalculateAmount(tt.base, tt.rate), 0.001)
		})
	}
}
