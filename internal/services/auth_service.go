package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/auth"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/repository"
)

var (
	ErrEmailTaken      = errors.New("email already registered")
	ErrAccountDisabled = errors.New("account is disabled")
)

// AuthService handles registration and credential login
type AuthService struct {
	users     *repository.UsersRepository
	suppliers *repository.SuppliersRepository
	tokens    *auth.TokenManager
	logger    *logrus.Entry
}

func NewAuthService(
	users *repository.UsersRepository,
	suppliers *repository.SuppliersRepository,
	tokens *auth.TokenManager,
	logger *logrus.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		suppliers: suppliers,
		tokens:    tokens,
		logger:    logger.WithField("service", "auth"),
	}
}

// RegisterCustomer creates a customer account and signs it in
func (s *AuthService) RegisterCustomer(req *models.RegisterRequest) (*models.AuthResponse, error) {
	exists, err := s.users.EmailExists(req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Role:         models.RoleCustomer,
		IsActive:     true,
	}
	if err := s.users.CreateUser(user); err != nil {
		return nil, err
	}

	s.logger.WithField("userId", user.ID).Info("Customer registered")
	return s.issueFor(user)
}

// RegisterSupplier creates a supplier in PENDING status together with its
// owner account. The supplier cannot list products until an admin approves.
func (s *AuthService) RegisterSupplier(req *models.RegisterSupplierRequest) (*models.Supplier, *models.AuthResponse, error) {
	exists, err := s.users.EmailExists(req.Email)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, ErrEmailTaken
	}

	supplier := &models.Supplier{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Status:         models.SupplierStatusPending,
		Description:    req.Description,
		Location:       req.Location,
		Website:        req.Website,
		PrimaryContact: req.PrimaryContact,

		BusinessRegistrationNumber: req.BusinessRegistrationNumber,
		TaxIdentificationNumber:    req.TaxIdentificationNumber,
		BusinessType:               req.BusinessType,
		FoundedYear:                req.FoundedYear,

		IsActive: false,
	}
	if req.DeliveryDays != nil && *req.DeliveryDays > 0 {
		supplier.DeliveryDays = *req.DeliveryDays
	} else {
		supplier.DeliveryDays = 5
	}
	if err := s.suppliers.CreateSupplier(supplier); err != nil {
		return nil, nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.PrimaryContact,
		LastName:     req.Name,
		Phone:        req.Phone,
		Role:         models.RoleSupplier,
		SupplierID:   &supplier.ID,
		IsActive:     true,
	}
	if err := s.users.CreateUser(user); err != nil {
		return nil, nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"supplierId": supplier.ID,
		"userId":     user.ID,
	}).Info("Supplier registered, pending approval")

	authResp, err := s.issueFor(user)
	if err != nil {
		return nil, nil, err
	}
	return supplier, authResp, nil
}

// Login verifies credentials and returns a signed token
func (s *AuthService) Login(req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.users.GetUserByEmail(req.Email)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, auth.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	if err := s.users.TouchLastLogin(user.ID); err != nil {
		s.logger.WithError(err).Warn("Failed to record login timestamp")
	}

	return s.issueFor(user)
}

// GetProfile loads the authenticated account
func (s *AuthService) GetProfile(userID uuid.UUID) (*models.User, error) {
	return s.users.GetUserByID(userID)
}

func (s *AuthService) issueFor(user *models.User) (*models.AuthResponse, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{
		Success:   true,
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}
