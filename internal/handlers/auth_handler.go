package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/middleware"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/services"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register creates a customer account
// @Summary Register a customer account
// @Description Creates a customer account and returns a signed token
// @Tags auth
// @Accept json
// @Produce json
// @Param registration body models.RegisterRequest true "Registration request"
// @Success 201 {object} models.AuthResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	resp, err := h.auth.RegisterCustomer(&req)
	if err != nil {
		if err == services.ErrEmailTaken {
			respondError(c, http.StatusConflict, "EMAIL_TAKEN", "An account with this email already exists")
			return
		}
		respondInternalError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// RegisterSupplier submits a supplier application
// @Summary Register a supplier
// @Description Creates a supplier in PENDING status together with its owner account
// @Tags auth
// @Accept json
// @Produce json
// @Param registration body models.RegisterSupplierRequest true "Supplier registration request"
// @Success 201 {object} models.SupplierResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/register/supplier [post]
func (h *AuthHandler) RegisterSupplier(c *gin.Context) {
	var req models.RegisterSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	supplier, authResp, err := h.auth.RegisterSupplier(&req)
	if err != nil {
		if err == services.ErrEmailTaken {
			respondError(c, http.StatusConflict, "EMAIL_TAKEN", "An account with this email already exists")
			return
		}
		respondInternalError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    supplier,
		"auth":    authResp,
		"message": "Supplier registration submitted for review",
	})
}

// Login authenticates an account
// @Summary Log in
// @Description Verifies credentials and returns a signed token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.LoginRequest true "Login request"
// @Success 200 {object} models.AuthResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	resp, err := h.auth.Login(&req)
	if err != nil {
		switch err {
		case services.ErrAccountDisabled:
			respondError(c, http.StatusUnauthorized, "ACCOUNT_DISABLED", "Account is disabled")
		default:
			respondError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Profile returns the authenticated account
// @Summary Get own profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.SuccessResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Profile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Not authenticated")
		return
	}
	respondData(c, http.StatusOK, user)
}
