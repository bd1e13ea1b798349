// Package handlers wires HTTP requests to the service layer.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/repository"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    code,
			Message: message,
		},
	})
}

func respondValidationError(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
}

func respondNotFound(c *gin.Context, message string) {
	respondError(c, http.StatusNotFound, "NOT_FOUND", message)
}

func respondInternalError(c *gin.Context, err error) {
	respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, models.SuccessResponse{Success: true, Data: data})
}

func respondList(c *gin.Context, data interface{}, page, limit int, total int64) {
	c.JSON(http.StatusOK, models.ListResponse{
		Success:    true,
		Data:       data,
		Pagination: models.NewPaginationInfo(page, limit, total),
	})
}

// parseUUIDParam parses a path parameter as UUID, writing the error
// response itself on failure
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", name+" must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func parsePagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

// queryUUID parses an optional UUID query parameter
func queryUUID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", name+" must be a valid UUID")
		return nil, false
	}
	return &id, true
}

// notFoundOrInternal maps repository lookup failures to 404 or 500
func notFoundOrInternal(c *gin.Context, err error, message string) {
	if repository.IsNotFound(err) {
		respondNotFound(c, message)
		return
	}
	respondInternalError(c, err)
}
