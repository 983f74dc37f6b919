package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/salonhq/salon-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents an API error body
type Error struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

// Pagination represents pagination metadata
type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"page_size"`
	Total     int `json:"total"`
	TotalPage int `json:"total_pages"`
}

// PaginatedResponse wraps paginated data
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

var statusByCode = map[errors.ErrorCode]int{
	errors.CodeValidation:         http.StatusBadRequest,
	errors.CodeNotFound:           http.StatusNotFound,
	errors.CodeUnauthorized:       http.StatusUnauthorized,
	errors.CodeForbidden:          http.StatusForbidden,
	errors.CodeConflict:           http.StatusConflict,
	errors.CodeBranchClosed:       http.StatusUnprocessableEntity,
	errors.CodeSlotTaken:          http.StatusUnprocessableEntity,
	errors.CodeInvalidCoupon:      http.StatusUnprocessableEntity,
	errors.CodeMembershipInactive: http.StatusUnprocessableEntity,
	errors.CodePaymentFailure:     http.StatusBadGateway,
	errors.CodeDeliveryFailure:    http.StatusBadGateway,
	errors.CodeRateLimited:        http.StatusTooManyRequests,
	errors.CodeInternal:           http.StatusInternalServerError,
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// RespondWithCreated sends a success response for newly created resources
func RespondWithCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// RespondWithError sends a structured error response
func RespondWithError(c *gin.Context, err error) {
	code := errors.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	message := "internal server error"
	if appErr, ok := err.(*errors.AppError); ok {
		message = appErr.Message
	} else if status < http.StatusInternalServerError {
		message = err.Error()
	}

	c.JSON(status, Response{
		Success: false,
		Error:   &Error{Code: code, Message: message},
	})
}

// RespondWithPagination sends a paginated response
func RespondWithPagination(c *gin.Context, data interface{}, page, pageSize, total int) {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: PaginatedResponse{
			Data: data,
			Pagination: Pagination{
				Page:      page,
				PageSize:  pageSize,
				Total:     total,
				TotalPage: totalPages,
			},
		},
	})
}
