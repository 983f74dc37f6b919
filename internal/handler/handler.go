package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/salonhq/salon-api/pkg/errors"
)

var validate = validator.New()

// BindAndValidate decodes the JSON body and runs struct validation, mapping
// both failure modes to a validation error.
func BindAndValidate(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return apperrors.Validation("invalid request body", err)
	}
	if err := validate.Struct(req); err != nil {
		return apperrors.Validation(err.Error(), err)
	}
	return nil
}
