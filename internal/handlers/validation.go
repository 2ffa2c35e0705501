package handlers

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/charlesng35/cmdstash/pkg/errors"
	"github.com/charlesng35/cmdstash/pkg/response"
	appvalidator "github.com/charlesng35/cmdstash/pkg/validator"
)

// bindAndValidate binds the JSON payload into dest and runs struct validation rules.
// When binding or validation fails, an error response is written and false returned.
func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, apperrors.NewBadRequest("invalid JSON payload"))
		return false
	}

	if err := appvalidator.ValidateStruct(dest); err != nil {
		if ve, ok := err.(appvalidator.ValidationErrors); ok {
			response.Error(c, apperrors.NewValidation(ve.Messages()...))
		} else {
			response.Error(c, apperrors.NewBadRequest("invalid request payload"))
		}
		return false
	}

	return true
}
