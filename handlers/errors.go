package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"spacenote-api/errs"
	"spacenote-api/types"
)

// respondError maps domain errors onto HTTP statuses and the standard
// response envelope.
func respondError(c *gin.Context, err error) {
	var validationErr *errs.ValidationError
	var notFoundErr *errs.NotFoundError
	var accessErr *errs.AccessDeniedError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, validationErr.Message))
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, types.NewErrorResponse(types.ErrorCodeNotFound, notFoundErr.Message))
	case errors.As(err, &accessErr):
		c.JSON(http.StatusForbidden, types.NewErrorResponse(types.ErrorCodeForbidden, accessErr.Message))
	default:
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
	}
}
