package handler

import (
	"net/http"

	"github.com/flamingo-app/flamingo-server/internal/constants"
	apperrors "github.com/flamingo-app/flamingo-server/internal/errors"
	"github.com/gin-gonic/gin"
)

// respondError maps a service error onto the uniform error envelope.
func respondError(c *gin.Context, err error) {
	domainErr := apperrors.GetDomainError(err)
	if domainErr == nil {
		domainErr = apperrors.ErrInternal
	}
	c.JSON(domainErr.Status, constants.BuildErrorResponse(domainErr.Code, domainErr.Message, nil))
}

// respondBindingError reports malformed or invalid request payloads.
func respondBindingError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest,
		constants.BuildErrorResponse(apperrors.ErrValidation.Code, apperrors.ErrValidation.Message, err.Error()))
}
