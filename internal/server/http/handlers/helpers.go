package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/homecare/internal/domain/errors"
	"github.com/polkiloo/homecare/internal/server/http/dto"
	"github.com/polkiloo/homecare/internal/server/http/middleware"
)

// CurrentUserID extracts authenticated user identifier from context.
func CurrentUserID(c *gin.Context) string {
	val, ok := c.Get(middleware.UserIDContextKey)
	if !ok {
		return ""
	}
	id, _ := val.(string)
	return id
}

var errorStatuses = []struct {
	err    error
	status int
}{
	{domainErrors.ErrNotFound, http.StatusNotFound},
	{domainErrors.ErrForbidden, http.StatusForbidden},
	{domainErrors.ErrNotApproved, http.StatusForbidden},
	{domainErrors.ErrInvalidSignature, http.StatusUnauthorized},
	{domainErrors.ErrAlreadyExists, http.StatusConflict},
	{domainErrors.ErrAlreadyRated, http.StatusConflict},
	{domainErrors.ErrLinkageConflict, http.StatusConflict},
	{domainErrors.ErrPaymentFinalized, http.StatusConflict},
	{domainErrors.ErrAlreadyPaid, http.StatusConflict},
	{domainErrors.ErrPaymentMismatch, http.StatusConflict},
	{domainErrors.ErrEvidenceUpload, http.StatusBadGateway},
	{domainErrors.ErrInvalidCredentials, http.StatusBadRequest},
	{domainErrors.ErrInvalidRole, http.StatusUnprocessableEntity},
	{domainErrors.ErrOrderClosed, http.StatusUnprocessableEntity},
	{domainErrors.ErrRatingMissing, http.StatusUnprocessableEntity},
	{domainErrors.ErrInvalidRate, http.StatusUnprocessableEntity},
	{domainErrors.ErrNoAppointment, http.StatusUnprocessableEntity},
	{domainErrors.ErrEvidenceRequired, http.StatusUnprocessableEntity},
	{domainErrors.ErrInvalidEvidence, http.StatusUnprocessableEntity},
	{domainErrors.ErrInvalidMedicine, http.StatusUnprocessableEntity},
	{domainErrors.ErrInvalidQuantity, http.StatusUnprocessableEntity},
	{domainErrors.ErrEmptySelection, http.StatusUnprocessableEntity},
	{domainErrors.ErrInvalidSelection, http.StatusUnprocessableEntity},
	{domainErrors.ErrPaymentNotConfirmed, http.StatusUnprocessableEntity},
	{domainErrors.ErrEmptyMessage, http.StatusUnprocessableEntity},
	{domainErrors.ErrInvalidApproval, http.StatusUnprocessableEntity},
	{domainErrors.ErrEmptyUpdate, http.StatusUnprocessableEntity},
	{domainErrors.ErrAmountTooLarge, http.StatusUnprocessableEntity},
}

// statusFor maps domain errors to HTTP status codes. Unknown errors are internal.
func statusFor(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// respondError writes the mapped status with the error message. Internal errors are not exposed.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: msg})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: msg})
}
