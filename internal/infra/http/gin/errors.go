package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	authservice "plek/internal/app/services/auth"
	"plek/internal/app/services/catalog"
	"plek/internal/app/services/quote"
	"plek/internal/app/services/reservation"
	"plek/internal/domain/booking"
	"plek/internal/domain/pricing"
	"plek/internal/domain/property"
	"plek/internal/domain/shared/daterange"
	"plek/internal/domain/shared/money"
	domainuser "plek/internal/domain/user"
	"plek/internal/infra/obs"
)

// respondError translates domain and service errors into the API shape.
// Anything unrecognized is logged with its request id and hidden behind a
// generic 500 so internals never leak to clients.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status, message := classifyError(err)
	if status == http.StatusInternalServerError && logger != nil {
		logger.Error("request failed",
			"error", err,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"request_id", obs.RequestIDFromContext(c.Request.Context()),
		)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, daterange.ErrInvalidRange),
		errors.Is(err, quote.ErrCheckInInPast),
		errors.Is(err, booking.ErrInvalidPackage),
		errors.Is(err, booking.ErrCustomerMissing),
		errors.Is(err, pricing.ErrInvalidNights),
		errors.Is(err, pricing.ErrNegativeRate),
		errors.Is(err, money.ErrInvalidCurrency),
		errors.Is(err, money.ErrCurrencyMismatch),
		errors.Is(err, money.ErrNegativeAmount),
		errors.Is(err, property.ErrTitleRequired),
		errors.Is(err, property.ErrHostRequired),
		errors.Is(err, domainuser.ErrEmailRequired),
		errors.Is(err, domainuser.ErrNameRequired),
		errors.Is(err, domainuser.ErrInvalidRole),
		errors.Is(err, authservice.ErrPasswordTooShort):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, authservice.ErrInvalidCredentials),
		errors.Is(err, authservice.ErrUserBlocked):
		return http.StatusUnauthorized, err.Error()

	case errors.Is(err, quote.ErrPermissionDenied),
		errors.Is(err, reservation.ErrPermissionDenied),
		errors.Is(err, catalog.ErrPermissionDenied),
		errors.Is(err, booking.ErrNotOwner):
		return http.StatusForbidden, err.Error()

	case errors.Is(err, property.ErrNotFound),
		errors.Is(err, booking.ErrEstimateNotFound),
		errors.Is(err, booking.ErrBookingNotFound),
		errors.Is(err, domainuser.ErrNotFound):
		return http.StatusNotFound, err.Error()

	case errors.Is(err, booking.ErrDateConflict),
		errors.Is(err, booking.ErrAlreadyPaid),
		errors.Is(err, property.ErrSlugTaken),
		errors.Is(err, domainuser.ErrEmailAlreadyUsed):
		return http.StatusConflict, err.Error()

	case errors.Is(err, reservation.ErrPaymentNotVerified):
		return http.StatusPaymentRequired, err.Error()

	default:
		return http.StatusInternalServerError, "internal error"
	}
}
