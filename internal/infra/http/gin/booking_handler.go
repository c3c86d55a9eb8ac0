package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"plek/internal/app/services/reservation"
	"plek/internal/domain/booking"
	"plek/internal/domain/pricing"
)

type BookingHandler struct {
	Reservations *reservation.Service
	Logger       *slog.Logger
}

func (h *BookingHandler) ListMine(c *gin.Context) {
	actor, ok := requireUser(c)
	if !ok {
		return
	}
	bookings, err := h.Reservations.ListForCustomer(c.Request.Context(), string(actor.ID))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": toBookingResponses(bookings)})
}

func (h *BookingHandler) ListForProperty(c *gin.Context) {
	actor, ok := requireUser(c)
	if !ok {
		return
	}
	bookings, err := h.Reservations.ListForProperty(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": toBookingResponses(bookings)})
}

type directBookingRequest struct {
	PropertyID string   `json:"property_id" binding:"required"`
	CustomerID string   `json:"customer_id"`
	Guests     []string `json:"guests"`
	From       string   `json:"from" binding:"required"`
	To         string   `json:"to" binding:"required"`
	Package    string   `json:"package" binding:"omitempty,packagetype"`
	TotalCents int64    `json:"total_cents" binding:"omitempty,min=0"`
	Currency   string   `json:"currency"`
}

func (h *BookingHandler) CreateDirect(c *gin.Context) {
	actor, ok := requireUser(c)
	if !ok {
		return
	}
	var req directBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	from, err := parseDate(req.From, "from")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	to, err := parseDate(req.To, "to")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.Reservations.CreateDirect(c.Request.Context(), actor, reservation.DirectBookingParams{
		PropertyID: req.PropertyID,
		CustomerID: req.CustomerID,
		Guests:     req.Guests,
		From:       from,
		To:         to,
		Package:    pricing.PackageType(req.Package),
		TotalCents: req.TotalCents,
		Currency:   req.Currency,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(b))
}

func (h *BookingHandler) Delete(c *gin.Context) {
	actor, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.Reservations.Delete(c.Request.Context(), actor, booking.BookingID(c.Param("id"))); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
