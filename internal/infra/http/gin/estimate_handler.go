package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"plek/internal/app/services/quote"
	"plek/internal/app/services/reservation"
	"plek/internal/domain/booking"
	"plek/internal/domain/pricing"
)

type EstimateHandler struct {
	Quotes       *quote.Service
	Reservations *reservation.Service
	Logger       *slog.Logger
}

type estimateRequest struct {
	PropertyID string   `json:"property_id" binding:"required"`
	Guests     []string `json:"guests"`
	From       string   `json:"from" binding:"required"`
	To         string   `json:"to" binding:"required"`
	Package    string   `json:"package" binding:"omitempty,packagetype"`
}

func (h *EstimateHandler) Request(c *gin.Context) {
	actor, ok := requireUser(c)
	if !ok {
		return
	}
	var req estimateRequest
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
	estimate, err := h.Quotes.Request(c.Request.Context(), actor, quote.RequestParams{
		PropertyID: req.PropertyID,
		Guests:     req.Guests,
		From:       from,
		To:         to,
		Package:    pricing.PackageType(req.Package),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, toEstimateResponse(estimate))
}

func (h *EstimateHandler) Get(c *gin.Context) {
	actor, ok := requireUser(c)
	if !ok {
		return
	}
	estimate, err := h.Quotes.Get(c.Request.Context(), actor, booking.EstimateID(c.Param("id")))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, toEstimateResponse(estimate))
}

// Confirm promotes an estimate into a booking. Safe to retry: confirming an
// already-paid estimate returns the existing booking.
func (h *EstimateHandler) Confirm(c *gin.Context) {
	actor, ok := requireUser(c)
	if !ok {
		return
	}
	b, err := h.Reservations.Confirm(c.Request.Context(), actor, booking.EstimateID(c.Param("id")))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(b))
}

func (h *EstimateHandler) ListMine(c *gin.Context) {
	actor, ok := requireUser(c)
	if !ok {
		return
	}
	estimates, err := h.Quotes.ListForCustomer(c.Request.Context(), string(actor.ID))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"estimates": toEstimateResponses(estimates)})
}
