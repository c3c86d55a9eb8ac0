package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"plek/internal/app/services/reservation"
)

type AvailabilityHandler struct {
	Reservations *reservation.Service
	Logger       *slog.Logger
}

// Check answers whether a property is free for a half-open [from, to)
// range. The checkout day itself is never occupied, so back-to-back stays
// report available.
func (h *AvailabilityHandler) Check(c *gin.Context) {
	from, err := parseDate(c.Query("from"), "from")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	to, err := parseDate(c.Query("to"), "to")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	available, err := h.Reservations.IsAvailable(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"property_id": c.Param("id"),
		"from":        from.Format(dateLayout),
		"to":          to.Format(dateLayout),
		"available":   available,
	})
}

func (h *AvailabilityHandler) UnavailableDates(c *gin.Context) {
	days, err := h.Reservations.UnavailableDates(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	dates := make([]string, 0, len(days))
	for _, day := range days {
		dates = append(dates, day.Format(dateLayout))
	}
	c.JSON(http.StatusOK, gin.H{
		"property_id": c.Param("id"),
		"dates":       dates,
	})
}
