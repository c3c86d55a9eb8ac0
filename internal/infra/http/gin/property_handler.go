package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"plek/internal/app/services/catalog"
)

type PropertyHandler struct {
	Catalog *catalog.Service
	Logger  *slog.Logger
}

func (h *PropertyHandler) List(c *gin.Context) {
	props, err := h.Catalog.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"properties": toPropertyResponses(props)})
}

func (h *PropertyHandler) Get(c *gin.Context) {
	prop, err := h.Catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, toPropertyResponse(prop))
}

func (h *PropertyHandler) ListForHost(c *gin.Context) {
	actor, ok := requireUser(c)
	if !ok {
		return
	}
	props, err := h.Catalog.ListForHost(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"properties": toPropertyResponses(props)})
}

type createPropertyRequest struct {
	Slug        string `json:"slug"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	RateCents   int64  `json:"nightly_rate_cents" binding:"omitempty,min=0"`
	Currency    string `json:"currency"`
}

func (h *PropertyHandler) Create(c *gin.Context) {
	actor, ok := requireUser(c)
	if !ok {
		return
	}
	var req createPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	prop, err := h.Catalog.Create(c.Request.Context(), actor, catalog.CreateParams{
		Slug:        req.Slug,
		Title:       req.Title,
		Description: req.Description,
		RateCents:   req.RateCents,
		Currency:    req.Currency,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, toPropertyResponse(prop))
}

type updatePropertyRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	RateCents   int64  `json:"nightly_rate_cents" binding:"omitempty,min=0"`
	Currency    string `json:"currency"`
	Active      *bool  `json:"active"`
}

func (h *PropertyHandler) Update(c *gin.Context) {
	actor, ok := requireUser(c)
	if !ok {
		return
	}
	var req updatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	prop, err := h.Catalog.Update(c.Request.Context(), actor, c.Param("id"), catalog.UpdateParams{
		Title:       req.Title,
		Description: req.Description,
		RateCents:   req.RateCents,
		Currency:    req.Currency,
		Active:      req.Active,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, toPropertyResponse(prop))
}

func (h *PropertyHandler) Delete(c *gin.Context) {
	actor, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.Catalog.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
