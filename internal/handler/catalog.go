package handler

import (
	"errors"
	"net/http"

	"alert-strategist/internal/domain"

	"github.com/gin-gonic/gin"
)

// ListWeights godoc
// @Summary      List indicator weights
// @Tags         catalog
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]string
// @Router       /api/catalog/weights [get]
func (h *Handler) ListWeights(c *gin.Context) {
	if h.weights == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-weights")
	defer span.End()

	weights, err := h.weights.ListWeights(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"weights": weights})
}

// SetWeight godoc
// @Summary      Set an indicator weight
// @Description  Upserts the live weight of one indicator/trigger pair and refreshes the catalog
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        weight  body      domain.IndicatorWeight  true  "Weight"
// @Success      200     {object}  domain.IndicatorWeight
// @Failure      400     {object}  map[string]string
// @Router       /api/catalog/weights [put]
func (h *Handler) SetWeight(c *gin.Context) {
	if h.weights == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.set-weight")
	defer span.End()

	var in domain.IndicatorWeight
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	w, err := h.weights.SetWeight(ctx, in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidWeight) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, w)
}
