package handler

import (
	"errors"
	"net/http"
	"strconv"

	"alert-strategist/internal/domain"
	"alert-strategist/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// ListStrategies godoc
// @Summary      List strategies
// @Description  Returns every stored strategy, enabled or not
// @Tags         strategies
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  map[string][]domain.Strategy
// @Failure      500  {object}  map[string]string
// @Router       /api/strategies [get]
func (h *Handler) ListStrategies(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-strategies")
	defer span.End()

	out, err := h.strategies.List(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"strategies": out})
}

// GetStrategy godoc
// @Summary      Get a strategy
// @Tags         strategies
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id   path      int  true  "Strategy ID"
// @Success      200  {object}  domain.Strategy
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/strategies/{id} [get]
func (h *Handler) GetStrategy(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-strategy")
	defer span.End()

	id, ok := strategyID(c)
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int64("strategy_id", id))

	s, err := h.strategies.Get(ctx, id)
	if err != nil {
		writeStrategyError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// CreateStrategy godoc
// @Summary      Create a strategy
// @Description  Validates the rule tree, canonicalizes indicator names and stores the strategy
// @Tags         strategies
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        strategy  body      service.StrategyInput  true  "Strategy definition"
// @Success      201       {object}  domain.Strategy
// @Failure      400       {object}  map[string]string
// @Router       /api/strategies [post]
func (h *Handler) CreateStrategy(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.create-strategy")
	defer span.End()

	var in service.StrategyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	s, err := h.strategies.Create(ctx, in)
	if err != nil {
		writeStrategyError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

// UpdateStrategy godoc
// @Summary      Replace a strategy
// @Tags         strategies
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id        path      int                    true  "Strategy ID"
// @Param        strategy  body      service.StrategyInput  true  "Strategy definition"
// @Success      200       {object}  domain.Strategy
// @Failure      400       {object}  map[string]string
// @Failure      404       {object}  map[string]string
// @Router       /api/strategies/{id} [put]
func (h *Handler) UpdateStrategy(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.update-strategy")
	defer span.End()

	id, ok := strategyID(c)
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int64("strategy_id", id))

	var in service.StrategyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	s, err := h.strategies.Update(ctx, id, in)
	if err != nil {
		writeStrategyError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// DeleteStrategy godoc
// @Summary      Delete a strategy
// @Tags         strategies
// @Security     ApiKeyAuth
// @Param        id   path  int  true  "Strategy ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/strategies/{id} [delete]
func (h *Handler) DeleteStrategy(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.delete-strategy")
	defer span.End()

	id, ok := strategyID(c)
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int64("strategy_id", id))

	if err := h.strategies.Delete(ctx, id); err != nil {
		writeStrategyError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func strategyID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid strategy id: " + c.Param("id")})
		return 0, false
	}
	return id, true
}

func writeStrategyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidStrategy):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "strategy not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
