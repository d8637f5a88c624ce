package handler

import (
	"net/http"
	"strconv"
	"strings"

	"alert-strategist/internal/domain"

	"github.com/gin-gonic/gin"
)

const defaultListLimit = 100

// ListAlerts godoc
// @Summary      List alerts
// @Description  Returns recent alerts, newest first
// @Tags         history
// @Produce      json
// @Security     ApiKeyAuth
// @Param        ticker  query     string  false  "Ticker filter"
// @Param        limit   query     int     false  "Max rows (1-1000, default 100)"
// @Success      200     {object}  map[string][]domain.Alert
// @Router       /api/alerts [get]
func (h *Handler) ListAlerts(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-alerts")
	defer span.End()

	alerts, err := h.alerts.List(ctx, domain.AlertFilter{
		Ticker: strings.ToUpper(strings.TrimSpace(c.Query("ticker"))),
		Limit:  queryLimit(c),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// ListActions godoc
// @Summary      List actions
// @Description  Returns recorded BUY/SELL actions, newest first
// @Tags         history
// @Produce      json
// @Security     ApiKeyAuth
// @Param        ticker       query     string  false  "Ticker filter"
// @Param        strategy_id  query     int     false  "Strategy filter"
// @Param        limit        query     int     false  "Max rows (1-1000, default 100)"
// @Success      200          {object}  map[string][]domain.Action
// @Failure      400          {object}  map[string]string
// @Router       /api/actions [get]
func (h *Handler) ListActions(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-actions")
	defer span.End()

	f := domain.ActionFilter{
		Ticker: strings.ToUpper(strings.TrimSpace(c.Query("ticker"))),
		Limit:  queryLimit(c),
	}
	if s := c.Query("strategy_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid strategy_id: " + s})
			return
		}
		f.StrategyID = id
	}

	actions, err := h.actions.List(ctx, f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if actions == nil {
		actions = []domain.Action{}
	}
	c.JSON(http.StatusOK, gin.H{"actions": actions})
}

func queryLimit(c *gin.Context) int {
	limit := defaultListLimit
	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}
	return limit
}
