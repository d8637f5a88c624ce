package handler

import (
	"net/http"
	"strings"

	"alert-strategist/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetScores godoc
// @Summary      Live strategy scores for a ticker
// @Description  Evaluates each applicable strategy without recording actions; cached briefly
// @Tags         scores
// @Produce      json
// @Security     ApiKeyAuth
// @Param        ticker  path      string  true  "Ticker (e.g., BTCUSDT)"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  map[string]string
// @Failure      503     {object}  map[string]string
// @Router       /api/scores/{ticker} [get]
func (h *Handler) GetScores(c *gin.Context) {
	if h.scores == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "score service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-scores")
	defer span.End()

	ticker := strings.ToUpper(strings.TrimSpace(c.Param("ticker")))
	span.SetAttributes(attribute.String("ticker", ticker))
	if ticker == "" || len(ticker) > domain.MaxTickerLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticker: " + ticker})
		return
	}

	scores, err := h.scores.Scores(ctx, ticker)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticker": ticker, "scores": scores})
}
