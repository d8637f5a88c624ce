package handler

import (
	"io"
	"net/http"

	"alert-strategist/internal/engine"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

const maxWebhookBody = 64 << 10

// Webhook godoc
// @Summary      Receive an indicator alert
// @Description  Accepts a pipe-delimited or JSON alert. The alert is persisted before the response; strategy evaluation continues in the background.
// @Tags         webhook
// @Accept       plain
// @Accept       json
// @Produce      json
// @Param        payload  body      string  true  "Alert payload"
// @Success      202      {object}  map[string]domain.Alert
// @Failure      400      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /webhook [post]
func (h *Handler) Webhook(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.webhook")
	defer span.End()

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
		return
	}
	raw := string(body)

	alert, err := h.ingester.Ingest(ctx, raw)
	if err != nil {
		if engine.IsParseError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "raw": raw})
			return
		}
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(
		attribute.String("ticker", alert.Ticker),
		attribute.String("indicator", alert.Indicator),
	)
	c.JSON(http.StatusAccepted, gin.H{"alert": alert})
}
