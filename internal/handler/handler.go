package handler

import (
	"context"
	"net/http"

	"alert-strategist/internal/domain"
	"alert-strategist/internal/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/trace"
)

type Ingester interface {
	Ingest(ctx context.Context, raw string) (domain.Alert, error)
}

type StrategyManager interface {
	List(ctx context.Context) ([]domain.Strategy, error)
	Get(ctx context.Context, id int64) (domain.Strategy, error)
	Create(ctx context.Context, in service.StrategyInput) (domain.Strategy, error)
	Update(ctx context.Context, id int64, in service.StrategyInput) (domain.Strategy, error)
	Delete(ctx context.Context, id int64) error
}

type AlertLister interface {
	List(ctx context.Context, f domain.AlertFilter) ([]domain.Alert, error)
}

type ActionLister interface {
	List(ctx context.Context, f domain.ActionFilter) ([]domain.Action, error)
}

type ScoreReader interface {
	Scores(ctx context.Context, ticker string) ([]domain.ScoreSnapshot, error)
}

type WeightManager interface {
	ListWeights(ctx context.Context) ([]domain.IndicatorWeight, error)
	SetWeight(ctx context.Context, w domain.IndicatorWeight) (domain.IndicatorWeight, error)
}

type Handler struct {
	tracer     trace.Tracer
	ingester   Ingester
	strategies StrategyManager
	alerts     AlertLister
	actions    ActionLister
	scores     ScoreReader
	weights    WeightManager
	metrics    http.Handler
	apiKey     string
}

func New(
	tracer trace.Tracer,
	ingester Ingester,
	strategies StrategyManager,
	alerts AlertLister,
	actions ActionLister,
) *Handler {
	return &Handler{
		tracer:     tracer,
		ingester:   ingester,
		strategies: strategies,
		alerts:     alerts,
		actions:    actions,
	}
}

func (h *Handler) SetScoreReader(r ScoreReader) {
	h.scores = r
}

func (h *Handler) SetWeightManager(m WeightManager) {
	h.weights = m
}

func (h *Handler) SetMetricsHandler(m http.Handler) {
	h.metrics = m
}

// SetAPIKey protects the /api group; an empty key disables auth.
func (h *Handler) SetAPIKey(key string) {
	h.apiKey = key
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/metrics", h.Metrics)
	r.POST("/webhook", h.Webhook)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api", APIKeyAuth(h.apiKey))
	api.GET("/strategies", h.ListStrategies)
	api.GET("/strategies/:id", h.GetStrategy)
	api.POST("/strategies", h.CreateStrategy)
	api.PUT("/strategies/:id", h.UpdateStrategy)
	api.DELETE("/strategies/:id", h.DeleteStrategy)
	api.GET("/alerts", h.ListAlerts)
	api.GET("/actions", h.ListActions)
	api.GET("/scores/:ticker", h.GetScores)
	api.GET("/catalog/weights", h.ListWeights)
	api.PUT("/catalog/weights", h.SetWeight)
}
