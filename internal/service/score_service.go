package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"alert-strategist/internal/domain"
	"alert-strategist/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const defaultScoreCacheTTL = 15 * time.Second

type Previewer interface {
	Preview(ctx context.Context, ticker string, now time.Time) ([]domain.ScoreSnapshot, error)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// ScoreService serves the per-ticker score dashboard. Results are cached in
// Redis for a short TTL since a preview re-reads every enabled strategy.
type ScoreService struct {
	tracer    trace.Tracer
	previewer Previewer
	redis     RedisClient
	ttl       time.Duration
	log       *logger.Logger
	now       func() time.Time
}

func NewScoreService(tracer trace.Tracer, previewer Previewer, redisClient RedisClient, ttl time.Duration, log *logger.Logger) *ScoreService {
	if ttl <= 0 {
		ttl = defaultScoreCacheTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ScoreService{
		tracer:    tracer,
		previewer: previewer,
		redis:     redisClient,
		ttl:       ttl,
		log:       log,
		now:       time.Now,
	}
}

// Scores returns the current score of every applicable strategy for ticker.
func (s *ScoreService) Scores(ctx context.Context, ticker string) ([]domain.ScoreSnapshot, error) {
	ctx, span := s.tracer.Start(ctx, "score-service.scores")
	defer span.End()

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, errors.New("ticker is required")
	}

	if s.redis != nil {
		cached, err := s.getScoreCache(ctx, ticker)
		if err != nil {
			s.log.Warn("score cache read failed", logger.String("ticker", ticker), logger.Error(err))
		}
		if cached != nil {
			return cached, nil
		}
	}

	scores, err := s.previewer.Preview(ctx, ticker, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if scores == nil {
		scores = []domain.ScoreSnapshot{}
	}

	if s.redis != nil {
		if err := s.setScoreCache(ctx, ticker, scores); err != nil {
			s.log.Warn("score cache write failed", logger.String("ticker", ticker), logger.Error(err))
		}
	}
	return scores, nil
}

func scoreCacheKey(ticker string) string {
	return "score:" + ticker
}

func (s *ScoreService) setScoreCache(ctx context.Context, ticker string, scores []domain.ScoreSnapshot) error {
	data, err := json.Marshal(scores)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, scoreCacheKey(ticker), data, s.ttl).Err()
}

func (s *ScoreService) getScoreCache(ctx context.Context, ticker string) ([]domain.ScoreSnapshot, error) {
	data, err := s.redis.Get(ctx, scoreCacheKey(ticker)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var scores []domain.ScoreSnapshot
	if err := json.Unmarshal(data, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}
