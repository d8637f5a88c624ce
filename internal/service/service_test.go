package service

import (
	"context"
	"encoding/json"
	"time"

	"alert-strategist/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

type fakeRedis struct {
	data    map[string][]byte
	ttls    map[string]time.Duration
	setErr  error
	getErr  error
	getHits int
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = append([]byte(nil), v...)
	case string:
		f.data[key] = []byte(v)
	default:
		bytes, _ := json.Marshal(v)
		f.data[key] = bytes
	}
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	if v, ok := f.data[key]; ok {
		f.getHits++
		return redis.NewStringResult(string(v), nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

type mockStrategyRepo struct {
	created []domain.Strategy
	updated []domain.Strategy
	deleted []int64
	items   []domain.Strategy
	err     error
}

func (m *mockStrategyRepo) List(ctx context.Context) ([]domain.Strategy, error) {
	return m.items, m.err
}

func (m *mockStrategyRepo) Get(ctx context.Context, id int64) (domain.Strategy, error) {
	if m.err != nil {
		return domain.Strategy{}, m.err
	}
	for _, s := range m.items {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.Strategy{}, domain.ErrNotFound
}

func (m *mockStrategyRepo) Create(ctx context.Context, s domain.Strategy) (domain.Strategy, error) {
	if m.err != nil {
		return domain.Strategy{}, m.err
	}
	s.ID = int64(len(m.created) + 1)
	m.created = append(m.created, s)
	return s, nil
}

func (m *mockStrategyRepo) Update(ctx context.Context, s domain.Strategy) (domain.Strategy, error) {
	if m.err != nil {
		return domain.Strategy{}, m.err
	}
	m.updated = append(m.updated, s)
	return s, nil
}

func (m *mockStrategyRepo) Delete(ctx context.Context, id int64) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}
