package job

import (
	"context"
	"time"

	"alert-strategist/internal/catalog"
	"alert-strategist/internal/metrics"
	"alert-strategist/pkg/logger"

	"go.opentelemetry.io/otel/trace"
)

const defaultRefreshInterval = time.Minute

type CatalogRefresher interface {
	Refresh(ctx context.Context) (*catalog.Snapshot, error)
}

// CatalogRefreshJob reloads indicator aliases and weights on an interval so
// weight edits made outside the API reach evaluation without a restart.
type CatalogRefreshJob struct {
	tracer   trace.Tracer
	catalog  CatalogRefresher
	interval time.Duration
	metrics  *metrics.Recorder
	log      *logger.Logger
}

func NewCatalogRefreshJob(tracer trace.Tracer, cat CatalogRefresher, intervalSecs int, rec *metrics.Recorder, log *logger.Logger) *CatalogRefreshJob {
	interval := time.Duration(intervalSecs) * time.Second
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	if log == nil {
		log = logger.L()
	}
	return &CatalogRefreshJob{
		tracer:   tracer,
		catalog:  cat,
		interval: interval,
		metrics:  rec,
		log:      log.With(logger.String("job", "catalog-refresh")),
	}
}

// Start refreshes immediately, then on every tick. Blocks until ctx is cancelled.
func (j *CatalogRefreshJob) Start(ctx context.Context) {
	j.log.Info("catalog refresh job starting", logger.Duration("interval", j.interval))
	j.pollLoop(ctx, j.runOnce)
	j.log.Info("catalog refresh job stopped")
}

func (j *CatalogRefreshJob) pollLoop(ctx context.Context, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		j.log.Warn("initial catalog refresh failed", logger.Error(err))
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := fn(ctx); err != nil {
				j.log.Warn("catalog refresh failed", logger.Error(err))
			}
		}
	}
}

func (j *CatalogRefreshJob) runOnce(ctx context.Context) error {
	ctx, span := j.tracer.Start(ctx, "catalog-refresh-job.run")
	defer span.End()

	snap, err := j.catalog.Refresh(ctx)
	j.metrics.RecordCatalogRefresh(err == nil)
	if err != nil {
		span.RecordError(err)
		return err
	}
	aliases, weights := snap.Size()
	j.log.Debug("catalog refreshed",
		logger.Int("aliases", aliases),
		logger.Int("weights", weights),
		logger.String("loaded_at", snap.LoadedAt().UTC().Format(time.RFC3339)),
	)
	return nil
}
