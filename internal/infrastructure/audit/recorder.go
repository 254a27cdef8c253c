package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/club-events/internal/domain/audit"
	"github.com/riskibarqy/club-events/internal/platform/logging"
	"github.com/riskibarqy/club-events/internal/platform/metrics"
)

const (
	defaultWorkers      = 8
	defaultWriteTimeout = 5 * time.Second
)

// Target is a named sink. The name labels logs and metrics.
type Target struct {
	Name string
	Sink audit.Sink
}

type RecorderConfig struct {
	Workers      int
	WriteTimeout time.Duration
	Logger       *logging.Logger
}

// AsyncRecorder fans records out to every target on a bounded worker pool.
// Record never blocks: when the pool is saturated the record is dropped and
// counted.
type AsyncRecorder struct {
	pool         *ants.Pool
	targets      []Target
	writeTimeout time.Duration
	logger       *logging.Logger
}

func NewAsyncRecorder(cfg RecorderConfig, targets ...Target) (*AsyncRecorder, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	pool, err := ants.NewPool(workers, ants.WithNonblocking(true), ants.WithPanicHandler(func(p any) {
		logger.Error("audit worker panic", "panic", fmt.Sprint(p))
	}))
	if err != nil {
		return nil, fmt.Errorf("create audit worker pool: %w", err)
	}

	kept := make([]Target, 0, len(targets))
	for _, target := range targets {
		if target.Sink != nil {
			kept = append(kept, target)
		}
	}

	return &AsyncRecorder{
		pool:         pool,
		targets:      kept,
		writeTimeout: timeout,
		logger:       logger,
	}, nil
}

func (r *AsyncRecorder) Record(ctx context.Context, record audit.Record) {
	if len(r.targets) == 0 {
		return
	}
	if record.OccurredAt.IsZero() {
		record.OccurredAt = time.Now().UTC()
	}

	// the write outlives the request that produced it
	detached := context.WithoutCancel(ctx)
	if err := r.pool.Submit(func() { r.deliver(detached, record) }); err != nil {
		result := "rejected"
		if errors.Is(err, ants.ErrPoolOverload) {
			result = "dropped"
		}
		for _, target := range r.targets {
			metrics.AuditRecordsTotal.WithLabelValues(target.Name, result).Inc()
		}
		r.logger.WarnContext(ctx, "audit record not submitted",
			"action", record.Action,
			"event_id", record.EventID,
			"error", err,
		)
	}
}

func (r *AsyncRecorder) deliver(ctx context.Context, record audit.Record) {
	for _, target := range r.targets {
		writeCtx, cancel := context.WithTimeout(ctx, r.writeTimeout)
		err := target.Sink.Write(writeCtx, record)
		cancel()

		if err != nil {
			metrics.AuditRecordsTotal.WithLabelValues(target.Name, "failed").Inc()
			r.logger.WarnContext(ctx, "audit sink write failed",
				"sink", target.Name,
				"action", record.Action,
				"event_id", record.EventID,
				"error", err,
			)
			continue
		}
		metrics.AuditRecordsTotal.WithLabelValues(target.Name, "written").Inc()
	}
}

// Close waits up to timeout for queued records to drain.
func (r *AsyncRecorder) Close(timeout time.Duration) error {
	if err := r.pool.ReleaseTimeout(timeout); err != nil {
		return fmt.Errorf("release audit worker pool: %w", err)
	}
	return nil
}
