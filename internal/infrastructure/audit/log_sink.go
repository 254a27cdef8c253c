package audit

import (
	"context"

	"github.com/riskibarqy/club-events/internal/domain/audit"
	"github.com/riskibarqy/club-events/internal/platform/logging"
)

// LogSink writes audit records to the structured log.
type LogSink struct {
	logger *logging.Logger
}

func NewLogSink(logger *logging.Logger) *LogSink {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSink{logger: logger.With("component", "audit")}
}

func (s *LogSink) Write(ctx context.Context, record audit.Record) error {
	s.logger.InfoContext(ctx, "audit record",
		"action", record.Action,
		"actor_id", record.ActorID,
		"event_id", record.EventID,
		"occurred_at", record.OccurredAt,
		"metadata", record.Metadata,
	)
	return nil
}
