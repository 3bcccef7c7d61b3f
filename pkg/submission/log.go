package submission

import (
	"context"

	"go.uber.org/zap"
)

// LogSink writes submissions to a logger. It is the default sink.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink constructs a LogSink; a nil logger discards output.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Submit implements Sink.
func (s *LogSink) Submit(_ context.Context, sub Submission) (Receipt, error) {
	s.logger.Info("survey submitted",
		zap.String("id", sub.ID),
		zap.Time("submitted_at", sub.SubmittedAt),
		zap.String("title", sub.Title()),
		zap.Float64("overall", sub.Scores.Overall),
		zap.Float64("enps", sub.Scores.ENPS),
		zap.Any("values", sub.Values),
	)
	return NewReceipt("log", sub), nil
}
