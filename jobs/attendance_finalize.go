package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/mahesh42646/SkylithAdmin-sub001/internal/attendance"
	jobmetrics "github.com/mahesh42646/SkylithAdmin-sub001/internal/jobs"
)

const dateLayout = "2006-01-02"

// AttendanceFinalizeJob adapts the finalizer to an Asynq handler.
type AttendanceFinalizeJob struct {
	finalizer *attendance.Finalizer
	location  *time.Location
	logger    *slog.Logger
	metrics   *jobmetrics.Metrics
}

// NewAttendanceFinalizeJob constructs the handler. The location decides which
// day "yesterday" is when the payload carries no date.
func NewAttendanceFinalizeJob(finalizer *attendance.Finalizer, location *time.Location, logger *slog.Logger, metrics *jobmetrics.Metrics) *AttendanceFinalizeJob {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AttendanceFinalizeJob{finalizer: finalizer, location: location, logger: logger, metrics: metrics}
}

// Handle processes TaskAttendanceFinalize tasks.
func (j *AttendanceFinalizeJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track(TaskAttendanceFinalize)

	var payload AttendanceFinalizePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		_ = tracker.End(err)
		return asynq.SkipRetry
	}

	day, err := j.resolveDay(payload.Date)
	if err != nil {
		j.logger.Error("attendance finalize payload", slog.String("date", payload.Date), slog.Any("error", err))
		_ = tracker.End(err)
		return asynq.SkipRetry
	}

	summary, err := j.finalizer.Run(ctx, day)
	if err != nil {
		j.logger.Error("attendance finalize run", slog.Time("date", day), slog.Any("error", err))
		return tracker.End(err)
	}

	j.logger.Info("attendance finalize done",
		slog.Time("date", summary.Date),
		slog.Int("users", summary.Users),
		slog.Int64("absent", summary.Absent),
		slog.Int64("on_leave", summary.OnLeave),
		slog.Int64("skipped", summary.Skipped),
		slog.Int64("failed", summary.Failed))
	return tracker.End(nil)
}

func (j *AttendanceFinalizeJob) resolveDay(raw string) (time.Time, error) {
	if raw == "" {
		now := time.Now().In(j.location)
		return attendance.Midnight(now.AddDate(0, 0, -1)), nil
	}
	day, err := time.ParseInLocation(dateLayout, raw, j.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return day, nil
}
