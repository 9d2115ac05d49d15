package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/mahesh42646/SkylithAdmin-sub001/internal/attendance"
)

type stubAttendanceRepo struct {
	finalized map[string]attendance.Status
}

func (s *stubAttendanceRepo) FindOrCreate(context.Context, int64, time.Time) (*attendance.Record, error) {
	return nil, attendance.ErrNotFound
}

func (s *stubAttendanceRepo) Get(context.Context, int64, time.Time) (*attendance.Record, error) {
	return nil, attendance.ErrNotFound
}

func (s *stubAttendanceRepo) SetCheckIn(context.Context, int64, time.Time) (bool, error) {
	return false, nil
}

func (s *stubAttendanceRepo) SetCheckOut(context.Context, int64, time.Time) (bool, error) {
	return false, nil
}

func (s *stubAttendanceRepo) Finalize(_ context.Context, userID int64, day time.Time, status attendance.Status) (bool, error) {
	s.finalized[day.Format("2006-01-02")] = status
	return true, nil
}

func (s *stubAttendanceRepo) ListForUser(context.Context, int64, time.Time, time.Time) ([]attendance.Record, error) {
	return nil, nil
}

type stubUsers struct{}

func (stubUsers) ListActiveIDs(context.Context) ([]int64, error) { return []int64{1}, nil }

type stubLeaves struct{}

func (stubLeaves) UsersOnApprovedLeave(context.Context, time.Time) (map[int64]struct{}, error) {
	return nil, nil
}

type stubHolidays struct{}

func (stubHolidays) HolidayOn(context.Context, time.Time) (bool, error) { return false, nil }

func newTestJob(repo *stubAttendanceRepo) *AttendanceFinalizeJob {
	fin := attendance.NewFinalizer(repo, stubUsers{}, stubLeaves{}, stubHolidays{}, nil, time.Second)
	return NewAttendanceFinalizeJob(fin, time.UTC, nil, nil)
}

func TestHandleFinalizeWithExplicitDate(t *testing.T) {
	repo := &stubAttendanceRepo{finalized: map[string]attendance.Status{}}
	job := newTestJob(repo)

	task, err := NewAttendanceFinalizeTask(AttendanceFinalizePayload{Date: "2026-03-02"})
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, attendance.StatusAbsent, repo.finalized["2026-03-02"])
}

func TestHandleFinalizeDefaultsToYesterday(t *testing.T) {
	repo := &stubAttendanceRepo{finalized: map[string]attendance.Status{}}
	job := newTestJob(repo)

	task, err := NewAttendanceFinalizeTask(AttendanceFinalizePayload{})
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	require.Contains(t, repo.finalized, yesterday)
}

func TestHandleFinalizeBadPayloadSkipsRetry(t *testing.T) {
	repo := &stubAttendanceRepo{finalized: map[string]attendance.Status{}}
	job := newTestJob(repo)

	err := job.Handle(context.Background(), asynq.NewTask(TaskAttendanceFinalize, []byte("{not json")))
	require.ErrorIs(t, err, asynq.SkipRetry)

	err = job.Handle(context.Background(), asynq.NewTask(TaskAttendanceFinalize, []byte(`{"date":"03/02/2026"}`)))
	require.ErrorIs(t, err, asynq.SkipRetry)
	require.Empty(t, repo.finalized)
}
