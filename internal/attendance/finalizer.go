package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// UserDirectory lists the users the finalizer must settle.
type UserDirectory interface {
	ListActiveIDs(ctx context.Context) ([]int64, error)
}

// LeaveLookup reports which users have an approved leave spanning a day.
type LeaveLookup interface {
	UsersOnApprovedLeave(ctx context.Context, day time.Time) (map[int64]struct{}, error)
}

// HolidayLookup reports whether a day is a company-observed holiday.
type HolidayLookup interface {
	HolidayOn(ctx context.Context, day time.Time) (bool, error)
}

// Summary is the outcome of one finalizer run.
type Summary struct {
	Date    time.Time
	Users   int
	Absent  int64
	OnLeave int64
	Skipped int64
	Failed  int64
}

// Finalizer settles unmarked attendance for a finished day. Users with an
// approved leave become on_leave; on holidays everyone else stays
// unmarked; otherwise unmarked means absent. Records that already left the
// unmarked state are never touched, so reruns are safe.
type Finalizer struct {
	repo       RepositoryPort
	users      UserDirectory
	leaves     LeaveLookup
	holidays   HolidayLookup
	logger     *slog.Logger
	userBudget time.Duration
	limit      int
}

func NewFinalizer(repo RepositoryPort, users UserDirectory, leaves LeaveLookup, holidays HolidayLookup, logger *slog.Logger, userBudget time.Duration) *Finalizer {
	if logger == nil {
		logger = slog.Default()
	}
	if userBudget <= 0 {
		userBudget = 5 * time.Second
	}
	return &Finalizer{
		repo:       repo,
		users:      users,
		leaves:     leaves,
		holidays:   holidays,
		logger:     logger,
		userBudget: userBudget,
		limit:      8,
	}
}

// Run settles the given day for every active user. A failure for one user is
// logged and counted but does not stop the run; only failing to read the user
// list or the day's context aborts the job.
func (f *Finalizer) Run(ctx context.Context, day time.Time) (Summary, error) {
	day = Midnight(day)
	summary := Summary{Date: day}

	userIDs, err := f.users.ListActiveIDs(ctx)
	if err != nil {
		return summary, fmt.Errorf("list active users: %w", err)
	}
	summary.Users = len(userIDs)
	if len(userIDs) == 0 {
		return summary, nil
	}

	onLeave, err := f.leaves.UsersOnApprovedLeave(ctx, day)
	if err != nil {
		return summary, fmt.Errorf("list users on leave: %w", err)
	}
	holiday, err := f.holidays.HolidayOn(ctx, day)
	if err != nil {
		return summary, fmt.Errorf("check holiday: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.limit)
	for _, userID := range userIDs {
		userID := userID
		g.Go(func() error {
			if err := f.finalizeUser(ctx, day, userID, onLeave, holiday, &summary); err != nil {
				f.logger.Error("finalize attendance",
					slog.Int64("user_id", userID),
					slog.Time("date", day),
					slog.Any("error", err))
				atomic.AddInt64(&summary.Failed, 1)
			}
			return nil
		})
	}
	_ = g.Wait()

	return summary, nil
}

func (f *Finalizer) finalizeUser(ctx context.Context, day time.Time, userID int64, onLeave map[int64]struct{}, holiday bool, summary *Summary) error {
	ctx, cancel := context.WithTimeout(ctx, f.userBudget)
	defer cancel()

	if _, isOnLeave := onLeave[userID]; isOnLeave {
		changed, err := f.repo.Finalize(ctx, userID, day, StatusOnLeave)
		if err != nil {
			return err
		}
		if changed {
			atomic.AddInt64(&summary.OnLeave, 1)
		} else {
			atomic.AddInt64(&summary.Skipped, 1)
		}
		return nil
	}

	if holiday {
		// Holidays leave the record unmarked unless leave already claimed it.
		atomic.AddInt64(&summary.Skipped, 1)
		return nil
	}

	changed, err := f.repo.Finalize(ctx, userID, day, StatusAbsent)
	if err != nil {
		return err
	}
	if changed {
		atomic.AddInt64(&summary.Absent, 1)
	} else {
		atomic.AddInt64(&summary.Skipped, 1)
	}
	return nil
}
