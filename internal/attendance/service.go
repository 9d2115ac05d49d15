package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// RepositoryPort abstracts attendance persistence for the service and the
// finalizer.
type RepositoryPort interface {
	FindOrCreate(ctx context.Context, userID int64, day time.Time) (*Record, error)
	Get(ctx context.Context, userID int64, day time.Time) (*Record, error)
	SetCheckIn(ctx context.Context, id int64, at time.Time) (bool, error)
	SetCheckOut(ctx context.Context, id int64, at time.Time) (bool, error)
	Finalize(ctx context.Context, userID int64, day time.Time, status Status) (bool, error)
	ListForUser(ctx context.Context, userID int64, from, to time.Time) ([]Record, error)
}

// Service implements daily check-in and check-out.
type Service struct {
	repo   RepositoryPort
	loc    *time.Location
	now    func() time.Time
	logger *slog.Logger
}

func NewService(repo RepositoryPort, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, loc: loc, now: time.Now, logger: logger}
}

// CheckIn marks the user present for today.
func (s *Service) CheckIn(ctx context.Context, userID int64) (*Record, error) {
	now := s.now().In(s.loc)
	rec, err := s.repo.FindOrCreate(ctx, userID, Midnight(now))
	if err != nil {
		return nil, fmt.Errorf("find attendance record: %w", err)
	}
	ok, err := s.repo.SetCheckIn(ctx, rec.ID, now)
	if err != nil {
		return nil, fmt.Errorf("check in: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyCheckedIn
	}
	return s.repo.Get(ctx, userID, Midnight(now))
}

// CheckOut stamps the user's check-out for today.
func (s *Service) CheckOut(ctx context.Context, userID int64) (*Record, error) {
	now := s.now().In(s.loc)
	rec, err := s.repo.Get(ctx, userID, Midnight(now))
	if err != nil {
		return nil, err
	}
	ok, err := s.repo.SetCheckOut(ctx, rec.ID, now)
	if err != nil {
		return nil, fmt.Errorf("check out: %w", err)
	}
	if !ok {
		if rec.CheckOut != nil {
			return nil, ErrAlreadyCheckedOut
		}
		return nil, ErrNotCheckedIn
	}
	return s.repo.Get(ctx, userID, Midnight(now))
}

// History returns the user's records inside the inclusive date range.
func (s *Service) History(ctx context.Context, userID int64, from, to time.Time) ([]Record, error) {
	return s.repo.ListForUser(ctx, userID, Midnight(from), Midnight(to))
}

// Midnight truncates a time to its calendar day, keeping the location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
