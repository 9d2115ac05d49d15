package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/mahesh42646/SkylithAdmin-sub001/internal/shared"
)

// RepositoryPort abstracts event persistence for the service.
type RepositoryPort interface {
	Create(ctx context.Context, ev *Event) error
	Get(ctx context.Context, id int64) (*Event, error)
	Delete(ctx context.Context, id int64) error
	ListByMonth(ctx context.Context, year int, month time.Month) ([]Event, error)
	HolidayOn(ctx context.Context, day time.Time) (bool, error)
}

// AuditPort records audit trail entries.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service implements calendar event management.
type Service struct {
	repo   RepositoryPort
	audit  AuditPort
	logger *slog.Logger
}

func NewService(repo RepositoryPort, audit AuditPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger}
}

// CreateEventInput carries a new calendar event.
type CreateEventInput struct {
	Title       string
	Description string
	Type        EventType
	StartDate   time.Time
	EndDate     time.Time
}

// CreateEvent validates and stores an event.
func (s *Service) CreateEvent(ctx context.Context, actorID int64, in CreateEventInput) (*Event, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrTitleMissing
	}
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, in.Type)
	}
	start := midnight(in.StartDate)
	end := midnight(in.EndDate)
	if end.Before(start) {
		return nil, ErrInvalidRange
	}

	ev := &Event{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Type:        in.Type,
		StartDate:   start,
		EndDate:     end,
		CreatedBy:   actorID,
	}
	if err := s.repo.Create(ctx, ev); err != nil {
		return nil, fmt.Errorf("create calendar event: %w", err)
	}
	s.recordAudit(ctx, actorID, "calendar.create", ev.ID, map[string]any{"title": ev.Title, "type": ev.Type})
	return ev, nil
}

// GetEvent returns a single event.
func (s *Service) GetEvent(ctx context.Context, id int64) (*Event, error) {
	return s.repo.Get(ctx, id)
}

// DeleteEvent removes an event.
func (s *Service) DeleteEvent(ctx context.Context, actorID, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "calendar.delete", id, nil)
	return nil
}

// ListMonth returns events overlapping the given month.
func (s *Service) ListMonth(ctx context.Context, year int, month time.Month) ([]Event, error) {
	return s.repo.ListByMonth(ctx, year, month)
}

// IsHoliday reports whether the day falls on a public or optional holiday.
func (s *Service) IsHoliday(ctx context.Context, day time.Time) (bool, error) {
	return s.repo.HolidayOn(ctx, midnight(day))
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	log := shared.AuditLog{ActorID: actorID, Action: action, Entity: "calendar_event", EntityID: strconv.FormatInt(id, 10), Meta: meta}
	if err := s.audit.Record(ctx, log); err != nil {
		s.logger.Warn("record calendar audit", slog.Int64("event_id", id), slog.Any("error", err))
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
