package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryCalendarRepo struct {
	nextID int64
	byID   map[int64]*Event
}

func newMemoryCalendarRepo() *memoryCalendarRepo {
	return &memoryCalendarRepo{nextID: 1, byID: map[int64]*Event{}}
}

func (m *memoryCalendarRepo) Create(_ context.Context, ev *Event) error {
	ev.ID = m.nextID
	m.nextID++
	ev.CreatedAt = time.Now()
	cp := *ev
	m.byID[ev.ID] = &cp
	return nil
}

func (m *memoryCalendarRepo) Get(_ context.Context, id int64) (*Event, error) {
	ev, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *ev
	return &cp, nil
}

func (m *memoryCalendarRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memoryCalendarRepo) ListByMonth(_ context.Context, year int, month time.Month) ([]Event, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	var out []Event
	for _, ev := range m.byID {
		if !ev.StartDate.After(last) && !ev.EndDate.Before(first) {
			out = append(out, *ev)
		}
	}
	return out, nil
}

func (m *memoryCalendarRepo) HolidayOn(_ context.Context, day time.Time) (bool, error) {
	for _, ev := range m.byID {
		if (ev.Type == TypePublicHoliday || ev.Type == TypeOptionalHoliday) && !day.Before(ev.StartDate) && !day.After(ev.EndDate) {
			return true, nil
		}
	}
	return false, nil
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCreateEventValidation(t *testing.T) {
	svc := NewService(newMemoryCalendarRepo(), nil, nil)
	ctx := context.Background()

	_, err := svc.CreateEvent(ctx, 1, CreateEventInput{Title: "  ", Type: TypeCompanyEvent, StartDate: date("2026-01-26"), EndDate: date("2026-01-26")})
	require.ErrorIs(t, err, ErrTitleMissing)

	_, err = svc.CreateEvent(ctx, 1, CreateEventInput{Title: "Offsite", Type: "party", StartDate: date("2026-01-26"), EndDate: date("2026-01-26")})
	require.ErrorIs(t, err, ErrInvalidType)

	_, err = svc.CreateEvent(ctx, 1, CreateEventInput{Title: "Offsite", Type: TypeCompanyEvent, StartDate: date("2026-01-27"), EndDate: date("2026-01-26")})
	require.ErrorIs(t, err, ErrInvalidRange)

	ev, err := svc.CreateEvent(ctx, 1, CreateEventInput{Title: " Republic Day ", Type: TypePublicHoliday, StartDate: date("2026-01-26"), EndDate: date("2026-01-26")})
	require.NoError(t, err)
	require.Equal(t, "Republic Day", ev.Title)
	require.Equal(t, int64(1), ev.CreatedBy)
}

func TestIsHoliday(t *testing.T) {
	repo := newMemoryCalendarRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	_, err := svc.CreateEvent(ctx, 1, CreateEventInput{Title: "Diwali", Type: TypePublicHoliday, StartDate: date("2026-11-08"), EndDate: date("2026-11-09")})
	require.NoError(t, err)
	_, err = svc.CreateEvent(ctx, 1, CreateEventInput{Title: "Hack week", Type: TypeCompanyEvent, StartDate: date("2026-11-10"), EndDate: date("2026-11-14")})
	require.NoError(t, err)
	_, err = svc.CreateEvent(ctx, 1, CreateEventInput{Title: "Chhath", Type: TypeOptionalHoliday, StartDate: date("2026-11-16"), EndDate: date("2026-11-16")})
	require.NoError(t, err)

	holiday, err := svc.IsHoliday(ctx, date("2026-11-09"))
	require.NoError(t, err)
	require.True(t, holiday)

	// Optional holidays also count for finalization purposes.
	holiday, err = svc.IsHoliday(ctx, date("2026-11-16"))
	require.NoError(t, err)
	require.True(t, holiday)

	// Company events never count as holidays.
	holiday, err = svc.IsHoliday(ctx, date("2026-11-11"))
	require.NoError(t, err)
	require.False(t, holiday)
}

func TestListMonthOverlap(t *testing.T) {
	repo := newMemoryCalendarRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	_, err := svc.CreateEvent(ctx, 1, CreateEventInput{Title: "Year end freeze", Type: TypeOther, StartDate: date("2026-12-28"), EndDate: date("2027-01-03")})
	require.NoError(t, err)

	dec, err := svc.ListMonth(ctx, 2026, time.December)
	require.NoError(t, err)
	require.Len(t, dec, 1)

	jan, err := svc.ListMonth(ctx, 2027, time.January)
	require.NoError(t, err)
	require.Len(t, jan, 1)

	feb, err := svc.ListMonth(ctx, 2027, time.February)
	require.NoError(t, err)
	require.Empty(t, feb)
}

func TestDeleteEvent(t *testing.T) {
	repo := newMemoryCalendarRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	ev, err := svc.CreateEvent(ctx, 1, CreateEventInput{Title: "Townhall", Type: TypeCompanyEvent, StartDate: date("2026-05-01"), EndDate: date("2026-05-01")})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEvent(ctx, 1, ev.ID))
	require.ErrorIs(t, svc.DeleteEvent(ctx, 1, ev.ID), ErrNotFound)
}
