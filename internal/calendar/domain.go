package calendar

import (
	"fmt"
	"time"

	"github.com/mahesh42646/SkylithAdmin-sub001/internal/platform/httpx"
)

// EventType enumerates calendar event categories. Only public_holiday events
// influence attendance finalization.
type EventType string

const (
	TypePublicHoliday   EventType = "public_holiday"
	TypeOptionalHoliday EventType = "optional_holiday"
	TypeCompanyEvent    EventType = "company_event"
	TypeOther           EventType = "other"
)

// Valid reports whether the event type is known.
func (t EventType) Valid() bool {
	switch t {
	case TypePublicHoliday, TypeOptionalHoliday, TypeCompanyEvent, TypeOther:
		return true
	}
	return false
}

// Event is a company calendar entry. StartDate and EndDate are inclusive
// calendar days.
type Event struct {
	ID          int64
	Title       string
	Description string
	Type        EventType
	StartDate   time.Time
	EndDate     time.Time
	CreatedBy   int64
	CreatedAt   time.Time
}

var (
	ErrNotFound     = fmt.Errorf("%w: calendar event", httpx.ErrNotFound)
	ErrInvalidRange = fmt.Errorf("%w: end date before start date", httpx.ErrValidation)
	ErrInvalidType  = fmt.Errorf("%w: unknown event type", httpx.ErrValidation)
	ErrTitleMissing = fmt.Errorf("%w: title required", httpx.ErrValidation)
)
