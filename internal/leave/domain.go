package leave

import (
	"fmt"
	"time"

	"github.com/mahesh42646/SkylithAdmin-sub001/internal/platform/httpx"
)

// Type enumerates leave categories.
type Type string

const (
	TypeAnnual Type = "annual"
	TypeSick   Type = "sick"
	TypeCasual Type = "casual"
	TypeUnpaid Type = "unpaid"
	TypeOther  Type = "other"
)

// Valid reports whether the type is one of the known categories.
func (t Type) Valid() bool {
	switch t {
	case TypeAnnual, TypeSick, TypeCasual, TypeUnpaid, TypeOther:
		return true
	}
	return false
}

// Status enumerates lifecycle states. pending is initial; approved and
// rejected are terminal and immutable.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Request is a leave request record.
type Request struct {
	ID             int64
	UserID         int64
	Type           Type
	StartDate      time.Time
	EndDate        time.Time
	Reason         string
	Status         Status
	DecidedBy      *int64
	DecisionReason string
	CreatedAt      time.Time
	DecidedAt      *time.Time
}

// Covers reports whether the request spans the given calendar day.
func (r Request) Covers(day time.Time) bool {
	d := day.Truncate(24 * time.Hour)
	return !d.Before(r.StartDate.Truncate(24*time.Hour)) && !d.After(r.EndDate.Truncate(24*time.Hour))
}

var (
	ErrNotFound       = fmt.Errorf("%w: leave request", httpx.ErrNotFound)
	ErrForbidden      = fmt.Errorf("%w: manage_leaves required", httpx.ErrForbidden)
	ErrAlreadyDecided = fmt.Errorf("%w: leave request already decided", httpx.ErrConflict)
	ErrInvalidRange   = fmt.Errorf("%w: end date before start date", httpx.ErrValidation)
	ErrInvalidType    = fmt.Errorf("%w: unknown leave type", httpx.ErrValidation)
)
