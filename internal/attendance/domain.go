package attendance

import (
	"fmt"
	"time"

	"github.com/mahesh42646/SkylithAdmin-sub001/internal/platform/httpx"
)

// Status enumerates daily attendance states. Every record starts unmarked;
// check-in sets present, the nightly finalizer settles the rest.
type Status string

const (
	StatusPresent  Status = "present"
	StatusAbsent   Status = "absent"
	StatusOnLeave  Status = "on_leave"
	StatusUnmarked Status = "unmarked"
)

// Record is one user's attendance for one calendar day.
type Record struct {
	ID       int64
	UserID   int64
	Date     time.Time
	Status   Status
	CheckIn  *time.Time
	CheckOut *time.Time
}

var (
	ErrNotFound          = fmt.Errorf("%w: attendance record", httpx.ErrNotFound)
	ErrAlreadyCheckedIn  = fmt.Errorf("%w: already checked in today", httpx.ErrConflict)
	ErrNotCheckedIn      = fmt.Errorf("%w: no open check-in today", httpx.ErrConflict)
	ErrAlreadyCheckedOut = fmt.Errorf("%w: already checked out today", httpx.ErrConflict)
)
