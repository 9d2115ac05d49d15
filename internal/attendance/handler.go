package attendance

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mahesh42646/SkylithAdmin-sub001/internal/platform/httpx"
	"github.com/mahesh42646/SkylithAdmin-sub001/internal/rbac"
)

const dateLayout = "2006-01-02"

// Handler manages attendance endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	mw      rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, mw: mw}
}

// MountRoutes registers attendance routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireAll(rbac.PermMarkAttendance))
		r.Post("/check-in", h.checkIn)
		r.Post("/check-out", h.checkOut)
	})
	r.Get("/mine", h.myHistory)
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireAny(rbac.PermViewAttendance, rbac.PermManageAttendance))
		r.Get("/users/{userID}", h.userHistory)
	})
}

type recordResponse struct {
	ID       int64   `json:"id"`
	UserID   int64   `json:"user_id"`
	Date     string  `json:"date"`
	Status   string  `json:"status"`
	CheckIn  *string `json:"check_in,omitempty"`
	CheckOut *string `json:"check_out,omitempty"`
}

func (h *Handler) checkIn(w http.ResponseWriter, r *http.Request) {
	actor, _ := rbac.PrincipalFromContext(r.Context())
	rec, err := h.service.CheckIn(r.Context(), actor.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toRecordResponse(*rec))
}

func (h *Handler) checkOut(w http.ResponseWriter, r *http.Request) {
	actor, _ := rbac.PrincipalFromContext(r.Context())
	rec, err := h.service.CheckOut(r.Context(), actor.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toRecordResponse(*rec))
}

func (h *Handler) myHistory(w http.ResponseWriter, r *http.Request) {
	actor, _ := rbac.PrincipalFromContext(r.Context())
	h.respondHistory(w, r, actor.UserID)
}

func (h *Handler) userHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid userID")
		return
	}
	h.respondHistory(w, r, userID)
}

func (h *Handler) respondHistory(w http.ResponseWriter, r *http.Request, userID int64) {
	now := time.Now()
	from := now.AddDate(0, -1, 0)
	to := now
	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid from")
			return
		}
		from = parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid to")
			return
		}
		to = parsed
	}
	if to.Before(from) {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "to before from")
		return
	}

	list, err := h.service.History(r.Context(), userID, from, to)
	if err != nil {
		h.logger.Error("attendance history", slog.Int64("user_id", userID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]recordResponse, len(list))
	for i, rec := range list {
		out[i] = toRecordResponse(rec)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"records": out})
}

func toRecordResponse(rec Record) recordResponse {
	out := recordResponse{
		ID:     rec.ID,
		UserID: rec.UserID,
		Date:   rec.Date.Format(dateLayout),
		Status: string(rec.Status),
	}
	if rec.CheckIn != nil {
		v := rec.CheckIn.Format(time.RFC3339)
		out.CheckIn = &v
	}
	if rec.CheckOut != nil {
		v := rec.CheckOut.Format(time.RFC3339)
		out.CheckOut = &v
	}
	return out
}
