package calendar

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mahesh42646/SkylithAdmin-sub001/internal/platform/httpx"
	"github.com/mahesh42646/SkylithAdmin-sub001/internal/rbac"
)

const dateLayout = "2006-01-02"

// Handler manages calendar endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	mw       rbac.Middleware
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, mw: mw, validate: validator.New()}
}

// MountRoutes registers calendar routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireAny(rbac.PermViewCalendar, rbac.PermManageCalendar))
		r.Get("/", h.listMonth)
		r.Get("/{eventID}", h.getEvent)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireAll(rbac.PermManageCalendar))
		r.Post("/", h.createEvent)
		r.Delete("/{eventID}", h.deleteEvent)
	})
}

type createEventRequest struct {
	Title       string `json:"title" validate:"required,max=256"`
	Description string `json:"description" validate:"max=1024"`
	Type        string `json:"type" validate:"required"`
	StartDate   string `json:"start_date" validate:"required"`
	EndDate     string `json:"end_date" validate:"required"`
}

type eventResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	CreatedBy   int64  `json:"created_by"`
}

func (h *Handler) listMonth(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year, month := now.Year(), now.Month()
	if y := r.URL.Query().Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil || parsed < 1970 || parsed > 9999 {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid year")
			return
		}
		year = parsed
	}
	if m := r.URL.Query().Get("month"); m != "" {
		parsed, err := strconv.Atoi(m)
		if err != nil || parsed < 1 || parsed > 12 {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid month")
			return
		}
		month = time.Month(parsed)
	}
	list, err := h.service.ListMonth(r.Context(), year, month)
	if err != nil {
		h.logger.Error("list calendar events", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]eventResponse, len(list))
	for i, ev := range list {
		out[i] = toEventResponse(ev)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"events": out})
}

func (h *Handler) getEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "eventID")
	if !ok {
		return
	}
	ev, err := h.service.GetEvent(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toEventResponse(*ev))
}

func (h *Handler) createEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid start_date")
		return
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid end_date")
		return
	}
	ev, err := h.service.CreateEvent(r.Context(), h.actorID(r), CreateEventInput{
		Title:       req.Title,
		Description: req.Description,
		Type:        EventType(req.Type),
		StartDate:   start,
		EndDate:     end,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toEventResponse(*ev))
}

func (h *Handler) deleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "eventID")
	if !ok {
		return
	}
	if err := h.service.DeleteEvent(r.Context(), h.actorID(r), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid "+name)
		return 0, false
	}
	return id, true
}

func (h *Handler) actorID(r *http.Request) int64 {
	if principal, ok := rbac.PrincipalFromContext(r.Context()); ok {
		return principal.UserID
	}
	return 0
}

func toEventResponse(ev Event) eventResponse {
	return eventResponse{
		ID:          ev.ID,
		Title:       ev.Title,
		Description: ev.Description,
		Type:        string(ev.Type),
		StartDate:   ev.StartDate.Format(dateLayout),
		EndDate:     ev.EndDate.Format(dateLayout),
		CreatedBy:   ev.CreatedBy,
	}
}
