package leave

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

// Handler manages leave request endpoints.
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

// MountRoutes registers leave routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireAny(rbac.PermApplyLeave, rbac.PermManageLeaves))
		r.Post("/", h.submit)
		r.Get("/mine", h.listMine)
	})
	r.Get("/{leaveID}", h.get)
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireAny(rbac.PermViewLeaves, rbac.PermManageLeaves))
		r.Get("/pending", h.listPending)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireAll(rbac.PermManageLeaves))
		r.Post("/{leaveID}/approve", h.approve)
		r.Post("/{leaveID}/reject", h.reject)
	})
}

type submitRequest struct {
	Type      string `json:"type" validate:"required"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
	Reason    string `json:"reason" validate:"max=1024"`
}

type rejectRequest struct {
	Reason string `json:"reason" validate:"max=1024"`
}

type leaveResponse struct {
	ID             int64   `json:"id"`
	UserID         int64   `json:"user_id"`
	Type           string  `json:"type"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	Reason         string  `json:"reason"`
	Status         string  `json:"status"`
	DecidedBy      *int64  `json:"decided_by,omitempty"`
	DecisionReason string  `json:"decision_reason,omitempty"`
	DecidedAt      *string `json:"decided_at,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
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
	actor, _ := rbac.PrincipalFromContext(r.Context())
	out, err := h.service.Submit(r.Context(), SubmitInput{
		UserID:    actor.UserID,
		Type:      Type(req.Type),
		StartDate: start,
		EndDate:   end,
		Reason:    req.Reason,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toLeaveResponse(*out))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "leaveID")
	if !ok {
		return
	}
	actor, _ := rbac.PrincipalFromContext(r.Context())
	out, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toLeaveResponse(*out))
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	actor, _ := rbac.PrincipalFromContext(r.Context())
	list, err := h.service.ListMine(r.Context(), actor)
	if err != nil {
		h.logger.Error("list own leaves", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"requests": toLeaveResponses(list)})
}

func (h *Handler) listPending(w http.ResponseWriter, r *http.Request) {
	actor, _ := rbac.PrincipalFromContext(r.Context())
	list, err := h.service.ListPending(r.Context(), actor)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"requests": toLeaveResponses(list)})
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "leaveID")
	if !ok {
		return
	}
	actor, _ := rbac.PrincipalFromContext(r.Context())
	out, err := h.service.Approve(r.Context(), actor, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toLeaveResponse(*out))
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "leaveID")
	if !ok {
		return
	}
	var req rejectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed body")
		return
	}
	actor, _ := rbac.PrincipalFromContext(r.Context())
	out, err := h.service.Reject(r.Context(), actor, id, req.Reason)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toLeaveResponse(*out))
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid "+name)
		return 0, false
	}
	return id, true
}

func toLeaveResponses(list []Request) []leaveResponse {
	out := make([]leaveResponse, len(list))
	for i, req := range list {
		out[i] = toLeaveResponse(req)
	}
	return out
}

func toLeaveResponse(req Request) leaveResponse {
	out := leaveResponse{
		ID:             req.ID,
		UserID:         req.UserID,
		Type:           string(req.Type),
		StartDate:      req.StartDate.Format(dateLayout),
		EndDate:        req.EndDate.Format(dateLayout),
		Reason:         req.Reason,
		Status:         string(req.Status),
		DecidedBy:      req.DecidedBy,
		DecisionReason: req.DecisionReason,
		CreatedAt:      req.CreatedAt.Format(time.RFC3339),
	}
	if req.DecidedAt != nil {
		at := req.DecidedAt.Format(time.RFC3339)
		out.DecidedAt = &at
	}
	return out
}
