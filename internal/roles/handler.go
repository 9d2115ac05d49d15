package roles

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mahesh42646/SkylithAdmin-sub001/internal/platform/httpx"
	"github.com/mahesh42646/SkylithAdmin-sub001/internal/rbac"
)

// Handler manages role management endpoints.
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

// MountRoutes registers role routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireAny(rbac.PermManageRoles))
		r.Get("/", h.listRoles)
		r.Get("/{roleID}", h.getRole)
		r.Post("/", h.createRole)
		r.Post("/{roleID}/deactivate", h.deactivateRole)
		r.Post("/{roleID}/sub-roles", h.addSubRole)
		r.Delete("/{roleID}/sub-roles/{subRoleID}", h.deleteSubRole)
	})
}

type createRoleRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=64"`
	DisplayName string   `json:"display_name" validate:"max=128"`
	Permissions []string `json:"permissions" validate:"required"`
}

type addSubRoleRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=64"`
	Description string   `json:"description" validate:"max=512"`
	Permissions []string `json:"permissions"`
}

type subRoleResponse struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

type roleResponse struct {
	ID                 int64             `json:"id"`
	Name               string            `json:"name"`
	DisplayName        string            `json:"display_name"`
	DefaultPermissions []string          `json:"default_permissions"`
	IsActive           bool              `json:"is_active"`
	SubRoles           []subRoleResponse `json:"sub_roles"`
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListRoles(r.Context())
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]roleResponse, len(list))
	for i, role := range list {
		out[i] = toRoleResponse(role)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": out})
}

func (h *Handler) getRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "roleID")
	if !ok {
		return
	}
	role, err := h.service.GetRole(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toRoleResponse(role))
}

func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	role, err := h.service.CreateRole(r.Context(), h.actorID(r), CreateRoleInput{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Permissions: req.Permissions,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toRoleResponse(role))
}

func (h *Handler) deactivateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "roleID")
	if !ok {
		return
	}
	if err := h.service.DeactivateRole(r.Context(), h.actorID(r), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "deactivated"})
}

func (h *Handler) addSubRole(w http.ResponseWriter, r *http.Request) {
	roleID, ok := h.pathID(w, r, "roleID")
	if !ok {
		return
	}
	var req addSubRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	sr, err := h.service.AddSubRole(r.Context(), h.actorID(r), roleID, AddSubRoleInput{
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toSubRoleResponse(sr))
}

func (h *Handler) deleteSubRole(w http.ResponseWriter, r *http.Request) {
	roleID, ok := h.pathID(w, r, "roleID")
	if !ok {
		return
	}
	subRoleID, ok := h.pathID(w, r, "subRoleID")
	if !ok {
		return
	}
	if err := h.service.DeleteSubRole(r.Context(), h.actorID(r), roleID, subRoleID); err != nil {
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

func toRoleResponse(role Role) roleResponse {
	out := roleResponse{
		ID:                 role.ID,
		Name:               role.Name,
		DisplayName:        role.DisplayName,
		DefaultPermissions: role.DefaultPermissions,
		IsActive:           role.IsActive,
		SubRoles:           make([]subRoleResponse, len(role.SubRoles)),
	}
	for i, sr := range role.SubRoles {
		out.SubRoles[i] = toSubRoleResponse(sr)
	}
	return out
}

func toSubRoleResponse(sr SubRole) subRoleResponse {
	return subRoleResponse{ID: sr.ID, Name: sr.Name, Description: sr.Description, Permissions: sr.Permissions}
}
