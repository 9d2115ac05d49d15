package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mahesh42646/SkylithAdmin-sub001/internal/platform/httpx"
)

// PermissionsHandler exposes the static permission catalog.
type PermissionsHandler struct {
	mw Middleware
}

// NewPermissionsHandler builds the handler.
func NewPermissionsHandler(mw Middleware) *PermissionsHandler {
	return &PermissionsHandler{mw: mw}
}

// MountRoutes registers catalog routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireAny(PermManageRoles))
		r.Get("/", h.listGroups)
	})
}

type groupResponse struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

func (h *PermissionsHandler) listGroups(w http.ResponseWriter, r *http.Request) {
	catalog := Groups()
	out := make([]groupResponse, len(catalog))
	for i, g := range catalog {
		out[i] = groupResponse{Name: g.Name, Permissions: g.Permissions}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"groups": out})
}
