package web

import (
	"net/http"
	"time"

	roledomain "compass/internal/domain/role"
)

type roleJSON struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	SortOrder   int       `json:"sortOrder"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toRoleJSON(r roledomain.Role) roleJSON {
	return roleJSON{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		SortOrder:   r.SortOrder,
		Active:      r.Active,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// handleListRoles handles GET /api/roles?active=1
func handleListRoles(w http.ResponseWriter, r *http.Request) {
	roles := deps.Session.Roles()
	if err := roles.Load(r.Context()); err != nil {
		respondError(w, err)
		return
	}
	list := roles.Roles()
	if r.URL.Query().Get("active") != "" {
		list = roles.Active()
	}
	out := make([]roleJSON, 0, len(list))
	for _, role := range list {
		out = append(out, toRoleJSON(role))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCreateRole handles POST /api/roles
func handleCreateRole(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	created, err := deps.Session.Roles().Add(r.Context(), input.Name, input.Description)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRoleJSON(created))
}

// handleUpdateRole handles PUT /api/roles/{id}
func handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var input struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		SortOrder   int    `json:"sortOrder"`
		Active      bool   `json:"active"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	roles := deps.Session.Roles()
	if err := roles.Load(r.Context()); err != nil {
		respondError(w, err)
		return
	}
	var existing *roledomain.Role
	for _, role := range roles.Roles() {
		if role.ID == id {
			existing = &role
			break
		}
	}
	if existing == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	existing.Name = input.Name
	existing.Description = input.Description
	existing.SortOrder = input.SortOrder
	existing.Active = input.Active
	if err := roles.Update(r.Context(), *existing); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoleJSON(*existing))
}

// handleDeleteRole handles DELETE /api/roles/{id}
func handleDeleteRole(w http.ResponseWriter, r *http.Request) {
	roles := deps.Session.Roles()
	if err := roles.Load(r.Context()); err != nil {
		respondError(w, err)
		return
	}
	if err := roles.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
