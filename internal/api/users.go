package api

import (
	"net/http"

	"ascend/internal/access"
	"ascend/internal/directory"
	"ascend/internal/metrics"
	"ascend/internal/model"
)

// GET /api/users
func (s *HTTPServer) handleListUsers(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("users_list")
	users, err := s.svc.Directory.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

// GET /api/users/{id}
func (s *HTTPServer) handleGetUser(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("users_get")
	u, err := s.svc.Directory.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// POST /api/users
func (s *HTTPServer) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("users_create")
	if _, err := s.svc.Access.RequireOwner(r.Context(), actingUser(r).ID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	var in model.User
	if !decodeJSON(w, r, &in) {
		return
	}
	u, err := s.svc.Directory.Create(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// PATCH /api/users/{id}
func (s *HTTPServer) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("users_update")
	actor := actingUser(r)
	id := r.PathValue("id")
	if actor.ID != id && !actor.IsOwner() {
		s.writeServiceError(w, r, &access.AccessDeniedError{Reason: "you can only edit your own profile"})
		return
	}

	var patch directory.UserPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if !actor.IsOwner() && (patch.Role != nil || patch.ClientAccess != nil) {
		s.writeServiceError(w, r, &access.AccessDeniedError{Reason: "only the owner can change roles and client access"})
		return
	}
	u, err := s.svc.Directory.Update(r.Context(), id, patch)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// DELETE /api/users/{id}
func (s *HTTPServer) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("users_delete")
	actor, err := s.svc.Access.RequireOwner(r.Context(), actingUser(r).ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := s.svc.Directory.Delete(r.Context(), actor.ID, r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/roles
func (s *HTTPServer) handleListRoles(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("roles_list")
	roles, err := s.svc.Directory.Roles(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"roles": roles})
}

// PUT /api/roles/{id}
func (s *HTTPServer) handleSaveRole(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("roles_save")
	if _, err := s.svc.Access.RequireOwner(r.Context(), actingUser(r).ID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	var role model.Role
	if !decodeJSON(w, r, &role) {
		return
	}
	role.ID = r.PathValue("id")
	saved, err := s.svc.Directory.SaveRole(r.Context(), role)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// DELETE /api/roles/{id}
func (s *HTTPServer) handleDeleteRole(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("roles_delete")
	if _, err := s.svc.Access.RequireOwner(r.Context(), actingUser(r).ID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := s.svc.Directory.DeleteRole(r.Context(), r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/clients
func (s *HTTPServer) handleListClients(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("clients_list")
	clients, err := s.svc.Directory.Clients(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"clients": clients})
}

// GET /api/clients/{id}/members
func (s *HTTPServer) handleClientMembers(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("clients_members")
	clientID := r.PathValue("id")
	if _, err := s.svc.Access.RequireClientAccess(r.Context(), actingUser(r).ID, clientID, access.PermView); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	members, err := s.svc.Directory.MembersForClient(r.Context(), clientID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"members": members})
}
