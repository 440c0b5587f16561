package api

import (
	"net/http"

	"ascend/internal/access"
	"ascend/internal/contracts"
	"ascend/internal/metrics"
	"ascend/internal/model"
)

// GET /api/contracts?client_id=
func (s *HTTPServer) handleListContracts(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("contracts_list")
	u := actingUser(r)
	clientID := r.URL.Query().Get("client_id")
	if clientID != "" && !access.HasClientAccess(&u, clientID, access.PermView) {
		s.writeServiceError(w, r, &access.AccessDeniedError{Reason: "no view access to this client"})
		return
	}

	list, err := s.svc.Contracts.List(r.Context(), clientID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if clientID == "" && !u.IsOwner() {
		visible := []model.Contract{}
		for _, c := range list {
			if access.HasClientAccess(&u, c.ClientID, access.PermView) {
				visible = append(visible, c)
			}
		}
		list = visible
	}
	writeJSON(w, http.StatusOK, map[string]any{"contracts": list})
}

// POST /api/contracts, PUT /api/contracts/{id}
func (s *HTTPServer) handleSaveContract(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("contracts_save")
	var in contracts.ContractInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if id := r.PathValue("id"); id != "" {
		in.ID = id
	}
	u := actingUser(r)
	if !access.HasClientAccess(&u, in.ClientID, access.PermEdit) {
		s.writeServiceError(w, r, &access.AccessDeniedError{Reason: "no edit access to this client"})
		return
	}

	c, err := s.svc.Contracts.Save(r.Context(), u.ID, in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	status := http.StatusOK
	if r.Method == http.MethodPost {
		status = http.StatusCreated
	}
	writeJSON(w, status, c)
}

// DELETE /api/contracts/{id}
func (s *HTTPServer) handleDeleteContract(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("contracts_delete")
	if u := actingUser(r); !u.IsOwner() {
		s.writeServiceError(w, r, &access.AccessDeniedError{Reason: "only the owner can delete contracts"})
		return
	}
	if err := s.svc.Contracts.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
