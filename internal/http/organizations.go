package http

import (
	"net/http"
	"strings"

	"placement/portal/internal/apperr"
	"placement/portal/internal/model"
	"placement/portal/internal/repository"
)

type organizationRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Website     *string `json:"website"`
	Location    *string `json:"location"`
}

func (s *Server) handleListOrganizations(w http.ResponseWriter, r *http.Request) {
	if _, err := s.guard.RequireRole(r.Context(), identity(r), model.RoleAdmin); err != nil {
		s.fail(w, r, err)
		return
	}
	orgs, err := s.queries().ListOrganizations(r.Context(), parsePage(r))
	if err != nil {
		s.fail(w, r, apperr.Internal("list organizations", err))
		return
	}
	writeOK(w, http.StatusOK, "OK", map[string]interface{}{"organizations": orgs})
}

func (s *Server) handleGetOrganization(w http.ResponseWriter, r *http.Request) {
	orgID, ok := pathID(r, "organizationID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid organization id")
		return
	}
	if _, err := s.guard.Organization(r.Context(), identity(r), orgID); err != nil {
		s.fail(w, r, err)
		return
	}
	org, err := s.queries().GetOrganization(r.Context(), orgID)
	if err != nil {
		if repository.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Organization not found")
			return
		}
		s.fail(w, r, apperr.Internal("load organization", err))
		return
	}
	writeOK(w, http.StatusOK, "OK", map[string]interface{}{"organization": org})
}

func (s *Server) handleUpdateOrganization(w http.ResponseWriter, r *http.Request) {
	orgID, ok := pathID(r, "organizationID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid organization id")
		return
	}
	var req organizationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name must not be empty")
		return
	}
	if _, err := s.guard.Organization(r.Context(), identity(r), orgID); err != nil {
		s.fail(w, r, err)
		return
	}

	var org model.Organization
	err := s.store.WithTx(r.Context(), func(q *repository.Queries) error {
		current, err := q.GetOrganization(r.Context(), orgID)
		if err != nil {
			return err
		}
		if req.Name != nil {
			current.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			current.Description = *req.Description
		}
		if req.Website != nil {
			current.Website = strings.TrimSpace(*req.Website)
		}
		if req.Location != nil {
			current.Location = strings.TrimSpace(*req.Location)
		}
		org, err = q.UpdateOrganization(r.Context(), current)
		return err
	})
	if err != nil {
		if repository.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Organization not found")
			return
		}
		s.fail(w, r, apperr.Internal("update organization", err))
		return
	}
	writeOK(w, http.StatusOK, "Organization updated", map[string]interface{}{"organization": org})
}
