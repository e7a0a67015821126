package http

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"placement/portal/internal/apperr"
	"placement/portal/internal/model"
	"placement/portal/internal/repository"
)

type notificationRequest struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

type eventRequest struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Location       string  `json:"location"`
	StartsAt       string  `json:"startsAt"`
	OrganizationID *string `json:"organizationId"`
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	actor, err := s.guard.Resolve(r.Context(), identity(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	items, err := s.queries().ListNotifications(r.Context(), actor.ID, parsePage(r))
	if err != nil {
		s.fail(w, r, apperr.Internal("list notifications", err))
		return
	}
	writeOK(w, http.StatusOK, "OK", map[string]interface{}{"notifications": items})
}

// handleCreateNotification lets an admin post a notice to one user.
func (s *Server) handleCreateNotification(w http.ResponseWriter, r *http.Request) {
	var req notificationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if _, err := uuid.Parse(req.UserID); err != nil {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}
	if _, err := s.guard.RequireRole(r.Context(), identity(r), model.RoleAdmin); err != nil {
		s.fail(w, r, err)
		return
	}
	if _, err := s.queries().GetUserByID(r.Context(), req.UserID); err != nil {
		if repository.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		s.fail(w, r, apperr.Internal("load recipient", err))
		return
	}
	n, err := s.notifier.Notify(r.Context(), s.queries(), req.UserID, req.Message)
	if err != nil {
		s.fail(w, r, apperr.Internal("create notification", err))
		return
	}
	writeOK(w, http.StatusCreated, "Notification sent", map[string]interface{}{"notification": n})
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	if _, err := s.guard.Resolve(r.Context(), identity(r)); err != nil {
		s.fail(w, r, err)
		return
	}
	orgID := r.URL.Query().Get("organizationId")
	if orgID != "" {
		if _, err := uuid.Parse(orgID); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid organizationId")
			return
		}
	}
	events, err := s.queries().ListEvents(r.Context(), orgID, parsePage(r))
	if err != nil {
		s.fail(w, r, apperr.Internal("list events", err))
		return
	}
	writeOK(w, http.StatusOK, "OK", map[string]interface{}{"events": events})
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	startsAt, err := parseDate(req.StartsAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "startsAt must be an RFC 3339 timestamp or YYYY-MM-DD date")
		return
	}
	orgID := trimmedPtr(req.OrganizationID)
	if orgID != nil {
		if _, err := uuid.Parse(*orgID); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid organizationId")
			return
		}
	}

	actor, orgID, err := s.guard.CreateEvent(r.Context(), identity(r), orgID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	event, err := s.queries().CreateEvent(r.Context(), model.Event{
		ID:             uuid.NewString(),
		Title:          req.Title,
		Description:    req.Description,
		Location:       strings.TrimSpace(req.Location),
		StartsAt:       startsAt,
		OrganizationID: orgID,
		CreatedBy:      actor.ID,
	})
	if err != nil {
		s.fail(w, r, apperr.Internal("create event", err))
		return
	}
	writeOK(w, http.StatusCreated, "Event created", map[string]interface{}{"event": event})
}
