package http

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"placement/portal/internal/lifecycle"
	"placement/portal/internal/model"
)

type createApplicationRequest struct {
	JobOfferID  string  `json:"jobOfferId"`
	ResumeURL   *string `json:"resumeUrl"`
	CoverLetter *string `json:"coverLetter"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	filter := lifecycle.ListFilter{
		JobOfferID: strings.TrimSpace(r.URL.Query().Get("jobOfferId")),
		Page:       parsePage(r),
	}
	if filter.JobOfferID != "" {
		if _, err := uuid.Parse(filter.JobOfferID); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid jobOfferId")
			return
		}
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, ok := model.ParseApplicationStatus(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid status")
			return
		}
		filter.Status = status
	}

	apps, err := s.lifecycle.ListApplications(r.Context(), identity(r), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "OK", map[string]interface{}{"applications": apps})
}

func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	applicationID, ok := pathID(r, "applicationID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid application id")
		return
	}
	app, err := s.lifecycle.GetApplication(r.Context(), identity(r), applicationID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "OK", map[string]interface{}{"application": app})
}

func (s *Server) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	var req createApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.JobOfferID = strings.TrimSpace(req.JobOfferID)
	if req.JobOfferID == "" {
		writeError(w, http.StatusBadRequest, "jobOfferId is required")
		return
	}
	if _, err := uuid.Parse(req.JobOfferID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid jobOfferId")
		return
	}

	app, err := s.lifecycle.CreateApplication(r.Context(), identity(r), lifecycle.CreateInput{
		JobOfferID:  req.JobOfferID,
		ResumeURL:   req.ResumeURL,
		CoverLetter: req.CoverLetter,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "Application submitted", map[string]interface{}{"application": app})
}

func (s *Server) handleUpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	applicationID, ok := pathID(r, "applicationID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid application id")
		return
	}
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	status := model.ApplicationStatus(strings.TrimSpace(req.Status))
	app, err := s.lifecycle.UpdateApplicationStatus(r.Context(), identity(r), applicationID, status)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Application status updated", map[string]interface{}{"application": app})
}

func (s *Server) handleDeleteApplication(w http.ResponseWriter, r *http.Request) {
	applicationID, ok := pathID(r, "applicationID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid application id")
		return
	}
	if err := s.lifecycle.DeleteApplication(r.Context(), identity(r), applicationID); err != nil {
		s.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Application deleted", nil)
}
