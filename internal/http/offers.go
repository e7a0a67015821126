package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"placement/portal/internal/apperr"
	"placement/portal/internal/model"
	"placement/portal/internal/repository"
)

type jobOfferRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Location    *string   `json:"location"`
	Type        *string   `json:"type"`
	Salary      *string   `json:"salary"`
	Skills      *[]string `json:"skills"`
	Status      *string   `json:"status"`
	Deadline    *string   `json:"deadline"`
}

// apply copies the present fields onto offer.
func (req jobOfferRequest) apply(offer *model.JobOffer) error {
	if req.Title != nil {
		offer.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		offer.Description = *req.Description
	}
	if req.Location != nil {
		offer.Location = strings.TrimSpace(*req.Location)
	}
	if req.Type != nil {
		offer.Type = strings.TrimSpace(*req.Type)
	}
	if req.Salary != nil {
		offer.Salary = *req.Salary
	}
	if req.Skills != nil {
		offer.Skills = *req.Skills
	}
	if req.Status != nil {
		status, ok := model.ParseOfferStatus(*req.Status)
		if !ok {
			return apperr.Validation("Status must be active or closed")
		}
		offer.Status = status
	}
	if req.Deadline != nil {
		if strings.TrimSpace(*req.Deadline) == "" {
			offer.Deadline = nil
		} else {
			deadline, err := parseDate(*req.Deadline)
			if err != nil {
				return apperr.Validation("Deadline must be an RFC 3339 timestamp or YYYY-MM-DD date")
			}
			offer.Deadline = &deadline
		}
	}
	if offer.Title == "" {
		return apperr.Validation("title is required")
	}
	return nil
}

func (s *Server) handleListJobOffers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := repository.OfferFilter{
		Type:     strings.TrimSpace(query.Get("type")),
		Location: strings.TrimSpace(query.Get("location")),
		Query:    strings.TrimSpace(query.Get("q")),
		Page:     parsePage(r),
	}
	if raw := query.Get("status"); raw != "" {
		status, ok := model.ParseOfferStatus(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid status")
			return
		}
		filter.Status = status
	}
	if raw := query.Get("organizationId"); raw != "" {
		if _, err := uuid.Parse(raw); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid organizationId")
			return
		}
		filter.OrganizationID = raw
	}

	offers, err := s.queries().ListJobOffers(r.Context(), filter)
	if err != nil {
		s.fail(w, r, apperr.Internal("list job offers", err))
		return
	}
	writeOK(w, http.StatusOK, "OK", map[string]interface{}{"jobOffers": offers})
}

func (s *Server) handleGetJobOffer(w http.ResponseWriter, r *http.Request) {
	offerID, ok := pathID(r, "offerID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid job offer id")
		return
	}
	offer, err := s.queries().GetJobOffer(r.Context(), offerID)
	if err != nil {
		if repository.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Job offer not found")
			return
		}
		s.fail(w, r, apperr.Internal("load job offer", err))
		return
	}
	writeOK(w, http.StatusOK, "OK", map[string]interface{}{"jobOffer": offer})
}

func (s *Server) handleCreateJobOffer(w http.ResponseWriter, r *http.Request) {
	var req jobOfferRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	offer := model.JobOffer{Status: model.OfferActive, Skills: []string{}}
	if err := req.apply(&offer); err != nil {
		s.fail(w, r, err)
		return
	}

	actor, err := s.guard.CreateJobOffer(r.Context(), identity(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	offer.ID = uuid.NewString()
	offer.OrganizationID = *actor.OrganizationID
	offer.PostedBy = actor.ID

	created, err := s.queries().CreateJobOffer(r.Context(), offer)
	if err != nil {
		s.fail(w, r, apperr.Internal("create job offer", err))
		return
	}
	s.log.WithField("job_offer_id", created.ID).Info("job offer created")
	writeOK(w, http.StatusCreated, "Job offer created", map[string]interface{}{"jobOffer": created})
}

func (s *Server) handleUpdateJobOffer(w http.ResponseWriter, r *http.Request) {
	offerID, ok := pathID(r, "offerID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid job offer id")
		return
	}
	var req jobOfferRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	_, offer, err := s.guard.JobOffer(r.Context(), identity(r), offerID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := req.apply(&offer); err != nil {
		s.fail(w, r, err)
		return
	}
	updated, err := s.queries().UpdateJobOffer(r.Context(), offer)
	if err != nil {
		s.fail(w, r, apperr.Internal("update job offer", err))
		return
	}
	writeOK(w, http.StatusOK, "Job offer updated", map[string]interface{}{"jobOffer": updated})
}

func (s *Server) handleDeleteJobOffer(w http.ResponseWriter, r *http.Request) {
	offerID, ok := pathID(r, "offerID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid job offer id")
		return
	}
	if _, _, err := s.guard.JobOffer(r.Context(), identity(r), offerID); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.queries().DeleteJobOffer(r.Context(), offerID); err != nil {
		s.fail(w, r, apperr.Internal("delete job offer", err))
		return
	}
	s.log.WithField("job_offer_id", offerID).Info("job offer deleted")
	writeOK(w, http.StatusOK, "Job offer deleted", nil)
}

// parseDate accepts an RFC 3339 timestamp or a bare YYYY-MM-DD date (UTC).
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02", raw)
}
