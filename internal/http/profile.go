package http

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"placement/portal/internal/apperr"
	"placement/portal/internal/model"
	"placement/portal/internal/repository"
)

type profileRequest struct {
	ResumeURL   *string  `json:"resumeUrl"`
	Address     *string  `json:"address"`
	PassingYear *int     `json:"passingYear"`
	Bio         *string  `json:"bio"`
	Skills      []string `json:"skills"`
}

type educationRequest struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	StartYear   int    `json:"startYear"`
	EndYear     *int   `json:"endYear"`
	Grade       string `json:"grade"`
}

func (req educationRequest) validate() error {
	if strings.TrimSpace(req.Institution) == "" || strings.TrimSpace(req.Degree) == "" {
		return apperr.Validation("institution and degree are required")
	}
	if req.StartYear <= 0 {
		return apperr.Validation("startYear is required")
	}
	if req.EndYear != nil && *req.EndYear < req.StartYear {
		return apperr.Validation("endYear must not be before startYear")
	}
	return nil
}

func (req educationRequest) education(id, userID string) model.Education {
	return model.Education{
		ID:          id,
		UserID:      userID,
		Institution: strings.TrimSpace(req.Institution),
		Degree:      strings.TrimSpace(req.Degree),
		Field:       strings.TrimSpace(req.Field),
		StartYear:   req.StartYear,
		EndYear:     req.EndYear,
		Grade:       strings.TrimSpace(req.Grade),
	}
}

type experienceRequest struct {
	Company     string  `json:"company"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	StartDate   string  `json:"startDate"`
	EndDate     *string `json:"endDate"`
	Current     bool    `json:"current"`
}

func (req experienceRequest) experience(id, userID string) (model.Experience, error) {
	if strings.TrimSpace(req.Company) == "" || strings.TrimSpace(req.Title) == "" {
		return model.Experience{}, apperr.Validation("company and title are required")
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return model.Experience{}, apperr.Validation("startDate must be a YYYY-MM-DD date")
	}
	exp := model.Experience{
		ID:          id,
		UserID:      userID,
		Company:     strings.TrimSpace(req.Company),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		StartDate:   start,
		Current:     req.Current,
	}
	if req.EndDate != nil && strings.TrimSpace(*req.EndDate) != "" && !req.Current {
		end, err := parseDate(*req.EndDate)
		if err != nil {
			return model.Experience{}, apperr.Validation("endDate must be a YYYY-MM-DD date")
		}
		if end.Before(start) {
			return model.Experience{}, apperr.Validation("endDate must not be before startDate")
		}
		exp.EndDate = &end
	}
	return exp, nil
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	actor, err := s.guard.Profile(r.Context(), identity(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ctx := r.Context()
	profile, err := s.queries().GetProfile(ctx, actor.ID)
	if err != nil {
		if !repository.IsNotFound(err) {
			s.fail(w, r, apperr.Internal("load profile", err))
			return
		}
		profile = model.Profile{UserID: actor.ID, Skills: []string{}}
	}
	education, err := s.queries().ListEducation(ctx, actor.ID)
	if err != nil {
		s.fail(w, r, apperr.Internal("list education", err))
		return
	}
	experience, err := s.queries().ListExperience(ctx, actor.ID)
	if err != nil {
		s.fail(w, r, apperr.Internal("list experience", err))
		return
	}
	writeOK(w, http.StatusOK, "OK", map[string]interface{}{
		"profile":    profile,
		"education":  education,
		"experience": experience,
	})
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PassingYear != nil && (*req.PassingYear < 1900 || *req.PassingYear > 2200) {
		writeError(w, http.StatusBadRequest, "passingYear is out of range")
		return
	}
	actor, err := s.guard.Profile(r.Context(), identity(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	skills := req.Skills
	if skills == nil {
		skills = []string{}
	}
	profile, err := s.queries().UpsertProfile(r.Context(), model.Profile{
		UserID:      actor.ID,
		ResumeURL:   trimmedPtr(req.ResumeURL),
		Address:     trimmedPtr(req.Address),
		PassingYear: req.PassingYear,
		Bio:         req.Bio,
		Skills:      skills,
	})
	if err != nil {
		s.fail(w, r, apperr.Internal("upsert profile", err))
		return
	}
	writeOK(w, http.StatusOK, "Profile updated", map[string]interface{}{"profile": profile})
}

func (s *Server) handleCreateEducation(w http.ResponseWriter, r *http.Request) {
	var req educationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		s.fail(w, r, err)
		return
	}
	actor, err := s.guard.Profile(r.Context(), identity(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	edu, err := s.queries().CreateEducation(r.Context(), req.education(uuid.NewString(), actor.ID))
	if err != nil {
		s.fail(w, r, apperr.Internal("create education", err))
		return
	}
	writeOK(w, http.StatusCreated, "Education added", map[string]interface{}{"education": edu})
}

func (s *Server) handleUpdateEducation(w http.ResponseWriter, r *http.Request) {
	educationID, ok := pathID(r, "educationID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid education id")
		return
	}
	var req educationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		s.fail(w, r, err)
		return
	}
	actor, _, err := s.guard.Education(r.Context(), identity(r), educationID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	edu, err := s.queries().UpdateEducation(r.Context(), req.education(educationID, actor.ID))
	if err != nil {
		s.fail(w, r, apperr.Internal("update education", err))
		return
	}
	writeOK(w, http.StatusOK, "Education updated", map[string]interface{}{"education": edu})
}

func (s *Server) handleDeleteEducation(w http.ResponseWriter, r *http.Request) {
	educationID, ok := pathID(r, "educationID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid education id")
		return
	}
	if _, _, err := s.guard.Education(r.Context(), identity(r), educationID); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.queries().DeleteEducation(r.Context(), educationID); err != nil {
		s.fail(w, r, apperr.Internal("delete education", err))
		return
	}
	writeOK(w, http.StatusOK, "Education deleted", nil)
}

func (s *Server) handleCreateExperience(w http.ResponseWriter, r *http.Request) {
	var req experienceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	actor, err := s.guard.Profile(r.Context(), identity(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	exp, err := req.experience(uuid.NewString(), actor.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	created, err := s.queries().CreateExperience(r.Context(), exp)
	if err != nil {
		s.fail(w, r, apperr.Internal("create experience", err))
		return
	}
	writeOK(w, http.StatusCreated, "Experience added", map[string]interface{}{"experience": created})
}

func (s *Server) handleUpdateExperience(w http.ResponseWriter, r *http.Request) {
	experienceID, ok := pathID(r, "experienceID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid experience id")
		return
	}
	var req experienceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	actor, _, err := s.guard.Experience(r.Context(), identity(r), experienceID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	exp, err := req.experience(experienceID, actor.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	updated, err := s.queries().UpdateExperience(r.Context(), exp)
	if err != nil {
		s.fail(w, r, apperr.Internal("update experience", err))
		return
	}
	writeOK(w, http.StatusOK, "Experience updated", map[string]interface{}{"experience": updated})
}

func (s *Server) handleDeleteExperience(w http.ResponseWriter, r *http.Request) {
	experienceID, ok := pathID(r, "experienceID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid experience id")
		return
	}
	if _, _, err := s.guard.Experience(r.Context(), identity(r), experienceID); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.queries().DeleteExperience(r.Context(), experienceID); err != nil {
		s.fail(w, r, apperr.Internal("delete experience", err))
		return
	}
	writeOK(w, http.StatusOK, "Experience deleted", nil)
}
