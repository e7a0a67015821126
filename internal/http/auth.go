package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"placement/portal/internal/apperr"
	"placement/portal/internal/auth"
	"placement/portal/internal/crypto"
	"placement/portal/internal/model"
	"placement/portal/internal/repository"
)

const minPasswordLength = 8

type registerRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	Name             string `json:"name"`
	Role             string `json:"role"`
	OrganizationName string `json:"organizationName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleRegister creates a STUDENT, or an ORGANIZATION user together with its
// organization. ADMIN accounts are provisioned out of band.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "A valid email is required")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}
	role := model.RoleStudent
	if req.Role != "" {
		parsed, ok := model.ParseRole(req.Role)
		if !ok || parsed == model.RoleAdmin {
			writeError(w, http.StatusBadRequest, "Role must be STUDENT or ORGANIZATION")
			return
		}
		role = parsed
	}
	orgName := strings.TrimSpace(req.OrganizationName)
	if role == model.RoleOrganization && orgName == "" {
		writeError(w, http.StatusBadRequest, "organizationName is required")
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		s.fail(w, r, apperr.Internal("hash password", err))
		return
	}

	var user model.User
	err = s.store.WithTx(r.Context(), func(q *repository.Queries) error {
		newUser := model.User{
			ID:           uuid.NewString(),
			Email:        req.Email,
			PasswordHash: hash,
			Name:         req.Name,
			Role:         role,
		}
		if role == model.RoleOrganization {
			org, err := q.CreateOrganization(r.Context(), model.Organization{ID: uuid.NewString(), Name: orgName})
			if err != nil {
				return err
			}
			newUser.OrganizationID = &org.ID
		}
		created, err := q.CreateUser(r.Context(), newUser)
		if err != nil {
			return err
		}
		user = created
		return nil
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			writeError(w, http.StatusConflict, "Email already registered")
			return
		}
		s.fail(w, r, apperr.Internal("register user", err))
		return
	}

	s.writeSession(w, r, http.StatusCreated, "Registered", user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := s.queries().GetUserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if repository.IsNotFound(err) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		s.fail(w, r, apperr.Internal("load user", err))
		return
	}
	if user.PasswordHash == "" || crypto.CheckPassword(user.PasswordHash, req.Password) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	s.writeSession(w, r, http.StatusOK, "Logged in", user)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.guard.Resolve(r.Context(), identity(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "OK", map[string]interface{}{"user": user})
}

func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if s.google == nil {
		writeError(w, http.StatusNotFound, "Google sign-in is not enabled")
		return
	}
	url, err := s.google.LoginURL(r.Context())
	if err != nil {
		s.fail(w, r, apperr.Internal("start google login", err))
		return
	}
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// handleGoogleCallback signs in the Google account, creating a STUDENT user
// the first time the email is seen.
func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if s.google == nil {
		writeError(w, http.StatusNotFound, "Google sign-in is not enabled")
		return
	}
	query := r.URL.Query()
	profile, err := s.google.Exchange(r.Context(), query.Get("state"), query.Get("code"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	user, err := s.findOrCreateGoogleUser(r.Context(), profile.Email, profile.Name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeSession(w, r, http.StatusOK, "Logged in", user)
}

func (s *Server) findOrCreateGoogleUser(ctx context.Context, email, name string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.queries().GetUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !repository.IsNotFound(err) {
		return model.User{}, apperr.Internal("load user", err)
	}
	user, err = s.queries().CreateUser(ctx, model.User{
		ID:    uuid.NewString(),
		Email: email,
		Name:  strings.TrimSpace(name),
		Role:  model.RoleStudent,
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			// concurrent first sign-in
			if existing, lookupErr := s.queries().GetUserByEmail(ctx, email); lookupErr == nil {
				return existing, nil
			}
		}
		return model.User{}, apperr.Internal("create google user", err)
	}
	s.log.WithField("user_id", user.ID).Info("google user created")
	return user, nil
}

func (s *Server) writeSession(w http.ResponseWriter, r *http.Request, status int, message string, user model.User) {
	token, err := auth.NewAccessToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.AccessTokenTTL, user.ID)
	if err != nil {
		s.fail(w, r, apperr.Internal("issue token", err))
		return
	}
	writeOK(w, status, message, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}
