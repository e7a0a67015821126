package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"placement/portal/internal/access"
	"placement/portal/internal/apperr"
	"placement/portal/internal/auth"
	"placement/portal/internal/config"
	"placement/portal/internal/db"
	"placement/portal/internal/lifecycle"
	"placement/portal/internal/metrics"
	"placement/portal/internal/notify"
	"placement/portal/internal/oauth"
	"placement/portal/internal/ratelimit"
	"placement/portal/internal/repository"
)

type Server struct {
	cfg       config.Config
	store     *db.Store
	guard     *access.Guard
	lifecycle *lifecycle.Manager
	notifier  *notify.Emitter
	google    *oauth.Google
	log       *logrus.Logger
}

// NewServer wires the guard and lifecycle manager over store. google may be
// nil, which disables Google sign-in.
func NewServer(cfg config.Config, store *db.Store, limiter ratelimit.Limiter, google *oauth.Google, log *logrus.Logger) *Server {
	if limiter == nil {
		limiter = ratelimit.NewMemoryLimiter(cfg.ApplyRateLimit, cfg.ApplyRateWindow)
	}
	guard := access.NewGuard(store.Queries)
	notifier := notify.NewEmitter(log)
	manager := lifecycle.NewManager(lifecycle.NewStore(store), guard, notifier, log, lifecycle.Options{
		Policy:               lifecycle.PolicyFromConfig(cfg.StatusTransitions),
		NotifyOnStatusChange: cfg.NotifyOnStatusChange,
		Limiter:              limiter,
	})
	return &Server{
		cfg:       cfg,
		store:     store,
		guard:     guard,
		lifecycle: manager,
		notifier:  notifier,
		google:    google,
		log:       log,
	}
}

func (s *Server) queries() *repository.Queries {
	return s.store.Queries
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.InstrumentHandler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.With(s.authMiddleware).Get("/me", s.handleMe)
			r.Get("/google/login", s.handleGoogleLogin)
			r.Get("/google/callback", s.handleGoogleCallback)
		})

		r.Route("/applications", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/", s.handleListApplications)
			r.Post("/", s.handleCreateApplication)
			r.Get("/{applicationID}", s.handleGetApplication)
			r.Patch("/{applicationID}", s.handleUpdateApplicationStatus)
			r.Delete("/{applicationID}", s.handleDeleteApplication)
		})

		r.Route("/job-offers", func(r chi.Router) {
			r.Get("/", s.handleListJobOffers)
			r.Get("/{offerID}", s.handleGetJobOffer)
			r.With(s.authMiddleware).Post("/", s.handleCreateJobOffer)
			r.With(s.authMiddleware).Put("/{offerID}", s.handleUpdateJobOffer)
			r.With(s.authMiddleware).Delete("/{offerID}", s.handleDeleteJobOffer)
		})

		r.Route("/profile", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/", s.handleGetProfile)
			r.Put("/", s.handlePutProfile)
			r.Post("/education", s.handleCreateEducation)
			r.Put("/education/{educationID}", s.handleUpdateEducation)
			r.Delete("/education/{educationID}", s.handleDeleteEducation)
			r.Post("/experience", s.handleCreateExperience)
			r.Put("/experience/{experienceID}", s.handleUpdateExperience)
			r.Delete("/experience/{experienceID}", s.handleDeleteExperience)
		})

		r.Route("/organizations", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/", s.handleListOrganizations)
			r.Get("/{organizationID}", s.handleGetOrganization)
			r.Put("/{organizationID}", s.handleUpdateOrganization)
		})

		r.With(s.authMiddleware).Get("/notifications", s.handleListNotifications)
		r.With(s.authMiddleware).Post("/notifications", s.handleCreateNotification)
		r.With(s.authMiddleware).Get("/events", s.handleListEvents)
		r.With(s.authMiddleware).Post("/events", s.handleCreateEvent)
		r.With(s.authMiddleware).Get("/dashboard", s.handleDashboard)
	})

	return r
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		claims, err := auth.ParseToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.WithFields(logrus.Fields{
			"request_id":  middleware.GetReqID(r.Context()),
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("http request")
	})
}

type claimsKey struct{}

func claimsFromContext(ctx context.Context) *auth.Claims {
	value := ctx.Value(claimsKey{})
	claims, _ := value.(*auth.Claims)
	return claims
}

// identity returns the caller asserted by the session token, or an anonymous
// identity when there is none.
func identity(r *http.Request) access.Identity {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		return access.Identity{}
	}
	return access.Identity{UserID: claims.UserID}
}

// fail writes the response for err. Unclassified errors become a 500 with a
// generic message and the cause is logged.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		s.log.WithError(err).WithFields(logrus.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"path":       r.URL.Path,
		}).Error("request failed")
	}
	writeError(w, kind.HTTPStatus(), apperr.PublicMessage(err))
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeOK writes {message, ...payload}.
func writeOK(w http.ResponseWriter, status int, message string, payload map[string]interface{}) {
	body := make(map[string]interface{}, len(payload)+1)
	for key, value := range payload {
		body[key] = value
	}
	body["message"] = message
	writeJSON(w, status, body)
}

func pathID(r *http.Request, name string) (string, bool) {
	raw := chi.URLParam(r, name)
	if _, err := uuid.Parse(raw); err != nil {
		return "", false
	}
	return raw, true
}

func parsePage(r *http.Request) repository.Page {
	return repository.Page{
		Limit:  parseInt(r, "limit", 50),
		Offset: parseInt(r, "offset", 0),
	}
}

func parseInt(r *http.Request, key string, fallback int) int {
	if raw := r.URL.Query().Get(key); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return fallback
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
