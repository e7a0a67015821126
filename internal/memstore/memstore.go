// Package memstore is an in-memory stand-in for the Postgres repository, used
// by tests. It reports missing rows with pgx.ErrNoRows and duplicate
// applications with a 23505 PgError, like the real store.
package memstore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"placement/portal/internal/model"
	"placement/portal/internal/repository"
)

var ErrInjected = errors.New("injected failure")

type state struct {
	users         map[string]model.User
	offers        map[string]model.JobOffer
	applications  map[string]model.Application
	profiles      map[string]model.Profile
	education     map[string]model.Education
	experience    map[string]model.Experience
	notifications []model.Notification
}

func (s state) clone() state {
	c := state{
		users:         make(map[string]model.User, len(s.users)),
		offers:        make(map[string]model.JobOffer, len(s.offers)),
		applications:  make(map[string]model.Application, len(s.applications)),
		profiles:      make(map[string]model.Profile, len(s.profiles)),
		education:     make(map[string]model.Education, len(s.education)),
		experience:    make(map[string]model.Experience, len(s.experience)),
		notifications: append([]model.Notification(nil), s.notifications...),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.offers {
		c.offers[k] = v
	}
	for k, v := range s.applications {
		c.applications[k] = v
	}
	for k, v := range s.profiles {
		c.profiles[k] = v
	}
	for k, v := range s.education {
		c.education[k] = v
	}
	for k, v := range s.experience {
		c.experience[k] = v
	}
	return c
}

type Store struct {
	mu    sync.Mutex
	state state

	// FailNotifications makes CreateNotification return ErrInjected.
	FailNotifications bool
	// FailProfileUpserts makes UpsertProfileResume return ErrInjected.
	FailProfileUpserts bool
}

func New() *Store {
	return &Store{state: state{
		users:        map[string]model.User{},
		offers:       map[string]model.JobOffer{},
		applications: map[string]model.Application{},
		profiles:     map[string]model.Profile{},
		education:    map[string]model.Education{},
		experience:   map[string]model.Experience{},
	}}
}

// WithTx runs fn against the store and restores the prior state if fn fails.
func (s *Store) WithTx(ctx context.Context, fn func(*Store) error) error {
	s.mu.Lock()
	snapshot := s.state.clone()
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.state = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) Savepoint(ctx context.Context, fn func(*Store) error) error {
	return s.WithTx(ctx, fn)
}

func (s *Store) AddUser(user model.User) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	s.state.users[user.ID] = user
	return user
}

func (s *Store) AddJobOffer(offer model.JobOffer) model.JobOffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if offer.ID == "" {
		offer.ID = uuid.NewString()
	}
	if offer.Status == "" {
		offer.Status = model.OfferActive
	}
	s.state.offers[offer.ID] = offer
	return offer
}

func (s *Store) AddEducation(edu model.Education) model.Education {
	s.mu.Lock()
	defer s.mu.Unlock()
	if edu.ID == "" {
		edu.ID = uuid.NewString()
	}
	s.state.education[edu.ID] = edu
	return edu
}

func (s *Store) AddExperience(exp model.Experience) model.Experience {
	s.mu.Lock()
	defer s.mu.Unlock()
	if exp.ID == "" {
		exp.ID = uuid.NewString()
	}
	s.state.experience[exp.ID] = exp
	return exp
}

func (s *Store) GetUserByID(ctx context.Context, userID string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.state.users[userID]
	if !ok {
		return model.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (s *Store) GetJobOffer(ctx context.Context, offerID string) (model.JobOffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	offer, ok := s.state.offers[offerID]
	if !ok {
		return model.JobOffer{}, pgx.ErrNoRows
	}
	return offer, nil
}

func (s *Store) GetApplication(ctx context.Context, applicationID string) (model.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.state.applications[applicationID]
	if !ok {
		return model.Application{}, pgx.ErrNoRows
	}
	return app, nil
}

func (s *Store) ApplicationExists(ctx context.Context, userID, jobOfferID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findApplication(userID, jobOfferID), nil
}

func (s *Store) findApplication(userID, jobOfferID string) bool {
	for _, app := range s.state.applications {
		if app.UserID == userID && app.JobOfferID == jobOfferID {
			return true
		}
	}
	return false
}

func (s *Store) CreateApplication(ctx context.Context, app model.Application) (model.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findApplication(app.UserID, app.JobOfferID) {
		return model.Application{}, &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
	}
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	app.UpdatedAt = app.AppliedDate
	s.state.applications[app.ID] = app
	return app, nil
}

func (s *Store) UpdateApplicationStatus(ctx context.Context, applicationID string, status model.ApplicationStatus) (model.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.state.applications[applicationID]
	if !ok {
		return model.Application{}, pgx.ErrNoRows
	}
	app.Status = status
	app.UpdatedAt = time.Now().UTC()
	s.state.applications[applicationID] = app
	return app, nil
}

func (s *Store) DeleteApplication(ctx context.Context, applicationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state.applications, applicationID)
	return nil
}

func (s *Store) ListApplications(ctx context.Context, filter repository.ApplicationFilter) ([]model.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	apps := []model.Application{}
	for _, app := range s.state.applications {
		if filter.UserID != "" && app.UserID != filter.UserID {
			continue
		}
		if filter.OrganizationID != "" && s.state.offers[app.JobOfferID].OrganizationID != filter.OrganizationID {
			continue
		}
		if filter.JobOfferID != "" && app.JobOfferID != filter.JobOfferID {
			continue
		}
		if filter.Status != "" && app.Status != filter.Status {
			continue
		}
		apps = append(apps, app)
	}
	sort.Slice(apps, func(i, j int) bool {
		return apps[i].AppliedDate.After(apps[j].AppliedDate)
	})
	return apps, nil
}

func (s *Store) UpsertProfileResume(ctx context.Context, userID, resumeURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailProfileUpserts {
		return ErrInjected
	}
	profile := s.state.profiles[userID]
	profile.UserID = userID
	profile.ResumeURL = &resumeURL
	profile.UpdatedAt = time.Now().UTC()
	s.state.profiles[userID] = profile
	return nil
}

func (s *Store) GetProfile(ctx context.Context, userID string) (model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.state.profiles[userID]
	if !ok {
		return model.Profile{}, pgx.ErrNoRows
	}
	return profile, nil
}

func (s *Store) GetEducation(ctx context.Context, educationID string) (model.Education, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	edu, ok := s.state.education[educationID]
	if !ok {
		return model.Education{}, pgx.ErrNoRows
	}
	return edu, nil
}

func (s *Store) GetExperience(ctx context.Context, experienceID string) (model.Experience, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.state.experience[experienceID]
	if !ok {
		return model.Experience{}, pgx.ErrNoRows
	}
	return exp, nil
}

func (s *Store) CreateNotification(ctx context.Context, userID, message string) (model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailNotifications {
		return model.Notification{}, ErrInjected
	}
	n := model.Notification{ID: uuid.NewString(), UserID: userID, Message: message, CreatedAt: time.Now().UTC()}
	s.state.notifications = append(s.state.notifications, n)
	return n, nil
}

func (s *Store) ListNotifications(ctx context.Context, userID string, page repository.Page) ([]model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := []model.Notification{}
	for i := len(s.state.notifications) - 1; i >= 0; i-- {
		if s.state.notifications[i].UserID == userID {
			items = append(items, s.state.notifications[i])
		}
	}
	return items, nil
}
