// Package lifecycle creates applications, moves them between statuses and
// deletes them, after the access guard has admitted the actor.
package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"placement/portal/internal/access"
	"placement/portal/internal/apperr"
	"placement/portal/internal/metrics"
	"placement/portal/internal/model"
	"placement/portal/internal/notify"
	"placement/portal/internal/ratelimit"
	"placement/portal/internal/repository"
)

type Options struct {
	Policy               TransitionPolicy
	NotifyOnStatusChange bool
	// Limiter caps how many applications one student may submit per window.
	// Only requests that passed every other check take a token. Nil disables
	// the cap.
	Limiter ratelimit.Limiter
	Now     func() time.Time
}

type Manager struct {
	store    Store
	guard    *access.Guard
	notifier *notify.Emitter
	log      *logrus.Logger
	opts     Options
}

func NewManager(store Store, guard *access.Guard, notifier *notify.Emitter, log *logrus.Logger, opts Options) *Manager {
	if opts.Policy == nil {
		opts.Policy = Permissive{}
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Manager{store: store, guard: guard, notifier: notifier, log: log, opts: opts}
}

type CreateInput struct {
	JobOfferID  string
	ResumeURL   *string
	CoverLetter *string
}

type ListFilter struct {
	Status     model.ApplicationStatus
	JobOfferID string
	repository.Page
}

// CreateApplication records a PENDING application for the calling student.
// The insert, the profile resume update and the owner notification share one
// transaction; a failed notification is rolled back to its savepoint and does
// not fail the application.
func (m *Manager) CreateApplication(ctx context.Context, id access.Identity, input CreateInput) (model.Application, error) {
	if !id.Authenticated() {
		return model.Application{}, apperr.Unauthorized("Unauthorized")
	}
	input.JobOfferID = strings.TrimSpace(input.JobOfferID)
	if input.JobOfferID == "" {
		return model.Application{}, apperr.Validation("jobOfferId is required")
	}

	actor, offer, err := m.guard.CreateApplication(ctx, id, input.JobOfferID)
	if err != nil {
		return model.Application{}, err
	}
	if offer.Status == model.OfferClosed {
		return model.Application{}, apperr.Validation("Job offer is closed")
	}
	if m.opts.Limiter != nil && !m.opts.Limiter.Allow(ctx, "apply:"+actor.ID) {
		metrics.RecordRateLimited("apply")
		m.log.WithField("user_id", actor.ID).Warn("application rate limited")
		return model.Application{}, apperr.New(apperr.KindRateLimited, "Too many applications, try again later", nil)
	}

	resumeURL := trimmed(input.ResumeURL)
	app := model.Application{
		ID:          uuid.NewString(),
		UserID:      actor.ID,
		JobOfferID:  offer.ID,
		Status:      model.StatusPending,
		ResumeURL:   resumeURL,
		CoverLetter: trimmed(input.CoverLetter),
		AppliedDate: m.opts.Now(),
	}

	var created model.Application
	err = m.store.WithTx(ctx, func(tx Tx) error {
		var err error
		created, err = tx.CreateApplication(ctx, app)
		if err != nil {
			if repository.IsUniqueViolation(err) {
				return apperr.Conflict("You have already applied for this job")
			}
			return apperr.Internal("insert application", err)
		}
		if resumeURL != nil {
			if err := tx.UpsertProfileResume(ctx, actor.ID, *resumeURL); err != nil {
				return apperr.Internal("update profile resume", err)
			}
		}
		m.notifyInTx(ctx, tx, offer.PostedBy, notify.NewApplicationMessage(offer, actor))
		return nil
	})
	if err != nil {
		return model.Application{}, err
	}

	metrics.RecordApplicationEvent("created")
	m.log.WithFields(logrus.Fields{
		"application_id": created.ID,
		"job_offer_id":   offer.ID,
		"user_id":        actor.ID,
	}).Info("application created")
	return created, nil
}

// UpdateApplicationStatus sets a new status subject to the transition policy.
func (m *Manager) UpdateApplicationStatus(ctx context.Context, id access.Identity, applicationID string, status model.ApplicationStatus) (model.Application, error) {
	target, err := m.guard.Application(ctx, id, access.ActionUpdate, applicationID)
	if err != nil {
		return model.Application{}, err
	}
	status, ok := model.ParseApplicationStatus(string(status))
	if !ok {
		return model.Application{}, apperr.Validation("Status must be PENDING, SELECTED or REJECTED")
	}
	from := target.Application.Status
	if !m.opts.Policy.Allows(from, status) {
		return model.Application{}, apperr.Validation(fmt.Sprintf("Cannot change status from %s to %s", from, status))
	}

	var updated model.Application
	err = m.store.WithTx(ctx, func(tx Tx) error {
		var err error
		updated, err = tx.UpdateApplicationStatus(ctx, applicationID, status)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperr.NotFound("Application not found")
			}
			return apperr.Internal("update application status", err)
		}
		if m.opts.NotifyOnStatusChange && from != status {
			m.notifyInTx(ctx, tx, updated.UserID, notify.StatusChangedMessage(target.Offer, status))
		}
		return nil
	})
	if err != nil {
		return model.Application{}, err
	}

	metrics.RecordApplicationEvent("status_" + strings.ToLower(string(status)))
	m.log.WithFields(logrus.Fields{
		"application_id": applicationID,
		"actor_id":       target.Actor.ID,
		"from":           from,
		"to":             status,
	}).Info("application status updated")
	return updated, nil
}

// DeleteApplication removes the application. Notifications are left untouched.
func (m *Manager) DeleteApplication(ctx context.Context, id access.Identity, applicationID string) error {
	target, err := m.guard.Application(ctx, id, access.ActionDelete, applicationID)
	if err != nil {
		return err
	}
	if err := m.store.Repo().DeleteApplication(ctx, applicationID); err != nil {
		return apperr.Internal("delete application", err)
	}
	metrics.RecordApplicationEvent("deleted")
	m.log.WithFields(logrus.Fields{
		"application_id": applicationID,
		"actor_id":       target.Actor.ID,
	}).Info("application deleted")
	return nil
}

func (m *Manager) GetApplication(ctx context.Context, id access.Identity, applicationID string) (model.Application, error) {
	target, err := m.guard.Application(ctx, id, access.ActionRead, applicationID)
	if err != nil {
		return model.Application{}, err
	}
	return target.Application, nil
}

// ListApplications returns what the actor's role may see: everything for
// ADMIN, applications to the organization's offers for ORGANIZATION, and the
// student's own applications for STUDENT.
func (m *Manager) ListApplications(ctx context.Context, id access.Identity, filter ListFilter) ([]model.Application, error) {
	_, scope, err := m.guard.ApplicationScope(ctx, id)
	if err != nil {
		return nil, err
	}
	apps, err := m.store.Repo().ListApplications(ctx, repository.ApplicationFilter{
		UserID:         scope.UserID,
		OrganizationID: scope.OrganizationID,
		JobOfferID:     filter.JobOfferID,
		Status:         filter.Status,
		Page:           filter.Page,
	})
	if err != nil {
		return nil, apperr.Internal("list applications", err)
	}
	return apps, nil
}

func (m *Manager) notifyInTx(ctx context.Context, tx Tx, recipientID, message string) {
	if recipientID == "" {
		return
	}
	err := tx.Savepoint(ctx, func(r Repo) error {
		_, err := m.notifier.Notify(ctx, r, recipientID, message)
		return err
	})
	if err != nil {
		m.log.WithError(err).WithField("recipient_id", recipientID).Warn("notification skipped")
	}
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
