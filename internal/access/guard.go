// Package access decides whether an actor may perform an action on a resource.
//
// Every check runs in the same order: the identity must be present, the actor
// is re-read from storage, the actor's role must be permitted, and finally
// the ownership chain of the target is verified. Nothing is written before all
// checks pass.
package access

import (
	"context"

	"github.com/google/uuid"

	"placement/portal/internal/apperr"
	"placement/portal/internal/model"
	"placement/portal/internal/repository"
)

// Identity is the caller as asserted by the session token. It carries no role.
type Identity struct {
	UserID string
}

func (i Identity) Authenticated() bool {
	return i.UserID != ""
}

type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

type Reader interface {
	GetUserByID(ctx context.Context, userID string) (model.User, error)
	GetJobOffer(ctx context.Context, offerID string) (model.JobOffer, error)
	GetApplication(ctx context.Context, applicationID string) (model.Application, error)
	ApplicationExists(ctx context.Context, userID, jobOfferID string) (bool, error)
	GetEducation(ctx context.Context, educationID string) (model.Education, error)
	GetExperience(ctx context.Context, experienceID string) (model.Experience, error)
}

type Guard struct {
	reader Reader
}

func NewGuard(reader Reader) *Guard {
	return &Guard{reader: reader}
}

// Scope restricts list queries to what an actor may see. Empty fields mean unrestricted.
type Scope struct {
	UserID         string
	OrganizationID string
}

type ApplicationTarget struct {
	Actor       model.User
	Application model.Application
	Offer       model.JobOffer
}

// Resolve re-reads the actor behind an identity.
func (g *Guard) Resolve(ctx context.Context, id Identity) (model.User, error) {
	if !id.Authenticated() {
		return model.User{}, apperr.Unauthorized("Unauthorized")
	}
	user, err := g.reader.GetUserByID(ctx, id.UserID)
	if err != nil {
		return model.User{}, notFoundOr(err, "User not found", "load actor")
	}
	return user, nil
}

// RequireRole resolves the actor and checks it holds one of roles.
func (g *Guard) RequireRole(ctx context.Context, id Identity, roles ...model.Role) (model.User, error) {
	actor, err := g.Resolve(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	for _, role := range roles {
		if actor.Role == role {
			return actor, nil
		}
	}
	return model.User{}, forbidden()
}

// CreateApplication admits a STUDENT applying for themselves to an existing
// offer they have not applied to yet.
func (g *Guard) CreateApplication(ctx context.Context, id Identity, jobOfferID string) (model.User, model.JobOffer, error) {
	actor, err := g.Resolve(ctx, id)
	if err != nil {
		return model.User{}, model.JobOffer{}, err
	}
	switch actor.Role {
	case model.RoleStudent:
	case model.RoleOrganization, model.RoleAdmin:
		return model.User{}, model.JobOffer{}, forbidden()
	default:
		return model.User{}, model.JobOffer{}, forbidden()
	}

	if _, err := uuid.Parse(jobOfferID); err != nil {
		return model.User{}, model.JobOffer{}, apperr.NotFound("Job offer not found")
	}
	offer, err := g.reader.GetJobOffer(ctx, jobOfferID)
	if err != nil {
		return model.User{}, model.JobOffer{}, notFoundOr(err, "Job offer not found", "load job offer")
	}
	exists, err := g.reader.ApplicationExists(ctx, actor.ID, offer.ID)
	if err != nil {
		return model.User{}, model.JobOffer{}, apperr.Internal("check existing application", err)
	}
	if exists {
		return model.User{}, model.JobOffer{}, apperr.Conflict("You have already applied for this job")
	}
	return actor, offer, nil
}

// Application authorizes read, update and delete on one application.
func (g *Guard) Application(ctx context.Context, id Identity, action Action, applicationID string) (ApplicationTarget, error) {
	actor, err := g.Resolve(ctx, id)
	if err != nil {
		return ApplicationTarget{}, err
	}

	switch actor.Role {
	case model.RoleAdmin:
	case model.RoleOrganization:
		if actor.OrganizationID == nil {
			return ApplicationTarget{}, forbidden()
		}
	case model.RoleStudent:
		if action == ActionUpdate {
			return ApplicationTarget{}, forbidden()
		}
	default:
		return ApplicationTarget{}, forbidden()
	}
	if action == ActionCreate {
		return ApplicationTarget{}, forbidden()
	}

	app, err := g.reader.GetApplication(ctx, applicationID)
	if err != nil {
		return ApplicationTarget{}, notFoundOr(err, "Application not found", "load application")
	}
	offer, err := g.reader.GetJobOffer(ctx, app.JobOfferID)
	if err != nil {
		return ApplicationTarget{}, notFoundOr(err, "Job offer not found", "load job offer")
	}

	target := ApplicationTarget{Actor: actor, Application: app, Offer: offer}
	switch actor.Role {
	case model.RoleAdmin:
		return target, nil
	case model.RoleOrganization:
		if offer.OrganizationID == *actor.OrganizationID {
			return target, nil
		}
	case model.RoleStudent:
		if app.UserID == actor.ID {
			return target, nil
		}
	}
	return ApplicationTarget{}, forbidden()
}

// ApplicationScope returns the list restriction for the actor's role.
func (g *Guard) ApplicationScope(ctx context.Context, id Identity) (model.User, Scope, error) {
	actor, err := g.Resolve(ctx, id)
	if err != nil {
		return model.User{}, Scope{}, err
	}
	switch actor.Role {
	case model.RoleAdmin:
		return actor, Scope{}, nil
	case model.RoleOrganization:
		if actor.OrganizationID == nil {
			return model.User{}, Scope{}, forbidden()
		}
		return actor, Scope{OrganizationID: *actor.OrganizationID}, nil
	case model.RoleStudent:
		return actor, Scope{UserID: actor.ID}, nil
	default:
		return model.User{}, Scope{}, forbidden()
	}
}

// CreateJobOffer admits ORGANIZATION users that belong to an organization.
func (g *Guard) CreateJobOffer(ctx context.Context, id Identity) (model.User, error) {
	actor, err := g.Resolve(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	if !isOrganizationMember(actor) {
		return model.User{}, forbidden()
	}
	return actor, nil
}

// JobOffer authorizes update and delete on an offer of the actor's own organization.
func (g *Guard) JobOffer(ctx context.Context, id Identity, offerID string) (model.User, model.JobOffer, error) {
	actor, err := g.Resolve(ctx, id)
	if err != nil {
		return model.User{}, model.JobOffer{}, err
	}
	if !isOrganizationMember(actor) {
		return model.User{}, model.JobOffer{}, forbidden()
	}
	offer, err := g.reader.GetJobOffer(ctx, offerID)
	if err != nil {
		return model.User{}, model.JobOffer{}, notFoundOr(err, "Job offer not found", "load job offer")
	}
	if offer.OrganizationID != *actor.OrganizationID {
		return model.User{}, model.JobOffer{}, forbidden()
	}
	return actor, offer, nil
}

// Profile admits the STUDENT owning the profile, which is always the actor.
func (g *Guard) Profile(ctx context.Context, id Identity) (model.User, error) {
	return g.RequireRole(ctx, id, model.RoleStudent)
}

func (g *Guard) Education(ctx context.Context, id Identity, educationID string) (model.User, model.Education, error) {
	actor, err := g.Profile(ctx, id)
	if err != nil {
		return model.User{}, model.Education{}, err
	}
	edu, err := g.reader.GetEducation(ctx, educationID)
	if err != nil {
		return model.User{}, model.Education{}, notFoundOr(err, "Education not found", "load education")
	}
	if edu.UserID != actor.ID {
		return model.User{}, model.Education{}, forbidden()
	}
	return actor, edu, nil
}

func (g *Guard) Experience(ctx context.Context, id Identity, experienceID string) (model.User, model.Experience, error) {
	actor, err := g.Profile(ctx, id)
	if err != nil {
		return model.User{}, model.Experience{}, err
	}
	exp, err := g.reader.GetExperience(ctx, experienceID)
	if err != nil {
		return model.User{}, model.Experience{}, notFoundOr(err, "Experience not found", "load experience")
	}
	if exp.UserID != actor.ID {
		return model.User{}, model.Experience{}, forbidden()
	}
	return actor, exp, nil
}

// Organization admits ADMIN or members of the organization itself.
func (g *Guard) Organization(ctx context.Context, id Identity, organizationID string) (model.User, error) {
	actor, err := g.Resolve(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	switch actor.Role {
	case model.RoleAdmin:
		return actor, nil
	case model.RoleOrganization:
		if actor.OrganizationID != nil && *actor.OrganizationID == organizationID {
			return actor, nil
		}
		return model.User{}, forbidden()
	case model.RoleStudent:
		return model.User{}, forbidden()
	default:
		return model.User{}, forbidden()
	}
}

// CreateEvent admits ADMIN for any organization and ORGANIZATION members for
// their own. It returns the organization the event must be attached to.
func (g *Guard) CreateEvent(ctx context.Context, id Identity, organizationID *string) (model.User, *string, error) {
	actor, err := g.Resolve(ctx, id)
	if err != nil {
		return model.User{}, nil, err
	}
	switch actor.Role {
	case model.RoleAdmin:
		return actor, organizationID, nil
	case model.RoleOrganization:
		if actor.OrganizationID == nil {
			return model.User{}, nil, forbidden()
		}
		if organizationID != nil && *organizationID != *actor.OrganizationID {
			return model.User{}, nil, forbidden()
		}
		return actor, actor.OrganizationID, nil
	case model.RoleStudent:
		return model.User{}, nil, forbidden()
	default:
		return model.User{}, nil, forbidden()
	}
}

func isOrganizationMember(actor model.User) bool {
	return actor.Role == model.RoleOrganization && actor.OrganizationID != nil && *actor.OrganizationID != ""
}

func forbidden() error {
	return apperr.Forbidden("Forbidden")
}

func notFoundOr(err error, message, op string) error {
	if repository.IsNotFound(err) || apperr.Is(err, apperr.KindNotFound) {
		return apperr.NotFound(message)
	}
	return apperr.Internal(op, err)
}
