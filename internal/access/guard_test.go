package access

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placement/portal/internal/apperr"
	"placement/portal/internal/memstore"
	"placement/portal/internal/model"
)

type fixture struct {
	store    *memstore.Store
	guard    *Guard
	admin    model.User
	org      model.User
	otherOrg model.User
	student  model.User
	other    model.User
	offer    model.JobOffer
	app      model.Application
}

func strPtr(value string) *string {
	return &value
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memstore.New()
	f := fixture{store: store, guard: NewGuard(store)}
	f.admin = store.AddUser(model.User{Role: model.RoleAdmin})
	f.org = store.AddUser(model.User{Role: model.RoleOrganization, OrganizationID: strPtr("org-1")})
	f.otherOrg = store.AddUser(model.User{Role: model.RoleOrganization, OrganizationID: strPtr("org-2")})
	f.student = store.AddUser(model.User{Role: model.RoleStudent})
	f.other = store.AddUser(model.User{Role: model.RoleStudent})
	f.offer = store.AddJobOffer(model.JobOffer{OrganizationID: "org-1", PostedBy: f.org.ID, Title: "Backend Intern"})

	app, err := store.CreateApplication(context.Background(), model.Application{
		UserID:      f.student.ID,
		JobOfferID:  f.offer.ID,
		Status:      model.StatusPending,
		AppliedDate: time.Now().UTC(),
	})
	require.NoError(t, err)
	f.app = app
	return f
}

func as(user model.User) Identity {
	return Identity{UserID: user.ID}
}

func requireKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperr.KindOf(err), "unexpected error: %v", err)
}

func TestResolve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.guard.Resolve(ctx, Identity{})
	requireKind(t, err, apperr.KindUnauthorized)

	_, err = f.guard.Resolve(ctx, Identity{UserID: "ghost"})
	requireKind(t, err, apperr.KindNotFound)

	actor, err := f.guard.Resolve(ctx, as(f.student))
	require.NoError(t, err)
	assert.Equal(t, model.RoleStudent, actor.Role)
}

func TestUnknownRoleIsForbidden(t *testing.T) {
	f := newFixture(t)
	odd := f.store.AddUser(model.User{Role: model.Role("SUPERUSER")})

	_, err := f.guard.Application(context.Background(), as(odd), ActionRead, f.app.ID)
	requireKind(t, err, apperr.KindForbidden)

	_, _, err = f.guard.ApplicationScope(context.Background(), as(odd))
	requireKind(t, err, apperr.KindForbidden)
}

func TestCreateApplicationRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.guard.CreateApplication(ctx, as(f.org), f.offer.ID)
	requireKind(t, err, apperr.KindForbidden)

	_, _, err = f.guard.CreateApplication(ctx, as(f.admin), f.offer.ID)
	requireKind(t, err, apperr.KindForbidden)

	_, _, err = f.guard.CreateApplication(ctx, as(f.other), "missing-offer")
	requireKind(t, err, apperr.KindNotFound)

	_, _, err = f.guard.CreateApplication(ctx, as(f.student), f.offer.ID)
	requireKind(t, err, apperr.KindConflict)

	actor, offer, err := f.guard.CreateApplication(ctx, as(f.other), f.offer.ID)
	require.NoError(t, err)
	assert.Equal(t, f.other.ID, actor.ID)
	assert.Equal(t, f.offer.ID, offer.ID)
}

// strictOffers fails job offer lookups the way the database does when an id
// cannot be encoded as a uuid.
type strictOffers struct {
	*memstore.Store
	lookups int
}

func (s *strictOffers) GetJobOffer(ctx context.Context, offerID string) (model.JobOffer, error) {
	s.lookups++
	if _, err := uuid.Parse(offerID); err != nil {
		return model.JobOffer{}, errors.New("cannot encode job offer id as uuid")
	}
	return s.Store.GetJobOffer(ctx, offerID)
}

func TestCreateApplicationMalformedOfferID(t *testing.T) {
	f := newFixture(t)
	reader := &strictOffers{Store: f.store}
	guard := NewGuard(reader)
	ctx := context.Background()

	_, _, err := guard.CreateApplication(ctx, as(f.other), "not-a-uuid")
	requireKind(t, err, apperr.KindNotFound)
	assert.Equal(t, "Job offer not found", apperr.PublicMessage(err))
	assert.Zero(t, reader.lookups)

	_, _, err = guard.CreateApplication(ctx, as(f.org), "not-a-uuid")
	requireKind(t, err, apperr.KindForbidden)

	_, _, err = guard.CreateApplication(ctx, as(f.other), f.offer.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reader.lookups)
}

func TestApplicationAccessMatrix(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		actor   model.User
		action  Action
		allowed bool
	}{
		{"admin reads", f.admin, ActionRead, true},
		{"admin updates", f.admin, ActionUpdate, true},
		{"admin deletes", f.admin, ActionDelete, true},
		{"owning org reads", f.org, ActionRead, true},
		{"owning org updates", f.org, ActionUpdate, true},
		{"owning org deletes", f.org, ActionDelete, true},
		{"other org reads", f.otherOrg, ActionRead, false},
		{"other org updates", f.otherOrg, ActionUpdate, false},
		{"other org deletes", f.otherOrg, ActionDelete, false},
		{"owner student reads", f.student, ActionRead, true},
		{"owner student updates", f.student, ActionUpdate, false},
		{"owner student deletes", f.student, ActionDelete, true},
		{"other student reads", f.other, ActionRead, false},
		{"other student deletes", f.other, ActionDelete, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target, err := f.guard.Application(ctx, as(tc.actor), tc.action, f.app.ID)
			if tc.allowed {
				require.NoError(t, err)
				assert.Equal(t, f.app.ID, target.Application.ID)
				assert.Equal(t, f.offer.ID, target.Offer.ID)
				return
			}
			requireKind(t, err, apperr.KindForbidden)
		})
	}
}

func TestStudentStatusUpdateForbiddenBeforeLookup(t *testing.T) {
	f := newFixture(t)
	_, err := f.guard.Application(context.Background(), as(f.student), ActionUpdate, "missing")
	requireKind(t, err, apperr.KindForbidden)
}

func TestApplicationNotFoundAfterRoleCheck(t *testing.T) {
	f := newFixture(t)
	_, err := f.guard.Application(context.Background(), as(f.admin), ActionDelete, "missing")
	requireKind(t, err, apperr.KindNotFound)

	_, err = f.guard.Application(context.Background(), Identity{}, ActionDelete, "missing")
	requireKind(t, err, apperr.KindUnauthorized)
}

func TestApplicationScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, scope, err := f.guard.ApplicationScope(ctx, as(f.admin))
	require.NoError(t, err)
	assert.Equal(t, Scope{}, scope)

	_, scope, err = f.guard.ApplicationScope(ctx, as(f.org))
	require.NoError(t, err)
	assert.Equal(t, Scope{OrganizationID: "org-1"}, scope)

	_, scope, err = f.guard.ApplicationScope(ctx, as(f.student))
	require.NoError(t, err)
	assert.Equal(t, Scope{UserID: f.student.ID}, scope)

	detached := f.store.AddUser(model.User{Role: model.RoleOrganization})
	_, _, err = f.guard.ApplicationScope(ctx, as(detached))
	requireKind(t, err, apperr.KindForbidden)
}

func TestJobOfferOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.guard.CreateJobOffer(ctx, as(f.org))
	require.NoError(t, err)
	_, err = f.guard.CreateJobOffer(ctx, as(f.admin))
	requireKind(t, err, apperr.KindForbidden)
	_, err = f.guard.CreateJobOffer(ctx, as(f.student))
	requireKind(t, err, apperr.KindForbidden)

	_, offer, err := f.guard.JobOffer(ctx, as(f.org), f.offer.ID)
	require.NoError(t, err)
	assert.Equal(t, f.offer.ID, offer.ID)

	_, _, err = f.guard.JobOffer(ctx, as(f.otherOrg), f.offer.ID)
	requireKind(t, err, apperr.KindForbidden)

	_, _, err = f.guard.JobOffer(ctx, as(f.org), "missing")
	requireKind(t, err, apperr.KindNotFound)
}

func TestProfileRowsOwnedByStudent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	edu := f.store.AddEducation(model.Education{UserID: f.student.ID, Institution: "EFREI", StartYear: 2021})
	exp := f.store.AddExperience(model.Experience{UserID: f.student.ID, Company: "Acme", Title: "Intern"})

	_, err := f.guard.Profile(ctx, as(f.org))
	requireKind(t, err, apperr.KindForbidden)

	_, _, err = f.guard.Education(ctx, as(f.student), edu.ID)
	require.NoError(t, err)
	_, _, err = f.guard.Education(ctx, as(f.other), edu.ID)
	requireKind(t, err, apperr.KindForbidden)

	_, _, err = f.guard.Experience(ctx, as(f.student), exp.ID)
	require.NoError(t, err)
	_, _, err = f.guard.Experience(ctx, as(f.other), exp.ID)
	requireKind(t, err, apperr.KindForbidden)
	_, _, err = f.guard.Experience(ctx, as(f.student), "missing")
	requireKind(t, err, apperr.KindNotFound)
}

func TestOrganizationAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.guard.Organization(ctx, as(f.admin), "org-2")
	require.NoError(t, err)
	_, err = f.guard.Organization(ctx, as(f.org), "org-1")
	require.NoError(t, err)
	_, err = f.guard.Organization(ctx, as(f.org), "org-2")
	requireKind(t, err, apperr.KindForbidden)
	_, err = f.guard.Organization(ctx, as(f.student), "org-1")
	requireKind(t, err, apperr.KindForbidden)
}

func TestCreateEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, orgID, err := f.guard.CreateEvent(ctx, as(f.org), nil)
	require.NoError(t, err)
	require.NotNil(t, orgID)
	assert.Equal(t, "org-1", *orgID)

	_, _, err = f.guard.CreateEvent(ctx, as(f.org), strPtr("org-2"))
	requireKind(t, err, apperr.KindForbidden)

	_, orgID, err = f.guard.CreateEvent(ctx, as(f.admin), nil)
	require.NoError(t, err)
	assert.Nil(t, orgID)

	_, _, err = f.guard.CreateEvent(ctx, as(f.student), nil)
	requireKind(t, err, apperr.KindForbidden)
}
