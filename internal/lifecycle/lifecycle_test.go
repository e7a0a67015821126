package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placement/portal/internal/access"
	"placement/portal/internal/apperr"
	"placement/portal/internal/logging"
	"placement/portal/internal/memstore"
	"placement/portal/internal/model"
	"placement/portal/internal/notify"
	"placement/portal/internal/ratelimit"
	"placement/portal/internal/repository"
)

type memStore struct {
	mem *memstore.Store
}

func (s memStore) Repo() Repo {
	return s.mem
}

func (s memStore) WithTx(ctx context.Context, fn func(Tx) error) error {
	return s.mem.WithTx(ctx, func(m *memstore.Store) error {
		return fn(memTx{m})
	})
}

type memTx struct {
	*memstore.Store
}

func (t memTx) Savepoint(ctx context.Context, fn func(Repo) error) error {
	return t.Store.Savepoint(ctx, func(m *memstore.Store) error {
		return fn(m)
	})
}

type fixture struct {
	mem      *memstore.Store
	manager  *Manager
	admin    model.User
	org      model.User
	org2     model.User
	student  model.User
	student2 model.User
	offer    model.JobOffer
}

func strPtr(value string) *string {
	return &value
}

func as(user model.User) access.Identity {
	return access.Identity{UserID: user.ID}
}

func newFixture(t *testing.T, opts Options) fixture {
	t.Helper()
	mem := memstore.New()
	f := fixture{mem: mem}
	f.admin = mem.AddUser(model.User{Role: model.RoleAdmin, Name: "Admin"})
	f.org = mem.AddUser(model.User{Role: model.RoleOrganization, OrganizationID: strPtr("org-1"), Name: "Recruiter"})
	f.org2 = mem.AddUser(model.User{Role: model.RoleOrganization, OrganizationID: strPtr("org-2"), Name: "Other Recruiter"})
	f.student = mem.AddUser(model.User{Role: model.RoleStudent, Name: "Sam"})
	f.student2 = mem.AddUser(model.User{Role: model.RoleStudent, Name: "Alex"})
	f.offer = mem.AddJobOffer(model.JobOffer{OrganizationID: "org-1", PostedBy: f.org.ID, Title: "Backend Intern"})

	log := logging.Discard()
	f.manager = NewManager(memStore{mem}, access.NewGuard(mem), notify.NewEmitter(log), log, opts)
	return f
}

func requireKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperr.KindOf(err), "unexpected error: %v", err)
}

func (f fixture) apply(t *testing.T, student model.User, resume *string) model.Application {
	t.Helper()
	app, err := f.manager.CreateApplication(context.Background(), as(student), CreateInput{
		JobOfferID: f.offer.ID,
		ResumeURL:  resume,
	})
	require.NoError(t, err)
	return app
}

func TestCreateApplication(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, Options{Now: func() time.Time { return fixed }})
	ctx := context.Background()

	app := f.apply(t, f.student, strPtr(" https://cdn.example.com/sam.pdf "))
	assert.Equal(t, model.StatusPending, app.Status)
	assert.Equal(t, fixed, app.AppliedDate)
	require.NotNil(t, app.ResumeURL)
	assert.Equal(t, "https://cdn.example.com/sam.pdf", *app.ResumeURL)

	profile, err := f.mem.GetProfile(ctx, f.student.ID)
	require.NoError(t, err)
	require.NotNil(t, profile.ResumeURL)
	assert.Equal(t, "https://cdn.example.com/sam.pdf", *profile.ResumeURL)

	notes, err := f.mem.ListNotifications(ctx, f.org.ID, repository.Page{})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Sam applied for Backend Intern", notes[0].Message)
}

func TestCreateApplicationWithoutResumeLeavesProfile(t *testing.T) {
	f := newFixture(t, Options{})
	f.apply(t, f.student, strPtr("   "))

	_, err := f.mem.GetProfile(context.Background(), f.student.ID)
	assert.True(t, repository.IsNotFound(err))
}

func TestCreateApplicationOncePerOffer(t *testing.T) {
	f := newFixture(t, Options{})
	f.apply(t, f.student, nil)

	_, err := f.manager.CreateApplication(context.Background(), as(f.student), CreateInput{JobOfferID: f.offer.ID})
	requireKind(t, err, apperr.KindConflict)

	apps, err := f.mem.ListApplications(context.Background(), repository.ApplicationFilter{UserID: f.student.ID})
	require.NoError(t, err)
	assert.Len(t, apps, 1)
}

func TestCreateApplicationErrors(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	_, err := f.manager.CreateApplication(ctx, access.Identity{}, CreateInput{JobOfferID: f.offer.ID})
	requireKind(t, err, apperr.KindUnauthorized)

	_, err = f.manager.CreateApplication(ctx, as(f.student), CreateInput{})
	requireKind(t, err, apperr.KindValidation)

	_, err = f.manager.CreateApplication(ctx, as(f.student), CreateInput{JobOfferID: "missing"})
	requireKind(t, err, apperr.KindNotFound)

	_, err = f.manager.CreateApplication(ctx, as(f.org), CreateInput{JobOfferID: f.offer.ID})
	requireKind(t, err, apperr.KindForbidden)

	closed := f.mem.AddJobOffer(model.JobOffer{OrganizationID: "org-1", PostedBy: f.org.ID, Status: model.OfferClosed})
	_, err = f.manager.CreateApplication(ctx, as(f.student), CreateInput{JobOfferID: closed.ID})
	requireKind(t, err, apperr.KindValidation)
}

func TestNotificationFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, Options{})
	f.mem.FailNotifications = true

	app := f.apply(t, f.student, strPtr("https://cdn.example.com/sam.pdf"))

	stored, err := f.mem.GetApplication(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, stored.Status)
	profile, err := f.mem.GetProfile(context.Background(), f.student.ID)
	require.NoError(t, err)
	assert.NotNil(t, profile.ResumeURL)
}

func TestCreateApplicationIsAtomic(t *testing.T) {
	f := newFixture(t, Options{})
	f.mem.FailProfileUpserts = true

	_, err := f.manager.CreateApplication(context.Background(), as(f.student), CreateInput{
		JobOfferID: f.offer.ID,
		ResumeURL:  strPtr("https://cdn.example.com/sam.pdf"),
	})
	requireKind(t, err, apperr.KindInternal)

	exists, err := f.mem.ApplicationExists(context.Background(), f.student.ID, f.offer.ID)
	require.NoError(t, err)
	assert.False(t, exists, "application insert must roll back with the profile update")

	notes, err := f.mem.ListNotifications(context.Background(), f.org.ID, repository.Page{})
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestStudentCannotUpdateStatus(t *testing.T) {
	f := newFixture(t, Options{})
	app := f.apply(t, f.student, nil)

	for _, status := range []model.ApplicationStatus{model.StatusPending, model.StatusSelected, model.StatusRejected} {
		_, err := f.manager.UpdateApplicationStatus(context.Background(), as(f.student), app.ID, status)
		requireKind(t, err, apperr.KindForbidden)
	}
}

func TestOrganizationUpdatesOnlyOwnOffers(t *testing.T) {
	f := newFixture(t, Options{})
	app := f.apply(t, f.student, nil)
	ctx := context.Background()

	_, err := f.manager.UpdateApplicationStatus(ctx, as(f.org2), app.ID, model.StatusSelected)
	requireKind(t, err, apperr.KindForbidden)
	err = f.manager.DeleteApplication(ctx, as(f.org2), app.ID)
	requireKind(t, err, apperr.KindForbidden)

	updated, err := f.manager.UpdateApplicationStatus(ctx, as(f.org), app.ID, model.StatusSelected)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSelected, updated.Status)
}

func TestUpdateStatusValidationAndNotFound(t *testing.T) {
	f := newFixture(t, Options{})
	app := f.apply(t, f.student, nil)
	ctx := context.Background()

	_, err := f.manager.UpdateApplicationStatus(ctx, as(f.admin), app.ID, model.ApplicationStatus("ACCEPTED"))
	requireKind(t, err, apperr.KindValidation)

	_, err = f.manager.UpdateApplicationStatus(ctx, as(f.admin), "missing", model.StatusRejected)
	requireKind(t, err, apperr.KindNotFound)

	_, err = f.manager.UpdateApplicationStatus(ctx, access.Identity{}, app.ID, model.StatusRejected)
	requireKind(t, err, apperr.KindUnauthorized)

	_, err = f.manager.UpdateApplicationStatus(ctx, access.Identity{}, app.ID, model.ApplicationStatus("ACCEPTED"))
	requireKind(t, err, apperr.KindUnauthorized)

	_, err = f.manager.UpdateApplicationStatus(ctx, as(f.admin), "missing", model.ApplicationStatus("ACCEPTED"))
	requireKind(t, err, apperr.KindNotFound)
}

func TestUpdateStatusChecksAccessBeforeStatus(t *testing.T) {
	f := newFixture(t, Options{})
	app := f.apply(t, f.student, nil)
	ctx := context.Background()

	_, err := f.manager.UpdateApplicationStatus(ctx, as(f.student), app.ID, model.ApplicationStatus("ARCHIVED"))
	requireKind(t, err, apperr.KindForbidden)

	_, err = f.manager.UpdateApplicationStatus(ctx, as(f.org2), app.ID, model.ApplicationStatus("ARCHIVED"))
	requireKind(t, err, apperr.KindForbidden)

	_, err = f.manager.UpdateApplicationStatus(ctx, as(f.org), app.ID, model.ApplicationStatus("ARCHIVED"))
	requireKind(t, err, apperr.KindValidation)

	updated, err := f.manager.UpdateApplicationStatus(ctx, as(f.org), app.ID, model.ApplicationStatus("selected"))
	require.NoError(t, err)
	assert.Equal(t, model.StatusSelected, updated.Status)
}

func TestRateLimitCountsOnlyAdmittedApplications(t *testing.T) {
	f := newFixture(t, Options{Limiter: ratelimit.NewMemoryLimiter(1, time.Hour)})
	ctx := context.Background()
	second := f.mem.AddJobOffer(model.JobOffer{OrganizationID: "org-1", PostedBy: f.org.ID, Title: "Data Intern"})
	closed := f.mem.AddJobOffer(model.JobOffer{OrganizationID: "org-1", PostedBy: f.org.ID, Status: model.OfferClosed})

	for i := 0; i < 3; i++ {
		_, err := f.manager.CreateApplication(ctx, as(f.student), CreateInput{JobOfferID: "missing"})
		requireKind(t, err, apperr.KindNotFound)
	}
	_, err := f.manager.CreateApplication(ctx, as(f.student), CreateInput{JobOfferID: closed.ID})
	requireKind(t, err, apperr.KindValidation)

	f.apply(t, f.student, nil)

	_, err = f.manager.CreateApplication(ctx, as(f.student), CreateInput{JobOfferID: f.offer.ID})
	requireKind(t, err, apperr.KindConflict)

	_, err = f.manager.CreateApplication(ctx, as(f.student), CreateInput{JobOfferID: second.ID})
	requireKind(t, err, apperr.KindRateLimited)
	assert.Equal(t, "Too many applications, try again later", apperr.PublicMessage(err))

	_, err = f.manager.CreateApplication(ctx, as(f.student2), CreateInput{JobOfferID: second.ID})
	require.NoError(t, err)
}

func TestPermissivePolicyAllowsReopening(t *testing.T) {
	f := newFixture(t, Options{})
	app := f.apply(t, f.student, nil)
	ctx := context.Background()

	_, err := f.manager.UpdateApplicationStatus(ctx, as(f.admin), app.ID, model.StatusRejected)
	require.NoError(t, err)
	reopened, err := f.manager.UpdateApplicationStatus(ctx, as(f.admin), app.ID, model.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, reopened.Status)
}

func TestOneWayPolicy(t *testing.T) {
	f := newFixture(t, Options{Policy: OneWay{}})
	app := f.apply(t, f.student, nil)
	ctx := context.Background()

	_, err := f.manager.UpdateApplicationStatus(ctx, as(f.org), app.ID, model.StatusSelected)
	require.NoError(t, err)

	_, err = f.manager.UpdateApplicationStatus(ctx, as(f.org), app.ID, model.StatusPending)
	requireKind(t, err, apperr.KindValidation)
	_, err = f.manager.UpdateApplicationStatus(ctx, as(f.org), app.ID, model.StatusRejected)
	requireKind(t, err, apperr.KindValidation)
}

func TestStatusChangeNotifications(t *testing.T) {
	ctx := context.Background()

	quiet := newFixture(t, Options{})
	app := quiet.apply(t, quiet.student, nil)
	_, err := quiet.manager.UpdateApplicationStatus(ctx, as(quiet.org), app.ID, model.StatusSelected)
	require.NoError(t, err)
	notes, err := quiet.mem.ListNotifications(ctx, quiet.student.ID, repository.Page{})
	require.NoError(t, err)
	assert.Empty(t, notes)

	loud := newFixture(t, Options{NotifyOnStatusChange: true})
	app = loud.apply(t, loud.student, nil)
	_, err = loud.manager.UpdateApplicationStatus(ctx, as(loud.org), app.ID, model.StatusSelected)
	require.NoError(t, err)
	notes, err = loud.mem.ListNotifications(ctx, loud.student.ID, repository.Page{})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Your application for Backend Intern is now SELECTED", notes[0].Message)
}

func TestDeleteApplication(t *testing.T) {
	f := newFixture(t, Options{})
	app := f.apply(t, f.student, nil)
	ctx := context.Background()

	err := f.manager.DeleteApplication(ctx, as(f.student2), app.ID)
	requireKind(t, err, apperr.KindForbidden)

	require.NoError(t, f.manager.DeleteApplication(ctx, as(f.student), app.ID))
	_, err = f.mem.GetApplication(ctx, app.ID)
	assert.True(t, repository.IsNotFound(err))

	err = f.manager.DeleteApplication(ctx, as(f.student), app.ID)
	requireKind(t, err, apperr.KindNotFound)

	notes, err := f.mem.ListNotifications(ctx, f.org.ID, repository.Page{})
	require.NoError(t, err)
	assert.Len(t, notes, 1, "notifications survive application deletion")
}

func TestSelectionScenario(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	app := f.apply(t, f.student, strPtr("https://cdn.example.com/sam.pdf"))
	assert.Equal(t, model.StatusPending, app.Status)

	roundTrip, err := f.manager.GetApplication(ctx, as(f.student), app.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, roundTrip.Status)
	assert.Equal(t, app.ResumeURL, roundTrip.ResumeURL)

	_, err = f.manager.UpdateApplicationStatus(ctx, as(f.org), app.ID, model.StatusSelected)
	require.NoError(t, err)

	seen, err := f.manager.GetApplication(ctx, as(f.student), app.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSelected, seen.Status)

	_, err = f.manager.GetApplication(ctx, as(f.org2), app.ID)
	requireKind(t, err, apperr.KindForbidden)
}

func TestListApplicationsByRole(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	otherOffer := f.mem.AddJobOffer(model.JobOffer{OrganizationID: "org-2", PostedBy: f.org2.ID, Title: "Designer"})
	f.apply(t, f.student, nil)
	_, err := f.manager.CreateApplication(ctx, as(f.student2), CreateInput{JobOfferID: otherOffer.ID})
	require.NoError(t, err)

	all, err := f.manager.ListApplications(ctx, as(f.admin), ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := f.manager.ListApplications(ctx, as(f.org), ListFilter{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, f.offer.ID, own[0].JobOfferID)

	mine, err := f.manager.ListApplications(ctx, as(f.student2), ListFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, f.student2.ID, mine[0].UserID)

	selected, err := f.manager.ListApplications(ctx, as(f.admin), ListFilter{Status: model.StatusSelected})
	require.NoError(t, err)
	assert.Empty(t, selected)

	_, err = f.manager.ListApplications(ctx, access.Identity{}, ListFilter{})
	requireKind(t, err, apperr.KindUnauthorized)
}

func TestPolicyFromConfig(t *testing.T) {
	assert.IsType(t, OneWay{}, PolicyFromConfig("one_way"))
	assert.IsType(t, Permissive{}, PolicyFromConfig("permissive"))
	assert.IsType(t, Permissive{}, PolicyFromConfig(""))
}
