package lifecycle

import (
	"context"

	"placement/portal/internal/access"
	"placement/portal/internal/db"
	"placement/portal/internal/model"
	"placement/portal/internal/repository"
)

type Repo interface {
	access.Reader
	CreateApplication(ctx context.Context, app model.Application) (model.Application, error)
	UpdateApplicationStatus(ctx context.Context, applicationID string, status model.ApplicationStatus) (model.Application, error)
	DeleteApplication(ctx context.Context, applicationID string) error
	ListApplications(ctx context.Context, filter repository.ApplicationFilter) ([]model.Application, error)
	UpsertProfileResume(ctx context.Context, userID, resumeURL string) error
	CreateNotification(ctx context.Context, userID, message string) (model.Notification, error)
}

// Tx is a Repo bound to an open transaction.
type Tx interface {
	Repo
	// Savepoint isolates fn so its failure leaves the enclosing transaction usable.
	Savepoint(ctx context.Context, fn func(Repo) error) error
}

type Store interface {
	Repo() Repo
	WithTx(ctx context.Context, fn func(Tx) error) error
}

type pgStore struct {
	store *db.Store
}

// NewStore adapts the Postgres store.
func NewStore(store *db.Store) Store {
	return pgStore{store: store}
}

func (s pgStore) Repo() Repo {
	return s.store.Queries
}

func (s pgStore) WithTx(ctx context.Context, fn func(Tx) error) error {
	return s.store.WithTx(ctx, func(q *repository.Queries) error {
		return fn(pgTx{q})
	})
}

type pgTx struct {
	*repository.Queries
}

func (t pgTx) Savepoint(ctx context.Context, fn func(Repo) error) error {
	return t.Queries.Savepoint(ctx, func(q *repository.Queries) error {
		return fn(q)
	})
}
