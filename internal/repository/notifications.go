package repository

import (
	"context"

	"github.com/google/uuid"

	"placement/portal/internal/model"
)

func (q *Queries) CreateNotification(ctx context.Context, userID, message string) (model.Notification, error) {
	var n model.Notification
	err := q.db.QueryRow(ctx, `
		INSERT INTO notifications (id, user_id, message)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, message, created_at
	`, uuid.NewString(), userID, message).Scan(&n.ID, &n.UserID, &n.Message, &n.CreatedAt)
	return n, err
}

func (q *Queries) ListNotifications(ctx context.Context, userID string, page Page) ([]model.Notification, error) {
	limit, args := page.clause([]any{userID})
	rows, err := q.db.Query(ctx, `
		SELECT id, user_id, message, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC`+limit, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

func (q *Queries) CountNotifications(ctx context.Context, userID string) (int, error) {
	var count int
	err := q.db.QueryRow(ctx, `SELECT count(*) FROM notifications WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

const eventColumns = `id, title, description, location, starts_at, organization_id, created_by, created_at`

func scanEvent(row interface{ Scan(...any) error }) (model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Location, &e.StartsAt, &e.OrganizationID, &e.CreatedBy, &e.CreatedAt)
	return e, err
}

func (q *Queries) CreateEvent(ctx context.Context, event model.Event) (model.Event, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO events (id, title, description, location, starts_at, organization_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+eventColumns,
		event.ID, event.Title, event.Description, event.Location, event.StartsAt, event.OrganizationID, event.CreatedBy)
	return scanEvent(row)
}

func (q *Queries) ListEvents(ctx context.Context, organizationID string, page Page) ([]model.Event, error) {
	var w where
	if organizationID != "" {
		w.add("organization_id = ?", organizationID)
	}
	limit, args := page.clause(w.args)
	rows, err := q.db.Query(ctx, `SELECT `+eventColumns+` FROM events`+w.String()+` ORDER BY starts_at`+limit, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
