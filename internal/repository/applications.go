package repository

import (
	"context"

	"placement/portal/internal/model"
)

const applicationColumns = `a.id, a.user_id, a.job_offer_id, a.status, a.resume_url, a.cover_letter, a.applied_date, a.updated_at`

// ApplicationFilter scopes list queries. Empty fields do not filter.
type ApplicationFilter struct {
	UserID         string
	OrganizationID string
	JobOfferID     string
	Status         model.ApplicationStatus
	Page
}

func (f ApplicationFilter) conditions() where {
	var w where
	if f.UserID != "" {
		w.add("a.user_id = ?", f.UserID)
	}
	if f.OrganizationID != "" {
		w.add("o.organization_id = ?", f.OrganizationID)
	}
	if f.JobOfferID != "" {
		w.add("a.job_offer_id = ?", f.JobOfferID)
	}
	if f.Status != "" {
		w.add("a.status = ?", f.Status)
	}
	return w
}

func scanApplication(row interface{ Scan(...any) error }) (model.Application, error) {
	var app model.Application
	err := row.Scan(
		&app.ID,
		&app.UserID,
		&app.JobOfferID,
		&app.Status,
		&app.ResumeURL,
		&app.CoverLetter,
		&app.AppliedDate,
		&app.UpdatedAt,
	)
	return app, err
}

func (q *Queries) CreateApplication(ctx context.Context, app model.Application) (model.Application, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO applications AS a (id, user_id, job_offer_id, status, resume_url, cover_letter, applied_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING `+applicationColumns,
		app.ID, app.UserID, app.JobOfferID, app.Status, app.ResumeURL, app.CoverLetter, app.AppliedDate)
	return scanApplication(row)
}

func (q *Queries) GetApplication(ctx context.Context, applicationID string) (model.Application, error) {
	return scanApplication(q.db.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications a WHERE a.id = $1`, applicationID))
}

func (q *Queries) ApplicationExists(ctx context.Context, userID, jobOfferID string) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM applications WHERE user_id = $1 AND job_offer_id = $2)
	`, userID, jobOfferID).Scan(&exists)
	return exists, err
}

func (q *Queries) UpdateApplicationStatus(ctx context.Context, applicationID string, status model.ApplicationStatus) (model.Application, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE applications AS a
		SET status = $2, updated_at = now()
		WHERE a.id = $1
		RETURNING `+applicationColumns,
		applicationID, status)
	return scanApplication(row)
}

func (q *Queries) DeleteApplication(ctx context.Context, applicationID string) error {
	_, err := q.db.Exec(ctx, `DELETE FROM applications WHERE id = $1`, applicationID)
	return err
}

func (q *Queries) ListApplications(ctx context.Context, filter ApplicationFilter) ([]model.Application, error) {
	w := filter.conditions()
	limit, args := filter.Page.clause(w.args)
	rows, err := q.db.Query(ctx, `
		SELECT `+applicationColumns+`
		FROM applications a
		JOIN job_offers o ON o.id = a.job_offer_id`+w.String()+`
		ORDER BY a.applied_date DESC`+limit, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	apps := []model.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func (q *Queries) CountApplicationsByStatus(ctx context.Context, filter ApplicationFilter) (map[string]int, error) {
	w := filter.conditions()
	rows, err := q.db.Query(ctx, `
		SELECT a.status, count(*)
		FROM applications a
		JOIN job_offers o ON o.id = a.job_offer_id`+w.String()+`
		GROUP BY a.status`, w.args...)
	if err != nil {
		return nil, err
	}
	return scanCounts(rows)
}
