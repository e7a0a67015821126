package repository

import (
	"context"
	"time"

	"placement/portal/internal/model"
)

const offerColumns = `id, organization_id, posted_by, title, description, location, type, salary, skills, status, deadline, created_at, updated_at`

type OfferFilter struct {
	Type           string
	Location       string
	Status         model.OfferStatus
	OrganizationID string
	Query          string
	Page
}

func scanOffer(row interface{ Scan(...any) error }) (model.JobOffer, error) {
	var offer model.JobOffer
	err := row.Scan(
		&offer.ID,
		&offer.OrganizationID,
		&offer.PostedBy,
		&offer.Title,
		&offer.Description,
		&offer.Location,
		&offer.Type,
		&offer.Salary,
		&offer.Skills,
		&offer.Status,
		&offer.Deadline,
		&offer.CreatedAt,
		&offer.UpdatedAt,
	)
	return offer, err
}

func (q *Queries) CreateJobOffer(ctx context.Context, offer model.JobOffer) (model.JobOffer, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO job_offers (id, organization_id, posted_by, title, description, location, type, salary, skills, status, deadline)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+offerColumns,
		offer.ID, offer.OrganizationID, offer.PostedBy, offer.Title, offer.Description, offer.Location,
		offer.Type, offer.Salary, textArray(offer.Skills), offer.Status, offer.Deadline)
	return scanOffer(row)
}

func (q *Queries) GetJobOffer(ctx context.Context, offerID string) (model.JobOffer, error) {
	return scanOffer(q.db.QueryRow(ctx, `SELECT `+offerColumns+` FROM job_offers WHERE id = $1`, offerID))
}

func (q *Queries) UpdateJobOffer(ctx context.Context, offer model.JobOffer) (model.JobOffer, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE job_offers
		SET title = $2, description = $3, location = $4, type = $5, salary = $6, skills = $7,
		    status = $8, deadline = $9, updated_at = now()
		WHERE id = $1
		RETURNING `+offerColumns,
		offer.ID, offer.Title, offer.Description, offer.Location, offer.Type, offer.Salary,
		textArray(offer.Skills), offer.Status, offer.Deadline)
	return scanOffer(row)
}

func (q *Queries) DeleteJobOffer(ctx context.Context, offerID string) error {
	_, err := q.db.Exec(ctx, `DELETE FROM job_offers WHERE id = $1`, offerID)
	return err
}

func (q *Queries) ListJobOffers(ctx context.Context, filter OfferFilter) ([]model.JobOffer, error) {
	var w where
	if filter.Type != "" {
		w.add("type = ?", filter.Type)
	}
	if filter.Location != "" {
		w.add("location ILIKE ?", "%"+filter.Location+"%")
	}
	if filter.Status != "" {
		w.add("status = ?", filter.Status)
	}
	if filter.OrganizationID != "" {
		w.add("organization_id = ?", filter.OrganizationID)
	}
	if filter.Query != "" {
		w.add("title ILIKE ?", "%"+filter.Query+"%")
	}
	limit, args := filter.Page.clause(w.args)
	rows, err := q.db.Query(ctx, `SELECT `+offerColumns+` FROM job_offers`+w.String()+` ORDER BY created_at DESC`+limit, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	offers := []model.JobOffer{}
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, offer)
	}
	return offers, rows.Err()
}

// CountOffersByStatus counts offers per status, optionally for one organization.
func (q *Queries) CountOffersByStatus(ctx context.Context, organizationID string) (map[string]int, error) {
	var w where
	if organizationID != "" {
		w.add("organization_id = ?", organizationID)
	}
	rows, err := q.db.Query(ctx, `SELECT status, count(*) FROM job_offers`+w.String()+` GROUP BY status`, w.args...)
	if err != nil {
		return nil, err
	}
	return scanCounts(rows)
}

// CloseExpiredOffers closes every active offer whose deadline is before now.
func (q *Queries) CloseExpiredOffers(ctx context.Context, now time.Time) (int64, error) {
	tag, err := q.db.Exec(ctx, `
		UPDATE job_offers
		SET status = 'closed', updated_at = now()
		WHERE status = 'active' AND deadline IS NOT NULL AND deadline < $1
	`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
