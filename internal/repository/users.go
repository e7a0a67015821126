package repository

import (
	"context"

	"placement/portal/internal/model"
)

const userColumns = `id, email, password_hash, name, role, organization_id, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Role,
		&user.OrganizationID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

func (q *Queries) CreateUser(ctx context.Context, user model.User) (model.User, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash, name, role, organization_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns,
		user.ID, user.Email, user.PasswordHash, user.Name, user.Role, user.OrganizationID)
	return scanUser(row)
}

func (q *Queries) GetUserByID(ctx context.Context, userID string) (model.User, error) {
	return scanUser(q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return scanUser(q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
}

func (q *Queries) CountUsersByRole(ctx context.Context) (map[string]int, error) {
	rows, err := q.db.Query(ctx, `SELECT role, count(*) FROM users GROUP BY role`)
	if err != nil {
		return nil, err
	}
	return scanCounts(rows)
}

const organizationColumns = `id, name, description, website, location, created_at, updated_at`

func scanOrganization(row interface{ Scan(...any) error }) (model.Organization, error) {
	var org model.Organization
	err := row.Scan(&org.ID, &org.Name, &org.Description, &org.Website, &org.Location, &org.CreatedAt, &org.UpdatedAt)
	return org, err
}

func (q *Queries) CreateOrganization(ctx context.Context, org model.Organization) (model.Organization, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO organizations (id, name, description, website, location)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+organizationColumns,
		org.ID, org.Name, org.Description, org.Website, org.Location)
	return scanOrganization(row)
}

func (q *Queries) GetOrganization(ctx context.Context, orgID string) (model.Organization, error) {
	return scanOrganization(q.db.QueryRow(ctx, `SELECT `+organizationColumns+` FROM organizations WHERE id = $1`, orgID))
}

func (q *Queries) UpdateOrganization(ctx context.Context, org model.Organization) (model.Organization, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE organizations
		SET name = $2, description = $3, website = $4, location = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+organizationColumns,
		org.ID, org.Name, org.Description, org.Website, org.Location)
	return scanOrganization(row)
}

func (q *Queries) ListOrganizations(ctx context.Context, page Page) ([]model.Organization, error) {
	limit, args := page.clause(nil)
	rows, err := q.db.Query(ctx, `SELECT `+organizationColumns+` FROM organizations ORDER BY name`+limit, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orgs := []model.Organization{}
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

func (q *Queries) CountOrganizations(ctx context.Context) (int, error) {
	var count int
	err := q.db.QueryRow(ctx, `SELECT count(*) FROM organizations`).Scan(&count)
	return count, err
}
