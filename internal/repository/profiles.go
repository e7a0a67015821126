package repository

import (
	"context"

	"placement/portal/internal/model"
)

const profileColumns = `user_id, resume_url, address, passing_year, bio, skills, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (model.Profile, error) {
	var profile model.Profile
	err := row.Scan(
		&profile.UserID,
		&profile.ResumeURL,
		&profile.Address,
		&profile.PassingYear,
		&profile.Bio,
		&profile.Skills,
		&profile.UpdatedAt,
	)
	return profile, err
}

func (q *Queries) GetProfile(ctx context.Context, userID string) (model.Profile, error) {
	return scanProfile(q.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID))
}

func (q *Queries) UpsertProfile(ctx context.Context, profile model.Profile) (model.Profile, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO profiles (user_id, resume_url, address, passing_year, bio, skills)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE
		SET resume_url = EXCLUDED.resume_url,
		    address = EXCLUDED.address,
		    passing_year = EXCLUDED.passing_year,
		    bio = EXCLUDED.bio,
		    skills = EXCLUDED.skills,
		    updated_at = now()
		RETURNING `+profileColumns,
		profile.UserID, profile.ResumeURL, profile.Address, profile.PassingYear, profile.Bio, textArray(profile.Skills))
	return scanProfile(row)
}

// UpsertProfileResume sets only the resume URL, creating the profile if needed.
func (q *Queries) UpsertProfileResume(ctx context.Context, userID, resumeURL string) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO profiles (user_id, resume_url)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET resume_url = EXCLUDED.resume_url, updated_at = now()
	`, userID, resumeURL)
	return err
}

const educationColumns = `id, user_id, institution, degree, field, start_year, end_year, grade`

func scanEducation(row interface{ Scan(...any) error }) (model.Education, error) {
	var edu model.Education
	err := row.Scan(&edu.ID, &edu.UserID, &edu.Institution, &edu.Degree, &edu.Field, &edu.StartYear, &edu.EndYear, &edu.Grade)
	return edu, err
}

func (q *Queries) CreateEducation(ctx context.Context, edu model.Education) (model.Education, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO education (id, user_id, institution, degree, field, start_year, end_year, grade)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+educationColumns,
		edu.ID, edu.UserID, edu.Institution, edu.Degree, edu.Field, edu.StartYear, edu.EndYear, edu.Grade)
	return scanEducation(row)
}

func (q *Queries) GetEducation(ctx context.Context, educationID string) (model.Education, error) {
	return scanEducation(q.db.QueryRow(ctx, `SELECT `+educationColumns+` FROM education WHERE id = $1`, educationID))
}

func (q *Queries) UpdateEducation(ctx context.Context, edu model.Education) (model.Education, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE education
		SET institution = $2, degree = $3, field = $4, start_year = $5, end_year = $6, grade = $7
		WHERE id = $1
		RETURNING `+educationColumns,
		edu.ID, edu.Institution, edu.Degree, edu.Field, edu.StartYear, edu.EndYear, edu.Grade)
	return scanEducation(row)
}

func (q *Queries) DeleteEducation(ctx context.Context, educationID string) error {
	_, err := q.db.Exec(ctx, `DELETE FROM education WHERE id = $1`, educationID)
	return err
}

func (q *Queries) ListEducation(ctx context.Context, userID string) ([]model.Education, error) {
	rows, err := q.db.Query(ctx, `SELECT `+educationColumns+` FROM education WHERE user_id = $1 ORDER BY start_year DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []model.Education{}
	for rows.Next() {
		edu, err := scanEducation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, edu)
	}
	return items, rows.Err()
}

const experienceColumns = `id, user_id, company, title, description, start_date, end_date, current`

func scanExperience(row interface{ Scan(...any) error }) (model.Experience, error) {
	var exp model.Experience
	err := row.Scan(&exp.ID, &exp.UserID, &exp.Company, &exp.Title, &exp.Description, &exp.StartDate, &exp.EndDate, &exp.Current)
	return exp, err
}

func (q *Queries) CreateExperience(ctx context.Context, exp model.Experience) (model.Experience, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO experience (id, user_id, company, title, description, start_date, end_date, current)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+experienceColumns,
		exp.ID, exp.UserID, exp.Company, exp.Title, exp.Description, exp.StartDate, exp.EndDate, exp.Current)
	return scanExperience(row)
}

func (q *Queries) GetExperience(ctx context.Context, experienceID string) (model.Experience, error) {
	return scanExperience(q.db.QueryRow(ctx, `SELECT `+experienceColumns+` FROM experience WHERE id = $1`, experienceID))
}

func (q *Queries) UpdateExperience(ctx context.Context, exp model.Experience) (model.Experience, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE experience
		SET company = $2, title = $3, description = $4, start_date = $5, end_date = $6, current = $7
		WHERE id = $1
		RETURNING `+experienceColumns,
		exp.ID, exp.Company, exp.Title, exp.Description, exp.StartDate, exp.EndDate, exp.Current)
	return scanExperience(row)
}

func (q *Queries) DeleteExperience(ctx context.Context, experienceID string) error {
	_, err := q.db.Exec(ctx, `DELETE FROM experience WHERE id = $1`, experienceID)
	return err
}

func (q *Queries) ListExperience(ctx context.Context, userID string) ([]model.Experience, error) {
	rows, err := q.db.Query(ctx, `SELECT `+experienceColumns+` FROM experience WHERE user_id = $1 ORDER BY start_date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []model.Experience{}
	for rows.Next() {
		exp, err := scanExperience(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, exp)
	}
	return items, rows.Err()
}
