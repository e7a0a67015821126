package model

import (
	"strings"
	"time"
)

type Role string

const (
	RoleStudent      Role = "STUDENT"
	RoleOrganization Role = "ORGANIZATION"
	RoleAdmin        Role = "ADMIN"
)

// ParseRole accepts any casing and reports false for values outside the closed set.
func ParseRole(value string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(value))) {
	case RoleStudent:
		return RoleStudent, true
	case RoleOrganization:
		return RoleOrganization, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "PENDING"
	StatusSelected ApplicationStatus = "SELECTED"
	StatusRejected ApplicationStatus = "REJECTED"
)

func ParseApplicationStatus(value string) (ApplicationStatus, bool) {
	switch ApplicationStatus(strings.ToUpper(strings.TrimSpace(value))) {
	case StatusPending:
		return StatusPending, true
	case StatusSelected:
		return StatusSelected, true
	case StatusRejected:
		return StatusRejected, true
	default:
		return "", false
	}
}

type OfferStatus string

const (
	OfferActive OfferStatus = "active"
	OfferClosed OfferStatus = "closed"
)

func ParseOfferStatus(value string) (OfferStatus, bool) {
	switch OfferStatus(strings.ToLower(strings.TrimSpace(value))) {
	case OfferActive:
		return OfferActive, true
	case OfferClosed:
		return OfferClosed, true
	default:
		return "", false
	}
}

type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Name           string    `json:"name"`
	Role           Role      `json:"role"`
	OrganizationID *string   `json:"organizationId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type Organization struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Website     string    `json:"website"`
	Location    string    `json:"location"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type JobOffer struct {
	ID             string      `json:"id"`
	OrganizationID string      `json:"organizationId"`
	PostedBy       string      `json:"postedBy"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Location       string      `json:"location"`
	Type           string      `json:"type"`
	Salary         string      `json:"salary"`
	Skills         []string    `json:"skills"`
	Status         OfferStatus `json:"status"`
	Deadline       *time.Time  `json:"deadline,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

type Application struct {
	ID          string            `json:"id"`
	UserID      string            `json:"userId"`
	JobOfferID  string            `json:"jobOfferId"`
	Status      ApplicationStatus `json:"status"`
	ResumeURL   *string           `json:"resumeUrl,omitempty"`
	CoverLetter *string           `json:"coverLetter,omitempty"`
	AppliedDate time.Time         `json:"appliedDate"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type Profile struct {
	UserID      string    `json:"userId"`
	ResumeURL   *string   `json:"resumeUrl,omitempty"`
	Address     *string   `json:"address,omitempty"`
	PassingYear *int      `json:"passingYear,omitempty"`
	Bio         *string   `json:"bio,omitempty"`
	Skills      []string  `json:"skills"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Education struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	StartYear   int    `json:"startYear"`
	EndYear     *int   `json:"endYear,omitempty"`
	Grade       string `json:"grade"`
}

type Experience struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Company     string     `json:"company"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Current     bool       `json:"current"`
}

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type Event struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Location       string    `json:"location"`
	StartsAt       time.Time `json:"startsAt"`
	OrganizationID *string   `json:"organizationId,omitempty"`
	CreatedBy      string    `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
}
