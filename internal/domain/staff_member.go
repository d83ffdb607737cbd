package domain

import "time"

// StaffRole enumerates internal operator roles.
type StaffRole string

const (
	StaffRoleAgent    StaffRole = "AGENT"
	StaffRoleReviewer StaffRole = "REVIEWER"
	StaffRoleAdmin    StaffRole = "ADMIN"
)

// StaffMember models an operator who verifies complaints, drives ticket
// transitions, and reviews suggestions. Reporters and voters are not
// accounts; their identity verification happens outside this service.
type StaffMember struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         StaffRole
	Region       string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
