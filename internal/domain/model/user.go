package model

import "time"

// Role separates the marketplace actors.
type Role string

const (
	RolePatient   Role = "patient"
	RoleCaregiver Role = "caregiver"
	RoleAdmin     Role = "admin"
)

// Valid reports whether the role is known.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleCaregiver, RoleAdmin:
		return true
	}
	return false
}

// ApprovalStatus gates caregivers until an administrator reviews them.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "Pending"
	ApprovalApproved ApprovalStatus = "Approved"
	ApprovalRejected ApprovalStatus = "Rejected"
)

func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// InitialApproval returns the status a new account of the role starts with.
// Only caregivers wait for review.
func InitialApproval(role Role) ApprovalStatus {
	if role == RoleCaregiver {
		return ApprovalPending
	}
	return ApprovalApproved
}

// User represents a registered patient, caregiver or administrator.
type User struct {
	ID           string
	Login        string
	PasswordHash string
	Role         Role
	Approval     ApprovalStatus
	CreatedAt    time.Time
}

// Approved reports whether the user may take part in orders.
func (u *User) Approved() bool {
	return u.Approval == ApprovalApproved
}

// UserFilter narrows the administrator's user list. Empty fields match everything.
type UserFilter struct {
	Role     Role
	Approval ApprovalStatus
}

// Matches reports whether the user passes the filter.
func (f UserFilter) Matches(u User) bool {
	return (f.Role == "" || u.Role == f.Role) && (f.Approval == "" || u.Approval == f.Approval)
}

// UserUpdate carries an administrator's edit of a user. Empty fields stay unchanged.
type UserUpdate struct {
	Login    string
	Role     Role
	Approval ApprovalStatus
}
