package domain

import "time"

type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleMember     Role = "MEMBER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// IsAdmin reports whether the role may act on other members' records.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

type MemberStatus string

const (
	MemberStatusActive          MemberStatus = "ACTIVE"
	MemberStatusInactive        MemberStatus = "INACTIVE"
	MemberStatusPendingApproval MemberStatus = "PENDING_APPROVAL"
	MemberStatusRejected        MemberStatus = "REJECTED"
)

// CanSignIn is false only while registration is undecided or was refused.
func (s MemberStatus) CanSignIn() bool {
	return s == MemberStatusActive || s == MemberStatusInactive
}

func (s MemberStatus) Valid() bool {
	switch s {
	case MemberStatusActive, MemberStatusInactive, MemberStatusPendingApproval, MemberStatusRejected:
		return true
	}
	return false
}

type EmergencyContact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

// User is a registered person together with their membership standing.
type User struct {
	ID               int32            `json:"id"`
	Name             string           `json:"name"`
	Email            string           `json:"email"`
	PasswordHash     string           `json:"-"`
	Role             Role             `json:"role"`
	Phone            string           `json:"phone,omitempty"`
	Address          string           `json:"address,omitempty"`
	ProfileImage     string           `json:"profile_image,omitempty"`
	DateOfBirth      *time.Time       `json:"date_of_birth,omitempty"`
	Occupation       string           `json:"occupation,omitempty"`
	Skills           []string         `json:"skills"`
	Interests        []string         `json:"interests"`
	Experience       string           `json:"experience,omitempty"`
	Motivation       string           `json:"motivation,omitempty"`
	Bio              string           `json:"bio,omitempty"`
	EmergencyContact EmergencyContact `json:"emergency_contact"`

	Status          MemberStatus   `json:"status"`
	MembershipType  MembershipType `json:"membership_type,omitempty"`
	ExpiryDate      *time.Time     `json:"expiry_date,omitempty"`
	LastPaymentDate *time.Time     `json:"last_payment_date,omitempty"`

	DateJoined      time.Time  `json:"date_joined"`
	LastActive      *time.Time `json:"last_active,omitempty"`
	ApprovedBy      *int32     `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectedBy      *int32     `json:"rejected_by,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Membership is the member-facing projection of a user's standing.
type Membership struct {
	UserID          int32          `json:"user_id"`
	Status          MemberStatus   `json:"status"`
	MembershipType  MembershipType `json:"membership_type,omitempty"`
	ExpiryDate      *time.Time     `json:"expiry_date,omitempty"`
	LastPaymentDate *time.Time     `json:"last_payment_date,omitempty"`
}

func (u *User) Membership() Membership {
	return Membership{
		UserID:          u.ID,
		Status:          u.Status,
		MembershipType:  u.MembershipType,
		ExpiryDate:      u.ExpiryDate,
		LastPaymentDate: u.LastPaymentDate,
	}
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID int32
	Role   Role
}

// RegistrationDecision records an admin's verdict on a pending registration.
type RegistrationDecision struct {
	Approve        bool
	MembershipType MembershipType
	AdminID        int32
	Reason         string
	DecidedAt      time.Time
}

type MemberFilter struct {
	Status MemberStatus
	Role   Role
	Search string
	Page   int32
	Limit  int32
}
