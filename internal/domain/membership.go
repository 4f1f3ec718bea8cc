package domain

import "time"

type MembershipType string

const (
	MembershipTypeAnnual   MembershipType = "ANNUAL"
	MembershipTypeLife     MembershipType = "LIFE"
	MembershipTypeHonorary MembershipType = "HONORARY"
)

func (t MembershipType) Valid() bool {
	switch t {
	case MembershipTypeAnnual, MembershipTypeLife, MembershipTypeHonorary:
		return true
	}
	return false
}

// Payable reports whether dues can be collected for the plan.
// Honorary membership is granted, never sold.
func (t MembershipType) Payable() bool {
	return t == MembershipTypeAnnual || t == MembershipTypeLife
}

// Term returns how many years one payment for the plan buys.
func (t MembershipType) Term() int {
	if t == MembershipTypeLife {
		return 99
	}
	return 1
}

// ExtendExpiry computes the expiry after one paid term. Unexpired time is
// carried over; a lapsed or missing expiry restarts from now.
func ExtendExpiry(current *time.Time, now time.Time, plan MembershipType) time.Time {
	base := now
	if current != nil && current.After(now) {
		base = *current
	}
	return base.AddDate(plan.Term(), 0, 0)
}

// Renewal is the single rule applied to a membership whenever a payment is
// accepted, regardless of whether it came from the gateway, an admin, or an
// approved offline submission.
type Renewal struct {
	Plan   MembershipType
	PaidOn time.Time
	Now    time.Time
}

// Apply mutates the membership fields of u. Expiry never moves backwards,
// and an unexpired LIFE membership stays LIFE when an annual payment lands.
func (r Renewal) Apply(u *User) {
	keepLife := u.MembershipType == MembershipTypeLife && u.ExpiryDate != nil && u.ExpiryDate.After(r.Now)
	next := ExtendExpiry(u.ExpiryDate, r.Now, r.Plan)
	if u.ExpiryDate == nil || next.After(*u.ExpiryDate) {
		u.ExpiryDate = &next
	}
	u.Status = MemberStatusActive
	if !keepLife {
		u.MembershipType = r.Plan
	}
	paid := r.PaidOn
	u.LastPaymentDate = &paid
}

// IsLapsed reports whether the membership has no current paid coverage.
func (m Membership) IsLapsed(now time.Time) bool {
	if m.MembershipType == MembershipTypeHonorary {
		return false
	}
	return m.ExpiryDate == nil || !m.ExpiryDate.After(now)
}
