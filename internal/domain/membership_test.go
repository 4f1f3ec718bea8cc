package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExtendExpiry(t *testing.T) {
	now := day(2024, 3, 1)
	future := day(2024, 6, 1)
	past := day(2023, 6, 1)

	tests := []struct {
		name    string
		current *time.Time
		plan    MembershipType
		want    time.Time
	}{
		{"NoExpiry", nil, MembershipTypeAnnual, day(2025, 3, 1)},
		{"Lapsed", &past, MembershipTypeAnnual, day(2025, 3, 1)},
		{"CarryOver", &future, MembershipTypeAnnual, day(2025, 6, 1)},
		{"Life", nil, MembershipTypeLife, day(2123, 3, 1)},
		{"ExpiresNow", &now, MembershipTypeAnnual, day(2025, 3, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtendExpiry(tt.current, now, tt.plan))
		})
	}
}

func TestRenewalApply(t *testing.T) {
	now := day(2024, 3, 1)
	paid := day(2024, 2, 27)

	t.Run("ActivatesAndStamps", func(t *testing.T) {
		u := &User{Status: MemberStatusInactive}
		Renewal{Plan: MembershipTypeAnnual, PaidOn: paid, Now: now}.Apply(u)
		assert.Equal(t, MemberStatusActive, u.Status)
		assert.Equal(t, MembershipTypeAnnual, u.MembershipType)
		assert.Equal(t, day(2025, 3, 1), *u.ExpiryDate)
		assert.Equal(t, paid, *u.LastPaymentDate)
	})

	t.Run("AnnualAfterLifeNeverShortens", func(t *testing.T) {
		life := day(2120, 1, 1)
		u := &User{Status: MemberStatusActive, MembershipType: MembershipTypeLife, ExpiryDate: &life}
		Renewal{Plan: MembershipTypeAnnual, PaidOn: paid, Now: now}.Apply(u)
		assert.Equal(t, day(2121, 1, 1), *u.ExpiryDate)
		assert.Equal(t, MembershipTypeLife, u.MembershipType)
	})

	t.Run("LapsedLifeTakesTheNewPlan", func(t *testing.T) {
		ended := day(2024, 1, 1)
		u := &User{Status: MemberStatusInactive, MembershipType: MembershipTypeLife, ExpiryDate: &ended}
		Renewal{Plan: MembershipTypeAnnual, PaidOn: paid, Now: now}.Apply(u)
		assert.Equal(t, MembershipTypeAnnual, u.MembershipType)
		assert.Equal(t, day(2025, 3, 1), *u.ExpiryDate)
	})

	t.Run("AnnualUpgradesToLife", func(t *testing.T) {
		current := day(2024, 6, 1)
		u := &User{Status: MemberStatusActive, MembershipType: MembershipTypeAnnual, ExpiryDate: &current}
		Renewal{Plan: MembershipTypeLife, PaidOn: paid, Now: now}.Apply(u)
		assert.Equal(t, MembershipTypeLife, u.MembershipType)
		assert.Equal(t, day(2123, 6, 1), *u.ExpiryDate)
	})
}

func TestMembershipIsLapsed(t *testing.T) {
	now := day(2024, 3, 1)
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	assert.True(t, Membership{}.IsLapsed(now))
	assert.True(t, Membership{MembershipType: MembershipTypeAnnual, ExpiryDate: &yesterday}.IsLapsed(now))
	assert.False(t, Membership{MembershipType: MembershipTypeAnnual, ExpiryDate: &tomorrow}.IsLapsed(now))
	assert.False(t, Membership{MembershipType: MembershipTypeHonorary}.IsLapsed(now))
}

func TestPaymentMethodRules(t *testing.T) {
	assert.True(t, PaymentMethodUPI.SelfReportable())
	assert.False(t, PaymentMethodOther.SelfReportable())
	assert.False(t, PaymentMethodRazorpay.SelfReportable())
	assert.True(t, PaymentMethodOther.AdminRecordable())
	assert.False(t, PaymentMethodRazorpay.AdminRecordable())
	assert.False(t, MembershipTypeHonorary.Payable())
}

func TestVisibleAccessLevels(t *testing.T) {
	assert.Equal(t, []AccessLevel{AccessLevelPublic}, VisibleAccessLevels(nil))
	assert.Len(t, VisibleAccessLevels(&Actor{UserID: 1, Role: RoleMember}), 2)
	assert.Len(t, VisibleAccessLevels(&Actor{UserID: 1, Role: RoleSuperAdmin}), 3)
}

func TestValidationErrorMatchesTaxonomy(t *testing.T) {
	err := fmt.Errorf("submit: %w", NewValidationError("amount", "must be positive"))
	assert.True(t, errors.Is(err, ErrValidation))

	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, "amount", verr.Field)
	assert.Equal(t, "amount: must be positive", verr.Error())
}

func TestNewPagination(t *testing.T) {
	assert.Equal(t, Pagination{Page: 1, Limit: 10, Total: 21, Pages: 3}, NewPagination(1, 10, 21))
	assert.Equal(t, int32(0), NewPagination(1, 10, 0).Pages)
}
