package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"membership-portal-backend/internal/config"
	"membership-portal-backend/internal/domain"
	"membership-portal-backend/internal/metrics"
	"membership-portal-backend/internal/repository"
	"membership-portal-backend/internal/service"
)

// Only the methods the jobs call are implemented; anything else panics.
type mockUsers struct {
	repository.UserRepository
	mock.Mock
}

func (m *mockUsers) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]domain.User, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *mockUsers) ListByRole(ctx context.Context, roles []domain.Role) ([]domain.User, error) {
	args := m.Called(ctx, roles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

type mockPayments struct {
	repository.PaymentRepository
	mock.Mock
}

func (m *mockPayments) CountPendingOlderThan(ctx context.Context, cutoff time.Time) (int32, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int32), args.Error(1)
}

type mockEmail struct {
	service.EmailService
	mock.Mock
}

func (m *mockEmail) SendExpiryReminder(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockEmail) SendLapseNotice(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockEmail) SendPendingPaymentDigest(ctx context.Context, admin *domain.User, pending int32) error {
	return m.Called(ctx, admin, pending).Error(0)
}

var jobClock = time.Date(2024, 3, 15, 1, 0, 0, 0, time.UTC)

func newTestRunner(t *testing.T) (*JobRunner, *mockUsers, *mockPayments, *mockEmail) {
	t.Helper()
	users, payments, email := new(mockUsers), new(mockPayments), new(mockEmail)
	cfg := &config.Config{Membership: config.MembershipConfig{ReminderWindowDays: 14, StalePendingHours: 48}}

	jr := NewJobRunner(users, payments, email, cfg)
	jr.now = func() time.Time { return jobClock }

	t.Cleanup(func() {
		users.AssertExpectations(t)
		payments.AssertExpectations(t)
		email.AssertExpectations(t)
	})
	return jr, users, payments, email
}

func TestSendLapseNotices(t *testing.T) {
	to := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	from := to.Add(-24 * time.Hour)

	t.Run("notifies members who lapsed yesterday", func(t *testing.T) {
		jr, users, _, email := newTestRunner(t)
		before := testutil.ToFloat64(metrics.MembershipsLapsedTotal)
		failures := testutil.ToFloat64(metrics.EmailFailuresTotal.WithLabelValues("lapse_notice"))
		lapsed := []domain.User{{ID: 1, Status: domain.MemberStatusActive}, {ID: 2, Status: domain.MemberStatusActive}}

		users.On("ListExpiringBetween", mock.Anything, from, to).Return(lapsed, nil)
		email.On("SendLapseNotice", mock.Anything, mock.MatchedBy(func(u *domain.User) bool { return u.ID == 1 })).Return(nil)
		email.On("SendLapseNotice", mock.Anything, mock.MatchedBy(func(u *domain.User) bool { return u.ID == 2 })).
			Return(errors.New("sendgrid: 503"))

		require.NoError(t, jr.SendLapseNotices())
		assert.Equal(t, before+2, testutil.ToFloat64(metrics.MembershipsLapsedTotal))
		assert.Equal(t, failures+1, testutil.ToFloat64(metrics.EmailFailuresTotal.WithLabelValues("lapse_notice")))
	})

	t.Run("database failure fails the run", func(t *testing.T) {
		jr, users, _, _ := newTestRunner(t)
		before := testutil.ToFloat64(metrics.JobRunsTotal.WithLabelValues("lapse-notices", "failure"))

		users.On("ListExpiringBetween", mock.Anything, from, to).Return(nil, errors.New("connection reset"))

		err := jr.SendLapseNotices()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
		assert.Equal(t, before+1, testutil.ToFloat64(metrics.JobRunsTotal.WithLabelValues("lapse-notices", "failure")))
	})
}

func TestSendExpiryReminders(t *testing.T) {
	jr, users, _, email := newTestRunner(t)
	from := time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	due := []domain.User{{ID: 1, Email: "a@example.org"}, {ID: 2, Email: "b@example.org"}}

	users.On("ListExpiringBetween", mock.Anything, from, to).Return(due, nil)
	email.On("SendExpiryReminder", mock.Anything, mock.MatchedBy(func(u *domain.User) bool { return u.ID == 1 })).
		Return(errors.New("sendgrid: 401"))
	email.On("SendExpiryReminder", mock.Anything, mock.MatchedBy(func(u *domain.User) bool { return u.ID == 2 })).
		Return(nil)

	// One failed email does not fail the job
	assert.NoError(t, jr.SendExpiryReminders())
}

func TestSendPendingPaymentDigest(t *testing.T) {
	cutoff := jobClock.Add(-48 * time.Hour)
	adminRoles := []domain.Role{domain.RoleAdmin, domain.RoleSuperAdmin}

	t.Run("nothing stale sends nothing", func(t *testing.T) {
		jr, _, payments, _ := newTestRunner(t)
		payments.On("CountPendingOlderThan", mock.Anything, cutoff).Return(int32(0), nil)

		assert.NoError(t, jr.SendPendingPaymentDigest())
	})

	t.Run("active admins are notified", func(t *testing.T) {
		jr, users, payments, email := newTestRunner(t)
		active := domain.User{ID: 1, Role: domain.RoleAdmin, Status: domain.MemberStatusActive}
		inactive := domain.User{ID: 2, Role: domain.RoleAdmin, Status: domain.MemberStatusInactive}

		payments.On("CountPendingOlderThan", mock.Anything, cutoff).Return(int32(3), nil)
		users.On("ListByRole", mock.Anything, adminRoles).Return([]domain.User{active, inactive}, nil)
		email.On("SendPendingPaymentDigest", mock.Anything, &active, int32(3)).Return(nil).Once()

		assert.NoError(t, jr.SendPendingPaymentDigest())
	})
}

func TestRunJob(t *testing.T) {
	jr, users, _, _ := newTestRunner(t)
	users.On("ListExpiringBetween", mock.Anything, mock.Anything, mock.Anything).Return([]domain.User{}, nil)

	assert.NoError(t, jr.RunJob("lapse-notices"))
	assert.EqualError(t, jr.RunJob("rebuild-ledger"), `unknown job "rebuild-ledger"`)
	assert.Equal(t, []string{"expiry-reminders", "lapse-notices", "pending-payment-digest"}, jr.JobNames())
}

func TestRunWithRecovery_Panic(t *testing.T) {
	jr, _, _, _ := newTestRunner(t)
	err := jr.runWithRecovery("panicky", func(context.Context) error {
		panic("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
