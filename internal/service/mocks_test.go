package service_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"membership-portal-backend/internal/domain"
	"membership-portal-backend/internal/gateway"
)

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) UpdateProfile(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) UpdatePassword(ctx context.Context, id int32, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}
func (m *MockUserRepo) TouchLastActive(ctx context.Context, id int32, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}
func (m *MockUserRepo) List(ctx context.Context, filter domain.MemberFilter) ([]domain.User, int32, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.User), args.Get(1).(int32), args.Error(2)
}
func (m *MockUserRepo) ListByRole(ctx context.Context, roles []domain.Role) ([]domain.User, error) {
	args := m.Called(ctx, roles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}
func (m *MockUserRepo) DecideRegistration(ctx context.Context, id int32, decision domain.RegistrationDecision) (*domain.User, error) {
	args := m.Called(ctx, id, decision)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]domain.User, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}
func (m *MockUserRepo) CountByStatus(ctx context.Context, status domain.MemberStatus) (int32, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockUserRepo) CountJoinedBetween(ctx context.Context, start, end time.Time) (int32, error) {
	args := m.Called(ctx, start, end)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockUserRepo) CountActiveByRole(ctx context.Context) ([]domain.NameCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.NameCount), args.Error(1)
}
func (m *MockUserRepo) CountSummary(ctx context.Context) (*domain.MemberCounts, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MemberCounts), args.Error(1)
}

// MockPaymentRepo
type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) GetByID(ctx context.Context, id int32) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentRepo) List(ctx context.Context, filter domain.PaymentFilter) ([]domain.PaymentWithMember, int32, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.PaymentWithMember), args.Get(1).(int32), args.Error(2)
}
func (m *MockPaymentRepo) CreatePending(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}
func (m *MockPaymentRepo) CreateCompleted(ctx context.Context, payment *domain.Payment, renewal domain.Renewal) (*domain.User, error) {
	args := m.Called(ctx, payment, renewal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockPaymentRepo) Approve(ctx context.Context, id, reviewerID int32, now time.Time) (*domain.Payment, *domain.User, error) {
	args := m.Called(ctx, id, reviewerID, now)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Payment), args.Get(1).(*domain.User), args.Error(2)
}
func (m *MockPaymentRepo) Reject(ctx context.Context, id, reviewerID int32, reason string, now time.Time) (*domain.Payment, error) {
	args := m.Called(ctx, id, reviewerID, reason, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentRepo) HasPending(ctx context.Context, userID int32) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}
func (m *MockPaymentRepo) LatestOpenSubmission(ctx context.Context, userID int32) (*domain.Payment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentRepo) CountPendingOlderThan(ctx context.Context, cutoff time.Time) (int32, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockPaymentRepo) RevenueByType(ctx context.Context) (map[domain.MembershipType]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.MembershipType]int64), args.Error(1)
}
func (m *MockPaymentRepo) CountCompletedBetween(ctx context.Context, start, end time.Time) (int32, error) {
	args := m.Called(ctx, start, end)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockPaymentRepo) CountCompletedByType(ctx context.Context, membershipType domain.MembershipType) (int32, error) {
	args := m.Called(ctx, membershipType)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockPaymentRepo) MonthlyRevenueSince(ctx context.Context, since time.Time) ([]domain.MonthlyRevenue, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MonthlyRevenue), args.Error(1)
}

// MockPaymentOrderRepo
type MockPaymentOrderRepo struct {
	mock.Mock
}

func (m *MockPaymentOrderRepo) Create(ctx context.Context, order *domain.PaymentOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}
func (m *MockPaymentOrderRepo) GetByOrderID(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentOrder), args.Error(1)
}

// MockActivityRepo
type MockActivityRepo struct {
	mock.Mock
}

func (m *MockActivityRepo) Create(ctx context.Context, activity *domain.Activity) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}
func (m *MockActivityRepo) GetByID(ctx context.Context, id int32) (*domain.Activity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Activity), args.Error(1)
}
func (m *MockActivityRepo) Update(ctx context.Context, activity *domain.Activity) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}
func (m *MockActivityRepo) List(ctx context.Context, filter domain.ActivityFilter) ([]domain.Activity, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Activity), args.Error(1)
}
func (m *MockActivityRepo) ListByParticipant(ctx context.Context, userID int32) ([]domain.Activity, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Activity), args.Error(1)
}
func (m *MockActivityRepo) ListRecent(ctx context.Context, limit int) ([]domain.Activity, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Activity), args.Error(1)
}
func (m *MockActivityRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockActivityRepo) Summary(ctx context.Context) (*domain.ActivityCounts, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ActivityCounts), args.Error(1)
}
func (m *MockActivityRepo) AddParticipant(ctx context.Context, activityID, userID int32) error {
	args := m.Called(ctx, activityID, userID)
	return args.Error(0)
}
func (m *MockActivityRepo) CountBetween(ctx context.Context, start, end time.Time, status domain.ActivityStatus) (int32, error) {
	args := m.Called(ctx, start, end, status)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockActivityRepo) CountByTypeBetween(ctx context.Context, start, end time.Time) ([]domain.NameCount, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.NameCount), args.Error(1)
}
func (m *MockActivityRepo) ImpactBetween(ctx context.Context, start, end time.Time) (*domain.Impact, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Impact), args.Error(1)
}

// MockAnnouncementRepo
type MockAnnouncementRepo struct {
	mock.Mock
}

func (m *MockAnnouncementRepo) Create(ctx context.Context, announcement *domain.Announcement) error {
	args := m.Called(ctx, announcement)
	return args.Error(0)
}
func (m *MockAnnouncementRepo) List(ctx context.Context) ([]domain.Announcement, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Announcement), args.Error(1)
}

// MockResourceRepo
type MockResourceRepo struct {
	mock.Mock
}

func (m *MockResourceRepo) Create(ctx context.Context, resource *domain.Resource) error {
	args := m.Called(ctx, resource)
	return args.Error(0)
}
func (m *MockResourceRepo) List(ctx context.Context, levels []domain.AccessLevel) ([]domain.Resource, error) {
	args := m.Called(ctx, levels)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Resource), args.Error(1)
}

// MockGateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateOrder(ctx context.Context, req gateway.OrderRequest) (*gateway.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Order), args.Error(1)
}
func (m *MockGateway) VerifySignature(orderID, paymentID, signature string) bool {
	args := m.Called(orderID, paymentID, signature)
	return args.Bool(0)
}
func (m *MockGateway) KeyID() string {
	args := m.Called()
	return args.String(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendRegistrationDecision(ctx context.Context, user *domain.User, approved bool, reason string) error {
	args := m.Called(ctx, user, approved, reason)
	return args.Error(0)
}
func (m *MockEmailService) SendPaymentReceipt(ctx context.Context, user *domain.User, payment *domain.Payment) error {
	args := m.Called(ctx, user, payment)
	return args.Error(0)
}
func (m *MockEmailService) SendPaymentApproved(ctx context.Context, user *domain.User, payment *domain.Payment) error {
	args := m.Called(ctx, user, payment)
	return args.Error(0)
}
func (m *MockEmailService) SendPaymentRejected(ctx context.Context, user *domain.User, payment *domain.Payment) error {
	args := m.Called(ctx, user, payment)
	return args.Error(0)
}
func (m *MockEmailService) SendExpiryReminder(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockEmailService) SendLapseNotice(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockEmailService) SendPendingPaymentDigest(ctx context.Context, admin *domain.User, pending int32) error {
	args := m.Called(ctx, admin, pending)
	return args.Error(0)
}

// quietEmail accepts every message
func quietEmail() *MockEmailService {
	m := new(MockEmailService)
	m.On("SendRegistrationDecision", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("SendPaymentReceipt", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("SendPaymentApproved", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("SendPaymentRejected", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("SendExpiryReminder", mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("SendLapseNotice", mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("SendPendingPaymentDigest", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	return m
}

var (
	adminActor  = domain.Actor{UserID: 1, Role: domain.RoleAdmin}
	memberActor = domain.Actor{UserID: 42, Role: domain.RoleMember}
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
