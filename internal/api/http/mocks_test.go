package http_test

import (
	"context"
	"io"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/stretchr/testify/mock"

	"membership-portal-backend/internal/domain"
	"membership-portal-backend/internal/service"
	"membership-portal-backend/internal/storage"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, input service.RegisterInput) (*domain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(1) == nil {
		return "", nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*domain.User), args.Error(2)
}
func (m *MockAuthService) Me(ctx context.Context, actor domain.Actor) (*domain.User, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockAuthService) UpdateProfile(ctx context.Context, actor domain.Actor, input service.ProfileInput) (*domain.User, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockAuthService) ChangePassword(ctx context.Context, actor domain.Actor, input service.ChangePasswordInput) error {
	args := m.Called(ctx, actor, input)
	return args.Error(0)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) CreateOrder(ctx context.Context, actor domain.Actor, input service.CreateOrderInput) (*service.CheckoutOrder, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CheckoutOrder), args.Error(1)
}
func (m *MockPaymentService) VerifyOnlinePayment(ctx context.Context, actor domain.Actor, input service.VerifyPaymentInput) (*domain.Payment, *domain.Membership, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Payment), args.Get(1).(*domain.Membership), args.Error(2)
}
func (m *MockPaymentService) SubmitOfflinePayment(ctx context.Context, actor domain.Actor, input service.OfflinePaymentInput) (*domain.Payment, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentService) RecordPayment(ctx context.Context, actor domain.Actor, input service.RecordPaymentInput) (*domain.Payment, *domain.Membership, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Payment), args.Get(1).(*domain.Membership), args.Error(2)
}
func (m *MockPaymentService) MembershipStatus(ctx context.Context, actor domain.Actor) (*domain.MembershipStatusView, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MembershipStatusView), args.Error(1)
}
func (m *MockPaymentService) ListPayments(ctx context.Context, actor domain.Actor, filter domain.PaymentFilter) ([]domain.PaymentWithMember, domain.Pagination, error) {
	args := m.Called(ctx, actor, filter)
	return args.Get(0).([]domain.PaymentWithMember), args.Get(1).(domain.Pagination), args.Error(2)
}
func (m *MockPaymentService) MyPayments(ctx context.Context, actor domain.Actor, page, limit int32) ([]domain.PaymentWithMember, domain.Pagination, error) {
	args := m.Called(ctx, actor, page, limit)
	return args.Get(0).([]domain.PaymentWithMember), args.Get(1).(domain.Pagination), args.Error(2)
}

type MockApprovalService struct {
	mock.Mock
}

func (m *MockApprovalService) ApprovePayment(ctx context.Context, actor domain.Actor, paymentID int32) (*domain.Payment, *domain.Membership, error) {
	args := m.Called(ctx, actor, paymentID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Payment), args.Get(1).(*domain.Membership), args.Error(2)
}
func (m *MockApprovalService) RejectPayment(ctx context.Context, actor domain.Actor, paymentID int32, reason string) (*domain.Payment, error) {
	args := m.Called(ctx, actor, paymentID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

type MockBulletinService struct {
	mock.Mock
}

func (m *MockBulletinService) ListAnnouncements(ctx context.Context) ([]domain.Announcement, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Announcement), args.Error(1)
}
func (m *MockBulletinService) CreateAnnouncement(ctx context.Context, actor domain.Actor, input service.AnnouncementInput) (*domain.Announcement, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Announcement), args.Error(1)
}
func (m *MockBulletinService) ListResources(ctx context.Context, actor *domain.Actor) ([]domain.Resource, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]domain.Resource), args.Error(1)
}
func (m *MockBulletinService) CreateResource(ctx context.Context, actor domain.Actor, input service.ResourceInput) (*domain.Resource, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Resource), args.Error(1)
}

type MockProofService struct {
	mock.Mock
}

func (m *MockProofService) UploadProof(ctx context.Context, actor domain.Actor, paymentID int32, r io.Reader) (*storage.FileInfo, error) {
	args := m.Called(ctx, actor, paymentID, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.FileInfo), args.Error(1)
}

func (m *MockProofService) OpenProof(ctx context.Context, actor domain.Actor, paymentID int32) (io.ReadCloser, *storage.FileInfo, error) {
	args := m.Called(ctx, actor, paymentID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(*storage.FileInfo), args.Error(2)
}

// stubLimiter answers every Allow with a fixed result.
type stubLimiter struct {
	result *redis_rate.Result
	err    error
	keys   []string
}

func (s *stubLimiter) Allow(_ context.Context, key string, _ redis_rate.Limit) (*redis_rate.Result, error) {
	s.keys = append(s.keys, key)
	return s.result, s.err
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) RevenueReport(ctx context.Context, actor domain.Actor) (*domain.RevenueReport, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RevenueReport), args.Error(1)
}

func (m *MockReportService) ActivityReport(ctx context.Context, actor domain.Actor, start, end *time.Time) (*domain.ActivityReport, error) {
	args := m.Called(ctx, actor, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ActivityReport), args.Error(1)
}

func (m *MockReportService) Dashboard(ctx context.Context, actor domain.Actor) (*domain.Dashboard, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dashboard), args.Error(1)
}

type MockActivityService struct {
	mock.Mock
}

func (m *MockActivityService) ListActivities(ctx context.Context, filter domain.ActivityFilter) ([]domain.Activity, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Activity), args.Error(1)
}

func (m *MockActivityService) GetActivity(ctx context.Context, id int32) (*domain.Activity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Activity), args.Error(1)
}

func (m *MockActivityService) CreateActivity(ctx context.Context, actor domain.Actor, input service.ActivityInput) (*domain.Activity, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Activity), args.Error(1)
}

func (m *MockActivityService) UpdateActivity(ctx context.Context, actor domain.Actor, id int32, input service.ActivityUpdateInput) (*domain.Activity, error) {
	args := m.Called(ctx, actor, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Activity), args.Error(1)
}

func (m *MockActivityService) JoinActivity(ctx context.Context, actor domain.Actor, id int32) (*domain.Activity, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Activity), args.Error(1)
}

func (m *MockActivityService) DeleteActivity(ctx context.Context, actor domain.Actor, id int32) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}
