package service

import (
	"context"
	"io"
	"time"

	"membership-portal-backend/internal/domain"
	"membership-portal-backend/internal/storage"
)

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error) // token, user
	Me(ctx context.Context, actor domain.Actor) (*domain.User, error)
	UpdateProfile(ctx context.Context, actor domain.Actor, input ProfileInput) (*domain.User, error)
	ChangePassword(ctx context.Context, actor domain.Actor, input ChangePasswordInput) error
}

type MemberService interface {
	ListMembers(ctx context.Context, actor domain.Actor, filter domain.MemberFilter) ([]domain.User, domain.Pagination, error)
	GetMember(ctx context.Context, actor domain.Actor, id int32) (*domain.User, []domain.Activity, error)
	ApproveRegistration(ctx context.Context, actor domain.Actor, id int32, membershipType domain.MembershipType) (*domain.User, error)
	RejectRegistration(ctx context.Context, actor domain.Actor, id int32, reason string) (*domain.User, error)
	CreateMember(ctx context.Context, actor domain.Actor, input CreateMemberInput) (*domain.User, error)
}

// PaymentService is the intake side of membership dues.
type PaymentService interface {
	CreateOrder(ctx context.Context, actor domain.Actor, input CreateOrderInput) (*CheckoutOrder, error)
	VerifyOnlinePayment(ctx context.Context, actor domain.Actor, input VerifyPaymentInput) (*domain.Payment, *domain.Membership, error)
	SubmitOfflinePayment(ctx context.Context, actor domain.Actor, input OfflinePaymentInput) (*domain.Payment, error)
	RecordPayment(ctx context.Context, actor domain.Actor, input RecordPaymentInput) (*domain.Payment, *domain.Membership, error)
	MembershipStatus(ctx context.Context, actor domain.Actor) (*domain.MembershipStatusView, error)
	ListPayments(ctx context.Context, actor domain.Actor, filter domain.PaymentFilter) ([]domain.PaymentWithMember, domain.Pagination, error)
	MyPayments(ctx context.Context, actor domain.Actor, page, limit int32) ([]domain.PaymentWithMember, domain.Pagination, error)
}

// ProofService stores receipts members attach to offline submissions.
type ProofService interface {
	UploadProof(ctx context.Context, actor domain.Actor, paymentID int32, r io.Reader) (*storage.FileInfo, error)
	OpenProof(ctx context.Context, actor domain.Actor, paymentID int32) (io.ReadCloser, *storage.FileInfo, error)
}

type ApprovalService interface {
	ApprovePayment(ctx context.Context, actor domain.Actor, paymentID int32) (*domain.Payment, *domain.Membership, error)
	RejectPayment(ctx context.Context, actor domain.Actor, paymentID int32, reason string) (*domain.Payment, error)
}

type ReportService interface {
	RevenueReport(ctx context.Context, actor domain.Actor) (*domain.RevenueReport, error)
	ActivityReport(ctx context.Context, actor domain.Actor, start, end *time.Time) (*domain.ActivityReport, error)
	Dashboard(ctx context.Context, actor domain.Actor) (*domain.Dashboard, error)
}

type ActivityService interface {
	ListActivities(ctx context.Context, filter domain.ActivityFilter) ([]domain.Activity, error)
	GetActivity(ctx context.Context, id int32) (*domain.Activity, error)
	CreateActivity(ctx context.Context, actor domain.Actor, input ActivityInput) (*domain.Activity, error)
	UpdateActivity(ctx context.Context, actor domain.Actor, id int32, input ActivityUpdateInput) (*domain.Activity, error)
	JoinActivity(ctx context.Context, actor domain.Actor, id int32) (*domain.Activity, error)
	DeleteActivity(ctx context.Context, actor domain.Actor, id int32) error
}

type BulletinService interface {
	ListAnnouncements(ctx context.Context) ([]domain.Announcement, error)
	CreateAnnouncement(ctx context.Context, actor domain.Actor, input AnnouncementInput) (*domain.Announcement, error)
	ListResources(ctx context.Context, actor *domain.Actor) ([]domain.Resource, error)
	CreateResource(ctx context.Context, actor domain.Actor, input ResourceInput) (*domain.Resource, error)
}

// EmailService delivers member notifications. Callers treat delivery
// failures as non-fatal.
type EmailService interface {
	SendRegistrationDecision(ctx context.Context, user *domain.User, approved bool, reason string) error
	SendPaymentReceipt(ctx context.Context, user *domain.User, payment *domain.Payment) error
	SendPaymentApproved(ctx context.Context, user *domain.User, payment *domain.Payment) error
	SendPaymentRejected(ctx context.Context, user *domain.User, payment *domain.Payment) error
	SendExpiryReminder(ctx context.Context, user *domain.User) error
	SendLapseNotice(ctx context.Context, user *domain.User) error
	SendPendingPaymentDigest(ctx context.Context, admin *domain.User, pending int32) error
}

// CheckoutOrder is what the client needs to open the gateway's hosted checkout.
type CheckoutOrder struct {
	OrderID  string                `json:"order_id"`
	Amount   int64                 `json:"amount"` // paise
	Currency string                `json:"currency"`
	KeyID    string                `json:"key_id"`
	Plan     domain.MembershipType `json:"plan"`
	Receipt  string                `json:"receipt"`
}

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now, for deterministic renewal dates in tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func requireAdmin(actor domain.Actor) error {
	if actor.UserID == 0 {
		return domain.ErrUnauthenticated
	}
	if !actor.Role.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}

func requireMember(actor domain.Actor) error {
	if actor.UserID == 0 || !actor.Role.Valid() {
		return domain.ErrUnauthenticated
	}
	return nil
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

func normalizePage(page, limit int32) (int32, int32) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}
