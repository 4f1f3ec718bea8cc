package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"membership-portal-backend/internal/domain"
	"membership-portal-backend/internal/gateway"
	"membership-portal-backend/internal/logger"
	"membership-portal-backend/internal/metrics"
	"membership-portal-backend/internal/repository"
)

type paymentService struct {
	userRepo    repository.UserRepository
	paymentRepo repository.PaymentRepository
	orderRepo   repository.PaymentOrderRepository
	gateway     gateway.Gateway
	emailSvc    EmailService
	prices      map[domain.MembershipType]int64
	currency    string
	opts        options
}

func NewPaymentService(
	userRepo repository.UserRepository,
	paymentRepo repository.PaymentRepository,
	orderRepo repository.PaymentOrderRepository,
	gw gateway.Gateway,
	emailSvc EmailService,
	prices map[domain.MembershipType]int64,
	currency string,
	opts ...Option,
) PaymentService {
	return &paymentService{
		userRepo:    userRepo,
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		gateway:     gw,
		emailSvc:    emailSvc,
		prices:      prices,
		currency:    currency,
		opts:        buildOptions(opts),
	}
}

func (s *paymentService) CreateOrder(ctx context.Context, actor domain.Actor, input CreateOrderInput) (*CheckoutOrder, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	price, ok := s.prices[input.PlanType]
	if !ok || price <= 0 {
		return nil, domain.NewValidationError("planType", "is not available for online payment")
	}

	now := s.opts.now()
	receipt := receiptID(actor.UserID, now.UnixMilli())

	order, err := s.gateway.CreateOrder(ctx, gateway.OrderRequest{
		Amount:    price,
		Currency:  s.currency,
		ReceiptID: receipt,
		Notes: map[string]string{
			"user_id": strconv.Itoa(int(actor.UserID)),
			"plan":    string(input.PlanType),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}

	record := &domain.PaymentOrder{
		OrderID:   order.ID,
		UserID:    actor.UserID,
		Plan:      input.PlanType,
		Amount:    price,
		Currency:  order.Currency,
		ReceiptID: receipt,
		Status:    domain.PaymentOrderStatusCreated,
		CreatedAt: now,
	}
	if err := s.orderRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store payment order: %w", err)
	}

	return &CheckoutOrder{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		KeyID:    s.gateway.KeyID(),
		Plan:     input.PlanType,
		Receipt:  receipt,
	}, nil
}

// receiptID stays under the gateway's 40 character limit
func receiptID(userID int32, millis int64) string {
	id := strconv.Itoa(int(userID))
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	return "rcpt_" + id + "_" + strconv.FormatInt(millis, 36)
}

func (s *paymentService) VerifyOnlinePayment(ctx context.Context, actor domain.Actor, input VerifyPaymentInput) (*domain.Payment, *domain.Membership, error) {
	if err := requireMember(actor); err != nil {
		return nil, nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, nil, err
	}

	// 1. Signature is a hard gate: nothing is read or written before it passes
	if !s.gateway.VerifySignature(input.OrderID, input.PaymentID, input.Signature) {
		metrics.SignatureFailuresTotal.Inc()
		logger.WarnContext(ctx, "Rejected online payment with invalid signature", "userID", actor.UserID, "orderID", input.OrderID)
		return nil, nil, domain.ErrSignatureInvalid
	}

	// 2. Plan and amount come from the stored order, never from the client
	order, err := s.orderRepo.GetByOrderID(ctx, input.OrderID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load payment order: %w", err)
	}
	if order.UserID != actor.UserID {
		return nil, nil, fmt.Errorf("%w: order belongs to another member", domain.ErrForbidden)
	}
	if order.Status == domain.PaymentOrderStatusPaid {
		return nil, nil, fmt.Errorf("%w: order %s already captured", domain.ErrConflict, order.OrderID)
	}

	// 3. Record the payment and renew in one transaction
	now := s.opts.now()
	payment := &domain.Payment{
		UserID:         actor.UserID,
		Amount:         order.Amount,
		MembershipType: order.Plan,
		PaymentDate:    now,
		PaymentMethod:  domain.PaymentMethodRazorpay,
		TransactionID:  input.PaymentID,
		GatewayOrderID: order.OrderID,
		Status:         domain.PaymentStatusCompleted,
		RecordedBy:     actor.UserID,
		CreatedAt:      now,
	}
	member, err := s.paymentRepo.CreateCompleted(ctx, payment, domain.Renewal{Plan: order.Plan, PaidOn: now, Now: now})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to record online payment: %w", err)
	}

	s.recorded(ctx, actor.UserID, payment)
	notifyResult(ctx, "payment_receipt", s.emailSvc.SendPaymentReceipt(ctx, member, payment))

	membership := member.Membership()
	return payment, &membership, nil
}

func (s *paymentService) SubmitOfflinePayment(ctx context.Context, actor domain.Actor, input OfflinePaymentInput) (*domain.Payment, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	pending, err := s.paymentRepo.HasPending(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending submissions: %w", err)
	}
	if pending {
		return nil, fmt.Errorf("%w: a payment is already awaiting approval", domain.ErrConflict)
	}

	payment := &domain.Payment{
		UserID:         actor.UserID,
		Amount:         input.Amount,
		MembershipType: domain.MembershipTypeAnnual,
		PaymentDate:    input.date,
		PaymentMethod:  input.PaymentMethod,
		TransactionID:  input.TransactionID,
		Notes:          input.Notes,
		Status:         domain.PaymentStatusPendingApproval,
		RecordedBy:     actor.UserID,
		CreatedAt:      s.opts.now(),
	}
	if err := s.paymentRepo.CreatePending(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to record offline payment: %w", err)
	}

	s.recorded(ctx, actor.UserID, payment)
	return payment, nil
}

func (s *paymentService) RecordPayment(ctx context.Context, actor domain.Actor, input RecordPaymentInput) (*domain.Payment, *domain.Membership, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, nil, err
	}

	if _, err := s.userRepo.GetByID(ctx, input.MemberID); err != nil {
		return nil, nil, fmt.Errorf("failed to load member %d: %w", input.MemberID, err)
	}

	now := s.opts.now()
	payment := &domain.Payment{
		UserID:         input.MemberID,
		Amount:         input.Amount,
		MembershipType: input.MembershipType,
		PaymentDate:    input.date,
		PaymentMethod:  input.PaymentMethod,
		TransactionID:  input.TransactionID,
		Notes:          input.Notes,
		Status:         domain.PaymentStatusCompleted,
		RecordedBy:     actor.UserID,
		CreatedAt:      now,
	}
	member, err := s.paymentRepo.CreateCompleted(ctx, payment, domain.Renewal{Plan: input.MembershipType, PaidOn: input.date, Now: now})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to record payment: %w", err)
	}

	s.recorded(ctx, actor.UserID, payment)
	notifyResult(ctx, "payment_receipt", s.emailSvc.SendPaymentReceipt(ctx, member, payment))

	membership := member.Membership()
	return payment, &membership, nil
}

func (s *paymentService) MembershipStatus(ctx context.Context, actor domain.Actor) (*domain.MembershipStatusView, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load member: %w", err)
	}
	open, err := s.paymentRepo.LatestOpenSubmission(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load open submission: %w", err)
	}

	membership := user.Membership()
	return &domain.MembershipStatusView{
		Membership:     membership,
		Lapsed:         membership.IsLapsed(s.opts.now()),
		PendingRequest: open,
	}, nil
}

func (s *paymentService) ListPayments(ctx context.Context, actor domain.Actor, filter domain.PaymentFilter) ([]domain.PaymentWithMember, domain.Pagination, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, domain.Pagination{}, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.Pagination{}, domain.NewValidationError("status", "is not a known payment status")
	}
	return s.list(ctx, filter)
}

func (s *paymentService) MyPayments(ctx context.Context, actor domain.Actor, page, limit int32) ([]domain.PaymentWithMember, domain.Pagination, error) {
	if err := requireMember(actor); err != nil {
		return nil, domain.Pagination{}, err
	}
	return s.list(ctx, domain.PaymentFilter{UserID: actor.UserID, Page: page, Limit: limit})
}

func (s *paymentService) list(ctx context.Context, filter domain.PaymentFilter) ([]domain.PaymentWithMember, domain.Pagination, error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)
	payments, total, err := s.paymentRepo.List(ctx, filter)
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("failed to list payments: %w", err)
	}
	if payments == nil {
		payments = []domain.PaymentWithMember{}
	}
	return payments, domain.NewPagination(filter.Page, filter.Limit, total), nil
}

func (s *paymentService) recorded(ctx context.Context, actorID int32, p *domain.Payment) {
	metrics.PaymentsRecordedTotal.WithLabelValues(string(p.PaymentMethod), string(p.Status)).Inc()
	if p.Status == domain.PaymentStatusCompleted {
		metrics.RevenueRecordedTotal.WithLabelValues(string(p.MembershipType)).Add(float64(p.Amount))
	}
	logger.Audit(ctx, "payment.recorded", actorID,
		"paymentID", p.ID, "userID", p.UserID, "method", p.PaymentMethod, "status", p.Status, "amount", p.Amount)
}

// notifyResult logs a failed email without failing the business operation
func notifyResult(ctx context.Context, template string, err error) {
	if err == nil {
		return
	}
	metrics.EmailFailuresTotal.WithLabelValues(template).Inc()
	logger.WarnContext(ctx, "Failed to send notification email", "template", template, "error", err)
}

// isConflict reports whether err came from a lost race or a uniqueness check
func isConflict(err error) bool {
	return errors.Is(err, domain.ErrConflict)
}
