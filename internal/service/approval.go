package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"membership-portal-backend/internal/domain"
	"membership-portal-backend/internal/logger"
	"membership-portal-backend/internal/metrics"
	"membership-portal-backend/internal/repository"
)

type approvalService struct {
	paymentRepo repository.PaymentRepository
	userRepo    repository.UserRepository
	emailSvc    EmailService
	opts        options
}

func NewApprovalService(
	paymentRepo repository.PaymentRepository,
	userRepo repository.UserRepository,
	emailSvc EmailService,
	opts ...Option,
) ApprovalService {
	return &approvalService{
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		emailSvc:    emailSvc,
		opts:        buildOptions(opts),
	}
}

func (s *approvalService) ApprovePayment(ctx context.Context, actor domain.Actor, paymentID int32) (*domain.Payment, *domain.Membership, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, nil, err
	}

	// 1. Only a pending submission can be approved
	if err := s.requirePending(ctx, paymentID); err != nil {
		metrics.PaymentDecisionsTotal.WithLabelValues("approve", decisionOutcome(err)).Inc()
		return nil, nil, err
	}

	// 2. Conditional transition plus renewal, atomically
	payment, member, err := s.paymentRepo.Approve(ctx, paymentID, actor.UserID, s.opts.now())
	if err != nil {
		metrics.PaymentDecisionsTotal.WithLabelValues("approve", decisionOutcome(err)).Inc()
		return nil, nil, fmt.Errorf("failed to approve payment %d: %w", paymentID, err)
	}
	metrics.PaymentDecisionsTotal.WithLabelValues("approve", "ok").Inc()
	metrics.RevenueRecordedTotal.WithLabelValues(string(payment.MembershipType)).Add(float64(payment.Amount))

	logger.Audit(ctx, "payment.approved", actor.UserID,
		"paymentID", payment.ID, "userID", payment.UserID, "amount", payment.Amount, "expiry", member.ExpiryDate)

	// 3. Notify the member
	notifyResult(ctx, "payment_approved", s.emailSvc.SendPaymentApproved(ctx, member, payment))

	membership := member.Membership()
	return payment, &membership, nil
}

func (s *approvalService) RejectPayment(ctx context.Context, actor domain.Actor, paymentID int32, reason string) (*domain.Payment, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.NewValidationError("reason", "is required")
	}

	if err := s.requirePending(ctx, paymentID); err != nil {
		metrics.PaymentDecisionsTotal.WithLabelValues("reject", decisionOutcome(err)).Inc()
		return nil, err
	}

	payment, err := s.paymentRepo.Reject(ctx, paymentID, actor.UserID, reason, s.opts.now())
	if err != nil {
		metrics.PaymentDecisionsTotal.WithLabelValues("reject", decisionOutcome(err)).Inc()
		return nil, fmt.Errorf("failed to reject payment %d: %w", paymentID, err)
	}
	metrics.PaymentDecisionsTotal.WithLabelValues("reject", "ok").Inc()

	logger.Audit(ctx, "payment.rejected", actor.UserID, "paymentID", payment.ID, "userID", payment.UserID, "reason", reason)

	if member, err := s.userRepo.GetByID(ctx, payment.UserID); err == nil {
		notifyResult(ctx, "payment_rejected", s.emailSvc.SendPaymentRejected(ctx, member, payment))
	} else {
		logger.WarnContext(ctx, "Could not load member for rejection email", "userID", payment.UserID, "error", err)
	}

	return payment, nil
}

func (s *approvalService) requirePending(ctx context.Context, paymentID int32) error {
	current, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("failed to load payment %d: %w", paymentID, err)
	}
	if current.Status != domain.PaymentStatusPendingApproval {
		return fmt.Errorf("%w: payment %d is not pending approval", domain.ErrNotFound, paymentID)
	}
	return nil
}

func decisionOutcome(err error) string {
	switch {
	case isConflict(err):
		return "conflict"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
