package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"membership-portal-backend/internal/domain"
	"membership-portal-backend/internal/logger"
	"membership-portal-backend/internal/repository"
	"membership-portal-backend/internal/storage"
)

type proofService struct {
	paymentRepo repository.PaymentRepository
	store       storage.Storage
}

func NewProofService(paymentRepo repository.PaymentRepository, store storage.Storage) ProofService {
	return &proofService{paymentRepo: paymentRepo, store: store}
}

func proofKey(paymentID int32) string {
	return fmt.Sprintf("payments/%d/proof", paymentID)
}

// UploadProof attaches a receipt to the caller's own pending submission.
// A later upload replaces the earlier one.
func (s *proofService) UploadProof(ctx context.Context, actor domain.Actor, paymentID int32, r io.Reader) (*storage.FileInfo, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}

	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment %d: %w", paymentID, err)
	}
	if payment.UserID != actor.UserID {
		return nil, domain.ErrForbidden
	}
	if payment.Status != domain.PaymentStatusPendingApproval {
		return nil, fmt.Errorf("%w: proof can only be attached while the payment is pending approval", domain.ErrConflict)
	}

	info, err := s.store.Save(ctx, proofKey(paymentID), r)
	switch {
	case errors.Is(err, storage.ErrTooLarge), errors.Is(err, storage.ErrUnsupportedType):
		return nil, domain.NewValidationError("file", err.Error())
	case err != nil:
		return nil, fmt.Errorf("failed to store proof: %w", err)
	}

	logger.Audit(ctx, "payment.proof_uploaded", actor.UserID,
		"paymentID", paymentID, "size", info.Size, "contentType", info.ContentType)
	return info, nil
}

// OpenProof is open to admins and to the member who submitted the payment.
func (s *proofService) OpenProof(ctx context.Context, actor domain.Actor, paymentID int32) (io.ReadCloser, *storage.FileInfo, error) {
	if err := requireMember(actor); err != nil {
		return nil, nil, err
	}

	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load payment %d: %w", paymentID, err)
	}
	if payment.UserID != actor.UserID && !actor.Role.IsAdmin() {
		return nil, nil, domain.ErrForbidden
	}

	rc, info, err := s.store.Open(ctx, proofKey(paymentID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: no proof uploaded for payment %d", domain.ErrNotFound, paymentID)
		}
		return nil, nil, fmt.Errorf("failed to open proof: %w", err)
	}
	return rc, info, nil
}
