package service

import (
	"context"
	"fmt"
	"strings"

	"membership-portal-backend/internal/domain"
	"membership-portal-backend/internal/logger"
	"membership-portal-backend/internal/repository"
	"membership-portal-backend/internal/security"
)

type memberService struct {
	userRepo     repository.UserRepository
	activityRepo repository.ActivityRepository
	emailSvc     EmailService
	opts         options
}

func NewMemberService(
	userRepo repository.UserRepository,
	activityRepo repository.ActivityRepository,
	emailSvc EmailService,
	opts ...Option,
) MemberService {
	return &memberService{
		userRepo:     userRepo,
		activityRepo: activityRepo,
		emailSvc:     emailSvc,
		opts:         buildOptions(opts),
	}
}

func (s *memberService) ListMembers(ctx context.Context, actor domain.Actor, filter domain.MemberFilter) ([]domain.User, domain.Pagination, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, domain.Pagination{}, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.Pagination{}, domain.NewValidationError("status", "is not a known member status")
	}

	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)
	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("failed to list members: %w", err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, domain.NewPagination(filter.Page, filter.Limit, total), nil
}

// GetMember is open to admins and to the member themself.
func (s *memberService) GetMember(ctx context.Context, actor domain.Actor, id int32) (*domain.User, []domain.Activity, error) {
	if err := requireMember(actor); err != nil {
		return nil, nil, err
	}
	if actor.UserID != id && !actor.Role.IsAdmin() {
		return nil, nil, domain.ErrForbidden
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load member %d: %w", id, err)
	}
	activities, err := s.activityRepo.ListByParticipant(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load member activities: %w", err)
	}
	if activities == nil {
		activities = []domain.Activity{}
	}
	return user, activities, nil
}

func (s *memberService) ApproveRegistration(ctx context.Context, actor domain.Actor, id int32, membershipType domain.MembershipType) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if membershipType == "" {
		membershipType = domain.MembershipTypeAnnual
	}
	if !membershipType.Valid() {
		return nil, domain.NewValidationError("membershipType", "must be one of ANNUAL, LIFE, HONORARY")
	}

	return s.decide(ctx, id, domain.RegistrationDecision{
		Approve:        true,
		MembershipType: membershipType,
		AdminID:        actor.UserID,
		DecidedAt:      s.opts.now(),
	})
}

func (s *memberService) RejectRegistration(ctx context.Context, actor domain.Actor, id int32, reason string) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	return s.decide(ctx, id, domain.RegistrationDecision{
		Approve:   false,
		AdminID:   actor.UserID,
		Reason:    strings.TrimSpace(reason),
		DecidedAt: s.opts.now(),
	})
}

func (s *memberService) decide(ctx context.Context, id int32, decision domain.RegistrationDecision) (*domain.User, error) {
	current, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load member %d: %w", id, err)
	}
	if current.Status != domain.MemberStatusPendingApproval {
		return nil, fmt.Errorf("%w: registration for member %d was already decided", domain.ErrConflict, id)
	}

	user, err := s.userRepo.DecideRegistration(ctx, id, decision)
	if err != nil {
		return nil, fmt.Errorf("failed to record registration decision: %w", err)
	}

	action := "member.rejected"
	if decision.Approve {
		action = "member.approved"
	}
	logger.Audit(ctx, action, decision.AdminID, "userID", id, "membershipType", user.MembershipType)
	notifyResult(ctx, "registration_decision", s.emailSvc.SendRegistrationDecision(ctx, user, decision.Approve, decision.Reason))

	return user, nil
}

func (s *memberService) CreateMember(ctx context.Context, actor domain.Actor, input CreateMemberInput) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if input.Role.IsAdmin() && actor.Role != domain.RoleSuperAdmin {
		return nil, fmt.Errorf("%w: only a super admin can create admin accounts", domain.ErrForbidden)
	}

	if err := ensureEmailFree(ctx, s.userRepo, input.Email); err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.opts.now()
	user := input.toUser()
	user.PasswordHash = hash
	user.Role = input.Role
	user.MembershipType = input.MembershipType
	user.DateJoined = now
	user.Status = domain.MemberStatusPendingApproval
	if input.autoApprove() {
		adminID := actor.UserID
		user.Status = domain.MemberStatusActive
		user.ApprovedBy = &adminID
		user.ApprovedAt = &now
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	logger.Audit(ctx, "member.created", actor.UserID, "userID", user.ID, "role", user.Role, "status", user.Status)
	return user, nil
}
