package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"membership-portal-backend/internal/domain"
	"membership-portal-backend/internal/logger"
	"membership-portal-backend/internal/repository"
	"membership-portal-backend/internal/security"
)

var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", domain.ErrUnauthenticated)
	ErrAccountNotActive   = fmt.Errorf("%w: account pending approval or rejected", domain.ErrUnauthenticated)
)

type authService struct {
	userRepo repository.UserRepository
	tokens   security.TokenManager
	opts     options
}

func NewAuthService(userRepo repository.UserRepository, tokens security.TokenManager, opts ...Option) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		opts:     buildOptions(opts),
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	if err := ensureEmailFree(ctx, s.userRepo, input.Email); err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := input.toUser()
	user.PasswordHash = hash
	user.Role = domain.RoleMember
	user.Status = domain.MemberStatusPendingApproval
	user.DateJoined = s.opts.now()

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Audit(ctx, "member.registered", user.ID, "email", user.Email)
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, domain.NewValidationError("", "email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !security.CheckPassword(user.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}
	// A lapsed membership still signs in so the member can renew
	if !user.Status.CanSignIn() {
		return "", nil, ErrAccountNotActive
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}

	now := s.opts.now()
	if err := s.userRepo.TouchLastActive(ctx, user.ID, now); err != nil {
		logger.WarnContext(ctx, "Failed to update last active", "userID", user.ID, "error", err)
	} else {
		user.LastActive = &now
	}

	return token, user, nil
}

func (s *authService) Me(ctx context.Context, actor domain.Actor) (*domain.User, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, actor domain.Actor, input ProfileInput) (*domain.User, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	user.Name = input.Name
	user.Phone = input.Phone
	user.Address = input.Address
	user.ProfileImage = input.ProfileImage
	user.Occupation = input.Occupation
	user.Skills = input.Skills
	user.Interests = input.Interests
	user.Bio = input.Bio
	user.EmergencyContact = input.EmergencyContact

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

func (s *authService) ChangePassword(ctx context.Context, actor domain.Actor, input ChangePasswordInput) error {
	if err := requireMember(actor); err != nil {
		return err
	}
	if err := input.Validate(); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if !security.CheckPassword(user.PasswordHash, input.CurrentPassword) {
		return domain.NewValidationError("currentPassword", "is incorrect")
	}

	hash, err := security.HashPassword(input.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	logger.Audit(ctx, "member.password_changed", actor.UserID)
	return nil
}

func ensureEmailFree(ctx context.Context, repo repository.UserRepository, email string) error {
	existing, err := repo.GetByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		return fmt.Errorf("%w: a user with this email already exists", domain.ErrConflict)
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("failed to check email: %w", err)
	}
	return nil
}
