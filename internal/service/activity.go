package service

import (
	"context"
	"fmt"

	"membership-portal-backend/internal/domain"
	"membership-portal-backend/internal/logger"
	"membership-portal-backend/internal/repository"
)

type activityService struct {
	activityRepo repository.ActivityRepository
	opts         options
}

func NewActivityService(activityRepo repository.ActivityRepository, opts ...Option) ActivityService {
	return &activityService{
		activityRepo: activityRepo,
		opts:         buildOptions(opts),
	}
}

func (s *activityService) ListActivities(ctx context.Context, filter domain.ActivityFilter) ([]domain.Activity, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.NewValidationError("status", "is not a known activity status")
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, domain.NewValidationError("type", "is not a known activity type")
	}

	activities, err := s.activityRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	if activities == nil {
		activities = []domain.Activity{}
	}
	return activities, nil
}

func (s *activityService) GetActivity(ctx context.Context, id int32) (*domain.Activity, error) {
	activity, err := s.activityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load activity %d: %w", id, err)
	}
	return activity, nil
}

func (s *activityService) CreateActivity(ctx context.Context, actor domain.Actor, input ActivityInput) (*domain.Activity, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	now := s.opts.now()
	activity := &domain.Activity{
		Title:           input.Title,
		Description:     input.Description,
		Type:            input.Type,
		Date:            input.Date,
		Location:        input.Location,
		MaxParticipants: input.MaxParticipants,
		Status:          domain.ActivityStatusUpcoming,
		OrganizerID:     actor.UserID,
		ParticipantIDs:  []int32{},
		Images:          input.Images,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if activity.Images == nil {
		activity.Images = []string{}
	}

	if err := s.activityRepo.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	logger.Audit(ctx, "activity.created", actor.UserID, "activityID", activity.ID, "type", activity.Type)
	return activity, nil
}

// UpdateActivity is limited to the organizer and admins.
func (s *activityService) UpdateActivity(ctx context.Context, actor domain.Actor, id int32, input ActivityUpdateInput) (*domain.Activity, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	activity, err := s.activityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load activity %d: %w", id, err)
	}
	if activity.OrganizerID != actor.UserID && !actor.Role.IsAdmin() {
		return nil, fmt.Errorf("%w: only the organizer or an admin can update this activity", domain.ErrForbidden)
	}

	if input.Status != nil {
		activity.Status = *input.Status
	}
	if input.Impact != nil {
		activity.Impact = *input.Impact
	}
	if input.Images != nil {
		activity.Images = input.Images
	}
	activity.UpdatedAt = s.opts.now()

	if err := s.activityRepo.Update(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to update activity %d: %w", id, err)
	}

	logger.Audit(ctx, "activity.updated", actor.UserID, "activityID", id, "status", activity.Status)
	return activity, nil
}

func (s *activityService) JoinActivity(ctx context.Context, actor domain.Actor, id int32) (*domain.Activity, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}

	activity, err := s.activityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load activity %d: %w", id, err)
	}
	if !activity.Status.Joinable() {
		return nil, fmt.Errorf("%w: activity %d is %s", domain.ErrConflict, id, activity.Status)
	}

	// Capacity and duplicate sign-ups are enforced by the repository
	if err := s.activityRepo.AddParticipant(ctx, id, actor.UserID); err != nil {
		return nil, fmt.Errorf("failed to join activity %d: %w", id, err)
	}

	logger.InfoContext(ctx, "Member joined activity", "userID", actor.UserID, "activityID", id)
	return s.GetActivity(ctx, id)
}

// DeleteActivity is limited to the organizer and super admins.
func (s *activityService) DeleteActivity(ctx context.Context, actor domain.Actor, id int32) error {
	if err := requireMember(actor); err != nil {
		return err
	}

	activity, err := s.activityRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load activity %d: %w", id, err)
	}
	if activity.OrganizerID != actor.UserID && actor.Role != domain.RoleSuperAdmin {
		return fmt.Errorf("%w: only the organizer or a super admin can delete this activity", domain.ErrForbidden)
	}

	if err := s.activityRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete activity %d: %w", id, err)
	}

	logger.Audit(ctx, "activity.deleted", actor.UserID, "activityID", id, "title", activity.Title)
	return nil
}
