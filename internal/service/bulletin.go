package service

import (
	"context"
	"fmt"
	"strings"

	"membership-portal-backend/internal/domain"
	"membership-portal-backend/internal/logger"
	"membership-portal-backend/internal/repository"
)

type bulletinService struct {
	announcementRepo repository.AnnouncementRepository
	resourceRepo     repository.ResourceRepository
	opts             options
}

func NewBulletinService(
	announcementRepo repository.AnnouncementRepository,
	resourceRepo repository.ResourceRepository,
	opts ...Option,
) BulletinService {
	return &bulletinService{
		announcementRepo: announcementRepo,
		resourceRepo:     resourceRepo,
		opts:             buildOptions(opts),
	}
}

func (s *bulletinService) ListAnnouncements(ctx context.Context) ([]domain.Announcement, error) {
	announcements, err := s.announcementRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	if announcements == nil {
		announcements = []domain.Announcement{}
	}
	return announcements, nil
}

func (s *bulletinService) CreateAnnouncement(ctx context.Context, actor domain.Actor, input AnnouncementInput) (*domain.Announcement, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	announcement := &domain.Announcement{
		Title:     strings.TrimSpace(input.Title),
		Content:   input.Content,
		Priority:  input.Priority,
		AuthorID:  actor.UserID,
		CreatedAt: s.opts.now(),
	}
	if err := s.announcementRepo.Create(ctx, announcement); err != nil {
		return nil, fmt.Errorf("failed to create announcement: %w", err)
	}

	logger.Audit(ctx, "announcement.created", actor.UserID, "announcementID", announcement.ID)
	return announcement, nil
}

// ListResources filters by what the caller may see. A nil actor is anonymous.
func (s *bulletinService) ListResources(ctx context.Context, actor *domain.Actor) ([]domain.Resource, error) {
	resources, err := s.resourceRepo.List(ctx, domain.VisibleAccessLevels(actor))
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	if resources == nil {
		resources = []domain.Resource{}
	}
	return resources, nil
}

func (s *bulletinService) CreateResource(ctx context.Context, actor domain.Actor, input ResourceInput) (*domain.Resource, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	resource := &domain.Resource{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		URL:         input.URL,
		Category:    input.Category,
		AccessLevel: input.AccessLevel,
		UploadedBy:  actor.UserID,
		CreatedAt:   s.opts.now(),
	}
	if err := s.resourceRepo.Create(ctx, resource); err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	logger.Audit(ctx, "resource.created", actor.UserID, "resourceID", resource.ID, "accessLevel", resource.AccessLevel)
	return resource, nil
}
