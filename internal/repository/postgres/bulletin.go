package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"membership-portal-backend/internal/domain"
	"membership-portal-backend/internal/logger"
	"membership-portal-backend/internal/repository"
)

type announcementRepository struct {
	db *sql.DB
}

func NewAnnouncementRepository(db *sql.DB) repository.AnnouncementRepository {
	return &announcementRepository{db: db}
}

func (r *announcementRepository) Create(ctx context.Context, a *domain.Announcement) error {
	logger.EnterMethod("announcementRepository.Create", "authorID", a.AuthorID)

	a.CreatedAt = time.Now()
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO announcements (title, content, priority, author_id, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		a.Title, a.Content, a.Priority, a.AuthorID, a.CreatedAt,
	).Scan(&a.ID)
	if err != nil {
		logger.ExitMethodWithError("announcementRepository.Create", err)
		return err
	}

	logger.ExitMethod("announcementRepository.Create", "announcementID", a.ID)
	return nil
}

func (r *announcementRepository) List(ctx context.Context) ([]domain.Announcement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.id, a.title, a.content, a.priority, a.author_id, u.name, a.created_at
		FROM announcements a JOIN users u ON u.id = a.author_id
		ORDER BY a.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var announcements []domain.Announcement
	for rows.Next() {
		var a domain.Announcement
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.Priority, &a.AuthorID, &a.AuthorName, &a.CreatedAt); err != nil {
			return nil, err
		}
		announcements = append(announcements, a)
	}
	return announcements, rows.Err()
}

type resourceRepository struct {
	db *sql.DB
}

func NewResourceRepository(db *sql.DB) repository.ResourceRepository {
	return &resourceRepository{db: db}
}

func (r *resourceRepository) Create(ctx context.Context, res *domain.Resource) error {
	logger.EnterMethod("resourceRepository.Create", "uploadedBy", res.UploadedBy, "accessLevel", res.AccessLevel)

	res.CreatedAt = time.Now()
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO resources (title, description, url, category, access_level, uploaded_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		res.Title, nullString(res.Description), res.URL, nullString(res.Category), res.AccessLevel, res.UploadedBy, res.CreatedAt,
	).Scan(&res.ID)
	if err != nil {
		logger.ExitMethodWithError("resourceRepository.Create", err)
		return err
	}

	logger.ExitMethod("resourceRepository.Create", "resourceID", res.ID)
	return nil
}

func (r *resourceRepository) List(ctx context.Context, levels []domain.AccessLevel) ([]domain.Resource, error) {
	names := make([]string, len(levels))
	for i, l := range levels {
		names[i] = string(l)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, r.title, COALESCE(r.description, ''), r.url, COALESCE(r.category, ''), r.access_level,
		       r.uploaded_by, u.name, r.created_at
		FROM resources r JOIN users u ON u.id = r.uploaded_by
		WHERE r.access_level = ANY($1)
		ORDER BY r.created_at DESC`, pq.Array(names))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resources []domain.Resource
	for rows.Next() {
		var res domain.Resource
		if err := rows.Scan(&res.ID, &res.Title, &res.Description, &res.URL, &res.Category, &res.AccessLevel,
			&res.UploadedBy, &res.UploadedByName, &res.CreatedAt); err != nil {
			return nil, err
		}
		resources = append(resources, res)
	}
	return resources, rows.Err()
}
