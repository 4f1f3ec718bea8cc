package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"membership-portal-backend/internal/domain"
	"membership-portal-backend/internal/logger"
	"membership-portal-backend/internal/repository"
)

const activityColumns = `a.id, a.title, a.description, a.type, a.date, a.location, a.max_participants,
	a.current_participants, a.status, a.organizer_id, a.images,
	a.animals_rescued, a.trees_planted, a.blood_units_collected, a.people_reached, a.waste_collected,
	a.created_at, a.updated_at,
	COALESCE((SELECT array_agg(ap.user_id ORDER BY ap.joined_at) FROM activity_participants ap WHERE ap.activity_id = a.id), '{}')`

func scanActivity(s rowScanner) (*domain.Activity, error) {
	a := &domain.Activity{}
	var participants pq.Int32Array
	err := s.Scan(
		&a.ID, &a.Title, &a.Description, &a.Type, &a.Date, &a.Location, &a.MaxParticipants,
		&a.CurrentParticipants, &a.Status, &a.OrganizerID, pq.Array(&a.Images),
		&a.Impact.AnimalsRescued, &a.Impact.TreesPlanted, &a.Impact.BloodUnitsCollected, &a.Impact.PeopleReached, &a.Impact.WasteCollected,
		&a.CreatedAt, &a.UpdatedAt,
		&participants,
	)
	if err != nil {
		return nil, err
	}
	a.ParticipantIDs = []int32(participants)
	return a, nil
}

type activityRepository struct {
	db *sql.DB
}

func NewActivityRepository(db *sql.DB) repository.ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, a *domain.Activity) error {
	logger.EnterMethod("activityRepository.Create", "title", a.Title, "organizerID", a.OrganizerID)

	query := `
		INSERT INTO activities (
			title, description, type, date, location, max_participants, status, organizer_id, images, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now
	err := r.db.QueryRowContext(ctx, query,
		a.Title, a.Description, a.Type, a.Date, a.Location, a.MaxParticipants, a.Status, a.OrganizerID, textArray(a.Images), now, now,
	).Scan(&a.ID)
	if err != nil {
		logger.ExitMethodWithError("activityRepository.Create", err)
		return err
	}

	logger.ExitMethod("activityRepository.Create", "activityID", a.ID)
	return nil
}

func (r *activityRepository) GetByID(ctx context.Context, id int32) (*domain.Activity, error) {
	logger.EnterMethod("activityRepository.GetByID", "activityID", id)

	a, err := scanActivity(r.db.QueryRowContext(ctx, `SELECT `+activityColumns+` FROM activities a WHERE a.id = $1`, id))
	if err != nil {
		err = translateError(err)
		logger.ExitMethodWithError("activityRepository.GetByID", err, "activityID", id)
		return nil, err
	}

	logger.ExitMethod("activityRepository.GetByID", "activityID", id)
	return a, nil
}

func (r *activityRepository) Update(ctx context.Context, a *domain.Activity) error {
	logger.EnterMethod("activityRepository.Update", "activityID", a.ID, "status", a.Status)

	query := `
		UPDATE activities SET
			title = $1, description = $2, type = $3, date = $4, location = $5, max_participants = $6,
			status = $7, images = $8,
			animals_rescued = $9, trees_planted = $10, blood_units_collected = $11, people_reached = $12, waste_collected = $13,
			updated_at = $14
		WHERE id = $15`
	a.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, query,
		a.Title, a.Description, a.Type, a.Date, a.Location, a.MaxParticipants,
		a.Status, textArray(a.Images),
		a.Impact.AnimalsRescued, a.Impact.TreesPlanted, a.Impact.BloodUnitsCollected, a.Impact.PeopleReached, a.Impact.WasteCollected,
		a.UpdatedAt, a.ID,
	)
	if err == nil {
		err = requireAffected(res)
	}
	if err != nil {
		logger.ExitMethodWithError("activityRepository.Update", err, "activityID", a.ID)
		return err
	}

	logger.ExitMethod("activityRepository.Update", "activityID", a.ID)
	return nil
}

func (r *activityRepository) List(ctx context.Context, filter domain.ActivityFilter) ([]domain.Activity, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1
	if filter.Status != "" {
		where = append(where, fmt.Sprintf("a.status = $%d", argIdx))
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.Type != "" {
		where = append(where, fmt.Sprintf("a.type = $%d", argIdx))
		args = append(args, filter.Type)
	}
	query := `SELECT ` + activityColumns + ` FROM activities a WHERE ` + strings.Join(where, " AND ") + ` ORDER BY a.date DESC`
	return r.queryActivities(ctx, query, args...)
}

func (r *activityRepository) ListByParticipant(ctx context.Context, userID int32) ([]domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities a
		JOIN activity_participants p ON p.activity_id = a.id
		WHERE p.user_id = $1 ORDER BY a.date DESC`
	return r.queryActivities(ctx, query, userID)
}

func (r *activityRepository) ListRecent(ctx context.Context, limit int) ([]domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities a ORDER BY a.date DESC LIMIT $1`
	return r.queryActivities(ctx, query, limit)
}

// Delete removes the activity; participant rows go with it.
func (r *activityRepository) Delete(ctx context.Context, id int32) error {
	logger.EnterMethod("activityRepository.Delete", "activityID", id)

	res, err := r.db.ExecContext(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err == nil {
		err = requireAffected(res)
	}
	if err != nil {
		logger.ExitMethodWithError("activityRepository.Delete", err, "activityID", id)
		return err
	}

	logger.ExitMethod("activityRepository.Delete", "activityID", id)
	return nil
}

func (r *activityRepository) AddParticipant(ctx context.Context, activityID, userID int32) error {
	logger.EnterMethod("activityRepository.AddParticipant", "activityID", activityID, "userID", userID)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO activity_participants (activity_id, user_id, joined_at) VALUES ($1, $2, $3)`,
		activityID, userID, time.Now()); err != nil {
		err = translateError(err)
		logger.ExitMethodWithError("activityRepository.AddParticipant", err, "activityID", activityID)
		return err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE activities SET current_participants = current_participants + 1, updated_at = $1
		WHERE id = $2 AND status IN ('UPCOMING', 'ONGOING')
		  AND (max_participants IS NULL OR current_participants < max_participants)`,
		time.Now(), activityID)
	if err != nil {
		logger.ExitMethodWithError("activityRepository.AddParticipant", err, "activityID", activityID)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = fmt.Errorf("%w: activity %d is full or closed", domain.ErrConflict, activityID)
		logger.ExitMethodWithError("activityRepository.AddParticipant", err, "activityID", activityID)
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	logger.ExitMethod("activityRepository.AddParticipant", "activityID", activityID, "userID", userID)
	return nil
}

func (r *activityRepository) CountBetween(ctx context.Context, start, end time.Time, status domain.ActivityStatus) (int32, error) {
	query := `SELECT COUNT(*) FROM activities WHERE date >= $1 AND date <= $2`
	args := []interface{}{start, end}
	if status != "" {
		query += ` AND status = $3`
		args = append(args, status)
	}
	var count int32
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *activityRepository) CountByTypeBetween(ctx context.Context, start, end time.Time) ([]domain.NameCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT type, COUNT(*) FROM activities WHERE date >= $1 AND date <= $2 GROUP BY type ORDER BY type`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNameCounts(rows)
}

func (r *activityRepository) ImpactBetween(ctx context.Context, start, end time.Time) (*domain.Impact, error) {
	query := `
		SELECT COALESCE(SUM(animals_rescued), 0), COALESCE(SUM(trees_planted), 0), COALESCE(SUM(blood_units_collected), 0),
		       COALESCE(SUM(people_reached), 0), COALESCE(SUM(waste_collected), 0)
		FROM activities
		WHERE status = 'COMPLETED' AND date >= $1 AND date <= $2`
	impact := &domain.Impact{}
	err := r.db.QueryRowContext(ctx, query, start, end).Scan(
		&impact.AnimalsRescued, &impact.TreesPlanted, &impact.BloodUnitsCollected, &impact.PeopleReached, &impact.WasteCollected,
	)
	if err != nil {
		return nil, err
	}
	return impact, nil
}

func (r *activityRepository) Summary(ctx context.Context) (*domain.ActivityCounts, error) {
	query := `
		SELECT COUNT(*) FILTER (WHERE status = 'UPCOMING'), COUNT(*) FILTER (WHERE status = 'COMPLETED'),
		       COALESCE(SUM(animals_rescued), 0), COALESCE(SUM(trees_planted), 0), COALESCE(SUM(blood_units_collected), 0),
		       COALESCE(SUM(people_reached), 0), COALESCE(SUM(waste_collected), 0)
		FROM activities`
	c := &domain.ActivityCounts{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&c.Upcoming, &c.Completed,
		&c.Impact.AnimalsRescued, &c.Impact.TreesPlanted, &c.Impact.BloodUnitsCollected, &c.Impact.PeopleReached, &c.Impact.WasteCollected,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *activityRepository) queryActivities(ctx context.Context, query string, args ...interface{}) ([]domain.Activity, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []domain.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}
