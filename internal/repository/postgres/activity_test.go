package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"membership-portal-backend/internal/domain"
)

func TestActivityRepository_AddParticipant(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewActivityRepository(db)
	ctx := context.Background()

	t.Run("Joined", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO activity_participants").
			WithArgs(int32(3), int32(42), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE activities SET current_participants = current_participants \\+ 1").
			WithArgs(sqlmock.AnyArg(), int32(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.AddParticipant(ctx, 3, 42))
	})

	t.Run("AlreadyJoined", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO activity_participants").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "activity_participants_pkey"})
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.AddParticipant(ctx, 3, 42), domain.ErrConflict)
	})

	t.Run("Full", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO activity_participants").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE activities").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.AddParticipant(ctx, 3, 43), domain.ErrConflict)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewActivityRepository(db)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM activities WHERE id = \\$1").
		WithArgs(int32(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Delete(ctx, 3))

	mock.ExpectExec("DELETE FROM activities").
		WithArgs(int32(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(ctx, 4), domain.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepository_ListRecent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewActivityRepository(db)

	when := time.Date(2024, 4, 6, 7, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "title", "description", "type", "date", "location", "max_participants",
		"current_participants", "status", "organizer_id", "images",
		"animals_rescued", "trees_planted", "blood_units_collected", "people_reached", "waste_collected",
		"created_at", "updated_at", "participants",
	}).AddRow(
		int64(11), "Lake cleanup", "Bring gloves", "CLEANUP", when, "North shore", nil,
		int64(1), "UPCOMING", int64(42), "{}",
		int64(0), int64(0), int64(0), int64(0), int64(0),
		when, when, "{42}",
	)
	mock.ExpectQuery("SELECT (.+) FROM activities a ORDER BY a.date DESC LIMIT \\$1").
		WithArgs(5).
		WillReturnRows(rows)

	activities, err := repo.ListRecent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, "Lake cleanup", activities[0].Title)
	assert.Equal(t, []int32{42}, activities[0].ParticipantIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepository_Summary(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewActivityRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FILTER \\(WHERE status = 'UPCOMING'\\)").
		WillReturnRows(sqlmock.NewRows([]string{"upcoming", "completed", "a", "t", "b", "p", "w"}).
			AddRow(int64(3), int64(9), int64(2), int64(300), int64(40), int64(1200), int64(0)))

	summary, err := repo.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), summary.Upcoming)
	assert.Equal(t, int32(9), summary.Completed)
	assert.Equal(t, int32(300), summary.Impact.TreesPlanted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
