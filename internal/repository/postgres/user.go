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

const userColumns = `id, name, email, password_hash, role, COALESCE(phone, ''), COALESCE(address, ''),
	COALESCE(profile_image, ''), date_of_birth, COALESCE(occupation, ''), skills, interests,
	COALESCE(experience, ''), COALESCE(motivation, ''), COALESCE(bio, ''),
	COALESCE(emergency_contact_name, ''), COALESCE(emergency_contact_phone, ''), COALESCE(emergency_contact_relationship, ''),
	status, COALESCE(membership_type, ''), expiry_date, last_payment_date,
	date_joined, last_active, approved_by, approved_at, rejected_by, rejected_at, COALESCE(rejection_reason, ''),
	created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (*domain.User, error) {
	u := &domain.User{}
	err := s.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Phone, &u.Address,
		&u.ProfileImage, &u.DateOfBirth, &u.Occupation, pq.Array(&u.Skills), pq.Array(&u.Interests),
		&u.Experience, &u.Motivation, &u.Bio,
		&u.EmergencyContact.Name, &u.EmergencyContact.Phone, &u.EmergencyContact.Relationship,
		&u.Status, &u.MembershipType, &u.ExpiryDate, &u.LastPaymentDate,
		&u.DateJoined, &u.LastActive, &u.ApprovedBy, &u.ApprovedAt, &u.RejectedBy, &u.RejectedAt, &u.RejectionReason,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	logger.EnterMethod("userRepository.Create", "email", u.Email, "status", u.Status)

	query := `
		INSERT INTO users (
			name, email, password_hash, role, phone, address, date_of_birth, occupation,
			skills, interests, experience, motivation, bio,
			emergency_contact_name, emergency_contact_phone, emergency_contact_relationship,
			status, membership_type, expiry_date, approved_by, approved_at,
			date_joined, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
		RETURNING id
	`
	now := time.Now()
	if u.DateJoined.IsZero() {
		u.DateJoined = now
	}
	u.CreatedAt = now
	u.UpdatedAt = now

	err := r.db.QueryRowContext(ctx, query,
		u.Name, strings.ToLower(u.Email), u.PasswordHash, u.Role, nullString(u.Phone), nullString(u.Address), u.DateOfBirth, nullString(u.Occupation),
		textArray(u.Skills), textArray(u.Interests), nullString(u.Experience), nullString(u.Motivation), nullString(u.Bio),
		nullString(u.EmergencyContact.Name), nullString(u.EmergencyContact.Phone), nullString(u.EmergencyContact.Relationship),
		u.Status, nullString(string(u.MembershipType)), u.ExpiryDate, u.ApprovedBy, u.ApprovedAt,
		u.DateJoined, u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID)
	if err != nil {
		err = translateError(err)
		logger.ExitMethodWithError("userRepository.Create", err, "email", u.Email)
		return err
	}

	logger.ExitMethod("userRepository.Create", "userID", u.ID)
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	logger.EnterMethod("userRepository.GetByID", "userID", id)

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		err = translateError(err)
		logger.ExitMethodWithError("userRepository.GetByID", err, "userID", id)
		return nil, err
	}

	logger.ExitMethod("userRepository.GetByID", "userID", id)
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	logger.EnterMethod("userRepository.GetByEmail", "email", email)

	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		err = translateError(err)
		logger.ExitMethodWithError("userRepository.GetByEmail", err, "email", email)
		return nil, err
	}

	logger.ExitMethod("userRepository.GetByEmail", "userID", u.ID)
	return u, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, u *domain.User) error {
	logger.EnterMethod("userRepository.UpdateProfile", "userID", u.ID)

	query := `
		UPDATE users SET
			name = $1, phone = $2, address = $3, profile_image = $4, date_of_birth = $5,
			occupation = $6, skills = $7, interests = $8, experience = $9, motivation = $10, bio = $11,
			emergency_contact_name = $12, emergency_contact_phone = $13, emergency_contact_relationship = $14,
			updated_at = $15
		WHERE id = $16
	`
	u.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, query,
		u.Name, nullString(u.Phone), nullString(u.Address), nullString(u.ProfileImage), u.DateOfBirth,
		nullString(u.Occupation), textArray(u.Skills), textArray(u.Interests), nullString(u.Experience), nullString(u.Motivation), nullString(u.Bio),
		nullString(u.EmergencyContact.Name), nullString(u.EmergencyContact.Phone), nullString(u.EmergencyContact.Relationship),
		u.UpdatedAt, u.ID,
	)
	if err == nil {
		err = requireAffected(res)
	}
	if err != nil {
		logger.ExitMethodWithError("userRepository.UpdateProfile", err, "userID", u.ID)
		return err
	}

	logger.ExitMethod("userRepository.UpdateProfile", "userID", u.ID)
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int32, passwordHash string) error {
	logger.EnterMethod("userRepository.UpdatePassword", "userID", id)

	res, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`, passwordHash, time.Now(), id)
	if err == nil {
		err = requireAffected(res)
	}
	if err != nil {
		logger.ExitMethodWithError("userRepository.UpdatePassword", err, "userID", id)
		return err
	}

	logger.ExitMethod("userRepository.UpdatePassword", "userID", id)
	return nil
}

func (r *userRepository) TouchLastActive(ctx context.Context, id int32, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_active = $1 WHERE id = $2`, at, id)
	return err
}

func (r *userRepository) List(ctx context.Context, filter domain.MemberFilter) ([]domain.User, int32, error) {
	logger.EnterMethod("userRepository.List", "status", filter.Status, "role", filter.Role, "page", filter.Page)

	where := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.Role != "" {
		where = append(where, fmt.Sprintf("role = $%d", argIdx))
		args = append(args, filter.Role)
		argIdx++
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}
	clause := strings.Join(where, " AND ")

	var total int32
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE `+clause, args...).Scan(&total); err != nil {
		logger.ExitMethodWithError("userRepository.List", err)
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		userColumns, clause, argIdx, argIdx+1)
	args = append(args, filter.Limit, offsetFor(filter.Page, filter.Limit))

	users, err := r.queryUsers(ctx, query, args...)
	if err != nil {
		logger.ExitMethodWithError("userRepository.List", err)
		return nil, 0, err
	}

	logger.ExitMethod("userRepository.List", "count", len(users), "total", total)
	return users, total, nil
}

func (r *userRepository) ListByRole(ctx context.Context, roles []domain.Role) ([]domain.User, error) {
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = string(role)
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE role = ANY($1) AND status = 'ACTIVE' ORDER BY id`
	return r.queryUsers(ctx, query, pq.Array(names))
}

func (r *userRepository) DecideRegistration(ctx context.Context, id int32, d domain.RegistrationDecision) (*domain.User, error) {
	logger.EnterMethod("userRepository.DecideRegistration", "userID", id, "approve", d.Approve, "adminID", d.AdminID)

	var query string
	var args []interface{}
	if d.Approve {
		query = `UPDATE users SET status = 'ACTIVE', membership_type = $1, approved_by = $2, approved_at = $3, updated_at = $3
			WHERE id = $4 AND status = 'PENDING_APPROVAL' RETURNING ` + userColumns
		args = []interface{}{d.MembershipType, d.AdminID, d.DecidedAt, id}
	} else {
		query = `UPDATE users SET status = 'REJECTED', rejected_by = $1, rejected_at = $2, rejection_reason = $3, updated_at = $2
			WHERE id = $4 AND status = 'PENDING_APPROVAL' RETURNING ` + userColumns
		args = []interface{}{d.AdminID, d.DecidedAt, nullString(d.Reason), id}
	}

	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		// Registration was decided by someone else between read and write
		err = domain.ErrConflict
	}
	if err != nil {
		logger.ExitMethodWithError("userRepository.DecideRegistration", err, "userID", id)
		return nil, err
	}

	logger.ExitMethod("userRepository.DecideRegistration", "userID", id, "status", u.Status)
	return u, nil
}

func (r *userRepository) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE status = 'ACTIVE' AND expiry_date >= $1 AND expiry_date < $2
		AND COALESCE(membership_type, '') <> 'HONORARY'
		ORDER BY expiry_date`
	return r.queryUsers(ctx, query, from, to)
}

func (r *userRepository) CountByStatus(ctx context.Context, status domain.MemberStatus) (int32, error) {
	var count int32
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE status = $1`, status).Scan(&count)
	return count, err
}

func (r *userRepository) CountJoinedBetween(ctx context.Context, start, end time.Time) (int32, error) {
	var count int32
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE date_joined >= $1 AND date_joined <= $2`, start, end).Scan(&count)
	return count, err
}

func (r *userRepository) CountActiveByRole(ctx context.Context) ([]domain.NameCount, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT role, COUNT(*) FROM users WHERE status = 'ACTIVE' GROUP BY role ORDER BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNameCounts(rows)
}

func (r *userRepository) CountSummary(ctx context.Context) (*domain.MemberCounts, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'ACTIVE'),
		       COUNT(*) FILTER (WHERE status = 'PENDING_APPROVAL')
		FROM users`
	counts := &domain.MemberCounts{}
	if err := r.db.QueryRowContext(ctx, query).Scan(&counts.Total, &counts.Active, &counts.PendingApproval); err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *userRepository) queryUsers(ctx context.Context, query string, args ...interface{}) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func scanNameCounts(rows *sql.Rows) ([]domain.NameCount, error) {
	var counts []domain.NameCount
	for rows.Next() {
		var nc domain.NameCount
		if err := rows.Scan(&nc.Name, &nc.Value); err != nil {
			return nil, err
		}
		counts = append(counts, nc)
	}
	return counts, rows.Err()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
