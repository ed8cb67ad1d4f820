package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/evolvetech/opsdash/models"
	"github.com/lib/pq"
)

// ErrDuplicateEmail is returned when an insert collides with the unique
// index on users.email.
var ErrDuplicateEmail = errors.New("email already exists")

const pqUniqueViolation = "23505"

type UserRepository struct {
	db *sql.DB // The actual database connection pool
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, phone, email, traffic_source, password, avatar, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		user.Name, user.Phone, user.Email, user.TrafficSource, user.Password, user.Avatar, user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves a user by email address. The returned error wraps
// sql.ErrNoRows when no such user exists.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, name, email, phone, traffic_source, password, avatar, otp, created_at
		FROM users
		WHERE email = $1
	`
	var user models.User
	row := r.db.QueryRowContext(ctx, query, email)
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.Phone,
		&user.TrafficSource, &user.Password, &user.Avatar, &user.OTP, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// SetOTP overwrites the stored one-time code for the given email. Matching
// zero rows is not an error: the reset flow behaves identically whether or
// not the address belongs to an account.
func (r *UserRepository) SetOTP(ctx context.Context, email, otp string) error {
	query := `UPDATE users SET otp = $1 WHERE email = $2`
	if _, err := r.db.ExecContext(ctx, query, otp, email); err != nil {
		return fmt.Errorf("failed to set OTP: %w", err)
	}
	return nil
}

// MatchOTP reports whether a user row exists matching both the email and the
// code exactly. It does not clear the code.
func (r *UserRepository) MatchOTP(ctx context.Context, email, otp string) (bool, error) {
	query := `SELECT 1 FROM users WHERE email = $1 AND otp = $2`
	var one int
	err := r.db.QueryRowContext(ctx, query, email, otp).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to match OTP: %w", err)
	}
	return true, nil
}

// UpdatePassword overwrites the stored password hash for the given email.
func (r *UserRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	query := `UPDATE users SET password = $1 WHERE email = $2`
	if _, err := r.db.ExecContext(ctx, query, passwordHash, email); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}
