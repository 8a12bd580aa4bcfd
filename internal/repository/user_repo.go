package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"finance_tracker/internal/models"
)

// ErrDuplicateEmail is surfaced when the unique index on users.email trips.
var ErrDuplicateEmail = errors.New("email already exists")

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Ensure implementation of Users interface at compile time.
var _ Users = (*UserRepository)(nil)

const (
	insertUserSQL        = `INSERT INTO users (id, username, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`
	selectUserByEmailSQL = `SELECT id, username, email, password_hash, created_at FROM users WHERE email = ?`
)

// Create inserts a new user. A unique-index violation on email is mapped
// to ErrDuplicateEmail so the service can answer 409 even when two
// registrations race past the existence check.
func (r *UserRepository) Create(ctx context.Context, u models.User) error {
	_, err := r.db.ExecContext(ctx, insertUserSQL,
		u.ID,
		u.Username,
		u.Email,
		u.PasswordHash,
		u.CreatedAt.UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user %q: %w", u.Email, err)
	}
	return nil
}

// GetByEmail fetches a user by email. Returns (nil, nil) if not found.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx, selectUserByEmailSQL, email).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user %q: %w", email, err)
	}
	return &u, nil
}

// SQLite TIMESTAMP format shared by both repositories.
const sqliteTimeLayout = "2006-01-02 15:04:05"

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
