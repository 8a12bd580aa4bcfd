package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"finance_tracker/internal/models"
	"finance_tracker/internal/repository/db"
)

// ErrNotFound is returned when a lookup or delete matches no row.
var ErrNotFound = errors.New("record not found")

type Users interface {
	Create(ctx context.Context, u models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type Expenses interface {
	Create(ctx context.Context, e models.Expense) error
	ListByUser(ctx context.Context, userID string, from, to time.Time) ([]models.Expense, error)
	Delete(ctx context.Context, userID, id string) (models.Expense, error)
}

type Repository struct {
	Users    Users
	Expenses Expenses
}

func NewRepository(conn *sql.DB) *Repository {
	return &Repository{
		Users:    NewUserRepository(conn),
		Expenses: NewExpenseRepository(conn),
	}
}

// InitDB re-exports the sqlite bootstrap so callers wire through one package.
func InitDB(path string) (*sql.DB, error) {
	return db.InitDB(path)
}
