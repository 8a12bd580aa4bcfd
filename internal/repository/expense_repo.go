package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"finance_tracker/internal/models"

	"github.com/google/uuid"
)

type ExpenseRepository struct {
	db *sql.DB
}

func NewExpenseRepository(db *sql.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

var _ Expenses = (*ExpenseRepository)(nil)

const (
	insertExpenseSQL = `INSERT INTO expenses (id, user_id, title, amount, category, type, description, currency, vendor, date, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	selectExpenseSQL = `SELECT id, user_id, title, amount, category, type, description, currency, vendor, date, created_at FROM expenses WHERE id = ? AND user_id = ?`
	deleteExpenseSQL = `DELETE FROM expenses WHERE id = ? AND user_id = ?`
)

// Create inserts a new expense. If ID or Date are empty, they are set.
func (r *ExpenseRepository) Create(ctx context.Context, e models.Expense) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Date.IsZero() {
		e.Date = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, insertExpenseSQL,
		e.ID,
		e.UserID,
		e.Title,
		e.Amount,
		e.Category,
		e.Type,
		e.Description,
		e.Currency,
		e.Vendor,
		e.Date.UTC().Format(sqliteTimeLayout),
		e.CreatedAt.UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert expense %q: %w", e.ID, err)
	}
	return nil
}

// ListByUser returns the user's expenses with date in [from, to] inclusive,
// newest first. A zero bound is omitted from the filter.
func (r *ExpenseRepository) ListByUser(ctx context.Context, userID string, from, to time.Time) ([]models.Expense, error) {
	conds := []string{"user_id = ?"}
	args := []any{userID}

	if !from.IsZero() {
		conds = append(conds, "date >= ?")
		args = append(args, from.UTC().Format(sqliteTimeLayout))
	}
	if !to.IsZero() {
		conds = append(conds, "date <= ?")
		args = append(args, to.UTC().Format(sqliteTimeLayout))
	}

	q := `SELECT id, user_id, title, amount, category, type, description, currency, vendor, date, created_at FROM expenses WHERE ` +
		strings.Join(conds, " AND ") + ` ORDER BY date DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses for user %q: %w", userID, err)
	}
	defer rows.Close()

	out := make([]models.Expense, 0, 32)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the expense owned by userID and returns the deleted row.
// Returns ErrNotFound when no owned row matches.
func (r *ExpenseRepository) Delete(ctx context.Context, userID, id string) (models.Expense, error) {
	var e models.Expense
	err := scanExpenseRow(r.db.QueryRowContext(ctx, selectExpenseSQL, id, userID), &e)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Expense{}, ErrNotFound
		}
		return models.Expense{}, fmt.Errorf("select expense %q: %w", id, err)
	}

	res, err := r.db.ExecContext(ctx, deleteExpenseSQL, id, userID)
	if err != nil {
		return models.Expense{}, fmt.Errorf("delete expense %q: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Raced with another delete between select and exec.
		return models.Expense{}, ErrNotFound
	}
	return e, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(rows *sql.Rows) (models.Expense, error) {
	var e models.Expense
	if err := scanExpenseRow(rows, &e); err != nil {
		return models.Expense{}, err
	}
	return e, nil
}

func scanExpenseRow(row rowScanner, e *models.Expense) error {
	if err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.Title,
		&e.Amount,
		&e.Category,
		&e.Type,
		&e.Description,
		&e.Currency,
		&e.Vendor,
		&e.Date,
		&e.CreatedAt,
	); err != nil {
		return err
	}
	e.Date = e.Date.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
	return nil
}
