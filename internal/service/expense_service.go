package service

import (
	"context"
	"errors"
	"time"

	"finance_tracker/internal/models"
	"finance_tracker/internal/repository"

	"github.com/google/uuid"
)

// Named date presets accepted by the list filter. The odd casing of the
// three-month preset is part of the public API.
const (
	PresetPastWeek    = "PAST_WEEK"
	PresetPastMonth   = "PAST_MONTH"
	PresetLast3Months = "Last_3_months"
)

// Filter validation errors, all answered with 400.
var (
	ErrPresetWithRange = errors.New(`cannot use "date" preset with "start" or "end"; use one or the other`)
	ErrIncompleteRange = errors.New(`both "start" and "end" are required for a custom range`)
	ErrStartAfterEnd   = errors.New(`"start" must be before "end"`)
	ErrExpenseNotFound = errors.New("expense not found")
)

type ExpenseService struct {
	expenses repository.Expenses
	now      func() time.Time
}

func NewExpenseService(expenses repository.Expenses) *ExpenseService {
	return &ExpenseService{expenses: expenses, now: time.Now}
}

var _ Expenses = (*ExpenseService)(nil)

// Create persists a new expense bound to userID. An unset Date defaults to
// the creation time; unset optional fields stay null.
func (s *ExpenseService) Create(ctx context.Context, userID string, p CreateExpenseParams) (models.Expense, error) {
	now := s.now().UTC()
	date := p.Date
	if date.IsZero() {
		date = now
	}
	e := models.Expense{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       p.Title,
		Amount:      p.Amount,
		Category:    p.Category,
		Type:        p.Type,
		Description: p.Description,
		Currency:    p.Currency,
		Vendor:      p.Vendor,
		Date:        date.UTC(),
		CreatedAt:   now,
	}
	if err := s.expenses.Create(ctx, e); err != nil {
		return models.Expense{}, err
	}
	return e, nil
}

// List validates the filter, resolves a preset into a concrete range and
// returns the user's expenses newest first.
func (s *ExpenseService) List(ctx context.Context, userID string, f ExpenseFilter) ([]models.Expense, error) {
	from, to, err := s.resolveRange(f)
	if err != nil {
		return nil, err
	}
	return s.expenses.ListByUser(ctx, userID, from, to)
}

// Delete removes the expense if it belongs to userID and returns the
// deleted record.
func (s *ExpenseService) Delete(ctx context.Context, userID, expenseID string) (models.Expense, error) {
	e, err := s.expenses.Delete(ctx, userID, expenseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Expense{}, ErrExpenseNotFound
		}
		return models.Expense{}, err
	}
	return e, nil
}

// resolveRange turns the filter into inclusive [from, to] bounds. Zero
// bounds mean unbounded. Preset and explicit range are mutually exclusive.
func (s *ExpenseService) resolveRange(f ExpenseFilter) (time.Time, time.Time, error) {
	hasStart := !f.Start.IsZero()
	hasEnd := !f.End.IsZero()

	if f.Preset != "" && (hasStart || hasEnd) {
		return time.Time{}, time.Time{}, ErrPresetWithRange
	}
	if hasStart != hasEnd {
		return time.Time{}, time.Time{}, ErrIncompleteRange
	}
	if hasStart && f.Start.After(f.End) {
		return time.Time{}, time.Time{}, ErrStartAfterEnd
	}

	if hasStart {
		return f.Start.UTC(), f.End.UTC(), nil
	}
	if f.Preset == "" {
		return time.Time{}, time.Time{}, nil
	}

	now := s.now().UTC()
	var from time.Time
	switch f.Preset {
	case PresetPastWeek:
		from = now.AddDate(0, 0, -7)
	case PresetPastMonth:
		from = now.AddDate(0, -1, 0)
	case PresetLast3Months:
		from = now.AddDate(0, -3, 0)
	default:
		from = time.Unix(0, 0).UTC() // since epoch
	}
	return from, now, nil
}
