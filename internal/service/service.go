package service

import (
	"context"
	"time"

	"finance_tracker/internal/models"
	"finance_tracker/internal/repository"
)

// TokenPair is the result of a successful registration or login: a
// short-lived access token plus a longer-lived refresh token, each signed
// with its own secret.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RegisterParams carries already-validated registration input.
type RegisterParams struct {
	Username string
	Email    string
	Password string
}

// CreateExpenseParams carries already-validated expense input. Optional
// fields stay nil when unset so they persist as explicit nulls. Date
// overrides the occurrence timestamp when non-zero.
type CreateExpenseParams struct {
	Title       string
	Amount      float64
	Category    string
	Type        string // INCOME | EXPENSE
	Description *string
	Currency    *string
	Vendor      *string
	Date        time.Time
}

// ExpenseFilter selects either a named preset or an explicit date pair.
// Supplying both, half of the pair, or an inverted pair is rejected.
type ExpenseFilter struct {
	Preset string // "", PAST_WEEK, PAST_MONTH, Last_3_months
	Start  time.Time
	End    time.Time
}

type Authorization interface {
	Register(ctx context.Context, p RegisterParams) (models.User, TokenPair, error)
	Login(ctx context.Context, email, password string) (models.User, TokenPair, error)
	VerifyAccessToken(token string) (string, error)
}

// Expenses exposes the owner-scoped CRUD operations over expense records.
type Expenses interface {
	Create(ctx context.Context, userID string, p CreateExpenseParams) (models.Expense, error)
	List(ctx context.Context, userID string, f ExpenseFilter) ([]models.Expense, error)
	Delete(ctx context.Context, userID, expenseID string) (models.Expense, error)
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Authorization
	Expenses
}

// NewService wires the repository layer into concrete services. Token
// secrets come from configuration; main treats missing secrets as fatal
// before this is ever called.
func NewService(repos *repository.Repository, secrets TokenSecrets) *Service {
	return &Service{
		Authorization: NewAuthService(repos.Users, secrets),
		Expenses:      NewExpenseService(repos.Expenses),
	}
}
