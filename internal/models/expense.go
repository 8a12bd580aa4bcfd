package models

import "time"

// Record types.
const (
	TypeIncome  = "INCOME"
	TypeExpense = "EXPENSE"
)

// Categories is the closed set of allowed expense categories.
var Categories = []string{
	"RENT",
	"MORTGAGE",
	"FUEL",
	"PUBLIC_TRANSPORT",
	"CAR_MAINTENANCE",
	"GROCERIES",
	"RESTAURANTS",
	"ELECTRICITY",
	"WATER",
	"INTERNET",
	"PHONE",
	"HEALTHCARE",
	"GYM",
	"HAIRCUT",
	"MOVIES",
	"SUBSCRIPTIONS",
	"HOBBIES",
	"SAVINGS",
	"INVESTMENTS",
	"DEBT_PAYMENT",
	"OTHER",
}

var categorySet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Categories))
	for _, c := range Categories {
		m[c] = struct{}{}
	}
	return m
}()

// IsValidCategory reports whether c belongs to the closed category set.
func IsValidCategory(c string) bool {
	_, ok := categorySet[c]
	return ok
}

// Expense is a single dated income/expense record owned by a user.
// Description, Currency and Vendor are pointers so that unset optional
// fields round-trip as explicit nulls, both in JSON and in the store.
type Expense struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Type        string    `json:"type"` // INCOME | EXPENSE
	Description *string   `json:"description"`
	Currency    *string   `json:"currency"`
	Vendor      *string   `json:"vendor"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
}
