package models

import "time"

// ExpenseCategories is the allowed set for Expense.Category and
// Budget.Category.
var ExpenseCategories = []string{
	"Groceries", "Utilities", "Transport", "Entertainment",
	"Dining Out", "Health", "Shopping", "Other",
}

// PaymentMethods is the allowed set for Expense.PaymentMethod.
var PaymentMethods = []string{
	"Credit Card", "Debit Card", "Bank Transfer", "Cash",
}

// Expense is a single expense record.
type Expense struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`

	Amount        float64 `json:"amount"`
	Category      string  `json:"category"`
	Date          string  `json:"date"`
	PaymentMethod string  `json:"paymentMethod"`
	Notes         string  `json:"notes"`

	Synced  bool `json:"synced"`
	Deleted bool `json:"isDeleted"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
