package models

import "time"

// BudgetDurations is the allowed set for Budget.Duration.
var BudgetDurations = []string{"Weekly", "Monthly", "Quarterly", "Yearly"}

// Budget is a spending budget for one expense category.
//
// Spent is derived: it always equals the sum of active expense amounts in
// the owner+category partition and is recomputed after every expense
// mutation. Clients may only seed it on create.
type Budget struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`

	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Amount    float64 `json:"amount"`
	Spent     float64 `json:"spent"`
	Duration  string  `json:"duration"`
	Threshold float64 `json:"threshold"`

	Synced  bool `json:"synced"`
	Deleted bool `json:"isDeleted"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
