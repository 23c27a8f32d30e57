package models

// Report item shapes. Field casing in the JSON tags is part of the API
// contract with existing dashboard clients and is intentionally mixed.

// CategoryBreakdownItem is one slice of the expenses-by-category report.
type CategoryBreakdownItem struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// BudgetAdherenceItem compares one budget against actual spending.
type BudgetAdherenceItem struct {
	Name     string  `json:"name"`
	Budgeted float64 `json:"Budgeted"`
	Spent    float64 `json:"Spent"`
}

// SavingsTrendItem is one month of income minus expenses.
type SavingsTrendItem struct {
	Name    string  `json:"name"`
	Savings float64 `json:"savings"`
}

// GoalProgressItem reports completion of one savings goal.
type GoalProgressItem struct {
	Name          string  `json:"name"`
	Target        float64 `json:"Target"`
	Current       float64 `json:"Current"`
	Progress      int     `json:"Progress"`
	ProgressLabel string  `json:"ProgressLabel"`
}

// ForecastItem is one projected month of savings.
type ForecastItem struct {
	Name    string  `json:"name"`
	Savings float64 `json:"savings"`
	Trend   string  `json:"trend"`
}
