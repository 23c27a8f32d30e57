package models

import "time"

// GoalPriorities is the allowed set for SavingsGoal.Priority.
var GoalPriorities = []string{"High", "Medium", "Low"}

// SavingsGoal is a savings target with a deadline.
type SavingsGoal struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`

	Name                string  `json:"name"`
	TargetAmount        float64 `json:"targetAmount"`
	CurrentContribution float64 `json:"currentContribution"`
	Deadline            string  `json:"deadline"`
	Priority            string  `json:"priority"`

	Synced  bool `json:"synced"`
	Deleted bool `json:"isDeleted"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
