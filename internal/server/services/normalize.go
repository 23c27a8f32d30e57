package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/fintrack/fintrack/internal/common"
	"github.com/fintrack/fintrack/internal/server/models"
	"github.com/fintrack/fintrack/internal/server/secondary"
)

// canonicalDate is the date format required by the secondary store schema.
const canonicalDate = "2006-01-02"

// farFutureDeadline replaces already-past goal deadlines so the secondary
// store keeps the goal as non-expired-looking data for reporting.
const farFutureDeadline = "9999-12-31"

// dateLayouts are the input formats accepted from clients and imports.
var dateLayouts = []string{
	canonicalDate,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// normalizeDate parses a client-supplied date and renders it canonical.
func normalizeDate(value string) (string, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(canonicalDate), nil
		}
	}
	return "", fmt.Errorf("%w: unparsable date %q", common.ErrInvalidRecord, value)
}

// normalizeEnum checks membership in the allowed set (ignoring case) and
// returns the lower-cased canonical value used by the secondary store.
func normalizeEnum(value string, allowed []string, field string) (string, error) {
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return strings.ToLower(a), nil
		}
	}
	return "", fmt.Errorf("%w: %s %q not allowed", common.ErrInvalidRecord, field, value)
}

func requireField(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: missing %s", common.ErrInvalidRecord, field)
	}
	return nil
}

func requireNonNegative(value float64, field string) error {
	if value < 0 {
		return fmt.Errorf("%w: negative %s", common.ErrInvalidRecord, field)
	}
	return nil
}

// incomeRow validates an income record and builds its secondary-store row.
// A non-nil error marks the record invalid (quarantined during sync).
func incomeRow(rec models.Income) (secondary.IncomeRow, error) {
	var row secondary.IncomeRow

	if err := requireField(rec.UserID, "owner"); err != nil {
		return row, err
	}
	if err := requireField(rec.Source, "source"); err != nil {
		return row, err
	}
	if err := requireNonNegative(rec.Amount, "amount"); err != nil {
		return row, err
	}
	date, err := normalizeDate(rec.Date)
	if err != nil {
		return row, err
	}

	return secondary.IncomeRow{
		RecordID:    rec.ID,
		UserID:      rec.UserID,
		Amount:      rec.Amount,
		Source:      rec.Source,
		Date:        date,
		Description: rec.Description,
	}, nil
}

func expenseRow(rec models.Expense) (secondary.ExpenseRow, error) {
	var row secondary.ExpenseRow

	if err := requireField(rec.UserID, "owner"); err != nil {
		return row, err
	}
	if err := requireNonNegative(rec.Amount, "amount"); err != nil {
		return row, err
	}
	category, err := normalizeEnum(rec.Category, models.ExpenseCategories, "category")
	if err != nil {
		return row, err
	}
	method, err := normalizeEnum(rec.PaymentMethod, models.PaymentMethods, "payment method")
	if err != nil {
		return row, err
	}
	date, err := normalizeDate(rec.Date)
	if err != nil {
		return row, err
	}

	return secondary.ExpenseRow{
		RecordID:      rec.ID,
		UserID:        rec.UserID,
		Amount:        rec.Amount,
		Category:      category,
		Date:          date,
		PaymentMethod: method,
		Notes:         rec.Notes,
	}, nil
}

func budgetRow(rec models.Budget) (secondary.BudgetRow, error) {
	var row secondary.BudgetRow

	if err := requireField(rec.UserID, "owner"); err != nil {
		return row, err
	}
	if err := requireField(rec.Name, "name"); err != nil {
		return row, err
	}
	if err := requireNonNegative(rec.Amount, "amount"); err != nil {
		return row, err
	}
	if err := requireNonNegative(rec.Spent, "spent"); err != nil {
		return row, err
	}
	if rec.Threshold < 0 || rec.Threshold > 100 {
		return row, fmt.Errorf("%w: threshold %v out of range", common.ErrInvalidRecord, rec.Threshold)
	}
	category, err := normalizeEnum(rec.Category, models.ExpenseCategories, "category")
	if err != nil {
		return row, err
	}
	duration, err := normalizeEnum(rec.Duration, models.BudgetDurations, "duration")
	if err != nil {
		return row, err
	}

	return secondary.BudgetRow{
		RecordID:  rec.ID,
		UserID:    rec.UserID,
		Name:      rec.Name,
		Category:  category,
		Amount:    rec.Amount,
		Spent:     rec.Spent,
		Duration:  duration,
		Threshold: rec.Threshold,
	}, nil
}

func goalRow(rec models.SavingsGoal) (secondary.GoalRow, error) {
	var row secondary.GoalRow

	if err := requireField(rec.UserID, "owner"); err != nil {
		return row, err
	}
	if err := requireField(rec.Name, "name"); err != nil {
		return row, err
	}
	if err := requireNonNegative(rec.TargetAmount, "target amount"); err != nil {
		return row, err
	}
	if err := requireNonNegative(rec.CurrentContribution, "current contribution"); err != nil {
		return row, err
	}
	priority, err := normalizeEnum(rec.Priority, models.GoalPriorities, "priority")
	if err != nil {
		return row, err
	}
	deadline, err := normalizeDate(rec.Deadline)
	if err != nil {
		return row, err
	}
	// A parsable but already-past deadline is pushed to the sentinel rather
	// than rejected, so the goal survives in the secondary store.
	if deadline < time.Now().UTC().Format(canonicalDate) {
		deadline = farFutureDeadline
	}

	return secondary.GoalRow{
		RecordID:            rec.ID,
		UserID:              rec.UserID,
		Name:                rec.Name,
		TargetAmount:        rec.TargetAmount,
		CurrentContribution: rec.CurrentContribution,
		Deadline:            deadline,
		Priority:            priority,
	}, nil
}
