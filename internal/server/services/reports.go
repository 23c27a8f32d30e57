package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/fintrack/fintrack/internal/logging"
	"github.com/fintrack/fintrack/internal/server/models"
	"github.com/fintrack/fintrack/internal/server/repositories/budgets"
	"github.com/fintrack/fintrack/internal/server/repositories/expenses"
	"github.com/fintrack/fintrack/internal/server/repositories/goals"
	"github.com/fintrack/fintrack/internal/server/repositories/incomes"
	"github.com/fintrack/fintrack/internal/server/secondary"
)

// ReportService serves the analytical reports. The secondary store is the
// preferred source; when it is unreachable or a query fails, the report is
// recomputed from the record store instead. A report never hard-fails on
// secondary unavailability.
type ReportService struct {
	incomes  incomes.Repository
	expenses expenses.Repository
	budgets  budgets.Repository
	goals    goals.Repository
	adapter  secondary.Adapter
	logger   logging.Logger

	// now is swappable in tests; the forecast window depends on it.
	now func() time.Time
}

func NewReportService(
	incomeRepo incomes.Repository,
	expenseRepo expenses.Repository,
	budgetRepo budgets.Repository,
	goalRepo goals.Repository,
	adapter secondary.Adapter,
	logger logging.Logger,
) *ReportService {
	return &ReportService{
		incomes:  incomeRepo,
		expenses: expenseRepo,
		budgets:  budgetRepo,
		goals:    goalRepo,
		adapter:  adapter,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *ReportService) ExpensesByCategory(ctx context.Context, userID string) ([]models.CategoryBreakdownItem, error) {
	if conn, err := s.adapter.Acquire(ctx); err == nil {
		defer conn.Close()
		if totals, err := conn.ExpenseTotalsByCategory(ctx, userID); err == nil {
			items := make([]models.CategoryBreakdownItem, 0, len(totals))
			for _, t := range totals {
				items = append(items, models.CategoryBreakdownItem{Name: t.Category, Value: t.Total})
			}
			return items, nil
		} else {
			s.logger.Warn(ctx, "secondary store query failed, using record store", "report", "expenses_by_category", "error", err)
		}
	} else {
		s.logger.Warn(ctx, "secondary store unavailable, using record store", "report", "expenses_by_category", "error", err)
	}

	expenseList, err := s.expenses.GetAllActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	totals := map[string]float64{}
	for _, e := range expenseList {
		totals[e.Category] += e.Amount
	}
	items := make([]models.CategoryBreakdownItem, 0, len(totals))
	for name, value := range totals {
		items = append(items, models.CategoryBreakdownItem{Name: name, Value: value})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Value > items[j].Value })
	return items, nil
}

func (s *ReportService) BudgetAdherence(ctx context.Context, userID string) ([]models.BudgetAdherenceItem, error) {
	if conn, err := s.adapter.Acquire(ctx); err == nil {
		defer conn.Close()
		if rows, err := conn.BudgetVsActual(ctx, userID); err == nil {
			items := make([]models.BudgetAdherenceItem, 0, len(rows))
			for _, r := range rows {
				items = append(items, models.BudgetAdherenceItem{Name: r.Category, Budgeted: r.Budgeted, Spent: r.Spent})
			}
			return items, nil
		} else {
			s.logger.Warn(ctx, "secondary store query failed, using record store", "report", "budget_adherence", "error", err)
		}
	} else {
		s.logger.Warn(ctx, "secondary store unavailable, using record store", "report", "budget_adherence", "error", err)
	}

	budgetList, err := s.budgets.GetAllActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	expenseList, err := s.expenses.GetAllActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	spent := map[string]float64{}
	for _, e := range expenseList {
		spent[strings.ToLower(e.Category)] += e.Amount
	}
	items := make([]models.BudgetAdherenceItem, 0, len(budgetList))
	for _, b := range budgetList {
		items = append(items, models.BudgetAdherenceItem{
			Name:     b.Category,
			Budgeted: b.Amount,
			Spent:    spent[strings.ToLower(b.Category)],
		})
	}
	return items, nil
}

func (s *ReportService) SavingsTrend(ctx context.Context, userID string) ([]models.SavingsTrendItem, error) {
	totals, err := s.monthlyTotals(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]models.SavingsTrendItem, 0, len(totals))
	for _, t := range totals {
		items = append(items, models.SavingsTrendItem{
			Name:    monthShort(t.Month),
			Savings: t.Income - t.Expenses,
		})
	}
	return items, nil
}

func (s *ReportService) GoalProgress(ctx context.Context, userID string) ([]models.GoalProgressItem, error) {
	if conn, err := s.adapter.Acquire(ctx); err == nil {
		defer conn.Close()
		if rows, err := conn.Goals(ctx, userID); err == nil {
			items := make([]models.GoalProgressItem, 0, len(rows))
			for _, g := range rows {
				items = append(items, goalProgressItem(g.Name, g.TargetAmount, g.CurrentContribution))
			}
			return items, nil
		} else {
			s.logger.Warn(ctx, "secondary store query failed, using record store", "report", "goal_progress", "error", err)
		}
	} else {
		s.logger.Warn(ctx, "secondary store unavailable, using record store", "report", "goal_progress", "error", err)
	}

	goalList, err := s.goals.GetAllActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := make([]models.GoalProgressItem, 0, len(goalList))
	for _, g := range goalList {
		items = append(items, goalProgressItem(g.Name, g.TargetAmount, g.CurrentContribution))
	}
	return items, nil
}

// Forecast projects the next six months of savings as the average of the
// positive monthly savings observed over the trailing six full months.
// Months with non-positive savings are excluded from the average; with no
// positive months the projection is zero.
func (s *ReportService) Forecast(ctx context.Context, userID string) ([]models.ForecastItem, error) {
	totals, err := s.monthlyTotals(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	windowStart := currentMonth.AddDate(0, -6, 0).Format("2006-01")
	windowEnd := currentMonth.Format("2006-01")

	var sum float64
	count := 0
	for _, t := range totals {
		if t.Month < windowStart || t.Month >= windowEnd {
			continue
		}
		if savings := t.Income - t.Expenses; savings > 0 {
			sum += savings
			count++
		}
	}

	avg := 0.0
	if count > 0 {
		avg = sum / float64(count)
	}

	trend := "Neutral"
	switch {
	case avg > 100:
		trend = "Strong Positive"
	case avg > 0:
		trend = "Positive"
	case avg < 0:
		trend = "Negative"
	}

	items := make([]models.ForecastItem, 0, 6)
	for i := 1; i <= 6; i++ {
		items = append(items, models.ForecastItem{
			Name:    currentMonth.AddDate(0, i, 0).Format("Jan"),
			Savings: avg,
			Trend:   trend,
		})
	}
	return items, nil
}

// monthlyTotals fetches per-month income and expense totals, preferring the
// secondary store and falling back to the record store.
func (s *ReportService) monthlyTotals(ctx context.Context, userID string) ([]secondary.MonthlyTotal, error) {
	if conn, err := s.adapter.Acquire(ctx); err == nil {
		defer conn.Close()
		if totals, err := conn.MonthlyTotals(ctx, userID); err == nil {
			return totals, nil
		} else {
			s.logger.Warn(ctx, "secondary store query failed, using record store", "report", "monthly_totals", "error", err)
		}
	} else {
		s.logger.Warn(ctx, "secondary store unavailable, using record store", "report", "monthly_totals", "error", err)
	}

	incomeList, err := s.incomes.GetAllActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	expenseList, err := s.expenses.GetAllActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	months := map[string]*secondary.MonthlyTotal{}
	get := func(date string) *secondary.MonthlyTotal {
		key := monthKeyOf(date)
		if m, ok := months[key]; ok {
			return m
		}
		m := &secondary.MonthlyTotal{Month: key}
		months[key] = m
		return m
	}
	for _, i := range incomeList {
		get(i.Date).Income += i.Amount
	}
	for _, e := range expenseList {
		get(e.Date).Expenses += e.Amount
	}

	totals := make([]secondary.MonthlyTotal, 0, len(months))
	for _, m := range months {
		totals = append(totals, *m)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Month < totals[j].Month })
	return totals, nil
}

func goalProgressItem(name string, target, current float64) models.GoalProgressItem {
	pct := 0.0
	if target > 0 {
		pct = current / target * 100
	}
	return models.GoalProgressItem{
		Name:          name,
		Target:        target,
		Current:       current,
		Progress:      int(math.Round(pct)),
		ProgressLabel: fmt.Sprintf("%.1f%%", pct),
	}
}

// monthShort renders a YYYY-MM key as the short month name.
func monthShort(month string) string {
	if t, err := time.Parse("2006-01", month); err == nil {
		return t.Format("Jan")
	}
	return month
}

// monthKeyOf extracts YYYY-MM from a canonical YYYY-MM-DD date.
func monthKeyOf(date string) string {
	if len(date) >= 7 {
		return date[:7]
	}
	return date
}
