package secondary

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Stub is an in-memory Adapter used in tests and when no secondary store is
// configured. It mirrors the Postgres behavior: upserts are idempotent,
// deletes are keyed by record ID, and the report queries aggregate over the
// stored rows.
//
// AcquireErr and OpErr inject failures: AcquireErr fails Acquire itself,
// OpErr fails every operation on an acquired connection.
type Stub struct {
	mu sync.Mutex

	incomes  map[string]IncomeRow
	expenses map[string]ExpenseRow
	budgets  map[string]BudgetRow
	goals    map[string]GoalRow

	AcquireErr error
	OpErr      error
}

func NewStub() *Stub {
	return &Stub{
		incomes:  make(map[string]IncomeRow),
		expenses: make(map[string]ExpenseRow),
		budgets:  make(map[string]BudgetRow),
		goals:    make(map[string]GoalRow),
	}
}

func (s *Stub) Acquire(ctx context.Context) (Conn, error) {
	if s.AcquireErr != nil {
		return nil, s.AcquireErr
	}
	return &stubConn{s: s}, nil
}

// Snapshot accessors for tests.

func (s *Stub) Income(recordID string) (IncomeRow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.incomes[recordID]
	return row, ok
}

func (s *Stub) Expense(recordID string) (ExpenseRow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.expenses[recordID]
	return row, ok
}

func (s *Stub) Budget(recordID string) (BudgetRow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.budgets[recordID]
	return row, ok
}

func (s *Stub) Goal(recordID string) (GoalRow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.goals[recordID]
	return row, ok
}

func (s *Stub) Counts() (incomes, expenses, budgets, goals int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.incomes), len(s.expenses), len(s.budgets), len(s.goals)
}

type stubConn struct {
	s *Stub
}

func (c *stubConn) Close() error { return nil }

func (c *stubConn) UpsertIncome(ctx context.Context, row IncomeRow) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.s.OpErr != nil {
		return c.s.OpErr
	}
	c.s.incomes[row.RecordID] = row
	return nil
}

func (c *stubConn) DeleteIncome(ctx context.Context, recordID string) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.s.OpErr != nil {
		return c.s.OpErr
	}
	delete(c.s.incomes, recordID)
	return nil
}

func (c *stubConn) UpsertExpense(ctx context.Context, row ExpenseRow) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.s.OpErr != nil {
		return c.s.OpErr
	}
	c.s.expenses[row.RecordID] = row
	return nil
}

func (c *stubConn) DeleteExpense(ctx context.Context, recordID string) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.s.OpErr != nil {
		return c.s.OpErr
	}
	delete(c.s.expenses, recordID)
	return nil
}

func (c *stubConn) UpsertBudget(ctx context.Context, row BudgetRow) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.s.OpErr != nil {
		return c.s.OpErr
	}
	c.s.budgets[row.RecordID] = row
	return nil
}

func (c *stubConn) DeleteBudget(ctx context.Context, recordID string) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.s.OpErr != nil {
		return c.s.OpErr
	}
	delete(c.s.budgets, recordID)
	return nil
}

func (c *stubConn) UpsertGoal(ctx context.Context, row GoalRow) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.s.OpErr != nil {
		return c.s.OpErr
	}
	c.s.goals[row.RecordID] = row
	return nil
}

func (c *stubConn) DeleteGoal(ctx context.Context, recordID string) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.s.OpErr != nil {
		return c.s.OpErr
	}
	delete(c.s.goals, recordID)
	return nil
}

func (c *stubConn) ExpenseTotalsByCategory(ctx context.Context, userID string) ([]CategoryTotal, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.s.OpErr != nil {
		return nil, c.s.OpErr
	}

	totals := map[string]float64{}
	for _, e := range c.s.expenses {
		if e.UserID == userID {
			totals[e.Category] += e.Amount
		}
	}

	result := make([]CategoryTotal, 0, len(totals))
	for category, total := range totals {
		result = append(result, CategoryTotal{Category: category, Total: total})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Total > result[j].Total })
	return result, nil
}

func (c *stubConn) BudgetVsActual(ctx context.Context, userID string) ([]BudgetActual, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.s.OpErr != nil {
		return nil, c.s.OpErr
	}

	spent := map[string]float64{}
	for _, e := range c.s.expenses {
		if e.UserID == userID {
			spent[e.Category] += e.Amount
		}
	}

	var result []BudgetActual
	for _, b := range c.s.budgets {
		if b.UserID == userID {
			result = append(result, BudgetActual{Category: b.Category, Budgeted: b.Amount, Spent: spent[b.Category]})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Category < result[j].Category })
	return result, nil
}

func (c *stubConn) MonthlyTotals(ctx context.Context, userID string) ([]MonthlyTotal, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.s.OpErr != nil {
		return nil, c.s.OpErr
	}

	months := map[string]*MonthlyTotal{}
	get := func(date string) *MonthlyTotal {
		month := monthKey(date)
		if m, ok := months[month]; ok {
			return m
		}
		m := &MonthlyTotal{Month: month}
		months[month] = m
		return m
	}

	for _, i := range c.s.incomes {
		if i.UserID == userID {
			get(i.Date).Income += i.Amount
		}
	}
	for _, e := range c.s.expenses {
		if e.UserID == userID {
			get(e.Date).Expenses += e.Amount
		}
	}

	result := make([]MonthlyTotal, 0, len(months))
	for _, m := range months {
		result = append(result, *m)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Month < result[j].Month })
	return result, nil
}

func (c *stubConn) Goals(ctx context.Context, userID string) ([]GoalRow, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.s.OpErr != nil {
		return nil, c.s.OpErr
	}

	var result []GoalRow
	for _, g := range c.s.goals {
		if g.UserID == userID {
			result = append(result, g)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// monthKey extracts the YYYY-MM prefix of a canonical YYYY-MM-DD date.
func monthKey(date string) string {
	if idx := strings.LastIndex(date, "-"); idx > 0 {
		return date[:idx]
	}
	return date
}
