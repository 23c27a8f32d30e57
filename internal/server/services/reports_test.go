package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fintrack/fintrack/internal/server/secondary"
)

func newReportFixture() (*ReportService, *fakeIncomeRepo, *fakeExpenseRepo, *fakeBudgetRepo, *fakeGoalRepo, *secondary.Stub) {
	incomes := &fakeIncomeRepo{}
	expenses := &fakeExpenseRepo{}
	budgets := &fakeBudgetRepo{}
	goals := &fakeGoalRepo{}
	stub := secondary.NewStub()
	svc := NewReportService(incomes, expenses, budgets, goals, stub, testLogger())
	return svc, incomes, expenses, budgets, goals, stub
}

func seedStubExpense(t *testing.T, stub *secondary.Stub, id, category string, amount float64) {
	t.Helper()
	conn, err := stub.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	err = conn.UpsertExpense(context.Background(), secondary.ExpenseRow{
		RecordID: id, UserID: testUser, Amount: amount,
		Category: category, Date: "2026-08-10", PaymentMethod: "cash",
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestExpensesByCategory_PrefersSecondary(t *testing.T) {
	svc, _, expenses, _, _, stub := newReportFixture()
	ctx := context.Background()

	seedStubExpense(t, stub, "e1", "groceries", 100)
	seedStubExpense(t, stub, "e2", "transport", 250)
	// Local store holds different data that must NOT be used.
	expenses.records = append(expenses.records, testExpense("local", 999))

	items, err := svc.ExpensesByCategory(ctx, testUser)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(items))
	}
	if items[0].Name != "transport" || items[0].Value != 250 {
		t.Fatalf("expected transport first, got %+v", items[0])
	}
}

func TestExpensesByCategory_FallsBackToRecordStore(t *testing.T) {
	svc, _, expenses, _, _, stub := newReportFixture()
	ctx := context.Background()

	stub.AcquireErr = errors.New("dial timeout")
	expenses.records = append(expenses.records,
		testExpense("e1", 10),
		testExpense("e2", 15),
	)

	items, err := svc.ExpensesByCategory(ctx, testUser)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Name != "Groceries" || items[0].Value != 25 {
		t.Fatalf("unexpected fallback result: %+v", items)
	}
}

func TestBudgetAdherence_FallsBackToRecordStore(t *testing.T) {
	svc, _, expenses, budgets, _, stub := newReportFixture()
	ctx := context.Background()

	stub.AcquireErr = errors.New("dial timeout")
	budgets.records = append(budgets.records, testBudget("b1"))
	expenses.records = append(expenses.records, testExpense("e1", 60))

	items, err := svc.BudgetAdherence(ctx, testUser)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Budgeted != 500 || items[0].Spent != 60 {
		t.Fatalf("unexpected item: %+v", items[0])
	}
}

func TestGoalProgress_Labels(t *testing.T) {
	svc, _, _, _, goals, stub := newReportFixture()
	ctx := context.Background()

	stub.AcquireErr = errors.New("dial timeout")
	goals.records = append(goals.records, testGoal("g1", "2030-01-01"))

	items, err := svc.GoalProgress(ctx, testUser)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	// 500 of 3000 is 16.666...
	if items[0].Progress != 17 {
		t.Errorf("expected rounded progress 17, got %d", items[0].Progress)
	}
	if items[0].ProgressLabel != "16.7%" {
		t.Errorf("expected label 16.7%%, got %q", items[0].ProgressLabel)
	}
}

func TestGoalProgress_ZeroTarget(t *testing.T) {
	svc, _, _, _, goals, stub := newReportFixture()
	stub.AcquireErr = errors.New("down")

	g := testGoal("g1", "2030-01-01")
	g.TargetAmount = 0
	goals.records = append(goals.records, g)

	items, err := svc.GoalProgress(context.Background(), testUser)
	if err != nil {
		t.Fatal(err)
	}
	if items[0].Progress != 0 || items[0].ProgressLabel != "0.0%" {
		t.Fatalf("zero target must report zero progress, got %+v", items[0])
	}
}

func TestSavingsTrend_FromRecordStore(t *testing.T) {
	svc, incomes, expenses, _, _, stub := newReportFixture()
	ctx := context.Background()

	stub.AcquireErr = errors.New("down")

	in := testIncome("i1")
	in.Date = "2026-03-05"
	in.Amount = 2000
	incomes.records = append(incomes.records, in)

	ex := testExpense("e1", 800)
	ex.Date = "2026-03-20"
	expenses.records = append(expenses.records, ex)

	items, err := svc.SavingsTrend(ctx, testUser)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 month, got %d", len(items))
	}
	if items[0].Name != "Mar" || items[0].Savings != 1200 {
		t.Fatalf("unexpected trend item: %+v", items[0])
	}
}

func TestForecast_AveragesPositiveTrailingMonths(t *testing.T) {
	svc, incomes, expenses, _, _, stub := newReportFixture()
	ctx := context.Background()

	stub.AcquireErr = errors.New("down")
	svc.now = func() time.Time {
		return time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)
	}

	// June: +300, July: +500, May: -100 (excluded), January: +9000 (outside
	// the trailing window, excluded).
	add := func(date string, income, expense float64) {
		if income > 0 {
			rec := testIncome("i-" + date)
			rec.Date = date
			rec.Amount = income
			incomes.records = append(incomes.records, rec)
		}
		if expense > 0 {
			rec := testExpense("e-"+date, expense)
			rec.Date = date
			expenses.records = append(expenses.records, rec)
		}
	}
	add("2026-06-10", 300, 0)
	add("2026-07-10", 500, 0)
	add("2026-05-10", 0, 100)
	add("2026-01-10", 9000, 0)

	items, err := svc.Forecast(ctx, testUser)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 6 {
		t.Fatalf("expected 6 projected months, got %d", len(items))
	}
	if items[0].Savings != 400 {
		t.Fatalf("expected average 400, got %v", items[0].Savings)
	}
	if items[0].Trend != "Strong Positive" {
		t.Fatalf("expected Strong Positive, got %q", items[0].Trend)
	}
	if items[0].Name != "Sep" || items[5].Name != "Feb" {
		t.Fatalf("unexpected projected month names: %q .. %q", items[0].Name, items[5].Name)
	}
}

func TestForecast_NoPositiveMonthsIsNeutral(t *testing.T) {
	svc, _, expenses, _, _, stub := newReportFixture()
	ctx := context.Background()

	stub.AcquireErr = errors.New("down")
	svc.now = func() time.Time {
		return time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)
	}

	ex := testExpense("e1", 100)
	ex.Date = "2026-07-10"
	expenses.records = append(expenses.records, ex)

	items, err := svc.Forecast(ctx, testUser)
	if err != nil {
		t.Fatal(err)
	}
	if items[0].Savings != 0 || items[0].Trend != "Neutral" {
		t.Fatalf("expected neutral zero forecast, got %+v", items[0])
	}
}
