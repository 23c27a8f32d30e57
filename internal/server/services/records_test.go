package services

import (
	"context"
	"errors"
	"testing"

	"github.com/fintrack/fintrack/internal/common"
	"github.com/fintrack/fintrack/internal/server/models"
)

func newRecordFixture() (*RecordService, *fakeIncomeRepo, *fakeExpenseRepo, *fakeBudgetRepo, *fakeGoalRepo) {
	incomes := &fakeIncomeRepo{}
	expenses := &fakeExpenseRepo{}
	budgets := &fakeBudgetRepo{}
	goals := &fakeGoalRepo{}
	recalc := NewBudgetRecalculator(budgets, expenses, testLogger())
	svc := NewRecordService(incomes, expenses, budgets, goals, recalc, testLogger())
	return svc, incomes, expenses, budgets, goals
}

func TestCreateIncome(t *testing.T) {
	svc, incomes, _, _, _ := newRecordFixture()
	ctx := context.Background()

	rec, err := svc.CreateIncome(ctx, testUser, models.Income{
		Amount: 1500, Source: "Salary", Date: "2026-08-01T00:00:00Z",
	})
	if err != nil {
		t.Fatal(err)
	}
	if rec.ID == "" {
		t.Error("expected assigned ID")
	}
	if rec.Date != "2026-08-01" {
		t.Errorf("date not canonicalized: %q", rec.Date)
	}
	if rec.Synced {
		t.Error("new record must start unsynced")
	}
	if len(incomes.records) != 1 {
		t.Fatalf("expected 1 stored record, got %d", len(incomes.records))
	}
}

func TestCreateIncome_Invalid(t *testing.T) {
	svc, _, _, _, _ := newRecordFixture()
	ctx := context.Background()

	if _, err := svc.CreateIncome(ctx, testUser, models.Income{Amount: -1, Source: "x", Date: "2026-01-01"}); !errors.Is(err, common.ErrInvalidRecord) {
		t.Fatalf("negative amount: expected invalid-record error, got %v", err)
	}
	if _, err := svc.CreateIncome(ctx, testUser, models.Income{Amount: 1, Source: "", Date: "2026-01-01"}); !errors.Is(err, common.ErrInvalidRecord) {
		t.Fatalf("missing source: expected invalid-record error, got %v", err)
	}
}

func TestUpdateIncome_OwnershipEnforced(t *testing.T) {
	svc, incomes, _, _, _ := newRecordFixture()
	ctx := context.Background()

	rec := testIncome("i1")
	rec.UserID = "someone-else"
	incomes.records = append(incomes.records, rec)

	_, err := svc.UpdateIncome(ctx, testUser, "i1", models.Income{Amount: 1, Source: "x", Date: "2026-01-01"})
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("cross-user update must look like not-found, got %v", err)
	}
}

func TestUpdateIncome_ResetsSyncedFlag(t *testing.T) {
	svc, incomes, _, _, _ := newRecordFixture()
	ctx := context.Background()

	rec := testIncome("i1")
	rec.Synced = true
	incomes.records = append(incomes.records, rec)

	updated, err := svc.UpdateIncome(ctx, testUser, "i1", models.Income{
		Amount: 2000, Source: "Salary", Date: "2026-08-01",
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Synced {
		t.Error("update must reset the synced flag")
	}
	if incomes.records[0].Synced {
		t.Error("stored record must be unsynced after update")
	}
}

func TestCreateExpense_TriggersBudgetRecalc(t *testing.T) {
	svc, _, _, budgets, _ := newRecordFixture()
	ctx := context.Background()

	budgets.records = append(budgets.records, testBudget("b1"))

	if _, err := svc.CreateExpense(ctx, testUser, models.Expense{
		Amount: 42, Category: "groceries", Date: "2026-08-05", PaymentMethod: "cash",
	}); err != nil {
		t.Fatal(err)
	}
	if got := budgets.records[0].Spent; got != 42 {
		t.Fatalf("expected budget spent 42 after recalc, got %v", got)
	}
}

func TestCreateExpense_CanonicalizesEnums(t *testing.T) {
	svc, _, expenses, _, _ := newRecordFixture()
	ctx := context.Background()

	rec, err := svc.CreateExpense(ctx, testUser, models.Expense{
		Amount: 10, Category: "dining out", Date: "2026-08-05", PaymentMethod: "CREDIT CARD",
	})
	if err != nil {
		t.Fatal(err)
	}
	if rec.Category != "Dining Out" || rec.PaymentMethod != "Credit Card" {
		t.Fatalf("enums not canonicalized: %+v", rec)
	}
	if len(expenses.records) != 1 {
		t.Fatal("expense not stored")
	}
}

func TestDeleteExpense_SoftDeletesAndRecalculates(t *testing.T) {
	svc, _, expenses, budgets, _ := newRecordFixture()
	ctx := context.Background()

	b := testBudget("b1")
	b.Spent = 50
	budgets.records = append(budgets.records, b)
	expenses.records = append(expenses.records, testExpense("e1", 50))

	if err := svc.DeleteExpense(ctx, testUser, "e1"); err != nil {
		t.Fatal(err)
	}
	if !expenses.records[0].Deleted {
		t.Error("expected soft delete, record should remain as tombstone")
	}
	if expenses.records[0].Synced {
		t.Error("tombstone must be unsynced")
	}
	if got := budgets.records[0].Spent; got != 0 {
		t.Fatalf("expected spent 0 after recalc, got %v", got)
	}
}

func TestCreateBudget_DefaultThreshold(t *testing.T) {
	svc, _, _, budgets, _ := newRecordFixture()
	ctx := context.Background()

	rec, err := svc.CreateBudget(ctx, testUser, models.Budget{
		Name: "Food", Category: "Groceries", Amount: 500, Duration: "Monthly",
	})
	if err != nil {
		t.Fatal(err)
	}
	if rec.Threshold != 80 {
		t.Fatalf("expected default threshold 80, got %v", rec.Threshold)
	}
	if len(budgets.records) != 1 {
		t.Fatal("budget not stored")
	}
}

func TestCreateGoal_InvalidPriority(t *testing.T) {
	svc, _, _, _, _ := newRecordFixture()

	_, err := svc.CreateGoal(context.Background(), testUser, models.SavingsGoal{
		Name: "Car", TargetAmount: 1000, Deadline: "2030-01-01", Priority: "Urgent",
	})
	if !errors.Is(err, common.ErrInvalidRecord) {
		t.Fatalf("expected invalid-record error, got %v", err)
	}
}

func TestDeleteIncome_NotFound(t *testing.T) {
	svc, _, _, _, _ := newRecordFixture()
	if err := svc.DeleteIncome(context.Background(), testUser, "missing"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}
