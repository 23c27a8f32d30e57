package secondary

import (
	"context"
	"testing"
)

func stubConnFor(t *testing.T, s *Stub) Conn {
	t.Helper()
	conn, err := s.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestStub_UpsertIsIdempotent(t *testing.T) {
	s := NewStub()
	conn := stubConnFor(t, s)
	ctx := context.Background()

	row := IncomeRow{RecordID: "i1", UserID: "u1", Amount: 100, Source: "salary", Date: "2026-01-15"}
	if err := conn.UpsertIncome(ctx, row); err != nil {
		t.Fatal(err)
	}
	row.Amount = 200
	if err := conn.UpsertIncome(ctx, row); err != nil {
		t.Fatal(err)
	}

	got, ok := s.Income("i1")
	if !ok {
		t.Fatal("income missing")
	}
	if got.Amount != 200 {
		t.Fatalf("upsert did not overwrite, amount=%v", got.Amount)
	}
	ni, _, _, _ := s.Counts()
	if ni != 1 {
		t.Fatalf("expected 1 income, got %d", ni)
	}
}

func TestStub_DeleteUnknownIsNoop(t *testing.T) {
	s := NewStub()
	conn := stubConnFor(t, s)

	if err := conn.DeleteExpense(context.Background(), "missing"); err != nil {
		t.Fatalf("deleting an absent row must succeed, got %v", err)
	}
}

func TestStub_ExpenseTotalsByCategory(t *testing.T) {
	s := NewStub()
	conn := stubConnFor(t, s)
	ctx := context.Background()

	rows := []ExpenseRow{
		{RecordID: "e1", UserID: "u1", Amount: 10, Category: "groceries", Date: "2026-01-01", PaymentMethod: "cash"},
		{RecordID: "e2", UserID: "u1", Amount: 30, Category: "transport", Date: "2026-01-02", PaymentMethod: "cash"},
		{RecordID: "e3", UserID: "u1", Amount: 5, Category: "groceries", Date: "2026-01-03", PaymentMethod: "cash"},
		{RecordID: "e4", UserID: "other", Amount: 99, Category: "groceries", Date: "2026-01-04", PaymentMethod: "cash"},
	}
	for _, r := range rows {
		if err := conn.UpsertExpense(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	totals, err := conn.ExpenseTotalsByCategory(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(totals) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(totals))
	}
	if totals[0].Category != "transport" || totals[0].Total != 30 {
		t.Fatalf("expected transport first, got %+v", totals[0])
	}
	if totals[1].Category != "groceries" || totals[1].Total != 15 {
		t.Fatalf("unexpected groceries total: %+v", totals[1])
	}
}

func TestStub_MonthlyTotals(t *testing.T) {
	s := NewStub()
	conn := stubConnFor(t, s)
	ctx := context.Background()

	if err := conn.UpsertIncome(ctx, IncomeRow{RecordID: "i1", UserID: "u1", Amount: 1000, Source: "salary", Date: "2026-03-01"}); err != nil {
		t.Fatal(err)
	}
	if err := conn.UpsertExpense(ctx, ExpenseRow{RecordID: "e1", UserID: "u1", Amount: 400, Category: "groceries", Date: "2026-03-15", PaymentMethod: "cash"}); err != nil {
		t.Fatal(err)
	}
	if err := conn.UpsertExpense(ctx, ExpenseRow{RecordID: "e2", UserID: "u1", Amount: 100, Category: "groceries", Date: "2026-04-02", PaymentMethod: "cash"}); err != nil {
		t.Fatal(err)
	}

	totals, err := conn.MonthlyTotals(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(totals) != 2 {
		t.Fatalf("expected 2 months, got %d", len(totals))
	}
	if totals[0].Month != "2026-03" || totals[0].Income != 1000 || totals[0].Expenses != 400 {
		t.Fatalf("unexpected first month: %+v", totals[0])
	}
	if totals[1].Month != "2026-04" || totals[1].Expenses != 100 {
		t.Fatalf("unexpected second month: %+v", totals[1])
	}
}

func TestStub_BudgetVsActual(t *testing.T) {
	s := NewStub()
	conn := stubConnFor(t, s)
	ctx := context.Background()

	if err := conn.UpsertBudget(ctx, BudgetRow{RecordID: "b1", UserID: "u1", Name: "Food", Category: "groceries", Amount: 500, Duration: "monthly", Threshold: 80}); err != nil {
		t.Fatal(err)
	}
	if err := conn.UpsertExpense(ctx, ExpenseRow{RecordID: "e1", UserID: "u1", Amount: 120, Category: "groceries", Date: "2026-02-01", PaymentMethod: "cash"}); err != nil {
		t.Fatal(err)
	}

	rows, err := conn.BudgetVsActual(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Budgeted != 500 || rows[0].Spent != 120 {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
}

func TestStub_OpErrFailsEveryOperation(t *testing.T) {
	s := NewStub()
	conn := stubConnFor(t, s)
	s.OpErr = context.DeadlineExceeded

	if err := conn.UpsertIncome(context.Background(), IncomeRow{RecordID: "i1"}); err == nil {
		t.Fatal("expected injected failure")
	}
	if _, err := conn.Goals(context.Background(), "u1"); err == nil {
		t.Fatal("expected injected failure")
	}
}
