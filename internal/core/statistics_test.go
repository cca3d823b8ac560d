package core

import (
	"testing"
	"time"
)

func tx(kind TransactionType, category string, cents int64) Transaction {
	return Transaction{
		Type:     kind,
		Category: category,
		Amount:   Money{Cents: cents},
		Date:     time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestComputeStatisticsEmpty(t *testing.T) {
	stats := ComputeStatistics(nil)

	if stats.TotalIncome.Cents != 0 || stats.TotalExpense.Cents != 0 || stats.Balance.Cents != 0 {
		t.Fatalf("expected zero totals, got %+v", stats)
	}
	if stats.ByCategory == nil {
		t.Fatalf("category map must be non-nil")
	}
	if len(stats.ByCategory) != 0 {
		t.Fatalf("expected empty category map, got %d entries", len(stats.ByCategory))
	}
}

func TestComputeStatistics(t *testing.T) {
	transactions := []Transaction{
		tx(Income, "salary", 100000),
		tx(Income, "bonus", 50000),
		tx(Expense, "food", 30000),
		tx(Expense, "transport", 20000),
	}

	stats := ComputeStatistics(transactions)

	if stats.TotalIncome.Cents != 150000 {
		t.Fatalf("total income = %d, want 150000", stats.TotalIncome.Cents)
	}
	if stats.TotalExpense.Cents != 50000 {
		t.Fatalf("total expense = %d, want 50000", stats.TotalExpense.Cents)
	}
	if stats.Balance.Cents != 100000 {
		t.Fatalf("balance = %d, want 100000", stats.Balance.Cents)
	}

	expect := map[string]CategoryStat{
		"income-salary":     {Amount: Money{Cents: 100000}, Percentage: 66.67},
		"income-bonus":      {Amount: Money{Cents: 50000}, Percentage: 33.33},
		"expense-food":      {Amount: Money{Cents: 30000}, Percentage: 60},
		"expense-transport": {Amount: Money{Cents: 20000}, Percentage: 40},
	}
	if len(stats.ByCategory) != len(expect) {
		t.Fatalf("got %d categories, want %d", len(stats.ByCategory), len(expect))
	}
	for key, want := range expect {
		got, ok := stats.ByCategory[key]
		if !ok {
			t.Fatalf("missing category %q", key)
		}
		if got != want {
			t.Fatalf("category %q = %+v, want %+v", key, got, want)
		}
	}
}

func TestComputeStatisticsOrderIndependent(t *testing.T) {
	forward := []Transaction{
		tx(Income, "salary", 100000),
		tx(Income, "bonus", 50000),
		tx(Expense, "food", 30000),
	}
	backward := []Transaction{forward[2], forward[1], forward[0]}

	a := ComputeStatistics(forward)
	b := ComputeStatistics(backward)

	if a.TotalIncome != b.TotalIncome || a.TotalExpense != b.TotalExpense || a.Balance != b.Balance {
		t.Fatalf("totals differ by order: %+v vs %+v", a, b)
	}
	for key, want := range a.ByCategory {
		if got := b.ByCategory[key]; got != want {
			t.Fatalf("category %q differs by order: %+v vs %+v", key, got, want)
		}
	}
}

func TestComputeStatisticsAggregatesSameCategory(t *testing.T) {
	stats := ComputeStatistics([]Transaction{
		tx(Expense, "food", 1000),
		tx(Expense, "food", 2000),
	})

	got := stats.ByCategory["expense-food"]
	if got.Amount.Cents != 3000 {
		t.Fatalf("expense-food amount = %d, want 3000", got.Amount.Cents)
	}
	if got.Percentage != 100 {
		t.Fatalf("expense-food percentage = %v, want 100", got.Percentage)
	}
}

func TestComputeStatisticsNoIncomeNoDivide(t *testing.T) {
	stats := ComputeStatistics([]Transaction{tx(Expense, "food", 1000)})

	if stats.TotalIncome.Cents != 0 {
		t.Fatalf("total income = %d, want 0", stats.TotalIncome.Cents)
	}
	if stats.Balance.Cents != -1000 {
		t.Fatalf("balance = %d, want -1000", stats.Balance.Cents)
	}
	if got := stats.ByCategory["expense-food"].Percentage; got != 100 {
		t.Fatalf("percentage = %v, want 100", got)
	}
}

func TestComputeStatisticsSkipsUnknownType(t *testing.T) {
	stats := ComputeStatistics([]Transaction{
		tx("transfer", "misc", 5000),
		tx(Income, "salary", 1000),
	})

	if stats.TotalIncome.Cents != 1000 || stats.TotalExpense.Cents != 0 {
		t.Fatalf("unknown type leaked into totals: %+v", stats)
	}
	if _, ok := stats.ByCategory["transfer-misc"]; ok {
		t.Fatalf("unknown type must not create a category entry")
	}
}
