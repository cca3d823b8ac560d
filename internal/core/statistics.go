package core

// CategoryStat is the aggregated amount and share for one type+category pair.
type CategoryStat struct {
	Amount     Money
	Percentage float64 // share of the type total, 2 decimals
}

// Statistics is the income/expense rollup over a set of transactions.
type Statistics struct {
	TotalIncome  Money
	TotalExpense Money
	Balance      Money
	ByCategory   map[string]CategoryStat
}

// CategoryKey builds the aggregation key, e.g. "expense-food".
func CategoryKey(t TransactionType, category string) string {
	return string(t) + "-" + category
}

// ComputeStatistics aggregates totals, balance and per-category shares over
// the given transactions. The result depends only on the input set, never on
// its order. Percentages are relative to the matching type total and are 0
// when that total is 0. Transactions with an unknown type are skipped.
func ComputeStatistics(transactions []Transaction) Statistics {
	stats := Statistics{ByCategory: make(map[string]CategoryStat)}

	type bucket struct {
		kind  TransactionType
		cents int64
	}
	buckets := make(map[string]*bucket)

	for _, t := range transactions {
		switch t.Type {
		case Income:
			stats.TotalIncome.Cents += t.Amount.Cents
		case Expense:
			stats.TotalExpense.Cents += t.Amount.Cents
		default:
			continue
		}
		key := CategoryKey(t.Type, t.Category)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{kind: t.Type}
			buckets[key] = b
		}
		b.cents += t.Amount.Cents
	}

	stats.Balance.Cents = stats.TotalIncome.Cents - stats.TotalExpense.Cents

	for key, b := range buckets {
		total := stats.TotalIncome.Cents
		if b.kind == Expense {
			total = stats.TotalExpense.Cents
		}
		var pct float64
		if total > 0 {
			pct = Round2(float64(b.cents) / float64(total) * 100)
		}
		stats.ByCategory[key] = CategoryStat{Amount: Money{Cents: b.cents}, Percentage: pct}
	}

	return stats
}
