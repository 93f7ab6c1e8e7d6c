package main

import (
	"sort"

	"github.com/shopspring/decimal"
)

// AggregateMonthly sums expense amounts per calendar month, ordered by month ascending.
// An empty input yields an empty, non-nil slice.
func AggregateMonthly(records []Expense) []MonthlyTotal {
	totals := make(map[Month]decimal.Decimal)
	for _, r := range records {
		m := MonthOf(r.Date.Time)
		totals[m] = totals[m].Add(r.Amount.Decimal)
	}
	return sortedTotals(totals)
}

// GroupByCategory partitions records by category. Record order is preserved within a group;
// the returned category names are sorted.
func GroupByCategory(records []Expense) (map[string][]Expense, []string) {
	groups := make(map[string][]Expense)
	for _, r := range records {
		groups[r.Category] = append(groups[r.Category], r)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return groups, names
}

// normalizeHistory returns a copy of history sorted by month with duplicate months merged.
func normalizeHistory(history []MonthlyTotal) []MonthlyTotal {
	totals := make(map[Month]decimal.Decimal, len(history))
	for _, h := range history {
		totals[h.Month] = totals[h.Month].Add(h.TotalAmount.Decimal)
	}
	return sortedTotals(totals)
}

func sortedTotals(totals map[Month]decimal.Decimal) []MonthlyTotal {
	out := make([]MonthlyTotal, 0, len(totals))
	for m, total := range totals {
		out = append(out, MonthlyTotal{Month: m, TotalAmount: NewMoney(total)})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Month.Before(out[j].Month)
	})
	return out
}
