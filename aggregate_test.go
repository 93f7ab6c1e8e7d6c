package main

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expense(category string, year int, month time.Month, day int, amount string) Expense {
	return Expense{
		UserID:   "u1",
		Date:     NewDate(year, month, day),
		Amount:   NewMoney(decimal.RequireFromString(amount)),
		Category: category,
	}
}

func TestAggregateMonthly(t *testing.T) {
	records := []Expense{
		expense("Rent", 2024, 2, 1, "1500.00"),
		expense("Groceries", 2023, 12, 31, "80.10"),
		expense("Groceries", 2024, 1, 1, "19.90"),
		expense("Groceries", 2024, 2, 29, "45.55"),
		expense("Utilities", 2024, 1, 15, "120.45"),
		expense("Groceries", 2023, 12, 2, "19.90"),
	}

	totals := AggregateMonthly(records)

	expected := []struct {
		month Month
		total string
	}{
		{Month{Year: 2023, Month: time.December}, "100.00"},
		{Month{Year: 2024, Month: time.January}, "140.35"},
		{Month{Year: 2024, Month: time.February}, "1545.55"},
	}
	require.Len(t, totals, len(expected))
	for i, want := range expected {
		assert.Equal(t, want.month, totals[i].Month)
		assert.Equal(t, want.total, totals[i].TotalAmount.StringFixed(2))
	}
}

func TestAggregateMonthlyEmpty(t *testing.T) {
	totals := AggregateMonthly(nil)

	assert.NotNil(t, totals)
	assert.Empty(t, totals)
}

func TestAggregateMonthlyUsesRecordCalendarMonth(t *testing.T) {
	// 23:30 on Jan 31st in UTC-5 is already February in UTC; the record's own date wins.
	ny := time.FixedZone("UTC-5", -5*60*60)
	records := []Expense{
		{Date: Date{Time: time.Date(2024, time.January, 31, 23, 30, 0, 0, ny)}, Amount: NewMoney(decimal.NewFromInt(10))},
	}

	totals := AggregateMonthly(records)

	require.Len(t, totals, 1)
	assert.Equal(t, Month{Year: 2024, Month: time.January}, totals[0].Month)
}

func TestGroupByCategory(t *testing.T) {
	records := []Expense{
		expense("Rent", 2024, 2, 1, "1500.00"),
		expense("Groceries", 2024, 1, 3, "20.00"),
		expense("Groceries", 2024, 1, 2, "30.00"),
		expense("Entertainment", 2024, 1, 9, "12.00"),
	}

	groups, names := GroupByCategory(records)

	assert.Equal(t, []string{"Entertainment", "Groceries", "Rent"}, names)
	require.Len(t, groups["Groceries"], 2)
	assert.Equal(t, 3, groups["Groceries"][0].Date.Day(), "record order is preserved")
	assert.Len(t, groups["Rent"], 1)
}

func TestMonth(t *testing.T) {
	m := Month{Year: 2024, Month: time.March}

	assert.Equal(t, "2024-03", m.String())
	assert.Equal(t, Month{Year: 2024, Month: time.April}, m.Next())
	assert.Equal(t, Month{Year: 2025, Month: time.January}, Month{Year: 2024, Month: time.December}.Next())
	assert.True(t, Month{Year: 2023, Month: time.December}.Before(m))
	assert.False(t, m.Before(m))

	var decoded Month
	require.NoError(t, decoded.UnmarshalJSON([]byte(`"2024-03"`)))
	assert.Equal(t, m, decoded)
	assert.Error(t, decoded.UnmarshalJSON([]byte(`"March"`)))
}

func TestDateJSON(t *testing.T) {
	var d Date
	require.NoError(t, d.UnmarshalJSON([]byte(`"2024-02-29"`)))
	assert.Equal(t, NewDate(2024, time.February, 29).Time, d.Time)

	data, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2024-02-29"`, string(data))

	assert.Error(t, d.UnmarshalJSON([]byte(`"2024-02-30"`)))
	assert.Error(t, d.UnmarshalJSON([]byte(`"29/02/2024"`)))
}
