package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

// Money is a currency amount. It marshals to JSON as a number with exactly two decimals.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.StringFixed(2)), nil
}

// Date is a calendar date without a time of day.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	d.Time = t
	return nil
}

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf truncates t to its calendar month, in t's own location.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// Next returns the following calendar month.
func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m Month) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

func (m *Month) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return fmt.Errorf("invalid month %q, expected YYYY-MM", s)
	}
	*m = MonthOf(t)
	return nil
}

// Expense is a single persisted expense record
type Expense struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Date        Date   `json:"date"`
	Amount      Money  `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// ExpenseInput is the request body for creating an expense
type ExpenseInput struct {
	Date        Date            `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category" binding:"required,max=100"`
	Description string          `json:"description" binding:"max=255"`
}

// MonthlyTotal is the sum of one user's expenses within a calendar month
type MonthlyTotal struct {
	Month       Month `json:"month"`
	TotalAmount Money `json:"total_amount"`
}

// ForecastResult is the response of a next-month prediction
type ForecastResult struct {
	UserID            string         `json:"user_id"`
	Message           string         `json:"message,omitempty"`
	PredictedAmount   *Money         `json:"predicted_next_month_expense,omitempty"`
	PredictedForMonth *Month         `json:"predicted_for_month,omitempty"`
	History           []MonthlyTotal `json:"monthly_expenses"`
}

// HasPrediction reports whether enough history existed to predict.
func (r ForecastResult) HasPrediction() bool {
	return r.PredictedAmount != nil
}

// CategoryForecast is the next-month prediction for one category
type CategoryForecast struct {
	PredictedAmount   Money `json:"predicted_amount"`
	PredictedForMonth Month `json:"predicted_for_month"`
}

// ComparisonStatus classifies actual spend against its prediction
type ComparisonStatus string

const (
	StatusOverSpent  ComparisonStatus = "over_spent"
	StatusUnderSpent ComparisonStatus = "under_spent"
	StatusOnTrack    ComparisonStatus = "on_track"
)

// Comparison holds the backtest of the latest month of a category
type Comparison struct {
	Month      Month            `json:"month"`
	Predicted  Money            `json:"predicted"`
	Actual     Money            `json:"actual"`
	Difference Money            `json:"difference"`
	Status     ComparisonStatus `json:"status"`
}

// CategoryForecastResult is the response of the category-wise prediction
type CategoryForecastResult struct {
	UserID              string                      `json:"user_id"`
	CategoryPredictions map[string]CategoryForecast `json:"category_predictions"`
	Comparison          map[string]Comparison       `json:"comparison"`
}

// Budget is a spending limit for a category over a period
type Budget struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Limit    Money  `json:"limit"`
	Spent    Money  `json:"spent"`
	Period   string `json:"period"`
}

// BudgetInput is the request body for creating a budget
type BudgetInput struct {
	Category string          `json:"category" binding:"required,max=100"`
	Limit    decimal.Decimal `json:"limit"`
	Period   string          `json:"period" binding:"required,oneof=weekly monthly yearly"`
}

// BudgetPatch carries the optional fields of a budget update
type BudgetPatch struct {
	Category *string          `json:"category" binding:"omitempty,min=1,max=100"`
	Limit    *decimal.Decimal `json:"limit"`
	Spent    *decimal.Decimal `json:"spent"`
	Period   *string          `json:"period" binding:"omitempty,oneof=weekly monthly yearly"`
}

// Goal is a savings target
type Goal struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	TargetAmount  Money  `json:"target_amount"`
	CurrentAmount Money  `json:"current_amount"`
	Deadline      Date   `json:"deadline"`
	Category      string `json:"category"`
}

// GoalInput is the request body for creating a goal
type GoalInput struct {
	Name          string          `json:"name" binding:"required,max=255"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Deadline      Date            `json:"deadline"`
	Category      string          `json:"category" binding:"required,max=100"`
}

// GoalPatch carries the optional fields of a goal update
type GoalPatch struct {
	Name          *string          `json:"name" binding:"omitempty,min=1,max=255"`
	TargetAmount  *decimal.Decimal `json:"target_amount"`
	CurrentAmount *decimal.Decimal `json:"current_amount"`
	Deadline      *Date            `json:"deadline"`
	Category      *string          `json:"category" binding:"omitempty,min=1,max=100"`
}
