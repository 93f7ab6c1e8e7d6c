package main

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*pgStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return newPGStore(db), mock
}

func TestListExpenses(t *testing.T) {
	store, mock := newMockStore(t)
	rows := sqlmock.NewRows([]string{"id", "user_id", "date", "amount", "category", "description"}).
		AddRow("7f1c", "u1", time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), "120.45", "Utilities", "Electricity").
		AddRow("8a2d", "u1", time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), "80", "Groceries", "")
	mock.ExpectQuery(regexp.QuoteMeta("FROM expenses")).WithArgs("u1").WillReturnRows(rows)

	expenses, err := store.ListExpenses(context.Background(), "u1")

	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Equal(t, "7f1c", expenses[0].ID)
	assert.Equal(t, "120.45", expenses[0].Amount.StringFixed(2))
	assert.Equal(t, NewDate(2024, 2, 10).Time, expenses[0].Date.Time)
	assert.Equal(t, "Groceries", expenses[1].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListExpensesEmptyIsNotNil(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM expenses")).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "date", "amount", "category", "description"}))

	expenses, err := store.ListExpenses(context.Background(), "nobody")

	require.NoError(t, err)
	assert.NotNil(t, expenses)
	assert.Empty(t, expenses)
}

func TestListExpensesQueryError(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM expenses")).WillReturnError(errors.New("connection reset"))

	_, err := store.ListExpenses(context.Background(), "u1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "list expenses")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestCreateExpense(t *testing.T) {
	store, mock := newMockStore(t)
	date := NewDate(2024, 3, 5)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO expenses (user_id, date, amount, category, description)")).
		WithArgs("u1", date.Time, "42.1", "Groceries", "Market").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "date", "amount", "category", "description"}).
			AddRow("9b3e", "u1", date.Time, "42.10", "Groceries", "Market"))

	e, err := store.CreateExpense(context.Background(), "u1", ExpenseInput{
		Date: date, Amount: decimal.RequireFromString("42.10"), Category: "Groceries", Description: "Market",
	})

	require.NoError(t, err)
	assert.Equal(t, "9b3e", e.ID)
	assert.Equal(t, "42.10", e.Amount.StringFixed(2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBudgetDuplicate(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO budgets")).
		WithArgs("u1", "Food", sqlmock.AnyArg(), "monthly").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "budgets_user_category_period_key"})

	_, err := store.CreateBudget(context.Background(), "u1", BudgetInput{Category: "Food", Limit: decimal.NewFromInt(300), Period: "monthly"})

	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBudget(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE budgets SET spent_amount = $1 WHERE user_id = $2 AND id = $3")).
		WithArgs(sqlmock.AnyArg(), "u1", "b1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "category", "limit_amount", "spent_amount", "period"}).
			AddRow("b1", "Food", "300.00", "75.25", "monthly"))

	b, err := store.UpdateBudget(context.Background(), "u1", "b1", BudgetPatch{Spent: decPtr("75.25")})

	require.NoError(t, err)
	assert.Equal(t, "75.25", b.Spent.StringFixed(2))
	assert.Equal(t, "300.00", b.Limit.StringFixed(2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBudgetNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE budgets")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "category", "limit_amount", "spent_amount", "period"}))

	_, err := store.UpdateBudget(context.Background(), "u1", "b1", BudgetPatch{Period: strPtr("yearly")})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateGoalWithoutFieldsSkipsDatabase(t *testing.T) {
	store, mock := newMockStore(t)

	_, err := store.UpdateGoal(context.Background(), "u1", "g1", GoalPatch{})

	assert.ErrorIs(t, err, ErrNoFieldsToUpdate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListGoals(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY deadline, name")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "target_amount", "current_amount", "deadline", "category"}).
			AddRow("g1", "Vacation", "3000.00", "450.00", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), "Travel"))

	goals, err := store.ListGoals(context.Background(), "u1")

	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "Vacation", goals[0].Name)
	assert.Equal(t, "450.00", goals[0].CurrentAmount.StringFixed(2))
	assert.Equal(t, 2025, goals[0].Deadline.Year())
}

func TestDeleteOwned(t *testing.T) {
	tests := []struct {
		name    string
		rows    *sqlmock.Rows
		wantErr error
	}{
		{"deleted", sqlmock.NewRows([]string{"id"}).AddRow("g1"), nil},
		{"missing", sqlmock.NewRows([]string{"id"}), ErrNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM goals WHERE user_id = $1 AND id = $2 RETURNING id::text")).
				WithArgs("u1", "g1").
				WillReturnRows(tc.rows)

			err := store.DeleteGoal(context.Background(), "u1", "g1")

			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestClassify(t *testing.T) {
	other := errors.New("boom")

	assert.ErrorIs(t, classify(other), other)
	assert.ErrorIs(t, classify(&pgconn.PgError{Code: "23505"}), ErrDuplicate)
	assert.NotErrorIs(t, classify(&pgconn.PgError{Code: "23503"}), ErrDuplicate)
	assert.ErrorIs(t, classify(&pgconn.PgError{Code: "23514"}), ErrInvalidValue)
	assert.ErrorIs(t, classify(&pgconn.PgError{Code: "22003"}), ErrInvalidValue)
	assert.NotErrorIs(t, classify(&pgconn.PgError{Code: "23503"}), ErrInvalidValue)
}

func TestCreateExpenseCheckViolation(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO expenses")).
		WillReturnError(&pgconn.PgError{Code: "23514", Message: `new row for relation "expenses" violates check constraint "expenses_amount_check"`})

	_, err := store.CreateExpense(context.Background(), "u1", ExpenseInput{
		Date: NewDate(2024, 3, 5), Amount: decimal.RequireFromString("0.01"), Category: "Groceries",
	})

	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.Contains(t, err.Error(), "expenses_amount_check")
}

func TestCreateGoalOutOfRange(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO goals")).
		WillReturnError(&pgconn.PgError{Code: "22003", Message: "numeric field overflow"})

	_, err := store.CreateGoal(context.Background(), "u1", GoalInput{
		Name: "Car", TargetAmount: decimal.NewFromInt(100), Deadline: NewDate(2025, 1, 1), Category: "Auto",
	})

	assert.ErrorIs(t, err, ErrInvalidValue)
}
