package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("already exists")
	ErrInvalidValue = errors.New("value rejected by database")
)

// postgres error codes
const (
	uniqueViolationCode        = "23505"
	checkViolationCode         = "23514"
	numericValueOutOfRangeCode = "22003"
)

// Store is the persistence surface used by the handlers.
type Store interface {
	Ping(ctx context.Context) error

	ListExpenses(ctx context.Context, userID string) ([]Expense, error)
	CreateExpense(ctx context.Context, userID string, in ExpenseInput) (Expense, error)
	DeleteExpense(ctx context.Context, userID, id string) error

	ListBudgets(ctx context.Context, userID string) ([]Budget, error)
	CreateBudget(ctx context.Context, userID string, in BudgetInput) (Budget, error)
	UpdateBudget(ctx context.Context, userID, id string, patch BudgetPatch) (Budget, error)
	DeleteBudget(ctx context.Context, userID, id string) error

	ListGoals(ctx context.Context, userID string) ([]Goal, error)
	CreateGoal(ctx context.Context, userID string, in GoalInput) (Goal, error)
	UpdateGoal(ctx context.Context, userID, id string, patch GoalPatch) (Goal, error)
	DeleteGoal(ctx context.Context, userID, id string) error
}

const (
	expenseColumns = "id::text, user_id, date, amount, category, description"
	budgetColumns  = "id::text, category, limit_amount, spent_amount, period"
	goalColumns    = "id::text, name, target_amount, current_amount, deadline, category"
)

// pgStore implements Store on PostgreSQL. Every operation runs on its own pooled
// connection, released before the call returns.
type pgStore struct {
	db *sql.DB
}

func newPGStore(db *sql.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) withConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()
	return fn(conn)
}

func (s *pgStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (Expense, error) {
	var e Expense
	err := row.Scan(&e.ID, &e.UserID, &e.Date.Time, &e.Amount, &e.Category, &e.Description)
	return e, err
}

func scanBudget(row rowScanner) (Budget, error) {
	var b Budget
	err := row.Scan(&b.ID, &b.Category, &b.Limit, &b.Spent, &b.Period)
	return b, err
}

func scanGoal(row rowScanner) (Goal, error) {
	var g Goal
	err := row.Scan(&g.ID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &g.Deadline.Time, &g.Category)
	return g, err
}

// queryAll runs query and scans every row. The result is never nil.
func queryAll[T any](ctx context.Context, conn *sql.Conn, scan func(rowScanner) (T, error), query string, args ...any) ([]T, error) {
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *pgStore) ListExpenses(ctx context.Context, userID string) ([]Expense, error) {
	var expenses []Expense
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		expenses, err = queryAll(ctx, conn, scanExpense, `
			SELECT `+expenseColumns+`
			FROM expenses
			WHERE user_id = $1
			ORDER BY date DESC, created_at DESC
		`, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

func (s *pgStore) CreateExpense(ctx context.Context, userID string, in ExpenseInput) (Expense, error) {
	var e Expense
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		e, err = scanExpense(conn.QueryRowContext(ctx, `
			INSERT INTO expenses (user_id, date, amount, category, description)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+expenseColumns,
			userID, in.Date.Time, in.Amount, in.Category, in.Description,
		))
		return err
	})
	if err != nil {
		return Expense{}, fmt.Errorf("create expense: %w", classify(err))
	}
	return e, nil
}

func (s *pgStore) DeleteExpense(ctx context.Context, userID, id string) error {
	return s.deleteOwned(ctx, "expenses", userID, id)
}

func (s *pgStore) ListBudgets(ctx context.Context, userID string) ([]Budget, error) {
	var budgets []Budget
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		budgets, err = queryAll(ctx, conn, scanBudget, `
			SELECT `+budgetColumns+`
			FROM budgets
			WHERE user_id = $1
			ORDER BY category, period
		`, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return budgets, nil
}

func (s *pgStore) CreateBudget(ctx context.Context, userID string, in BudgetInput) (Budget, error) {
	var b Budget
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		b, err = scanBudget(conn.QueryRowContext(ctx, `
			INSERT INTO budgets (user_id, category, limit_amount, spent_amount, period)
			VALUES ($1, $2, $3, 0, $4)
			RETURNING `+budgetColumns,
			userID, in.Category, in.Limit, in.Period,
		))
		return err
	})
	if err != nil {
		return Budget{}, fmt.Errorf("create budget: %w", classify(err))
	}
	return b, nil
}

func (s *pgStore) UpdateBudget(ctx context.Context, userID, id string, patch BudgetPatch) (Budget, error) {
	ub := newUpdateBuilder("budgets", budgetColumns)
	patch.apply(ub)
	query, args, err := ub.build(userID, id)
	if err != nil {
		return Budget{}, err
	}

	var b Budget
	err = s.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		b, err = scanBudget(conn.QueryRowContext(ctx, query, args...))
		return err
	})
	if err != nil {
		return Budget{}, fmt.Errorf("update budget: %w", classify(err))
	}
	return b, nil
}

func (s *pgStore) DeleteBudget(ctx context.Context, userID, id string) error {
	return s.deleteOwned(ctx, "budgets", userID, id)
}

func (s *pgStore) ListGoals(ctx context.Context, userID string) ([]Goal, error) {
	var goals []Goal
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		goals, err = queryAll(ctx, conn, scanGoal, `
			SELECT `+goalColumns+`
			FROM goals
			WHERE user_id = $1
			ORDER BY deadline, name
		`, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

func (s *pgStore) CreateGoal(ctx context.Context, userID string, in GoalInput) (Goal, error) {
	var g Goal
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		g, err = scanGoal(conn.QueryRowContext(ctx, `
			INSERT INTO goals (user_id, name, target_amount, current_amount, deadline, category)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+goalColumns,
			userID, in.Name, in.TargetAmount, in.CurrentAmount,
			in.Deadline.Time, in.Category,
		))
		return err
	})
	if err != nil {
		return Goal{}, fmt.Errorf("create goal: %w", classify(err))
	}
	return g, nil
}

func (s *pgStore) UpdateGoal(ctx context.Context, userID, id string, patch GoalPatch) (Goal, error) {
	ub := newUpdateBuilder("goals", goalColumns)
	patch.apply(ub)
	query, args, err := ub.build(userID, id)
	if err != nil {
		return Goal{}, err
	}

	var g Goal
	err = s.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		g, err = scanGoal(conn.QueryRowContext(ctx, query, args...))
		return err
	})
	if err != nil {
		return Goal{}, fmt.Errorf("update goal: %w", classify(err))
	}
	return g, nil
}

func (s *pgStore) DeleteGoal(ctx context.Context, userID, id string) error {
	return s.deleteOwned(ctx, "goals", userID, id)
}

// deleteOwned removes the row with id belonging to userID. table is always a constant.
func (s *pgStore) deleteOwned(ctx context.Context, table, userID, id string) error {
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		var deleted string
		return conn.QueryRowContext(ctx,
			"DELETE FROM "+table+" WHERE user_id = $1 AND id = $2 RETURNING id::text",
			userID, id,
		).Scan(&deleted)
	})
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, classify(err))
	}
	return nil
}

// classify maps driver errors onto the store's sentinel errors.
func classify(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case uniqueViolationCode:
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	case checkViolationCode, numericValueOutOfRangeCode:
		return fmt.Errorf("%w: %s", ErrInvalidValue, pgErr.Message)
	}
	return err
}
