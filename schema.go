package main

import (
	"context"
	"database/sql"
	"fmt"
)

// demoUserID owns the rows written by seedDemoData
const demoUserID = "demo"

// Six months of demo spend with an upward trend, so both forecast endpoints have data.
const demoExpensesSQL = `
	INSERT INTO expenses (user_id, date, amount, category, description)
	SELECT $1::varchar, (date_trunc('month', CURRENT_DATE) - (m || ' months')::interval)::date + d.day_offset,
	       d.base + d.step * (5 - m), d.category, d.description
	FROM generate_series(0, 5) AS m
	CROSS JOIN (VALUES
		(0,  1500.00::numeric, 0.00::numeric,  'Rent',           'Rent - Apartment'),
		(3,   120.00,          4.50,           'Utilities',      'Utilities - Electricity'),
		(6,    96.70,          8.25,           'Groceries',      'Groceries - Whole Foods'),
		(12,   45.00,          0.00,           'Transportation', 'Subway Pass'),
		(15,   28.50,         11.00,           'Entertainment',  'Movie Night'),
		(20,   64.10,          6.40,           'Groceries',      'Groceries - Trader Joes')
	) AS d(day_offset, base, step, category, description)
`

const demoBudgetsSQL = `
	INSERT INTO budgets (user_id, category, limit_amount, spent_amount, period) VALUES
	($1, 'Groceries', 400.00, 0, 'monthly'),
	($1, 'Entertainment', 200.00, 0, 'monthly'),
	($1, 'Transportation', 150.00, 0, 'monthly')
	ON CONFLICT (user_id, category, period) DO NOTHING
`

const demoGoalsSQL = `
	INSERT INTO goals (user_id, name, target_amount, current_amount, deadline, category) VALUES
	($1, 'Emergency Fund', 10000.00, 2500.00, (CURRENT_DATE + INTERVAL '1 year')::date, 'Savings'),
	($1, 'Vacation', 3000.00, 450.00, (CURRENT_DATE + INTERVAL '6 months')::date, 'Travel')
`

// seedDemoData writes demo expenses, budgets and goals for the demo user.
// Idempotent: does nothing once the demo user has any expense.
func seedDemoData(ctx context.Context, db *sql.DB) error {
	var cnt int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM expenses WHERE user_id = $1`, demoUserID).Scan(&cnt); err != nil {
		return fmt.Errorf("checking expenses count: %w", err)
	}
	if cnt > 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, demoExpensesSQL, demoUserID); err != nil {
		return fmt.Errorf("seeding demo expenses: %w", err)
	}
	if _, err := tx.ExecContext(ctx, demoBudgetsSQL, demoUserID); err != nil {
		return fmt.Errorf("seeding demo budgets: %w", err)
	}
	if _, err := tx.ExecContext(ctx, demoGoalsSQL, demoUserID); err != nil {
		return fmt.Errorf("seeding demo goals: %w", err)
	}

	return tx.Commit()
}
