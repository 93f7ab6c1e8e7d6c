package main

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoFieldsToUpdate is returned when a patch carries no fields.
var ErrNoFieldsToUpdate = errors.New("no fields to update")

// updateBuilder assembles a parameterized UPDATE statement. Column names only come from
// the constants passed by callers in this file, never from request input.
type updateBuilder struct {
	table     string
	returning string
	columns   []string
	args      []any
}

func newUpdateBuilder(table, returning string) *updateBuilder {
	return &updateBuilder{table: table, returning: returning}
}

func (b *updateBuilder) set(column string, value any) {
	b.columns = append(b.columns, column)
	b.args = append(b.args, value)
}

func (b *updateBuilder) empty() bool {
	return len(b.columns) == 0
}

// build renders the statement scoped to (user_id, id), the last two placeholders.
func (b *updateBuilder) build(userID, id string) (string, []any, error) {
	if b.empty() {
		return "", nil, ErrNoFieldsToUpdate
	}

	sets := make([]string, len(b.columns))
	for i, col := range b.columns {
		sets[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}
	n := len(b.columns)

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE user_id = $%d AND id = $%d RETURNING %s",
		b.table, strings.Join(sets, ", "), n+1, n+2, b.returning,
	)
	args := append(append([]any{}, b.args...), userID, id)
	return query, args, nil
}

func (p BudgetPatch) apply(b *updateBuilder) {
	if p.Category != nil {
		b.set("category", *p.Category)
	}
	if p.Limit != nil {
		b.set("limit_amount", *p.Limit)
	}
	if p.Spent != nil {
		b.set("spent_amount", *p.Spent)
	}
	if p.Period != nil {
		b.set("period", *p.Period)
	}
}

func (p GoalPatch) apply(b *updateBuilder) {
	if p.Name != nil {
		b.set("name", *p.Name)
	}
	if p.TargetAmount != nil {
		b.set("target_amount", *p.TargetAmount)
	}
	if p.CurrentAmount != nil {
		b.set("current_amount", *p.CurrentAmount)
	}
	if p.Deadline != nil {
		b.set("deadline", p.Deadline.Time)
	}
	if p.Category != nil {
		b.set("category", *p.Category)
	}
}
