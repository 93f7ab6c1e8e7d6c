package main

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

// maxMoney is the largest value a NUMERIC(12,2) column holds.
var maxMoney = decimal.RequireFromString("9999999999.99")

// checkMoney enforces the column rules of a money field: at most two decimal places,
// within NUMERIC(12,2) and positive, or non-negative when allowZero is set.
func checkMoney(field string, v decimal.Decimal, allowZero bool) error {
	switch {
	case allowZero && v.IsNegative():
		return fmt.Errorf("%s must not be negative", field)
	case !allowZero && !v.IsPositive():
		return fmt.Errorf("%s must be greater than 0", field)
	case !v.Equal(v.Truncate(moneyPlaces)):
		return fmt.Errorf("%s must have at most %d decimal places", field, moneyPlaces)
	case v.GreaterThan(maxMoney):
		return fmt.Errorf("%s must not exceed %s", field, maxMoney.StringFixed(moneyPlaces))
	}
	return nil
}

func checkOptionalMoney(field string, v *decimal.Decimal, allowZero bool) error {
	if v == nil {
		return nil
	}
	return checkMoney(field, *v, allowZero)
}

func (in ExpenseInput) validate() error {
	if in.Date.IsZero() {
		return errors.New("date is required")
	}
	return checkMoney("amount", in.Amount, false)
}

func (in BudgetInput) validate() error {
	return checkMoney("limit", in.Limit, true)
}

func (p BudgetPatch) validate() error {
	return errors.Join(
		checkOptionalMoney("limit", p.Limit, true),
		checkOptionalMoney("spent", p.Spent, true),
	)
}

func (in GoalInput) validate() error {
	if in.Deadline.IsZero() {
		return errors.New("deadline is required")
	}
	return errors.Join(
		checkMoney("target_amount", in.TargetAmount, false),
		checkMoney("current_amount", in.CurrentAmount, true),
	)
}

func (p GoalPatch) validate() error {
	return errors.Join(
		checkOptionalMoney("target_amount", p.TargetAmount, false),
		checkOptionalMoney("current_amount", p.CurrentAmount, true),
	)
}
