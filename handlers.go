package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// App holds the dependencies shared by the HTTP handlers.
type App struct {
	store Store
	cache *forecastCache
	log   *logrus.Logger
}

func newApp(store Store, cache *forecastCache, log *logrus.Logger) *App {
	return &App{store: store, cache: cache, log: log}
}

// root reports that the service is up
func (a *App) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "Expense Predictor API running"})
}

// healthCheck handles the health check endpoint
func (a *App) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := a.store.Ping(ctx); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "expense-predictor",
	})
}

// predictNextMonth forecasts next month's total spend for a user
func (a *App) predictNextMonth(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.Param("user_id")

	var result ForecastResult
	if a.cache.get(ctx, forecastKey(userID), &result) {
		c.JSON(http.StatusOK, result)
		return
	}
	gen := a.cache.generation(ctx, userID)

	expenses, err := a.store.ListExpenses(ctx, userID)
	if err != nil {
		a.internalError(c, err)
		return
	}
	if len(expenses) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No expenses found"})
		return
	}

	result = Forecast(userID, AggregateMonthly(expenses))
	a.cache.set(ctx, userID, gen, forecastKey(userID), result)

	a.log.WithFields(logrus.Fields{
		FieldUserID: userID,
		"months":    len(result.History),
		"predicted": result.HasPrediction(),
		"expenses":  len(expenses),
	}).Debug("forecast computed")

	c.JSON(http.StatusOK, result)
}

// predictByCategory forecasts next month's spend per category and backtests the latest month
func (a *App) predictByCategory(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.Param("user_id")

	var result CategoryForecastResult
	if a.cache.get(ctx, categoryForecastKey(userID), &result) {
		c.JSON(http.StatusOK, result)
		return
	}
	gen := a.cache.generation(ctx, userID)

	expenses, err := a.store.ListExpenses(ctx, userID)
	if err != nil {
		a.internalError(c, err)
		return
	}
	if len(expenses) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No expenses found"})
		return
	}

	result = ForecastByCategory(userID, expenses)
	a.cache.set(ctx, userID, gen, categoryForecastKey(userID), result)

	c.JSON(http.StatusOK, result)
}

// getExpenses lists a user's expenses, newest first
func (a *App) getExpenses(c *gin.Context) {
	expenses, err := a.store.ListExpenses(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		a.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, expenses)
}

// addExpense records a new expense
func (a *App) addExpense(c *gin.Context) {
	var in ExpenseInput
	if !bindInput(c, &in) {
		return
	}

	ctx := c.Request.Context()
	userID := c.Param("user_id")

	expense, err := a.store.CreateExpense(ctx, userID, in)
	if err != nil {
		a.storeError(c, err, "Expense not found")
		return
	}
	a.cache.invalidate(ctx, userID)

	c.JSON(http.StatusCreated, expense)
}

// deleteExpense removes one of a user's expenses
func (a *App) deleteExpense(c *gin.Context) {
	id, ok := resourceID(c, "expense_id", "expense")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	userID := c.Param("user_id")

	if err := a.store.DeleteExpense(ctx, userID, id); err != nil {
		a.storeError(c, err, "Expense not found")
		return
	}
	a.cache.invalidate(ctx, userID)

	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}

// getBudgets lists a user's budgets
func (a *App) getBudgets(c *gin.Context) {
	budgets, err := a.store.ListBudgets(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		a.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, budgets)
}

// createBudget creates a budget; category and period are unique per user
func (a *App) createBudget(c *gin.Context) {
	var in BudgetInput
	if !bindInput(c, &in) {
		return
	}

	budget, err := a.store.CreateBudget(c.Request.Context(), c.Param("user_id"), in)
	if errors.Is(err, ErrDuplicate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Budget already exists for this category and period"})
		return
	}
	if err != nil {
		a.storeError(c, err, "Budget not found")
		return
	}
	c.JSON(http.StatusCreated, budget)
}

// updateBudget applies a partial update to a budget
func (a *App) updateBudget(c *gin.Context) {
	id, ok := resourceID(c, "budget_id", "budget")
	if !ok {
		return
	}

	var patch BudgetPatch
	if !bindInput(c, &patch) {
		return
	}

	budget, err := a.store.UpdateBudget(c.Request.Context(), c.Param("user_id"), id, patch)
	if errors.Is(err, ErrDuplicate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Budget already exists for this category and period"})
		return
	}
	if err != nil {
		a.storeError(c, err, "Budget not found")
		return
	}
	c.JSON(http.StatusOK, budget)
}

// deleteBudget removes a budget
func (a *App) deleteBudget(c *gin.Context) {
	id, ok := resourceID(c, "budget_id", "budget")
	if !ok {
		return
	}

	if err := a.store.DeleteBudget(c.Request.Context(), c.Param("user_id"), id); err != nil {
		a.storeError(c, err, "Budget not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted successfully"})
}

// getGoals lists a user's savings goals
func (a *App) getGoals(c *gin.Context) {
	goals, err := a.store.ListGoals(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		a.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, goals)
}

// createGoal creates a savings goal
func (a *App) createGoal(c *gin.Context) {
	var in GoalInput
	if !bindInput(c, &in) {
		return
	}

	goal, err := a.store.CreateGoal(c.Request.Context(), c.Param("user_id"), in)
	if err != nil {
		a.storeError(c, err, "Goal not found")
		return
	}
	c.JSON(http.StatusCreated, goal)
}

// updateGoal applies a partial update to a goal
func (a *App) updateGoal(c *gin.Context) {
	id, ok := resourceID(c, "goal_id", "goal")
	if !ok {
		return
	}

	var patch GoalPatch
	if !bindInput(c, &patch) {
		return
	}

	goal, err := a.store.UpdateGoal(c.Request.Context(), c.Param("user_id"), id, patch)
	if err != nil {
		a.storeError(c, err, "Goal not found")
		return
	}
	c.JSON(http.StatusOK, goal)
}

// deleteGoal removes a goal
func (a *App) deleteGoal(c *gin.Context) {
	id, ok := resourceID(c, "goal_id", "goal")
	if !ok {
		return
	}

	if err := a.store.DeleteGoal(c.Request.Context(), c.Param("user_id"), id); err != nil {
		a.storeError(c, err, "Goal not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Goal deleted successfully"})
}

// bindInput decodes the JSON body into in and runs its checks, answering 400 on failure.
func bindInput[T interface{ validate() error }](c *gin.Context, in *T) bool {
	if err := c.ShouldBindJSON(in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	if err := (*in).validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// resourceID reads a UUID path parameter, answering 400 when it is malformed.
func resourceID(c *gin.Context, param, resource string) (string, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + resource + " id"})
		return "", false
	}
	return id.String(), true
}

// storeError maps store sentinel errors to responses
func (a *App) storeError(c *gin.Context, err error, notFound string) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
	case errors.Is(err, ErrNoFieldsToUpdate):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
	case errors.Is(err, ErrInvalidValue):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		a.internalError(c, err)
	}
}

func (a *App) internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
