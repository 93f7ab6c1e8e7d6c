package main

import (
	"github.com/shopspring/decimal"
)

const (
	// currency precision of every prediction
	forecastPlaces = 2
	// digits kept by the single division of the fit before rounding
	forecastDivPrecision = 16

	insufficientHistoryMessage = "Not enough data to predict"
)

// Predict fits an ordinary least-squares line of monthly total against month index and
// extrapolates one month past the last observation.
//
// The history is re-sorted by month (duplicate months summed) before indexing, so the
// caller's order does not matter. Index is sort position, not calendar distance: a
// skipped month counts as consecutive. With fewer than two months there is no trend and
// ok is false. The prediction is rounded half-to-even to two decimals.
func Predict(history []MonthlyTotal) (prediction decimal.Decimal, ok bool) {
	points := normalizeHistory(history)
	n := int64(len(points))
	if n < 2 {
		return decimal.Zero, false
	}

	var sumX, sumXX int64
	sumY, sumXY := decimal.Zero, decimal.Zero
	for i, p := range points {
		x := int64(i)
		y := p.TotalAmount.Decimal
		sumX += x
		sumXX += x * x
		sumY = sumY.Add(y)
		sumXY = sumXY.Add(y.Mul(decimal.NewFromInt(x)))
	}

	// slope = num/den, intercept = (sumY - slope*sumX)/n, prediction = intercept + slope*n.
	// Folded into one quotient so the only inexact step is the final division.
	// den = n*sumXX - sumX^2 is n^2(n^2-1)/12 > 0 for n >= 2.
	nD := decimal.NewFromInt(n)
	num := nD.Mul(sumXY).Sub(decimal.NewFromInt(sumX).Mul(sumY))
	den := decimal.NewFromInt(n*sumXX - sumX*sumX)

	top := sumY.Mul(den).
		Sub(num.Mul(decimal.NewFromInt(sumX))).
		Add(num.Mul(decimal.NewFromInt(n * n)))
	bottom := nD.Mul(den)

	return top.DivRound(bottom, forecastDivPrecision).RoundBank(forecastPlaces), true
}

// Forecast predicts next month's spend for a user and echoes the normalized history.
func Forecast(userID string, history []MonthlyTotal) ForecastResult {
	points := normalizeHistory(history)
	result := ForecastResult{UserID: userID, History: points}

	prediction, ok := Predict(points)
	if !ok {
		result.Message = insufficientHistoryMessage
		return result
	}

	amount := NewMoney(prediction)
	next := points[len(points)-1].Month.Next()
	result.PredictedAmount = &amount
	result.PredictedForMonth = &next
	return result
}

// CompareLatest predicts the latest month of history from the months before it and
// compares the prediction to what was actually spent. It needs at least three months.
func CompareLatest(history []MonthlyTotal) (Comparison, bool) {
	points := normalizeHistory(history)
	if len(points) < 3 {
		return Comparison{}, false
	}

	latest := points[len(points)-1]
	predicted, ok := Predict(points[:len(points)-1])
	if !ok {
		return Comparison{}, false
	}

	actual := latest.TotalAmount.Decimal
	diff := actual.Sub(predicted)

	status := StatusOnTrack
	switch diff.Sign() {
	case 1:
		status = StatusOverSpent
	case -1:
		status = StatusUnderSpent
	}

	return Comparison{
		Month:      latest.Month,
		Predicted:  NewMoney(predicted),
		Actual:     NewMoney(actual),
		Difference: NewMoney(diff),
		Status:     status,
	}, true
}

// ForecastByCategory runs Forecast and CompareLatest for every category of records.
func ForecastByCategory(userID string, records []Expense) CategoryForecastResult {
	result := CategoryForecastResult{
		UserID:              userID,
		CategoryPredictions: make(map[string]CategoryForecast),
		Comparison:          make(map[string]Comparison),
	}

	groups, names := GroupByCategory(records)
	for _, name := range names {
		history := AggregateMonthly(groups[name])

		f := Forecast(userID, history)
		if f.HasPrediction() {
			result.CategoryPredictions[name] = CategoryForecast{
				PredictedAmount:   *f.PredictedAmount,
				PredictedForMonth: *f.PredictedForMonth,
			}
		}
		if c, ok := CompareLatest(history); ok {
			result.Comparison[name] = c
		}
	}
	return result
}
