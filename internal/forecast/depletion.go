package forecast

import (
	"sort"
	"time"

	"restobackend/internal/domain"
)

const (
	DefaultLookbackDays = 30

	criticalDays = 3.0
	warningDays  = 7.0
)

type StockStatus string

const (
	StatusCritical StockStatus = "CRITICAL"
	StatusWarning  StockStatus = "WARNING"
	StatusSafe     StockStatus = "SAFE"
	StatusUnknown  StockStatus = "UNKNOWN"
)

type Prediction struct {
	IngredientID        int64       `json:"ingredient_id"`
	Name                string      `json:"name"`
	Unit                string      `json:"unit"`
	CurrentStock        float64     `json:"current_stock"`
	MinStock            float64     `json:"min_stock"`
	TotalConsumed       float64     `json:"total_consumed"`
	AvgDailyConsumption float64     `json:"avg_daily_consumption"`
	DaysRemaining       Coverage    `json:"days_remaining"`
	Status              StockStatus `json:"status"`
	ProjectedDepletion  *time.Time  `json:"projected_depletion,omitempty"`
}

type Forecast struct {
	GeneratedAt      time.Time    `json:"generated_at"`
	WindowDays       int          `json:"window_days"`
	DaysActive       int          `json:"days_active"`
	CompletedSales   int          `json:"completed_sales"`
	InsufficientData bool         `json:"insufficient_data"`
	Predictions      []Prediction `json:"predictions"`
}

type PredictInput struct {
	Now         time.Time
	WindowDays  int
	Sales       []domain.Sale
	Products    map[int64]domain.Product
	Ingredients []domain.Ingredient
}

// Predict projects stock coverage for every ingredient from the completed
// sales of the lookback window. With no completed sales the forecast is
// flagged as insufficient and carries no predictions.
func Predict(in PredictInput) Forecast {
	windowDays := in.WindowDays
	if windowDays <= 0 {
		windowDays = DefaultLookbackDays
	}
	result := Forecast{
		GeneratedAt: in.Now,
		WindowDays:  windowDays,
		Predictions: []Prediction{},
	}

	earliest, ok := EarliestCompleted(in.Sales)
	if !ok {
		result.InsufficientData = true
		return result
	}
	result.CompletedSales = CountCompleted(in.Sales)
	result.DaysActive = DaysActive(earliest, in.Now)

	consumed := AggregateConsumption(in.Sales, in.Products)
	predictions := make([]Prediction, 0, len(in.Ingredients))
	for _, ing := range in.Ingredients {
		predictions = append(predictions, PredictIngredient(in.Now, ing, consumed[ing.ID], result.DaysActive))
	}
	SortPredictions(predictions)
	result.Predictions = predictions
	return result
}

// PredictIngredient computes the daily rate, coverage and status of a
// single ingredient.
func PredictIngredient(now time.Time, ing domain.Ingredient, totalConsumed float64, daysActive int) Prediction {
	if daysActive < 1 {
		daysActive = 1
	}
	avg := totalConsumed / float64(daysActive)
	coverage := ProjectCoverage(ing.Stock, avg)

	prediction := Prediction{
		IngredientID:        ing.ID,
		Name:                ing.Name,
		Unit:                ing.Unit,
		CurrentStock:        ing.Stock,
		MinStock:            ing.MinStock,
		TotalConsumed:       totalConsumed,
		AvgDailyConsumption: avg,
		DaysRemaining:       coverage,
		Status:              Classify(coverage),
	}
	if avg > 0 {
		depletion := now.Add(time.Duration(coverage.Days * float64(24*time.Hour)))
		prediction.ProjectedDepletion = &depletion
	}
	return prediction
}

// ProjectCoverage divides stock by the daily rate. A zero rate yields
// infinite coverage, or insufficient coverage when there is no stock either.
func ProjectCoverage(stock, avgDaily float64) Coverage {
	if avgDaily <= 0 {
		if stock <= 0 {
			return Insufficient()
		}
		return Infinite()
	}
	return Finite(stock / avgDaily)
}

func Classify(c Coverage) StockStatus {
	switch c.Kind {
	case CoverageInsufficient:
		return StatusUnknown
	case CoverageInfinite:
		return StatusSafe
	}
	switch {
	case c.Days < criticalDays:
		return StatusCritical
	case c.Days < warningDays:
		return StatusWarning
	}
	return StatusSafe
}

// SortPredictions orders the most urgent ingredients first.
func SortPredictions(predictions []Prediction) {
	sort.SliceStable(predictions, func(i, j int) bool {
		a, b := predictions[i].DaysRemaining, predictions[j].DaysRemaining
		if a.Less(b) {
			return true
		}
		if b.Less(a) {
			return false
		}
		return predictions[i].Name < predictions[j].Name
	})
}
