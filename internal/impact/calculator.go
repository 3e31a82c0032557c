// Package impact computes the environmental impact of a logged action.
package impact

import (
	"math"
	"strconv"

	"github.com/ecolog-app/ecolog/internal/model"
)

// Metrics holds the derived impact values for a single action.
// CO2Reduced is kg, WaterSaved is liters, WasteDiverted is kg.
type Metrics struct {
	CO2Reduced    float64
	WaterSaved    float64
	WasteDiverted float64
	PointsEarned  int
}

// Calculate derives the impact metrics for an action from its category
// and raw quantity. An empty or unparseable quantity counts as 1.
// An unknown category yields the zero row rather than an error.
//
// The per-category formulas are fixed:
//
//	energy_saving       1 kWh = 0.5 kg CO2, 10 L water, 5 points
//	recycling           1 kg  = 2 kg CO2, 50 L water, 1 kg waste, 10 points
//	upcycling           1 kg  = 3 kg CO2, 75 L water, 1 kg waste, 15 points
//	sustainable_commute 1 km  = 0.15 kg CO2, 2 L water, 3 points
func Calculate(category model.Category, quantity string) Metrics {
	qty := ParseQuantity(quantity)

	switch category {
	case model.CategoryEnergySaving:
		return Metrics{
			CO2Reduced:    Round2(qty * 0.5),
			WaterSaved:    Round2(qty * 10),
			WasteDiverted: 0,
			PointsEarned:  int(math.Round(qty * 5)),
		}
	case model.CategoryRecycling:
		return Metrics{
			CO2Reduced:    Round2(qty * 2),
			WaterSaved:    Round2(qty * 50),
			WasteDiverted: Round2(qty),
			PointsEarned:  int(math.Round(qty * 10)),
		}
	case model.CategoryUpcycling:
		return Metrics{
			CO2Reduced:    Round2(qty * 3),
			WaterSaved:    Round2(qty * 75),
			WasteDiverted: Round2(qty),
			PointsEarned:  int(math.Round(qty * 15)),
		}
	case model.CategorySustainableCommute:
		return Metrics{
			CO2Reduced:    Round2(qty * 0.15),
			WaterSaved:    Round2(qty * 2),
			WasteDiverted: 0,
			PointsEarned:  int(math.Round(qty * 3)),
		}
	default:
		return Metrics{}
	}
}

// ParseQuantity parses a raw quantity string, defaulting to 1 when the
// value is empty or not a number.
func ParseQuantity(quantity string) float64 {
	if quantity == "" {
		return 1
	}

	qty, err := strconv.ParseFloat(quantity, 64)
	if err != nil {
		return 1
	}

	return qty
}

// Round2 rounds a value to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
