package model

import (
	"strconv"
	"time"
)

// Category identifies the kind of eco-action. The set is closed.
type Category string

const (
	// CategoryEnergySaving is energy saved, quantity in kWh.
	CategoryEnergySaving Category = "energy_saving"
	// CategoryRecycling is material recycled, quantity in kg.
	CategoryRecycling Category = "recycling"
	// CategoryUpcycling is material upcycled, quantity in kg.
	CategoryUpcycling Category = "upcycling"
	// CategorySustainableCommute is distance commuted sustainably, quantity in km.
	CategorySustainableCommute Category = "sustainable_commute"
)

// Valid reports whether the category is one of the four known values.
func (c Category) Valid() bool {
	switch c {
	case CategoryEnergySaving, CategoryRecycling, CategoryUpcycling, CategorySustainableCommute:
		return true
	}

	return false
}

// Action represents a single logged eco-friendly activity. The impact
// fields are computed once at creation time and never recomputed.
type Action struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Category      Category  `json:"category"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Quantity      float64   `json:"quantity"`
	Unit          string    `json:"unit"`
	CO2Reduced    float64   `json:"co2Reduced"`
	WaterSaved    float64   `json:"waterSaved"`
	WasteDiverted float64   `json:"wasteDiverted"`
	PointsEarned  int       `json:"pointsEarned"`
	Verified      bool      `json:"verified"`
	ProofURL      string    `json:"proofUrl"`
	CreatedAt     time.Time `json:"createdAt"`
}

// LogActionParams represents parameters for logging a new action.
// Quantity is the raw client value; an empty or unparseable quantity
// is treated as 1 when the impact is computed.
type LogActionParams struct {
	Category    Category `json:"category"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Quantity    string   `json:"quantity"`
	Unit        string   `json:"unit"`
	ProofURL    string   `json:"proofUrl"`
}

// Validate validates the log action parameters.
func (p *LogActionParams) Validate() error {
	if !p.Category.Valid() {
		return NewValidationError("category", "category must be one of energy_saving, recycling, upcycling, sustainable_commute")
	}

	if p.Title == "" {
		return NewValidationError("title", "title is required")
	}

	if p.Quantity != "" {
		if qty, err := strconv.ParseFloat(p.Quantity, 64); err == nil && qty < 0 {
			return NewValidationError("quantity", "quantity must not be negative")
		}
	}

	return nil
}

// Metrics is the aggregated impact of a user's actions. EcoPoints is
// always the all-time total even when the environmental sums are
// filtered to a time window.
type Metrics struct {
	CO2Reduced    float64 `json:"co2Reduced"`
	WaterSaved    float64 `json:"waterSaved"`
	WasteDiverted float64 `json:"wasteDiverted"`
	EcoPoints     int     `json:"ecoPoints"`
	ActionCount   int     `json:"actionCount"`
}

// CorporateMetrics extends Metrics with the employee count. Employee
// rollup is not implemented; ActiveEmployees is always 1.
type CorporateMetrics struct {
	Metrics

	ActiveEmployees int `json:"activeEmployees"`
}

// LeaderboardRow is one user's lifetime CO2 total as read from the store,
// before ranks and display names are assigned.
type LeaderboardRow struct {
	UserID     string
	Email      string
	FirstName  string
	LastName   string
	EcoPoints  int
	CO2Reduced float64
}

// LeaderboardEntry is one ranked row of the leaderboard.
type LeaderboardEntry struct {
	Rank       int     `json:"rank"`
	UserID     string  `json:"userId"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	CO2Reduced float64 `json:"co2Reduced"`
	EcoPoints  int     `json:"ecoPoints"`
}

// ImpactTotals holds summed environmental values over a set of actions.
type ImpactTotals struct {
	CO2Reduced    float64
	WaterSaved    float64
	WasteDiverted float64
	ActionCount   int
}
