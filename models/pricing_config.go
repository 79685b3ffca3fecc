package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config keys stored in the config table
const (
	ConfigKeyProfitPercentages = "profit_percentages"
	ConfigKeyDefaultExpenses   = "default_expenses"
)

// PricingConfig is the process-wide pricing policy
type PricingConfig struct {
	ProfitPercentages Amounts   `json:"profit_percentages" yaml:"profit_percentages"`
	DefaultExpenses   Amounts   `json:"default_expenses" yaml:"default_expenses"`
	UpdatedAt         time.Time `json:"updated_at,omitempty" yaml:"-"`
}

// PricingConfigUpdate represents the request body for updating the config.
// Keys that are not present keep their previous value.
// Example: {"profit_percentages": {"premium": 90}, "default_expenses": {"transport": 15}}
type PricingConfigUpdate struct {
	ProfitPercentages *Amounts `json:"profit_percentages,omitempty"`
	DefaultExpenses   *Amounts `json:"default_expenses,omitempty"`
}

// DefaultPricingConfig returns the built-in pricing policy
func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		ProfitPercentages: NewOrderedMap(
			Entry[decimal.Decimal]{Key: GradePremium, Value: decimal.NewFromInt(80)},
			Entry[decimal.Decimal]{Key: GradeRegular, Value: decimal.NewFromInt(50)},
			Entry[decimal.Decimal]{Key: GradeEconomica, Value: decimal.NewFromInt(30)},
			Entry[decimal.Decimal]{Key: GradeRechazo, Value: decimal.Zero},
		),
		DefaultExpenses: NewOrderedMap(
			Entry[decimal.Decimal]{Key: ExpenseTransport, Value: decimal.Zero},
			Entry[decimal.Decimal]{Key: ExpenseCleaning, Value: decimal.Zero},
			Entry[decimal.Decimal]{Key: ExpenseOther, Value: decimal.Zero},
		),
	}
}

// Merge applies an update key by key
func (c PricingConfig) Merge(update PricingConfigUpdate) PricingConfig {
	merged := c
	if update.ProfitPercentages != nil {
		merged.ProfitPercentages = c.ProfitPercentages.Merge(*update.ProfitPercentages)
	}
	if update.DefaultExpenses != nil {
		merged.DefaultExpenses = c.DefaultExpenses.Merge(*update.DefaultExpenses)
	}
	return merged
}

// ProfitPercentage returns the configured percentage for a grade, zero when unconfigured
func (c PricingConfig) ProfitPercentage(grade string) decimal.Decimal {
	if pct, ok := c.ProfitPercentages.Get(grade); ok {
		return pct
	}
	return decimal.Zero
}
