package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"pacas-inventario/models"
)

// ErrInvalidInput reports a bundle that breaks the engine's input contract
var ErrInvalidInput = errors.New("invalid input")

var hundred = decimal.NewFromInt(100)

// CheckInput reports the first field of a bundle that the engine cannot price.
// ComputeMetrics does not call it; it exists for callers holding untrusted records.
func CheckInput(bundle models.Bundle) error {
	if bundle.TotalCost.IsNegative() {
		return fmt.Errorf("%w: total_cost must not be negative", ErrInvalidInput)
	}
	if bundle.TotalPieces < 0 {
		return fmt.Errorf("%w: total_pieces must not be negative", ErrInvalidInput)
	}
	for _, e := range bundle.AdditionalExpenses.Entries() {
		if e.Value.IsNegative() {
			return fmt.Errorf("%w: additional_expenses.%s must not be negative", ErrInvalidInput, e.Key)
		}
	}
	for _, e := range bundle.Classification.ByQuality.Entries() {
		if e.Value < 0 {
			return fmt.Errorf("%w: classification.by_quality.%s must not be negative", ErrInvalidInput, e.Key)
		}
	}
	return nil
}

// ComputeMetrics calculates costs, suggested prices and profits of a bundle
// using the profit percentages of cfg. Grades with no pieces are left out of the
// breakdown, and every division by zero yields zero.
func ComputeMetrics(bundle models.Bundle, cfg models.PricingConfig) models.BundleMetrics {
	totalAdditionalExpenses := models.TotalAmount(bundle.AdditionalExpenses)
	totalCostWithExpenses := bundle.TotalCost.Add(totalAdditionalExpenses)

	costPerPiece := decimal.Zero
	if bundle.TotalPieces > 0 {
		costPerPiece = totalCostWithExpenses.Div(decimal.NewFromInt(int64(bundle.TotalPieces)))
	}

	breakdown := []models.QualityBreakdown{}
	totalMinimumRevenue := decimal.Zero
	totalIdealRevenue := decimal.Zero

	for _, e := range bundle.Classification.ByQuality.Entries() {
		if e.Value <= 0 {
			continue
		}
		pieces := decimal.NewFromInt(int64(e.Value))
		profitPercentage := cfg.ProfitPercentage(e.Key)

		minimumPrice := costPerPiece
		idealPrice := costPerPiece.Mul(decimal.NewFromInt(1).Add(profitPercentage.Div(hundred)))
		minimumRevenue := minimumPrice.Mul(pieces)
		idealRevenue := idealPrice.Mul(pieces)

		totalMinimumRevenue = totalMinimumRevenue.Add(minimumRevenue)
		totalIdealRevenue = totalIdealRevenue.Add(idealRevenue)

		breakdown = append(breakdown, models.QualityBreakdown{
			Quality:          e.Key,
			Pieces:           e.Value,
			CostPerPiece:     costPerPiece,
			MinimumPrice:     minimumPrice,
			IdealPrice:       idealPrice,
			MinimumRevenue:   minimumRevenue,
			IdealRevenue:     idealRevenue,
			ProfitPercentage: profitPercentage,
		})
	}

	minimumProfit := totalMinimumRevenue.Sub(totalCostWithExpenses)
	idealProfit := totalIdealRevenue.Sub(totalCostWithExpenses)

	return models.BundleMetrics{
		TotalCost:               bundle.TotalCost,
		TotalAdditionalExpenses: totalAdditionalExpenses,
		TotalCostWithExpenses:   totalCostWithExpenses,
		CostPerPiece:            costPerPiece,
		QualityBreakdown:        breakdown,
		TotalMinimumRevenue:     totalMinimumRevenue,
		TotalIdealRevenue:       totalIdealRevenue,
		MinimumProfit:           minimumProfit,
		IdealProfit:             idealProfit,
		TotalEstimatedProfit:    idealProfit,
		MinimumProfitMargin:     margin(minimumProfit, totalCostWithExpenses),
		IdealProfitMargin:       margin(idealProfit, totalCostWithExpenses),
	}
}

// ComputePortfolio sums investment and estimated profit over all bundles
func ComputePortfolio(bundles []models.Bundle, cfg models.PricingConfig) models.PortfolioSummary {
	summary := models.PortfolioSummary{
		TotalBundles:         len(bundles),
		TotalInvestment:      decimal.Zero,
		TotalEstimatedProfit: decimal.Zero,
	}
	for _, bundle := range bundles {
		metrics := ComputeMetrics(bundle, cfg)
		summary.TotalInvestment = summary.TotalInvestment.Add(bundle.TotalCost)
		summary.TotalEstimatedProfit = summary.TotalEstimatedProfit.Add(metrics.TotalEstimatedProfit)
	}
	summary.EstimatedProfitMargin = margin(summary.TotalEstimatedProfit, summary.TotalInvestment)
	return summary
}

// margin returns profit as a percentage of base, or zero when base is not positive
func margin(profit, base decimal.Decimal) decimal.Decimal {
	if !base.IsPositive() {
		return decimal.Zero
	}
	return profit.Div(base).Mul(hundred)
}
