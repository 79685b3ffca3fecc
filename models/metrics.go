package models

import "github.com/shopspring/decimal"

// QualityBreakdown holds the prices and revenues of one quality grade of a bundle
type QualityBreakdown struct {
	Quality          string          `json:"quality"`
	Pieces           int             `json:"pieces"`
	CostPerPiece     decimal.Decimal `json:"cost_per_piece"`
	MinimumPrice     decimal.Decimal `json:"minimum_price"`      // Break-even price
	IdealPrice       decimal.Decimal `json:"ideal_price"`        // Price including the grade's profit percentage
	MinimumRevenue   decimal.Decimal `json:"minimum_revenue"`
	IdealRevenue     decimal.Decimal `json:"ideal_revenue"`
	ProfitPercentage decimal.Decimal `json:"profit_percentage"`
}

// BundleMetrics represents the complete cost and price calculation of a bundle
type BundleMetrics struct {
	TotalCost               decimal.Decimal    `json:"total_cost"`
	TotalAdditionalExpenses decimal.Decimal    `json:"total_additional_expenses"`
	TotalCostWithExpenses   decimal.Decimal    `json:"total_cost_with_expenses"`
	CostPerPiece            decimal.Decimal    `json:"cost_per_piece"`
	QualityBreakdown        []QualityBreakdown `json:"quality_breakdown"`
	TotalMinimumRevenue     decimal.Decimal    `json:"total_minimum_revenue"`
	TotalIdealRevenue       decimal.Decimal    `json:"total_ideal_revenue"`
	MinimumProfit           decimal.Decimal    `json:"minimum_profit"`
	IdealProfit             decimal.Decimal    `json:"ideal_profit"`
	TotalEstimatedProfit    decimal.Decimal    `json:"total_estimated_profit"` // Same as IdealProfit
	MinimumProfitMargin     decimal.Decimal    `json:"minimum_profit_margin"`
	IdealProfitMargin       decimal.Decimal    `json:"ideal_profit_margin"`
}

// PortfolioSummary aggregates investment and profit estimates over all bundles
type PortfolioSummary struct {
	TotalBundles          int             `json:"total_bundles"`
	TotalInvestment       decimal.Decimal `json:"total_investment"`
	TotalEstimatedProfit  decimal.Decimal `json:"total_estimated_profit"`
	EstimatedProfitMargin decimal.Decimal `json:"estimated_profit_margin"`
}

// BundleWithMetrics pairs a bundle with its computed metrics
type BundleWithMetrics struct {
	Bundle  Bundle        `json:"bundle"`
	Metrics BundleMetrics `json:"metrics"`
}

// BundleDetail is the response for a single bundle, including formatted display values
type BundleDetail struct {
	Bundle  Bundle            `json:"bundle"`
	Metrics BundleMetrics     `json:"metrics"`
	Display map[string]string `json:"display"`
}

// Dashboard is the response for the main dashboard
// Example response:
// {
//   "bundles": [{"bundle": {...}, "metrics": {...}}],
//   "summary": {"total_bundles": 1, "total_investment": "100", "total_estimated_profit": "71.5", "estimated_profit_margin": "71.5"}
// }
type Dashboard struct {
	Bundles []BundleWithMetrics `json:"bundles"`
	Summary PortfolioSummary    `json:"summary"`
	Display map[string]string   `json:"display"`
}

// PriceSheet is a rendered price sheet ready to be served as a file
type PriceSheet struct {
	FileName string
	Content  []byte
}
