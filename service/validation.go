package service

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"pacas-inventario/models"
)

// ValidationError lists every rule an input violates
type ValidationError struct {
	Errors []string `json:"errors"`
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// IsValidationError reports whether err carries a *ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ValidateBundle checks a bundle input and returns a *ValidationError with one
// message per violated rule, or nil when the input is valid
func ValidateBundle(input models.BundleRequest) error {
	var err error

	if strings.TrimSpace(input.Name) == "" {
		err = multierr.Append(err, errors.New("name is required"))
	}
	if !input.TotalCost.IsPositive() {
		err = multierr.Append(err, errors.New("total cost must be greater than 0"))
	}
	if input.TotalPieces <= 0 {
		err = multierr.Append(err, errors.New("total pieces must be greater than 0"))
	}

	for _, e := range input.AdditionalExpenses.Entries() {
		if e.Value.IsNegative() {
			err = multierr.Append(err, fmt.Errorf("expense %s must not be negative", e.Key))
		}
	}
	for _, e := range input.Classification.ByType.Entries() {
		if e.Value < 0 {
			err = multierr.Append(err, fmt.Errorf("pieces of type %s must not be negative", e.Key))
		}
	}
	for _, e := range input.Classification.ByQuality.Entries() {
		if e.Value < 0 {
			err = multierr.Append(err, fmt.Errorf("pieces of quality %s must not be negative", e.Key))
		}
	}

	if sum := models.TotalPieces(input.Classification.ByType); sum != input.TotalPieces {
		err = multierr.Append(err, fmt.Errorf("sum of pieces by type (%d) must equal total pieces (%d)", sum, input.TotalPieces))
	}
	if sum := models.TotalPieces(input.Classification.ByQuality); sum != input.TotalPieces {
		err = multierr.Append(err, fmt.Errorf("sum of pieces by quality (%d) must equal total pieces (%d)", sum, input.TotalPieces))
	}

	return asValidationError(err)
}

// ValidateConfigUpdate rejects negative profit percentages and default expenses
func ValidateConfigUpdate(update models.PricingConfigUpdate) error {
	var err error

	if update.ProfitPercentages != nil {
		for _, e := range update.ProfitPercentages.Entries() {
			if e.Value.IsNegative() {
				err = multierr.Append(err, fmt.Errorf("profit percentage %s must not be negative", e.Key))
			}
		}
	}
	if update.DefaultExpenses != nil {
		for _, e := range update.DefaultExpenses.Entries() {
			if e.Value.IsNegative() {
				err = multierr.Append(err, fmt.Errorf("default expense %s must not be negative", e.Key))
			}
		}
	}

	return asValidationError(err)
}

// asValidationError flattens errors combined with multierr into a *ValidationError
func asValidationError(err error) error {
	if err == nil {
		return nil
	}

	violations := multierr.Errors(err)
	messages := make([]string, 0, len(violations))
	for _, v := range violations {
		messages = append(messages, v.Error())
	}
	return &ValidationError{Errors: messages}
}
