package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/kroner/internal/common"
	"github.com/Veraticus/kroner/internal/model"
)

// Validation errors.
var (
	ErrNilContext  = errors.New("context cannot be nil")
	ErrEmptyString = errors.New("string parameter cannot be empty")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validatePeriod(year, month int) error {
	if year <= 0 {
		return fmt.Errorf("%w: year %d", common.ErrInvalidInput, year)
	}
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month %d", common.ErrInvalidInput, month)
	}
	return nil
}

func validateBudgetInput(input model.BudgetInput) error {
	if input.CategoryID <= 0 {
		return fmt.Errorf("%w: category id %d", common.ErrInvalidInput, input.CategoryID)
	}
	return validatePeriod(input.Year, input.Month)
}

func validateNewExpense(input model.NewExpense) error {
	if strings.TrimSpace(input.Item) == "" {
		return fmt.Errorf("%w: item is required", common.ErrInvalidInput)
	}
	if input.CategoryID <= 0 {
		return fmt.Errorf("%w: category is required", common.ErrInvalidInput)
	}
	return nil
}
