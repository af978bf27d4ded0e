package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/quotana/quotana/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrEmptySlice   = errors.New("slice cannot be empty")
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

// validateClassifiedSuppliers validates a cohort before persistence.
func validateClassifiedSuppliers(suppliers []model.ClassifiedSupplier) error {
	if suppliers == nil {
		return fmt.Errorf("%w: suppliers", ErrNilParameter)
	}
	if len(suppliers) == 0 {
		return fmt.Errorf("%w: suppliers", ErrEmptySlice)
	}
	for i := range suppliers {
		if err := suppliers[i].Validate(); err != nil {
			return fmt.Errorf("classified supplier at index %d: %w", i, err)
		}
	}
	return nil
}

// validateBudget validates a budget before persistence.
func validateBudget(budget *model.Budget) error {
	if budget == nil {
		return fmt.Errorf("%w: budget", ErrNilParameter)
	}
	return budget.Validate()
}
