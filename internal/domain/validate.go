package domain

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator instance.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the record's field constraints.
func (r Record) Validate() error {
	if err := Validator().Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCard, err)
	}
	return nil
}
