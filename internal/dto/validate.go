package dto

import (
	"fmt"
	"sync"

	"github.com/SscSPs/crypto_bookkeeper/internal/apperrors"
	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validate runs the same `binding` tag rules gin applies to request bodies, for callers that
// do not come through gin (CLI, CSV import).
func Validate(req any) error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.SetTagName("binding")
	})
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	return nil
}
