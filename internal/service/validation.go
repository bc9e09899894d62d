package service

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// entry is the caller-supplied text of a ledger write.
type entry struct {
	Username    string `validate:"required"`
	Description string `validate:"max=1024"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateEntry(username, description string) error {
	if err := validate.Struct(entry{Username: username, Description: description}); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}
