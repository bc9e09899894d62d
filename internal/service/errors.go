package service

import (
	"errors"
	"fmt"

	"github.com/mmynk/utang/internal/storage"
)

var (
	// ErrStorageUnavailable means the ledger file could not be created,
	// opened or locked. Callers should abort the operation.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrUserNotFound means the named counterparty does not exist. Callers
	// may offer to create it.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUser means a counterparty with that name already exists.
	ErrDuplicateUser = errors.New("user already exists")
	// ErrInvalidAmount covers zero, negative or overflowing amounts and
	// unknown transaction kinds.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidInput covers malformed usernames and descriptions.
	ErrInvalidInput = errors.New("invalid input")
	// ErrMalformedTimestamp means a stored date could not be parsed.
	ErrMalformedTimestamp = errors.New("malformed timestamp")
	// ErrConstraintViolation is a store constraint failure with no closer
	// domain meaning.
	ErrConstraintViolation = errors.New("constraint violation")
)

var domainErrors = []error{
	ErrStorageUnavailable,
	ErrUserNotFound,
	ErrDuplicateUser,
	ErrInvalidAmount,
	ErrInvalidInput,
	ErrMalformedTimestamp,
	ErrConstraintViolation,
}

// translate maps a storage error to the closest domain error, keeping the
// original in the chain. Errors that already carry a domain error pass
// through unchanged.
func translate(err error) error {
	if err == nil {
		return nil
	}
	for _, d := range domainErrors {
		if errors.Is(err, d) {
			return err
		}
	}

	switch {
	case errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrUserNotFound, err)
	case errors.Is(err, storage.ErrDuplicate):
		return fmt.Errorf("%w: %w", ErrDuplicateUser, err)
	case errors.Is(err, storage.ErrMalformedTimestamp):
		return fmt.Errorf("%w: %w", ErrMalformedTimestamp, err)
	case errors.Is(err, storage.ErrConstraint):
		return fmt.Errorf("%w: %w", ErrConstraintViolation, err)
	case errors.Is(err, storage.ErrUnavailable):
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return err
}
