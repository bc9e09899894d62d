// Package calculator holds the pure arithmetic of the ledger: turning an
// entered magnitude into a signed amount, and comparing stored balances
// with the transaction log.
package calculator

import (
	"errors"
	"fmt"
	"math"

	"github.com/mmynk/utang/internal/models"
)

var (
	// ErrZeroMagnitude means a transaction was entered with no amount.
	ErrZeroMagnitude = errors.New("amount must not be zero")
	// ErrNegativeMagnitude means the entered amount carried a sign. The
	// kind alone decides the sign.
	ErrNegativeMagnitude = errors.New("amount must not be negative")
	// ErrUnknownKind means the kind is not pay, receive, lend or borrow.
	ErrUnknownKind = errors.New("unknown transaction kind")
	// ErrOverflow means the new balance does not fit in an int64.
	ErrOverflow = errors.New("balance would overflow")
)

// SignedAmount applies the sign rule of kind to magnitude:
//
//	pay, lend        -> +magnitude
//	receive, borrow  -> -magnitude
func SignedAmount(kind models.Kind, magnitude int64) (int64, error) {
	if magnitude < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegativeMagnitude, magnitude)
	}
	if magnitude == 0 {
		return 0, ErrZeroMagnitude
	}

	switch kind {
	case models.KindPay, models.KindLend:
		return magnitude, nil
	case models.KindReceive, models.KindBorrow:
		return -magnitude, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// AddBalance returns balance+amount, or ErrOverflow if that does not fit in
// an int64.
func AddBalance(balance, amount int64) (int64, error) {
	if (amount > 0 && balance > math.MaxInt64-amount) ||
		(amount < 0 && balance < math.MinInt64-amount) {
		return 0, fmt.Errorf("%w: %d%+d", ErrOverflow, balance, amount)
	}
	return balance + amount, nil
}
