package models

import (
	"fmt"
	"time"
)

// Kind is the action a transaction records. It selects the sign applied to
// the magnitude entered by the caller.
type Kind string

const (
	KindPay     Kind = "pay"
	KindReceive Kind = "receive"
	KindLend    Kind = "lend"
	KindBorrow  Kind = "borrow"
)

// Kinds lists every valid kind in display order.
var Kinds = []Kind{KindPay, KindReceive, KindLend, KindBorrow}

// ParseKind returns the Kind named by s. Matching is exact.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown transaction kind %q", s)
	}
	return k, nil
}

// Valid reports whether k is one of the four known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindPay, KindReceive, KindLend, KindBorrow:
		return true
	}
	return false
}

func (k Kind) String() string { return string(k) }

// Transaction is an immutable ledger entry tied to exactly one user.
type Transaction struct {
	// ID is the surrogate key assigned by the store.
	ID int64

	// UserID references the counterparty.
	UserID int64

	// Username is the counterparty's name. Populated on reads only.
	Username string

	Kind Kind

	// Amount is the signed amount in the smallest currency unit. Never zero.
	Amount int64

	// Date is the local time of the entry, truncated to the second.
	Date time.Time

	// Description is optional free text.
	Description string
}
