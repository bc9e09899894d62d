package models

// User represents one counterparty in the ledger.
type User struct {
	// ID is the surrogate key assigned by the store.
	ID int64

	// Username is the unique, case-sensitive name of the counterparty.
	Username string

	// Balance is the running signed sum of the user's transactions,
	// in the smallest currency unit.
	// Positive: recorded as paid or lent to them.
	// Negative: recorded as received or borrowed from them.
	Balance int64
}

// Statement is a user's current balance with their most recent transactions,
// newest first.
type Statement struct {
	User         *User
	Transactions []*Transaction
}
