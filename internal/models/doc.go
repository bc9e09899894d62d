// Package models defines the core domain models for utang.
//
// # Models
//
//   - User: a counterparty with a running signed balance
//   - Transaction: an immutable, signed, timestamped entry against one user
//   - Kind: the closed set of actions (pay, receive, lend, borrow)
//   - Statement: a user's balance together with their recent transactions
//
// Amounts are always integers in the smallest unit of the configured
// currency. Converting to and from major units is done at the edges.
//
// # Invariants
//
//  1. A user's balance equals the sum of the amounts of their transactions.
//  2. Usernames are unique and case-sensitive.
//  3. Transactions are never updated or deleted once written.
package models
