package calculator

import (
	"sort"

	"github.com/mmynk/utang/internal/models"
)

// Drift describes a user whose stored balance disagrees with the sum of
// their transactions.
type Drift struct {
	UserID   int64
	Username string
	Stored   int64 // Balance column
	Computed int64 // Sum of transaction amounts
}

// Difference is how far the stored balance is off from the log.
func (d Drift) Difference() int64 { return d.Stored - d.Computed }

// Reconcile compares every user's stored balance with sums, the per-user
// totals of the transaction log. A user missing from sums has a computed
// balance of zero. Results are ordered by username.
func Reconcile(users []*models.User, sums map[int64]int64) []Drift {
	var drifts []Drift
	for _, u := range users {
		computed := sums[u.ID]
		if computed != u.Balance {
			drifts = append(drifts, Drift{
				UserID:   u.ID,
				Username: u.Username,
				Stored:   u.Balance,
				Computed: computed,
			})
		}
	}

	sort.Slice(drifts, func(i, j int) bool {
		return drifts[i].Username < drifts[j].Username
	})

	return drifts
}

// Totals summarizes balances across all counterparties.
type Totals struct {
	Positive int64 // Sum of positive balances (paid or lent out)
	Negative int64 // Sum of negative balances, as a negative number
	Net      int64 // Positive + Negative
	Settled  int   // Users with a zero balance
}

// Summarize aggregates the balances of users.
func Summarize(users []*models.User) Totals {
	var t Totals
	for _, u := range users {
		switch {
		case u.Balance > 0:
			t.Positive += u.Balance
		case u.Balance < 0:
			t.Negative += u.Balance
		default:
			t.Settled++
		}
	}
	t.Net = t.Positive + t.Negative
	return t
}
