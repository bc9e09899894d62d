package calculator

import (
	"testing"

	"github.com/mmynk/utang/internal/models"
)

func TestReconcile(t *testing.T) {
	users := []*models.User{
		{ID: 1, Username: "zoe", Balance: 100},
		{ID: 2, Username: "alice", Balance: -50},
		{ID: 3, Username: "bob", Balance: 0},
		{ID: 4, Username: "carol", Balance: 10},
	}
	sums := map[int64]int64{
		1: 100, // in sync
		2: -40, // drifted
		// 3 has no transactions and a zero balance: in sync
		// 4 has no transactions but a non-zero balance: drifted
	}

	drifts := Reconcile(users, sums)
	if len(drifts) != 2 {
		t.Fatalf("expected 2 drifts, got %d: %+v", len(drifts), drifts)
	}

	if drifts[0].Username != "alice" || drifts[0].Stored != -50 || drifts[0].Computed != -40 {
		t.Errorf("unexpected first drift: %+v", drifts[0])
	}
	if drifts[0].Difference() != -10 {
		t.Errorf("alice difference = %d, want -10", drifts[0].Difference())
	}
	if drifts[1].Username != "carol" || drifts[1].Computed != 0 {
		t.Errorf("unexpected second drift: %+v", drifts[1])
	}
}

func TestReconcile_InSync(t *testing.T) {
	users := []*models.User{{ID: 1, Username: "alice", Balance: 7}}
	if drifts := Reconcile(users, map[int64]int64{1: 7}); len(drifts) != 0 {
		t.Errorf("expected no drift, got %+v", drifts)
	}
}

func TestSummarize(t *testing.T) {
	users := []*models.User{
		{Username: "alice", Balance: 1000},
		{Username: "bob", Balance: -300},
		{Username: "carol", Balance: 0},
		{Username: "dave", Balance: 250},
	}

	got := Summarize(users)
	want := Totals{Positive: 1250, Negative: -300, Net: 950, Settled: 1}
	if got != want {
		t.Errorf("Summarize() = %+v, want %+v", got, want)
	}
}
