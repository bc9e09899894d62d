package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mmynk/utang/internal/models"
)

func TestMetrics(t *testing.T) {
	m := New()

	m.TransactionWritten(models.KindPay, 1000)
	m.TransactionWritten(models.KindPay, 500)
	m.TransactionWritten(models.KindBorrow, 20)
	m.UserCreated()
	m.Observe("apply", time.Now(), nil)
	m.Observe("apply", time.Now(), errors.New("boom"))

	if got := testutil.ToFloat64(m.transactions.WithLabelValues("pay")); got != 2 {
		t.Errorf("pay transactions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.amounts.WithLabelValues("pay")); got != 1500 {
		t.Errorf("pay magnitude = %v, want 1500", got)
	}
	if got := testutil.ToFloat64(m.usersCreated); got != 1 {
		t.Errorf("users created = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.failures.WithLabelValues("apply")); got != 1 {
		t.Errorf("apply failures = %v, want 1", got)
	}
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := New()
	m.TransactionWritten(models.KindLend, 42)

	path := filepath.Join(t.TempDir(), "utang.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read metrics file: %v", err)
	}
	if !strings.Contains(string(data), `utang_transactions_total{kind="lend"} 1`) {
		t.Errorf("metrics file missing lend counter:\n%s", data)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.TransactionWritten(models.KindPay, 1)
	m.UserCreated()
	m.Observe("apply", time.Now(), nil)
	if err := m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Errorf("nil WriteTextfile returned %v", err)
	}
}
