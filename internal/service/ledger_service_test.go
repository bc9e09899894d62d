package service

import (
	"context"
	"math"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/utang/internal/metrics"
	"github.com/mmynk/utang/internal/models"
	"github.com/mmynk/utang/internal/storage/sqlite"
)

// setupTestServices opens a fresh ledger file and returns both services
// sharing one store, plus the file path.
func setupTestServices(t *testing.T) (*LedgerService, *QueryService, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "utang.db")
	store, err := sqlite.New(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	m := metrics.New()
	return NewLedgerService(store, m), NewQueryService(store, m, 0), dbPath
}

// assertConsistent checks that every stored balance equals the sum of the
// user's transactions.
func assertConsistent(t *testing.T, queries *QueryService) {
	t.Helper()

	drifts, err := queries.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Empty(t, drifts, "balances drifted from the transaction log")
}

func TestApplyTransaction_Pay(t *testing.T) {
	ledger, queries, _ := setupTestServices(t)
	ctx := context.Background()

	_, err := ledger.CreateUser(ctx, "alice", 0, models.KindPay, "")
	require.NoError(t, err)

	res, err := ledger.ApplyTransaction(ctx, "alice", 1000, models.KindPay, "")
	require.NoError(t, err)

	assert.Equal(t, int64(1000), res.User.Balance)
	assert.Equal(t, int64(1000), res.Transaction.Amount)
	assert.Equal(t, models.KindPay, res.Transaction.Kind)

	stmt, err := queries.Check(ctx, "alice", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), stmt.User.Balance)
	require.Len(t, stmt.Transactions, 1)
	assert.Equal(t, res.Transaction.ID, stmt.Transactions[0].ID)
	assert.Equal(t, int64(1000), stmt.Transactions[0].Amount)

	assertConsistent(t, queries)
}

func TestApplyTransaction_Borrow(t *testing.T) {
	ledger, queries, _ := setupTestServices(t)
	ctx := context.Background()

	_, err := ledger.CreateUser(ctx, "alice", 0, models.KindPay, "")
	require.NoError(t, err)

	res, err := ledger.ApplyTransaction(ctx, "alice", 500, models.KindBorrow, "")
	require.NoError(t, err)

	assert.Equal(t, int64(-500), res.User.Balance)
	assert.Equal(t, int64(-500), res.Transaction.Amount)
	assert.Equal(t, models.KindBorrow, res.Transaction.Kind)

	assertConsistent(t, queries)
}

func TestApplyTransaction_SignTable(t *testing.T) {
	ledger, queries, _ := setupTestServices(t)
	ctx := context.Background()

	_, err := ledger.CreateUser(ctx, "alice", 0, models.KindPay, "")
	require.NoError(t, err)

	steps := []struct {
		kind        models.Kind
		magnitude   int64
		wantBalance int64
	}{
		{models.KindPay, 1000, 1000},
		{models.KindReceive, 300, 700},
		{models.KindLend, 50, 750},
		{models.KindBorrow, 2000, -1250},
	}

	for _, step := range steps {
		res, err := ledger.ApplyTransaction(ctx, "alice", step.magnitude, step.kind, "")
		require.NoError(t, err, "kind %s", step.kind)
		assert.Equal(t, step.wantBalance, res.User.Balance, "after %s %d", step.kind, step.magnitude)
		assertConsistent(t, queries)
	}
}

func TestApplyTransaction_Errors(t *testing.T) {
	ledger, queries, _ := setupTestServices(t)
	ctx := context.Background()

	_, err := ledger.CreateUser(ctx, "alice", 100, models.KindPay, "")
	require.NoError(t, err)

	tests := []struct {
		name      string
		username  string
		magnitude int64
		kind      models.Kind
		wantErr   error
	}{
		{"unknown user", "nobody", 10, models.KindPay, ErrUserNotFound},
		{"zero magnitude", "alice", 0, models.KindPay, ErrInvalidAmount},
		{"negative magnitude", "alice", -10, models.KindPay, ErrInvalidAmount},
		{"unknown kind", "alice", 10, models.Kind("gift"), ErrInvalidAmount},
		{"empty username", "", 10, models.KindPay, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ledger.ApplyTransaction(ctx, tt.username, tt.magnitude, tt.kind, "")
			assert.ErrorIs(t, err, tt.wantErr)

			stmt, err := queries.Check(ctx, "alice", 10)
			require.NoError(t, err)
			assert.Equal(t, int64(100), stmt.User.Balance)
			assert.Len(t, stmt.Transactions, 1)
		})
	}
}

func TestApplyTransaction_Overflow(t *testing.T) {
	ledger, queries, _ := setupTestServices(t)
	ctx := context.Background()

	_, err := ledger.CreateUser(ctx, "alice", math.MaxInt64, models.KindPay, "")
	require.NoError(t, err)

	_, err = ledger.ApplyTransaction(ctx, "alice", 1, models.KindLend, "")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	stmt, err := queries.Check(ctx, "alice", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), stmt.User.Balance)
	assertConsistent(t, queries)
}

func TestCreateUser(t *testing.T) {
	ledger, queries, _ := setupTestServices(t)
	ctx := context.Background()

	t.Run("zero magnitude creates no transaction", func(t *testing.T) {
		res, err := ledger.CreateUser(ctx, "bob", 0, models.KindPay, "")
		require.NoError(t, err)
		assert.Nil(t, res.Transaction)
		assert.Equal(t, int64(0), res.User.Balance)

		stmt, err := queries.Check(ctx, "bob", 0)
		require.NoError(t, err)
		assert.Equal(t, int64(0), stmt.User.Balance)
		assert.NotNil(t, stmt.Transactions)
		assert.Empty(t, stmt.Transactions)
	})

	t.Run("seeded creation writes one transaction", func(t *testing.T) {
		res, err := ledger.CreateUser(ctx, "carol", 200, models.KindLend, "seed")
		require.NoError(t, err)
		require.NotNil(t, res.Transaction)
		assert.Equal(t, int64(200), res.User.Balance)

		stmt, err := queries.Check(ctx, "carol", 0)
		require.NoError(t, err)
		assert.Equal(t, int64(200), stmt.User.Balance)
		require.Len(t, stmt.Transactions, 1)
		assert.Equal(t, int64(200), stmt.Transactions[0].Amount)
		assert.Equal(t, models.KindLend, stmt.Transactions[0].Kind)
		assert.Equal(t, "seed", stmt.Transactions[0].Description)
	})

	t.Run("seeded creation with a negative kind", func(t *testing.T) {
		res, err := ledger.CreateUser(ctx, "dave", 300, models.KindReceive, "")
		require.NoError(t, err)
		assert.Equal(t, int64(-300), res.User.Balance)
	})

	t.Run("duplicate username is rejected without mutation", func(t *testing.T) {
		_, err := ledger.CreateUser(ctx, "carol", 999, models.KindPay, "again")
		assert.ErrorIs(t, err, ErrDuplicateUser)

		stmt, err := queries.Check(ctx, "carol", 0)
		require.NoError(t, err)
		assert.Equal(t, int64(200), stmt.User.Balance)
		assert.Len(t, stmt.Transactions, 1)
	})

	t.Run("unknown kind is rejected", func(t *testing.T) {
		_, err := ledger.CreateUser(ctx, "erin", 0, models.Kind("gift"), "")
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = queries.Check(ctx, "erin", 0)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("negative magnitude is rejected", func(t *testing.T) {
		_, err := ledger.CreateUser(ctx, "frank", -1, models.KindPay, "")
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = queries.Check(ctx, "frank", 0)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	assertConsistent(t, queries)
}

func TestApplyTransaction_ConcurrentProcesses(t *testing.T) {
	_, queries, dbPath := setupTestServices(t)
	ctx := context.Background()

	// Each store stands in for an independently launched process: separate
	// connections, sharing nothing but the file.
	first, err := sqlite.New(dbPath)
	require.NoError(t, err)
	defer first.Close()
	second, err := sqlite.New(dbPath)
	require.NoError(t, err)
	defer second.Close()

	_, err = NewLedgerService(first, nil).CreateUser(ctx, "alice", 0, models.KindPay, "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, run := range []struct {
		ledger    *LedgerService
		magnitude int64
	}{
		{NewLedgerService(first, nil), 100},
		{NewLedgerService(second, nil), 50},
	} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = run.ledger.ApplyTransaction(ctx, "alice", run.magnitude, models.KindPay, "")
		}()
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	stmt, err := queries.Check(ctx, "alice", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(150), stmt.User.Balance)
	assert.Len(t, stmt.Transactions, 2)
	assertConsistent(t, queries)
}

func TestApplyTransaction_UsesClock(t *testing.T) {
	ledger, queries, _ := setupTestServices(t)
	ctx := context.Background()

	fixed := time.Date(2024, 3, 1, 9, 15, 42, 987654321, time.Local)
	ledger.now = func() time.Time { return fixed }

	_, err := ledger.CreateUser(ctx, "alice", 10, models.KindPay, "")
	require.NoError(t, err)

	stmt, err := queries.Check(ctx, "alice", 0)
	require.NoError(t, err)
	require.Len(t, stmt.Transactions, 1)
	assert.True(t, stmt.Transactions[0].Date.Equal(fixed.Truncate(time.Second)),
		"date %v, want %v", stmt.Transactions[0].Date, fixed.Truncate(time.Second))
}

func TestApplyTransaction_LongUsername(t *testing.T) {
	ledger, queries, _ := setupTestServices(t)
	ctx := context.Background()

	name := strings.Repeat("a", 300)

	_, err := ledger.CreateUser(ctx, name, 0, models.KindPay, "")
	require.NoError(t, err)

	res, err := ledger.ApplyTransaction(ctx, name, 25, models.KindLend, "")
	require.NoError(t, err)
	assert.Equal(t, int64(25), res.User.Balance)

	stmt, err := queries.Check(ctx, name, 0)
	require.NoError(t, err)
	assert.Equal(t, name, stmt.User.Username)
	assert.Len(t, stmt.Transactions, 1)
}
