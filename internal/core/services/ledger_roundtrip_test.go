package services_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/SscSPs/finance_bot/internal/core/commands"
	"github.com/SscSPs/finance_bot/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_bot/internal/core/ports/repositories"
	"github.com/SscSPs/finance_bot/internal/core/services"
	"github.com/SscSPs/finance_bot/internal/repositories/database/sqlite"
	"github.com/SscSPs/finance_bot/internal/repositories/memory"
	"github.com/SscSPs/finance_bot/pkg/database"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteStore(t *testing.T) portsrepo.TransactionRepositoryFacade {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "finance.db")

	db, err := sqlite.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(database.DialectSQLite, dbPath, sqlite.Migrations, sqlite.MigrationsDir))

	repos := sqlite.NewRepositoryProvider(db)
	t.Cleanup(func() { _ = repos.Close() })
	return repos.TransactionRepo
}

// Recording through the service and summarizing it back returns the same
// transaction, field for field, on every store.
func TestLedgerService_RecordThenSummarize(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	// 2025-07-14 12:00 in Jakarta; the summary runs later the same evening.
	const sentAt int64 = 1752469200
	now := time.Date(2025, time.July, 14, 18, 0, 0, 0, loc)

	stores := map[string]func(t *testing.T) portsrepo.TransactionRepositoryFacade{
		"memory": func(*testing.T) portsrepo.TransactionRepositoryFacade { return memory.New() },
		"sqlite": sqliteStore,
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)
			svc := services.NewLedgerService(store,
				services.WithReferenceLocation(loc),
				services.WithClock(func() time.Time { return now }),
			)

			cmd, err := commands.NewParser(loc).Parse("/out 15000 lunch", sentAt)
			require.NoError(t, err)
			out, ok := cmd.(commands.RecordOutflow)
			require.True(t, ok, "expected RecordOutflow, got %T", cmd)

			userID := "1001"
			txn, err := svc.RecordOutflow(ctx, out, &userID)
			require.NoError(t, err)
			require.NotNil(t, txn)

			report, err := svc.Summarize(ctx, domain.Today, nil)
			require.NoError(t, err)

			require.Len(t, report.Transactions, 1)
			assert.False(t, report.Empty)
			assert.True(t, txn.Equal(report.Transactions[0]), "recorded %+v, summarized %+v", *txn, report.Transactions[0])
			assert.True(t, decimal.NewFromInt(15000).Equal(report.Total), "total %s", report.Total)
			assert.Equal(t, "2025-07-14T12:00:00+07:00", report.Transactions[0].CreatedAt.Format(time.RFC3339))

			// The next day's TODAY no longer includes it.
			nextDay := services.NewLedgerService(store, services.WithReferenceLocation(loc),
				services.WithClock(func() time.Time { return now.AddDate(0, 0, 1) }))
			empty, err := nextDay.Summarize(ctx, domain.Today, nil)
			require.NoError(t, err)
			assert.True(t, empty.Empty)
		})
	}
}
