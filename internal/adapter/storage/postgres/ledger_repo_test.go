package postgres

import (
	"context"
	"testing"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ledgerCols() []string {
	return []string{
		"id", "wallet_id", "operation_id", "operation_type", "entry_type", "amount_minor", "currency",
		"effective_at", "created_at", "related_entry_id", "relation_type", "external_reference", "metadata_json", "idempotency_key",
	}
}

func newTestEntry(walletID uuid.UUID) *domain.LedgerEntry {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.LedgerEntry{
		ID:             uuid.New(),
		WalletID:       walletID,
		OperationID:    uuid.New(),
		OperationType:  domain.OperationTopUp,
		EntryType:      domain.EntryCredit,
		AmountMinor:    500,
		Currency:       "USD",
		EffectiveAt:    now,
		CreatedAt:      now,
		RelationType:   domain.RelationNone,
		IdempotencyKey: "key-1",
	}
}

func entryRow(e *domain.LedgerEntry) *pgxmock.Rows {
	return pgxmock.NewRows(ledgerCols()).AddRow(
		e.ID, e.WalletID, e.OperationID, e.OperationType, e.EntryType, e.AmountMinor, e.Currency,
		e.EffectiveAt, e.CreatedAt, e.RelatedEntryID, e.RelationType, e.ExternalReference,
		e.MetadataJSON, e.IdempotencyKey,
	)
}

func TestLedgerRepo_Insert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	e := newTestEntry(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO ledger_entries").
		WithArgs(
			e.ID, e.WalletID, e.OperationID, e.OperationType, e.EntryType,
			e.AmountMinor, e.Currency, e.EffectiveAt, e.CreatedAt,
			e.RelatedEntryID, e.RelationType, e.ExternalReference,
			e.MetadataJSON, e.IdempotencyKey,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	require.NoError(t, repo.Insert(context.Background(), tx, e))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_ListRecent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	walletID := uuid.New()
	e := newTestEntry(walletID)

	mock.ExpectQuery("SELECT .+ FROM ledger_entries\\s+WHERE wallet_id .+ ORDER BY created_at DESC, id DESC LIMIT").
		WithArgs(walletID, 20).
		WillReturnRows(entryRow(e))

	entries, err := repo.ListRecent(context.Background(), walletID, 20)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, e.ID, entries[0].ID)
	assert.Equal(t, int64(500), entries[0].AmountMinor)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_ListForFold_Order(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	walletID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM ledger_entries\\s+WHERE wallet_id .+ ORDER BY effective_at, created_at, id").
		WithArgs(walletID).
		WillReturnRows(pgxmock.NewRows(ledgerCols()))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	entries, err := repo.ListForFold(context.Background(), tx, walletID)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_ListByOperation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	e := newTestEntry(uuid.New())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM ledger_entries\\s+WHERE operation_id .+ ORDER BY created_at, id").
		WithArgs(e.OperationID).
		WillReturnRows(entryRow(e))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	entries, err := repo.ListByOperation(context.Background(), tx, e.OperationID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, e.OperationID, entries[0].OperationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
