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

func snapshotCols() []string {
	return []string{"wallet_id", "currency", "available_minor", "pending_minor", "version", "updated_at"}
}

func TestSnapshotRepo_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSnapshotRepo(mock)
	walletID := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectQuery("SELECT .+ FROM balance_snapshots WHERE wallet_id").
		WithArgs(walletID).
		WillReturnRows(pgxmock.NewRows(snapshotCols()).
			AddRow(walletID, "USD", int64(200), int64(300), int64(7), now))

	snap, err := repo.Get(context.Background(), walletID)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, int64(200), snap.AvailableMinor)
	assert.Equal(t, int64(300), snap.PendingMinor)
	assert.Equal(t, int64(7), snap.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepo_Get_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSnapshotRepo(mock)
	walletID := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM balance_snapshots WHERE wallet_id").
		WithArgs(walletID).
		WillReturnRows(pgxmock.NewRows(snapshotCols()))

	snap, err := repo.Get(context.Background(), walletID)
	require.NoError(t, err)
	assert.Nil(t, snap)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepo_Update(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSnapshotRepo(mock)
	now := time.Now().UTC().Truncate(time.Microsecond)
	snap := &domain.BalanceSnapshot{
		WalletID:       uuid.New(),
		Currency:       "USD",
		AvailableMinor: 500,
		PendingMinor:   0,
		Version:        8,
		UpdatedAt:      now,
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE balance_snapshots").
		WithArgs(snap.AvailableMinor, snap.PendingMinor, snap.Version, snap.UpdatedAt, snap.WalletID, int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	require.NoError(t, repo.Update(context.Background(), tx, snap, 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepo_Update_VersionMoved(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSnapshotRepo(mock)
	snap := &domain.BalanceSnapshot{
		WalletID:  uuid.New(),
		Currency:  "USD",
		Version:   8,
		UpdatedAt: time.Now().UTC(),
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE balance_snapshots").
		WithArgs(snap.AvailableMinor, snap.PendingMinor, snap.Version, snap.UpdatedAt, snap.WalletID, int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Update(context.Background(), tx, snap, 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version moved")
	assert.NoError(t, mock.ExpectationsWereMet())
}
