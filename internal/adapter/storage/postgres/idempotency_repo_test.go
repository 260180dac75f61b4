package postgres

import (
	"context"
	"testing"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idemCols() []string {
	return []string{"scope", "key", "fingerprint", "status", "result_payload", "created_at", "completed_at"}
}

func TestIdempotencyRepo_GetForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdempotencyRepo(mock)
	now := time.Now().UTC().Truncate(time.Microsecond)
	completedAt := now.Add(time.Second)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM idempotency_records WHERE scope .+ FOR UPDATE").
		WithArgs("topup:w1", "key-1").
		WillReturnRows(pgxmock.NewRows(idemCols()).AddRow(
			"topup:w1", "key-1", "fp", domain.IdempotencyCompleted,
			[]byte(`{"outcome":"completed"}`), now, &completedAt,
		))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	rec, err := repo.GetForUpdate(context.Background(), tx, "topup:w1", "key-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, domain.IdempotencyCompleted, rec.Status)
	assert.JSONEq(t, `{"outcome":"completed"}`, string(rec.ResultPayload))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyRepo_GetForUpdate_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdempotencyRepo(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM idempotency_records WHERE scope .+ FOR UPDATE").
		WithArgs("topup:w1", "missing").
		WillReturnRows(pgxmock.NewRows(idemCols()))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	rec, err := repo.GetForUpdate(context.Background(), tx, "topup:w1", "missing")
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyRepo_CreatePending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdempotencyRepo(mock)
	rec := &domain.IdempotencyRecord{
		Scope:       "topup:w1",
		Key:         "key-1",
		Fingerprint: "fp",
		Status:      domain.IdempotencyPending,
		CreatedAt:   time.Now().UTC(),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO idempotency_records").
		WithArgs(rec.Scope, rec.Key, rec.Fingerprint, rec.Status, rec.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	require.NoError(t, repo.CreatePending(context.Background(), tx, rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyRepo_ResetPending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdempotencyRepo(mock)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE idempotency_records").
		WithArgs("fp2", now, domain.IdempotencyPending, "topup:w1", "key-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	require.NoError(t, repo.ResetPending(context.Background(), tx, "topup:w1", "key-1", "fp2", now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyRepo_MarkCompleted(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewIdempotencyRepo(mock)
	now := time.Now().UTC()
	result := []byte(`{"outcome":"completed"}`)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE idempotency_records").
		WithArgs(domain.IdempotencyCompleted, result, now, "topup:w1", "key-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	require.NoError(t, repo.MarkCompleted(context.Background(), tx, "topup:w1", "key-1", result, now))
	assert.NoError(t, mock.ExpectationsWereMet())
}
