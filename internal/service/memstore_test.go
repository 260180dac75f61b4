package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// memStore is an in-memory database for end-to-end flow tests. txMu
// serializes transactions the way row locks do in PostgreSQL; stateMu guards
// the maps for non-transactional reads running alongside.
type memStore struct {
	txMu    sync.Mutex
	stateMu sync.Mutex

	wallets   map[uuid.UUID]*domain.Wallet
	entries   []domain.LedgerEntry
	snapshots map[uuid.UUID]*domain.BalanceSnapshot
	idem      map[string]*domain.IdempotencyRecord
	intents   map[uuid.UUID]*domain.PaymentIntent
	payments  map[uuid.UUID]*domain.Payment
	refunds   map[uuid.UUID]*domain.Refund
	outbox    []domain.OutboxEvent
}

func newMemStore() *memStore {
	return &memStore{
		wallets:   make(map[uuid.UUID]*domain.Wallet),
		snapshots: make(map[uuid.UUID]*domain.BalanceSnapshot),
		idem:      make(map[string]*domain.IdempotencyRecord),
		intents:   make(map[uuid.UUID]*domain.PaymentIntent),
		payments:  make(map[uuid.UUID]*domain.Payment),
		refunds:   make(map[uuid.UUID]*domain.Refund),
	}
}

func (s *memStore) addWallet(w *domain.Wallet, snap *domain.BalanceSnapshot) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.wallets[w.ID] = w
	s.snapshots[snap.WalletID] = snap
}

type memState struct {
	wallets   map[uuid.UUID]*domain.Wallet
	entries   []domain.LedgerEntry
	snapshots map[uuid.UUID]*domain.BalanceSnapshot
	idem      map[string]*domain.IdempotencyRecord
	intents   map[uuid.UUID]*domain.PaymentIntent
	payments  map[uuid.UUID]*domain.Payment
	refunds   map[uuid.UUID]*domain.Refund
	outbox    []domain.OutboxEvent
}

func (s *memStore) snapshotState() memState {
	st := memState{
		wallets:   make(map[uuid.UUID]*domain.Wallet, len(s.wallets)),
		snapshots: make(map[uuid.UUID]*domain.BalanceSnapshot, len(s.snapshots)),
		idem:      make(map[string]*domain.IdempotencyRecord, len(s.idem)),
		intents:   make(map[uuid.UUID]*domain.PaymentIntent, len(s.intents)),
		payments:  make(map[uuid.UUID]*domain.Payment, len(s.payments)),
		refunds:   make(map[uuid.UUID]*domain.Refund, len(s.refunds)),
		entries:   append([]domain.LedgerEntry(nil), s.entries...),
		outbox:    append([]domain.OutboxEvent(nil), s.outbox...),
	}
	for k, v := range s.wallets {
		c := *v
		st.wallets[k] = &c
	}
	for k, v := range s.snapshots {
		c := *v
		st.snapshots[k] = &c
	}
	for k, v := range s.idem {
		c := *v
		st.idem[k] = &c
	}
	for k, v := range s.intents {
		c := *v
		c.Allocations = append([]domain.IntentAllocation(nil), v.Allocations...)
		st.intents[k] = &c
	}
	for k, v := range s.payments {
		c := *v
		st.payments[k] = &c
	}
	for k, v := range s.refunds {
		c := *v
		st.refunds[k] = &c
	}
	return st
}

func (s *memStore) restoreState(st memState) {
	s.wallets = st.wallets
	s.entries = st.entries
	s.snapshots = st.snapshots
	s.idem = st.idem
	s.intents = st.intents
	s.payments = st.payments
	s.refunds = st.refunds
	s.outbox = st.outbox
}

// memTx holds the store's transaction lock until Commit or Rollback. Rollback
// after Commit is a no-op, matching pgx semantics.
type memTx struct {
	pgx.Tx
	store  *memStore
	backup memState
	done   bool
}

func (t *memTx) Commit(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.store.txMu.Unlock()
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.stateMu.Lock()
	t.store.restoreState(t.backup)
	t.store.stateMu.Unlock()
	t.store.txMu.Unlock()
	return nil
}

type memTransactor struct{ store *memStore }

func (tr *memTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	tr.store.txMu.Lock()
	tr.store.stateMu.Lock()
	backup := tr.store.snapshotState()
	tr.store.stateMu.Unlock()
	return &memTx{store: tr.store, backup: backup}, nil
}

// --- repositories ---

type memWalletRepo struct{ store *memStore }

func (r *memWalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	r.store.stateMu.Lock()
	defer r.store.stateMu.Unlock()
	w, ok := r.store.wallets[id]
	if !ok {
		return nil, nil
	}
	c := *w
	return &c, nil
}

func (r *memWalletRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error) {
	return r.GetByID(ctx, id)
}

func (r *memWalletRepo) ListIDs(ctx context.Context, filter domain.RebuildBatchFilter) ([]uuid.UUID, error) {
	r.store.stateMu.Lock()
	defer r.store.stateMu.Unlock()
	var ids []uuid.UUID
	for _, w := range r.store.wallets {
		if filter.Currency != nil && w.Currency != *filter.Currency {
			continue
		}
		if filter.OnlyActive && w.Status != domain.WalletStatusActive {
			continue
		}
		if filter.UpdatedAfter != nil && !w.UpdatedAt.After(*filter.UpdatedAfter) {
			continue
		}
		if filter.UpdatedBefore != nil && !w.UpdatedAt.Before(*filter.UpdatedBefore) {
			continue
		}
		ids = append(ids, w.ID)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids, nil
}

type memLedgerRepo struct{ store *memStore }

func (r *memLedgerRepo) Insert(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error {
	r.store.stateMu.Lock()
	defer r.store.stateMu.Unlock()
	r.store.entries = append(r.store.entries, *entry)
	return nil
}

func (r *memLedgerRepo) ListRecent(ctx context.Context, walletID uuid.UUID, take int) ([]domain.LedgerEntry, error) {
	r.store.stateMu.Lock()
	defer r.store.stateMu.Unlock()
	var out []domain.LedgerEntry
	for i := len(r.store.entries) - 1; i >= 0 && len(out) < take; i-- {
		if r.store.entries[i].WalletID == walletID {
			out = append(out, r.store.entries[i])
		}
	}
	return out, nil
}

func (r *memLedgerRepo) ListForFold(ctx context.Context, tx pgx.Tx, walletID uuid.UUID) ([]domain.LedgerEntry, error) {
	r.store.stateMu.Lock()
	defer r.store.stateMu.Unlock()
	var out []domain.LedgerEntry
	for _, e := range r.store.entries {
		if e.WalletID == walletID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].EffectiveAt.Equal(out[j].EffectiveAt) {
			return out[i].EffectiveAt.Before(out[j].EffectiveAt)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})
	return out, nil
}

func (r *memLedgerRepo) ListByOperation(ctx context.Context, tx pgx.Tx, operationID uuid.UUID) ([]domain.LedgerEntry, error) {
	r.store.stateMu.Lock()
	defer r.store.stateMu.Unlock()
	var out []domain.LedgerEntry
	for _, e := range r.store.entries {
		if e.OperationID == operationID {
			out = append(out, e)
		}
	}
	return out, nil
}

type memSnapshotRepo struct{ store *memStore }

func (r *memSnapshotRepo) Get(ctx context.Context, walletID uuid.UUID) (*domain.BalanceSnapshot, error) {
	r.store.stateMu.Lock()
	defer r.store.stateMu.Unlock()
	snap, ok := r.store.snapshots[walletID]
	if !ok {
		return nil, nil
	}
	c := *snap
	return &c, nil
}

func (r *memSnapshotRepo) GetTx(ctx context.Context, tx pgx.Tx, walletID uuid.UUID) (*domain.BalanceSnapshot, error) {
	return r.Get(ctx, walletID)
}

func (r *memSnapshotRepo) Update(ctx context.Context, tx pgx.Tx, snap *domain.BalanceSnapshot, expectedVersion int64) error {
	r.store.stateMu.Lock()
	defer r.store.stateMu.Unlock()
	cur, ok := r.store.snapshots[snap.WalletID]
	if !ok || cur.Version != expectedVersion {
		return fmt.Errorf("balance snapshot version moved for wallet %s", snap.WalletID)
	}
	c := *snap
	r.store.snapshots[snap.WalletID] = &c
	return nil
}

type memIdempotencyRepo struct{ store *memStore }

func idemKey(scope, key string) string { return scope + "|" + key }

func (r *memIdempotencyRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, scope, key string) (*domain.IdempotencyRecord, error) {
	r.store.stateMu.Lock()
	defer r.store.stateMu.Unlock()
	rec, ok := r.store.idem[idemKey(scope, key)]
	if !ok {
		return nil, nil
	}
	c := *rec
	return &c, nil
}

func (r *memIdempotencyRepo) CreatePending(ctx context.Context, tx pgx.Tx, rec *domain.IdempotencyRecord) error {
	r.store.stateMu.Lock()
	defer r.store.stateMu.Unlock()
	k := idemKey(rec.Scope, rec.Key)
	if _, exists := r.store.idem[k]; exists {
		return &pgconn.PgError{Code: "23505", ConstraintName: "idempotency_records_pkey"}
	}
	c := *rec
	r.store.idem[k] = &c
	return nil
}

func (r *memIdempotencyRepo) ResetPending(ctx context.Context, tx pgx.Tx, scope, key, fingerprint string, now time.Time) error {
	r.store.stateMu.Lock()
	defer r.store.stateMu.Unlock()
	rec, ok := r.store.idem[idemKey(scope, key)]
	if !ok {
		return fmt.Errorf("idempotency record not found")
	}
	rec.Fingerprint = fingerprint
	rec.Status = domain.IdempotencyPending
	rec.ResultPayload = nil
	rec.CreatedAt = now
	rec.CompletedAt = nil
	return nil
}

func (r *memIdempotencyRepo) MarkCompleted(ctx context.Context, tx pgx.Tx, scope, key string, result []byte, completedAt time.Time) error {
	r.store.stateMu.Lock()
	defer r.store.stateMu.Unlock()
	rec, ok := r.store.idem[idemKey(scope, key)]
	if !ok {
		return fmt.Errorf("idempotency record not found")
	}
	rec.Status = domain.IdempotencyCompleted
	rec.ResultPayload = result
	at := completedAt
	rec.CompletedAt = &at
	return nil
}

type memIntentRepo struct{ store *memStore }

func (r *memIntentRepo) Create(ctx context.Context, tx pgx.Tx, intent *domain.PaymentIntent) error {
	r.store.stateMu.Lock()
	defer r.store.stateMu.Unlock()
	for _, existing := range r.store.intents {
		if existing.OrderID == intent.OrderID {
			return &pgconn.PgError{Code: "23505", ConstraintName: "payment_intents_order_id_key"}
		}
	}
	c := *intent
	c.Allocations = append([]domain.IntentAllocation(nil), intent.Allocations...)
	r.store.intents[intent.ID] = &c
	return nil
}

func (r *memIntentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentIntent, error) {
	r.store.stateMu.Lock()
	defer r.store.stateMu.Unlock()
	intent, ok := r.store.intents[id]
	if !ok {
		return nil, nil
	}
	c := *intent
	c.Allocations = append([]domain.IntentAllocation(nil), intent.Allocations...)
	return &c, nil
}

func (r *memIntentRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.PaymentIntent, error) {
	return r.GetByID(ctx, id)
}

func (r *memIntentRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to domain.PaymentIntentStatus, now time.Time) error {
	r.store.stateMu.Lock()
	defer r.store.stateMu.Unlock()
	intent, ok := r.store.intents[id]
	if !ok || intent.Status != from {
		return fmt.Errorf("payment intent status moved")
	}
	intent.Status = to
	intent.UpdatedAt = now
	return nil
}

type memPaymentRepo struct{ store *memStore }

func (r *memPaymentRepo) Create(ctx context.Context, tx pgx.Tx, payment *domain.Payment) error {
	r.store.stateMu.Lock()
	defer r.store.stateMu.Unlock()
	c := *payment
	r.store.payments[payment.ID] = &c
	return nil
}

func (r *memPaymentRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Payment, error) {
	r.store.stateMu.Lock()
	defer r.store.stateMu.Unlock()
	p, ok := r.store.payments[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (r *memPaymentRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to domain.PaymentStatus, now time.Time) error {
	r.store.stateMu.Lock()
	defer r.store.stateMu.Unlock()
	p, ok := r.store.payments[id]
	if !ok || p.Status != from {
		return fmt.Errorf("payment status moved")
	}
	p.Status = to
	p.UpdatedAt = now
	return nil
}

func (r *memPaymentRepo) CreateRefund(ctx context.Context, tx pgx.Tx, refund *domain.Refund) error {
	r.store.stateMu.Lock()
	defer r.store.stateMu.Unlock()
	c := *refund
	r.store.refunds[refund.ID] = &c
	return nil
}

type memOutboxRepo struct{ store *memStore }

func (r *memOutboxRepo) Append(ctx context.Context, tx pgx.Tx, event *domain.OutboxEvent) error {
	r.store.stateMu.Lock()
	defer r.store.stateMu.Unlock()
	r.store.outbox = append(r.store.outbox, *event)
	return nil
}

func (r *memOutboxRepo) ListUnpublished(ctx context.Context, limit int) ([]domain.OutboxEvent, error) {
	r.store.stateMu.Lock()
	defer r.store.stateMu.Unlock()
	var out []domain.OutboxEvent
	for _, e := range r.store.outbox {
		if e.PublishedAt == nil {
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *memOutboxRepo) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	r.store.stateMu.Lock()
	defer r.store.stateMu.Unlock()
	marked := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		marked[id] = true
	}
	for i := range r.store.outbox {
		if marked[r.store.outbox[i].ID] {
			t := at
			r.store.outbox[i].PublishedAt = &t
		}
	}
	return nil
}

// memCache is a no-op balance cache that counts invalidations.
type memCache struct {
	mu            sync.Mutex
	invalidations int
}

func (c *memCache) Get(ctx context.Context, walletID uuid.UUID) (*domain.BalanceSnapshot, error) {
	return nil, nil
}

func (c *memCache) Set(ctx context.Context, snap *domain.BalanceSnapshot, ttl time.Duration) error {
	return nil
}

func (c *memCache) Invalidate(ctx context.Context, walletID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidations++
	return nil
}
