package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/metrics"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// LedgerServiceImpl implements ports.LedgerService. Every operation runs as
// one database transaction: wallet row locks in ascending ID order, the
// idempotency claim, aggregate checks, ledger inserts, projection update and
// the outbox append all commit or roll back together.
type LedgerServiceImpl struct {
	walletRepo  ports.WalletRepository
	ledgerRepo  ports.LedgerRepository
	snapRepo    ports.SnapshotRepository
	idempRepo   ports.IdempotencyRepository
	intentRepo  ports.IntentRepository
	paymentRepo ports.PaymentRepository
	outboxRepo  ports.OutboxRepository
	transactor  ports.DBTransactor
	cache       ports.BalanceCache
	metrics     *metrics.Metrics
	staleAfter  time.Duration
	log         zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl. staleAfter bounds how
// long a Pending idempotency record blocks retries before it is reclaimed.
func NewLedgerService(
	walletRepo ports.WalletRepository,
	ledgerRepo ports.LedgerRepository,
	snapRepo ports.SnapshotRepository,
	idempRepo ports.IdempotencyRepository,
	intentRepo ports.IntentRepository,
	paymentRepo ports.PaymentRepository,
	outboxRepo ports.OutboxRepository,
	transactor ports.DBTransactor,
	cache ports.BalanceCache,
	m *metrics.Metrics,
	staleAfter time.Duration,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		walletRepo:  walletRepo,
		ledgerRepo:  ledgerRepo,
		snapRepo:    snapRepo,
		idempRepo:   idempRepo,
		intentRepo:  intentRepo,
		paymentRepo: paymentRepo,
		outboxRepo:  outboxRepo,
		transactor:  transactor,
		cache:       cache,
		metrics:     m,
		staleAfter:  staleAfter,
		log:         log,
	}
}

// classify maps infrastructure errors to the stable error taxonomy. Lock
// timeouts become retryable SYS_002; anything not already an AppError becomes
// SYS_001.
func classify(err error) error {
	if isLockTimeout(err) {
		return apperror.ErrLockTimeout(err)
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.InternalError(err)
}

func (s *LedgerServiceImpl) record(op string, start time.Time, res *ports.OperationResult, err error) {
	outcome := "error"
	if err == nil && res != nil {
		outcome = string(res.Outcome)
	}
	s.metrics.Operations.WithLabelValues(op, outcome).Inc()
	s.metrics.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// sortedWalletIDs returns the IDs in ascending byte order, the global lock
// acquisition order that prevents deadlock cycles between concurrent
// multi-wallet operations.
func sortedWalletIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i][:], out[j][:]) < 0
	})
	return out
}

// lockWallets acquires wallet row locks in ascending ID order and returns the
// locked wallets keyed by ID.
func (s *LedgerServiceImpl) lockWallets(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) (map[uuid.UUID]*domain.Wallet, error) {
	wallets := make(map[uuid.UUID]*domain.Wallet, len(ids))
	for _, id := range sortedWalletIDs(ids) {
		w, err := s.walletRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return nil, classify(err)
		}
		if w == nil {
			return nil, apperror.ErrNotFound("wallet")
		}
		wallets[id] = w
	}
	return wallets, nil
}

// claimIdempotency resolves the (scope, key) record under a row lock.
// A nil, nil return means the claim succeeded and the operation proceeds; a
// non-nil result short-circuits with either the cached outcome or in_progress.
func (s *LedgerServiceImpl) claimIdempotency(ctx context.Context, tx pgx.Tx, scope, key, fingerprint string, now time.Time) (*ports.OperationResult, error) {
	rec, err := s.idempRepo.GetForUpdate(ctx, tx, scope, key)
	if err != nil {
		return nil, classify(err)
	}

	if rec == nil {
		pending := &domain.IdempotencyRecord{
			Scope:       scope,
			Key:         key,
			Fingerprint: fingerprint,
			Status:      domain.IdempotencyPending,
			CreatedAt:   now,
		}
		if err := s.idempRepo.CreatePending(ctx, tx, pending); err != nil {
			if isUniqueViolation(err) {
				// Lost the insert race; the concurrent transaction owns the attempt.
				return &ports.OperationResult{Outcome: ports.OutcomeInProgress}, nil
			}
			return nil, classify(err)
		}
		return nil, nil
	}

	if rec.Fingerprint != fingerprint {
		return nil, apperror.ErrIdempotencyKeyConflict()
	}

	switch {
	case rec.Status == domain.IdempotencyCompleted:
		result := &ports.OperationResult{}
		if err := json.Unmarshal(rec.ResultPayload, result); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("decode stored result for %s/%s: %w", scope, key, err))
		}
		result.Outcome = ports.OutcomeCompletedCached
		return result, nil
	case rec.IsStalePending(now, s.staleAfter):
		s.log.Warn().Str("scope", scope).Str("key", key).Msg("reclaiming stale pending idempotency record")
		if err := s.idempRepo.ResetPending(ctx, tx, scope, key, fingerprint, now); err != nil {
			return nil, classify(err)
		}
		return nil, nil
	default:
		return &ports.OperationResult{Outcome: ports.OutcomeInProgress}, nil
	}
}

// finalize stores the result on the idempotency record, appends the outbox
// event and commits. After this returns nil the operation's effects are
// durable exactly once.
func (s *LedgerServiceImpl) finalize(ctx context.Context, tx pgx.Tx, scope, key string, result *ports.OperationResult, eventKind string, aggregateID uuid.UUID, now time.Time) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("encode result: %w", err))
	}
	if err := s.idempRepo.MarkCompleted(ctx, tx, scope, key, payload, now); err != nil {
		return classify(err)
	}

	event, err := domain.NewOutboxEvent(eventKind, aggregateID, result, now)
	if err != nil {
		return apperror.InternalError(err)
	}
	if err := s.outboxRepo.Append(ctx, tx, event); err != nil {
		return classify(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return classify(fmt.Errorf("commit: %w", err))
	}
	return nil
}

// invalidate drops cached balances for the touched wallets. Best effort: the
// cache TTL bounds staleness if Redis is unavailable.
func (s *LedgerServiceImpl) invalidate(ctx context.Context, balances []ports.WalletBalance) {
	for _, b := range balances {
		if err := s.cache.Invalidate(ctx, b.WalletID); err != nil {
			s.log.Warn().Err(err).Str("wallet_id", b.WalletID.String()).Msg("balance cache invalidation failed")
		}
	}
}

func walletBalance(snap *domain.BalanceSnapshot) ports.WalletBalance {
	return ports.WalletBalance{
		WalletID:       snap.WalletID,
		Currency:       snap.Currency,
		AvailableMinor: snap.AvailableMinor,
		PendingMinor:   snap.PendingMinor,
		Version:        snap.Version,
	}
}

// bumpSnapshot applies the entries to the projection and writes it back with
// exactly one version increment, guarded by the version read under the lock.
func (s *LedgerServiceImpl) bumpSnapshot(ctx context.Context, tx pgx.Tx, snap *domain.BalanceSnapshot, entries []*domain.LedgerEntry, now time.Time) error {
	for _, e := range entries {
		if err := snap.Apply(e); err != nil {
			return err
		}
	}
	expected := snap.Version
	snap.Version++
	snap.UpdatedAt = now
	if err := s.snapRepo.Update(ctx, tx, snap, expected); err != nil {
		return classify(err)
	}
	return nil
}

func (s *LedgerServiceImpl) getSnapshot(ctx context.Context, tx pgx.Tx, walletID uuid.UUID) (*domain.BalanceSnapshot, error) {
	snap, err := s.snapRepo.GetTx(ctx, tx, walletID)
	if err != nil {
		return nil, classify(err)
	}
	if snap == nil {
		return nil, apperror.InternalError(fmt.Errorf("wallet %s has no balance snapshot", walletID))
	}
	return snap, nil
}

// TopUp credits available funds on one wallet.
func (s *LedgerServiceImpl) TopUp(ctx context.Context, req ports.TopUpRequest) (*ports.OperationResult, error) {
	start := time.Now()
	res, err := s.topUp(ctx, req)
	s.record("topup", start, res, err)
	return res, err
}

func (s *LedgerServiceImpl) topUp(ctx context.Context, req ports.TopUpRequest) (*ports.OperationResult, error) {
	money, err := domain.NewMoney(req.AmountMinor, req.Currency)
	if err != nil {
		return nil, err
	}
	if req.IdempotencyKey == "" {
		return nil, apperror.Validation("idempotency_key is required")
	}
	fingerprint, err := domain.Fingerprint(req)
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	now := time.Now().UTC()
	scope := domain.TopUpScope(req.WalletID)

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if short, err := s.claimIdempotency(ctx, dbTx, scope, req.IdempotencyKey, fingerprint, now); short != nil || err != nil {
		return short, err
	}

	wallets, err := s.lockWallets(ctx, dbTx, []uuid.UUID{req.WalletID})
	if err != nil {
		return nil, err
	}
	wallet := wallets[req.WalletID]
	if err := wallet.AssertCanOperate(); err != nil {
		return nil, err
	}
	if err := wallet.AssertCurrency(money.Currency); err != nil {
		return nil, err
	}

	snap, err := s.getSnapshot(ctx, dbTx, req.WalletID)
	if err != nil {
		return nil, err
	}

	entry := &domain.LedgerEntry{
		ID:                uuid.New(),
		WalletID:          req.WalletID,
		OperationID:       uuid.New(),
		OperationType:     domain.OperationTopUp,
		EntryType:         domain.EntryCredit,
		AmountMinor:       money.AmountMinor,
		Currency:          money.Currency,
		EffectiveAt:       now,
		CreatedAt:         now,
		RelationType:      domain.RelationNone,
		ExternalReference: req.ExternalReference,
		MetadataJSON:      req.MetadataJSON,
		IdempotencyKey:    req.IdempotencyKey,
	}
	if err := s.ledgerRepo.Insert(ctx, dbTx, entry); err != nil {
		return nil, classify(err)
	}
	if err := s.bumpSnapshot(ctx, dbTx, snap, []*domain.LedgerEntry{entry}, now); err != nil {
		return nil, err
	}

	result := &ports.OperationResult{
		Outcome:       ports.OutcomeCompleted,
		OperationID:   entry.OperationID,
		LedgerEntryID: &entry.ID,
		Balances:      []ports.WalletBalance{walletBalance(snap)},
		CompletedAt:   now,
	}
	if err := s.finalize(ctx, dbTx, scope, req.IdempotencyKey, result, domain.EventWalletTopUp, req.WalletID, now); err != nil {
		return nil, err
	}
	s.invalidate(ctx, result.Balances)

	s.log.Info().
		Str("wallet_id", req.WalletID.String()).
		Str("operation_id", entry.OperationID.String()).
		Int64("amount_minor", money.AmountMinor).
		Str("currency", money.Currency).
		Msg("top-up committed")

	return result, nil
}

// CreatePaymentIntent reserves funds across the allocation wallets and
// records a Reserved intent.
func (s *LedgerServiceImpl) CreatePaymentIntent(ctx context.Context, req ports.CreateIntentRequest) (*ports.OperationResult, error) {
	start := time.Now()
	res, err := s.createPaymentIntent(ctx, req)
	s.record("create_intent", start, res, err)
	return res, err
}

func (s *LedgerServiceImpl) createPaymentIntent(ctx context.Context, req ports.CreateIntentRequest) (*ports.OperationResult, error) {
	money, err := domain.NewMoney(req.AmountMinor, req.Currency)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateAllocations(money.AmountMinor, req.Allocations); err != nil {
		return nil, err
	}
	if req.IdempotencyKey == "" {
		return nil, apperror.Validation("idempotency_key is required")
	}
	fingerprint, err := domain.Fingerprint(req)
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	now := time.Now().UTC()
	scope := domain.IntentScope(req.OrderID)

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if short, err := s.claimIdempotency(ctx, dbTx, scope, req.IdempotencyKey, fingerprint, now); short != nil || err != nil {
		return short, err
	}

	walletIDs := make([]uuid.UUID, 0, len(req.Allocations))
	for _, a := range req.Allocations {
		walletIDs = append(walletIDs, a.WalletID)
	}
	wallets, err := s.lockWallets(ctx, dbTx, walletIDs)
	if err != nil {
		return nil, err
	}

	reserveOpID := uuid.New()
	intentID := uuid.New()
	balances := make([]ports.WalletBalance, 0, len(req.Allocations))

	for _, alloc := range req.Allocations {
		wallet := wallets[alloc.WalletID]
		if err := wallet.AssertCanOperate(); err != nil {
			return nil, err
		}
		if err := wallet.AssertCurrency(money.Currency); err != nil {
			return nil, err
		}

		snap, err := s.getSnapshot(ctx, dbTx, alloc.WalletID)
		if err != nil {
			return nil, err
		}
		// Spendable funds exclude what earlier reservations already hold.
		spendable, err := domain.SubMinor(snap.AvailableMinor, snap.PendingMinor)
		if err != nil {
			return nil, err
		}
		if spendable < alloc.AmountMinor {
			return nil, apperror.ErrInsufficientFunds()
		}

		entry := &domain.LedgerEntry{
			ID:             uuid.New(),
			WalletID:       alloc.WalletID,
			OperationID:    reserveOpID,
			OperationType:  domain.OperationReserve,
			EntryType:      domain.EntryHold,
			AmountMinor:    alloc.AmountMinor,
			Currency:       money.Currency,
			EffectiveAt:    now,
			CreatedAt:      now,
			RelationType:   domain.RelationNone,
			MetadataJSON:   req.MetadataJSON,
			IdempotencyKey: req.IdempotencyKey,
		}
		if err := s.ledgerRepo.Insert(ctx, dbTx, entry); err != nil {
			return nil, classify(err)
		}
		if err := s.bumpSnapshot(ctx, dbTx, snap, []*domain.LedgerEntry{entry}, now); err != nil {
			return nil, err
		}
		balances = append(balances, walletBalance(snap))
	}

	intent := &domain.PaymentIntent{
		ID:                 intentID,
		OrderID:            req.OrderID,
		AmountMinor:        money.AmountMinor,
		Currency:           money.Currency,
		Status:             domain.IntentStatusReserved,
		Allocations:        req.Allocations,
		ReserveOperationID: reserveOpID,
		MetadataJSON:       req.MetadataJSON,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.intentRepo.Create(ctx, dbTx, intent); err != nil {
		if isUniqueViolation(err) {
			return nil, apperror.ErrIdempotencyKeyConflict()
		}
		return nil, classify(err)
	}

	result := &ports.OperationResult{
		Outcome:     ports.OutcomeCompleted,
		OperationID: reserveOpID,
		IntentID:    &intentID,
		Status:      domain.IntentStatusReserved.String(),
		Balances:    balances,
		CompletedAt: now,
	}
	if err := s.finalize(ctx, dbTx, scope, req.IdempotencyKey, result, domain.EventIntentReserved, intentID, now); err != nil {
		return nil, err
	}
	s.invalidate(ctx, result.Balances)

	s.log.Info().
		Str("intent_id", intentID.String()).
		Str("order_id", req.OrderID.String()).
		Int64("amount_minor", money.AmountMinor).
		Int("allocations", len(req.Allocations)).
		Msg("payment intent reserved")

	return result, nil
}

// CapturePaymentIntent converts a reservation into a payment: each held
// allocation is released and debited in the same transaction.
func (s *LedgerServiceImpl) CapturePaymentIntent(ctx context.Context, req ports.CaptureIntentRequest) (*ports.OperationResult, error) {
	start := time.Now()
	res, err := s.capturePaymentIntent(ctx, req)
	s.record("capture_intent", start, res, err)
	return res, err
}

func (s *LedgerServiceImpl) capturePaymentIntent(ctx context.Context, req ports.CaptureIntentRequest) (*ports.OperationResult, error) {
	if req.IdempotencyKey == "" {
		return nil, apperror.Validation("idempotency_key is required")
	}
	fingerprint, err := domain.Fingerprint(req)
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	now := time.Now().UTC()
	scope := domain.CaptureScope(req.IntentID)

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if short, err := s.claimIdempotency(ctx, dbTx, scope, req.IdempotencyKey, fingerprint, now); short != nil || err != nil {
		return short, err
	}

	intent, err := s.intentRepo.GetByIDForUpdate(ctx, dbTx, req.IntentID)
	if err != nil {
		return nil, classify(err)
	}
	if intent == nil {
		return nil, apperror.ErrNotFound("payment intent")
	}
	if err := intent.AssertTransition(domain.IntentStatusCaptured); err != nil {
		return nil, err
	}

	walletIDs := make([]uuid.UUID, 0, len(intent.Allocations))
	for _, a := range intent.Allocations {
		walletIDs = append(walletIDs, a.WalletID)
	}
	wallets, err := s.lockWallets(ctx, dbTx, walletIDs)
	if err != nil {
		return nil, err
	}

	holdEntries, err := s.holdEntriesByWallet(ctx, dbTx, intent.ReserveOperationID)
	if err != nil {
		return nil, err
	}

	captureOpID := uuid.New()
	balances := make([]ports.WalletBalance, 0, len(intent.Allocations))

	for _, alloc := range intent.Allocations {
		wallet := wallets[alloc.WalletID]
		if err := wallet.AssertCanOperate(); err != nil {
			return nil, err
		}

		holdID, ok := holdEntries[alloc.WalletID]
		if !ok {
			return nil, apperror.InternalError(fmt.Errorf("no hold entry for wallet %s under operation %s", alloc.WalletID, intent.ReserveOperationID))
		}

		snap, err := s.getSnapshot(ctx, dbTx, alloc.WalletID)
		if err != nil {
			return nil, err
		}
		// Re-check under the lock: the hold guarantees pending coverage, but
		// available funds must still cover the debit.
		if snap.AvailableMinor < alloc.AmountMinor {
			return nil, apperror.ErrInsufficientFunds()
		}

		release := &domain.LedgerEntry{
			ID:             uuid.New(),
			WalletID:       alloc.WalletID,
			OperationID:    captureOpID,
			OperationType:  domain.OperationPayment,
			EntryType:      domain.EntryReleaseHold,
			AmountMinor:    alloc.AmountMinor,
			Currency:       intent.Currency,
			EffectiveAt:    now,
			CreatedAt:      now,
			RelatedEntryID: &holdID,
			RelationType:   domain.RelationAdjustment,
			IdempotencyKey: req.IdempotencyKey,
		}
		debit := &domain.LedgerEntry{
			ID:             uuid.New(),
			WalletID:       alloc.WalletID,
			OperationID:    captureOpID,
			OperationType:  domain.OperationPayment,
			EntryType:      domain.EntryDebit,
			AmountMinor:    alloc.AmountMinor,
			Currency:       intent.Currency,
			EffectiveAt:    now,
			CreatedAt:      now,
			RelatedEntryID: &holdID,
			RelationType:   domain.RelationAdjustment,
			IdempotencyKey: req.IdempotencyKey,
		}
		if err := s.ledgerRepo.Insert(ctx, dbTx, release); err != nil {
			return nil, classify(err)
		}
		if err := s.ledgerRepo.Insert(ctx, dbTx, debit); err != nil {
			return nil, classify(err)
		}
		if err := s.bumpSnapshot(ctx, dbTx, snap, []*domain.LedgerEntry{release, debit}, now); err != nil {
			return nil, err
		}
		balances = append(balances, walletBalance(snap))
	}

	payment := &domain.Payment{
		ID:                 uuid.New(),
		IntentID:           intent.ID,
		OrderID:            intent.OrderID,
		AmountMinor:        intent.AmountMinor,
		Currency:           intent.Currency,
		Status:             domain.PaymentStatusCompleted,
		CaptureOperationID: captureOpID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.paymentRepo.Create(ctx, dbTx, payment); err != nil {
		return nil, classify(err)
	}
	if err := s.intentRepo.UpdateStatus(ctx, dbTx, intent.ID, domain.IntentStatusReserved, domain.IntentStatusCaptured, now); err != nil {
		return nil, classify(err)
	}

	result := &ports.OperationResult{
		Outcome:     ports.OutcomeCompleted,
		OperationID: captureOpID,
		IntentID:    &intent.ID,
		PaymentID:   &payment.ID,
		Status:      domain.IntentStatusCaptured.String(),
		Balances:    balances,
		CompletedAt: now,
	}
	if err := s.finalize(ctx, dbTx, scope, req.IdempotencyKey, result, domain.EventIntentCaptured, intent.ID, now); err != nil {
		return nil, err
	}
	s.invalidate(ctx, result.Balances)

	s.log.Info().
		Str("intent_id", intent.ID.String()).
		Str("payment_id", payment.ID.String()).
		Int64("amount_minor", intent.AmountMinor).
		Msg("payment intent captured")

	return result, nil
}

// ReleasePaymentIntent cancels a reservation, returning each held allocation
// to spendable funds.
func (s *LedgerServiceImpl) ReleasePaymentIntent(ctx context.Context, req ports.ReleaseIntentRequest) (*ports.OperationResult, error) {
	start := time.Now()
	res, err := s.releasePaymentIntent(ctx, req)
	s.record("release_intent", start, res, err)
	return res, err
}

func (s *LedgerServiceImpl) releasePaymentIntent(ctx context.Context, req ports.ReleaseIntentRequest) (*ports.OperationResult, error) {
	if req.IdempotencyKey == "" {
		return nil, apperror.Validation("idempotency_key is required")
	}
	fingerprint, err := domain.Fingerprint(req)
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	now := time.Now().UTC()
	scope := domain.ReleaseScope(req.IntentID)

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if short, err := s.claimIdempotency(ctx, dbTx, scope, req.IdempotencyKey, fingerprint, now); short != nil || err != nil {
		return short, err
	}

	intent, err := s.intentRepo.GetByIDForUpdate(ctx, dbTx, req.IntentID)
	if err != nil {
		return nil, classify(err)
	}
	if intent == nil {
		return nil, apperror.ErrNotFound("payment intent")
	}
	if err := intent.AssertTransition(domain.IntentStatusReleased); err != nil {
		return nil, err
	}

	walletIDs := make([]uuid.UUID, 0, len(intent.Allocations))
	for _, a := range intent.Allocations {
		walletIDs = append(walletIDs, a.WalletID)
	}
	wallets, err := s.lockWallets(ctx, dbTx, walletIDs)
	if err != nil {
		return nil, err
	}

	holdEntries, err := s.holdEntriesByWallet(ctx, dbTx, intent.ReserveOperationID)
	if err != nil {
		return nil, err
	}

	releaseOpID := uuid.New()
	balances := make([]ports.WalletBalance, 0, len(intent.Allocations))

	for _, alloc := range intent.Allocations {
		if err := wallets[alloc.WalletID].AssertCanOperate(); err != nil {
			return nil, err
		}

		holdID, ok := holdEntries[alloc.WalletID]
		if !ok {
			return nil, apperror.InternalError(fmt.Errorf("no hold entry for wallet %s under operation %s", alloc.WalletID, intent.ReserveOperationID))
		}

		snap, err := s.getSnapshot(ctx, dbTx, alloc.WalletID)
		if err != nil {
			return nil, err
		}

		entry := &domain.LedgerEntry{
			ID:             uuid.New(),
			WalletID:       alloc.WalletID,
			OperationID:    releaseOpID,
			OperationType:  domain.OperationRelease,
			EntryType:      domain.EntryReleaseHold,
			AmountMinor:    alloc.AmountMinor,
			Currency:       intent.Currency,
			EffectiveAt:    now,
			CreatedAt:      now,
			RelatedEntryID: &holdID,
			RelationType:   domain.RelationReversal,
			IdempotencyKey: req.IdempotencyKey,
		}
		if err := s.ledgerRepo.Insert(ctx, dbTx, entry); err != nil {
			return nil, classify(err)
		}
		if err := s.bumpSnapshot(ctx, dbTx, snap, []*domain.LedgerEntry{entry}, now); err != nil {
			return nil, err
		}
		balances = append(balances, walletBalance(snap))
	}

	if err := s.intentRepo.UpdateStatus(ctx, dbTx, intent.ID, domain.IntentStatusReserved, domain.IntentStatusReleased, now); err != nil {
		return nil, classify(err)
	}

	result := &ports.OperationResult{
		Outcome:     ports.OutcomeCompleted,
		OperationID: releaseOpID,
		IntentID:    &intent.ID,
		Status:      domain.IntentStatusReleased.String(),
		Balances:    balances,
		CompletedAt: now,
	}
	if err := s.finalize(ctx, dbTx, scope, req.IdempotencyKey, result, domain.EventIntentReleased, intent.ID, now); err != nil {
		return nil, err
	}
	s.invalidate(ctx, result.Balances)

	s.log.Info().
		Str("intent_id", intent.ID.String()).
		Int64("amount_minor", intent.AmountMinor).
		Msg("payment intent released")

	return result, nil
}

// RefundPayment credits the full captured amount back to each allocation
// wallet. Refunds are full and single-shot.
func (s *LedgerServiceImpl) RefundPayment(ctx context.Context, req ports.RefundRequest) (*ports.OperationResult, error) {
	start := time.Now()
	res, err := s.refundPayment(ctx, req)
	s.record("refund", start, res, err)
	return res, err
}

func (s *LedgerServiceImpl) refundPayment(ctx context.Context, req ports.RefundRequest) (*ports.OperationResult, error) {
	if req.IdempotencyKey == "" {
		return nil, apperror.Validation("idempotency_key is required")
	}
	fingerprint, err := domain.Fingerprint(req)
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	now := time.Now().UTC()
	scope := domain.RefundScope(req.PaymentID)

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if short, err := s.claimIdempotency(ctx, dbTx, scope, req.IdempotencyKey, fingerprint, now); short != nil || err != nil {
		return short, err
	}

	payment, err := s.paymentRepo.GetByIDForUpdate(ctx, dbTx, req.PaymentID)
	if err != nil {
		return nil, classify(err)
	}
	if payment == nil {
		return nil, apperror.ErrNotFound("payment")
	}
	if !payment.IsRefundable() {
		return nil, apperror.ErrOperationNotAllowed("payment is " + payment.Status.String())
	}

	// Allocations are immutable after reservation, so the non-locking read is
	// safe here.
	intent, err := s.intentRepo.GetByID(ctx, payment.IntentID)
	if err != nil {
		return nil, classify(err)
	}
	if intent == nil {
		return nil, apperror.InternalError(fmt.Errorf("payment %s references missing intent %s", payment.ID, payment.IntentID))
	}

	walletIDs := make([]uuid.UUID, 0, len(intent.Allocations))
	for _, a := range intent.Allocations {
		walletIDs = append(walletIDs, a.WalletID)
	}
	wallets, err := s.lockWallets(ctx, dbTx, walletIDs)
	if err != nil {
		return nil, err
	}

	debitEntries, err := s.debitEntriesByWallet(ctx, dbTx, payment.CaptureOperationID)
	if err != nil {
		return nil, err
	}

	refundOpID := uuid.New()
	refundID := uuid.New()
	balances := make([]ports.WalletBalance, 0, len(intent.Allocations))

	for _, alloc := range intent.Allocations {
		if err := wallets[alloc.WalletID].AssertCanOperate(); err != nil {
			return nil, err
		}

		debitID, ok := debitEntries[alloc.WalletID]
		if !ok {
			return nil, apperror.InternalError(fmt.Errorf("no debit entry for wallet %s under operation %s", alloc.WalletID, payment.CaptureOperationID))
		}

		snap, err := s.getSnapshot(ctx, dbTx, alloc.WalletID)
		if err != nil {
			return nil, err
		}

		entry := &domain.LedgerEntry{
			ID:             uuid.New(),
			WalletID:       alloc.WalletID,
			OperationID:    refundOpID,
			OperationType:  domain.OperationRefund,
			EntryType:      domain.EntryCredit,
			AmountMinor:    alloc.AmountMinor,
			Currency:       payment.Currency,
			EffectiveAt:    now,
			CreatedAt:      now,
			RelatedEntryID: &debitID,
			RelationType:   domain.RelationRefund,
			IdempotencyKey: req.IdempotencyKey,
		}
		if err := s.ledgerRepo.Insert(ctx, dbTx, entry); err != nil {
			return nil, classify(err)
		}
		if err := s.bumpSnapshot(ctx, dbTx, snap, []*domain.LedgerEntry{entry}, now); err != nil {
			return nil, err
		}
		balances = append(balances, walletBalance(snap))
	}

	refund := &domain.Refund{
		ID:          refundID,
		PaymentID:   payment.ID,
		AmountMinor: payment.AmountMinor,
		Currency:    payment.Currency,
		Reason:      req.Reason,
		Status:      domain.RefundStatusCompleted,
		CreatedAt:   now,
	}
	if err := s.paymentRepo.CreateRefund(ctx, dbTx, refund); err != nil {
		return nil, classify(err)
	}
	if err := s.paymentRepo.UpdateStatus(ctx, dbTx, payment.ID, domain.PaymentStatusCompleted, domain.PaymentStatusRefunded, now); err != nil {
		return nil, classify(err)
	}

	result := &ports.OperationResult{
		Outcome:     ports.OutcomeCompleted,
		OperationID: refundOpID,
		PaymentID:   &payment.ID,
		RefundID:    &refundID,
		Status:      domain.PaymentStatusRefunded.String(),
		Balances:    balances,
		CompletedAt: now,
	}
	if err := s.finalize(ctx, dbTx, scope, req.IdempotencyKey, result, domain.EventPaymentRefund, payment.ID, now); err != nil {
		return nil, err
	}
	s.invalidate(ctx, result.Balances)

	s.log.Info().
		Str("payment_id", payment.ID.String()).
		Str("refund_id", refundID.String()).
		Int64("amount_minor", payment.AmountMinor).
		Msg("payment refunded")

	return result, nil
}

// holdEntriesByWallet maps wallet ID to the Hold entry written by the given
// reserve operation.
func (s *LedgerServiceImpl) holdEntriesByWallet(ctx context.Context, tx pgx.Tx, reserveOpID uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	entries, err := s.ledgerRepo.ListByOperation(ctx, tx, reserveOpID)
	if err != nil {
		return nil, classify(err)
	}
	out := make(map[uuid.UUID]uuid.UUID, len(entries))
	for _, e := range entries {
		if e.EntryType == domain.EntryHold {
			out[e.WalletID] = e.ID
		}
	}
	return out, nil
}

// debitEntriesByWallet maps wallet ID to the Debit entry written by the given
// capture operation.
func (s *LedgerServiceImpl) debitEntriesByWallet(ctx context.Context, tx pgx.Tx, captureOpID uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	entries, err := s.ledgerRepo.ListByOperation(ctx, tx, captureOpID)
	if err != nil {
		return nil, classify(err)
	}
	out := make(map[uuid.UUID]uuid.UUID, len(entries))
	for _, e := range entries {
		if e.EntryType == domain.EntryDebit {
			out[e.WalletID] = e.ID
		}
	}
	return out, nil
}
