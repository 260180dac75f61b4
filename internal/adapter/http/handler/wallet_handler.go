package handler

import (
	"strconv"

	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/adapter/http/middleware"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WalletHandler serves top-ups and balance/transaction queries.
type WalletHandler struct {
	ledgerSvc ports.LedgerService
	readSvc   ports.ReadService
}

func NewWalletHandler(ledgerSvc ports.LedgerService, readSvc ports.ReadService) *WalletHandler {
	return &WalletHandler{ledgerSvc: ledgerSvc, readSvc: readSvc}
}

// pathUUID parses a UUID path parameter, writing the error response itself.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Error(c, apperror.Validation("invalid "+name+" parameter"))
		return uuid.Nil, false
	}
	return id, true
}

// idempotencyKey reads the mandatory Idempotency-Key header.
func idempotencyKey(c *gin.Context) (string, bool) {
	key := c.GetHeader(middleware.HeaderIdempotencyKey)
	if key == "" {
		response.Error(c, apperror.Validation("Idempotency-Key header is required"))
		return "", false
	}
	return key, true
}

// respondOperation maps a write result to transport semantics: a replayed
// request returns 200, an in-flight duplicate returns 202, a fresh effect
// returns the given success status.
func respondOperation(c *gin.Context, res *ports.OperationResult, created bool) {
	body := dto.FromOperationResult(res)
	switch res.Outcome {
	case ports.OutcomeInProgress:
		response.Accepted(c, body)
	case ports.OutcomeCompletedCached:
		response.OK(c, body)
	default:
		if created {
			response.Created(c, body)
		} else {
			response.OK(c, body)
		}
	}
}

// TopUp handles POST /api/v1/wallets/:id/topup
func (h *WalletHandler) TopUp(c *gin.Context) {
	walletID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	key, ok := idempotencyKey(c)
	if !ok {
		return
	}

	var req dto.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	res, err := h.ledgerSvc.TopUp(c.Request.Context(), ports.TopUpRequest{
		WalletID:          walletID,
		AmountMinor:       req.AmountMinor,
		Currency:          req.Currency,
		IdempotencyKey:    key,
		ExternalReference: req.ExternalReference,
		MetadataJSON:      req.Metadata,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOperation(c, res, true)
}

// GetBalance handles GET /api/v1/wallets/:id/balance
func (h *WalletHandler) GetBalance(c *gin.Context) {
	walletID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	snap, err := h.readSvc.GetBalance(c.Request.Context(), walletID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FromSnapshot(snap))
}

// GetTransactions handles GET /api/v1/wallets/:id/transactions
func (h *WalletHandler) GetTransactions(c *gin.Context) {
	walletID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	take := 0
	if raw := c.Query("take"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, apperror.Validation("invalid take parameter"))
			return
		}
		take = parsed
	}

	entries, err := h.readSvc.GetTransactions(c.Request.Context(), walletID, take)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FromLedgerEntries(entries))
}
