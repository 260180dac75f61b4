package handler

import (
	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// IntentHandler serves the payment-intent lifecycle: reserve, capture,
// release, and the refund of a captured payment.
type IntentHandler struct {
	ledgerSvc ports.LedgerService
}

func NewIntentHandler(ledgerSvc ports.LedgerService) *IntentHandler {
	return &IntentHandler{ledgerSvc: ledgerSvc}
}

// CreateIntent handles POST /api/v1/payment-intents
func (h *IntentHandler) CreateIntent(c *gin.Context) {
	key, ok := idempotencyKey(c)
	if !ok {
		return
	}

	var req dto.CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid order_id"))
		return
	}
	allocations := make([]domain.IntentAllocation, 0, len(req.Allocations))
	for _, a := range req.Allocations {
		walletID, err := uuid.Parse(a.WalletID)
		if err != nil {
			response.Error(c, apperror.Validation("invalid allocation wallet_id"))
			return
		}
		allocations = append(allocations, domain.IntentAllocation{
			WalletID:    walletID,
			AmountMinor: a.AmountMinor,
		})
	}

	res, err := h.ledgerSvc.CreatePaymentIntent(c.Request.Context(), ports.CreateIntentRequest{
		OrderID:        orderID,
		AmountMinor:    req.AmountMinor,
		Currency:       req.Currency,
		Allocations:    allocations,
		IdempotencyKey: key,
		MetadataJSON:   req.Metadata,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOperation(c, res, true)
}

// CaptureIntent handles POST /api/v1/payment-intents/:id/capture
func (h *IntentHandler) CaptureIntent(c *gin.Context) {
	intentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	key, ok := idempotencyKey(c)
	if !ok {
		return
	}

	res, err := h.ledgerSvc.CapturePaymentIntent(c.Request.Context(), ports.CaptureIntentRequest{
		IntentID:       intentID,
		IdempotencyKey: key,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOperation(c, res, false)
}

// ReleaseIntent handles POST /api/v1/payment-intents/:id/release
func (h *IntentHandler) ReleaseIntent(c *gin.Context) {
	intentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	key, ok := idempotencyKey(c)
	if !ok {
		return
	}

	res, err := h.ledgerSvc.ReleasePaymentIntent(c.Request.Context(), ports.ReleaseIntentRequest{
		IntentID:       intentID,
		IdempotencyKey: key,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOperation(c, res, false)
}

// RefundPayment handles POST /api/v1/payments/:id/refund
func (h *IntentHandler) RefundPayment(c *gin.Context) {
	paymentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	key, ok := idempotencyKey(c)
	if !ok {
		return
	}

	// Body is optional; a refund carries no amount because refunds are full.
	var req dto.RefundRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, apperror.Validation(err.Error()))
			return
		}
	}

	res, err := h.ledgerSvc.RefundPayment(c.Request.Context(), ports.RefundRequest{
		PaymentID:      paymentID,
		IdempotencyKey: key,
		Reason:         req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOperation(c, res, false)
}
