package handler

import (
	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves projection maintenance: rebuilds and drift checks.
type AdminHandler struct {
	rebuildSvc ports.RebuildService
}

func NewAdminHandler(rebuildSvc ports.RebuildService) *AdminHandler {
	return &AdminHandler{rebuildSvc: rebuildSvc}
}

// RebuildWallet handles POST /api/v1/admin/wallets/:id/rebuild
func (h *AdminHandler) RebuildWallet(c *gin.Context) {
	walletID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	res, err := h.rebuildSvc.RebuildWallet(c.Request.Context(), walletID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// RebuildBatch handles POST /api/v1/admin/rebuilds
func (h *AdminHandler) RebuildBatch(c *gin.Context) {
	var req dto.RebuildBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	summary, err := h.rebuildSvc.RebuildBatch(c.Request.Context(), req.ToBatchFilter())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, summary)
}

// DetectDrift handles GET /api/v1/admin/wallets/:id/drift
func (h *AdminHandler) DetectDrift(c *gin.Context) {
	walletID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	report, err := h.rebuildSvc.DetectDrift(c.Request.Context(), walletID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, report)
}
