package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"wallet-ledger/config"
	"wallet-ledger/internal/core/ports/mocks"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func testRouterDeps(ctrl *gomock.Controller) RouterDeps {
	return RouterDeps{
		LedgerSvc:  mocks.NewMockLedgerService(ctrl),
		ReadSvc:    mocks.NewMockReadService(ctrl),
		RebuildSvc: mocks.NewMockRebuildService(ctrl),
		Registry:   prometheus.NewRegistry(),
		JWT:        config.JWTConfig{Secret: "test-secret", Issuer: "wallet-ledger"},
		Logger:     zerolog.Nop(),
	}
}

func TestRoutes_Table(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	routes := Routes(testRouterDeps(ctrl))

	seen := make(map[string]bool, len(routes))
	adminCount := 0
	for _, rt := range routes {
		seen[rt.Method+" "+rt.Path] = true
		if rt.Admin {
			adminCount++
		}
	}

	assert.Len(t, routes, 10)
	assert.Equal(t, 3, adminCount)
	assert.True(t, seen["POST /wallets/:id/topup"])
	assert.True(t, seen["GET /wallets/:id/balance"])
	assert.True(t, seen["GET /wallets/:id/transactions"])
	assert.True(t, seen["POST /payment-intents"])
	assert.True(t, seen["POST /payment-intents/:id/capture"])
	assert.True(t, seen["POST /payment-intents/:id/release"])
	assert.True(t, seen["POST /payments/:id/refund"])
	assert.True(t, seen["POST /admin/wallets/:id/rebuild"])
	assert.True(t, seen["POST /admin/rebuilds"])
	assert.True(t, seen["GET /admin/wallets/:id/drift"])
}

func TestSetupRouter_AdminRouteRequiresToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r := SetupRouter(testRouterDeps(ctrl))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/admin/rebuilds", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSetupRouter_HealthAndMetrics(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r := SetupRouter(testRouterDeps(ctrl))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
