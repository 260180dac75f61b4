package handler

import (
	"wallet-ledger/config"
	"wallet-ledger/internal/adapter/http/middleware"
	"wallet-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	LedgerSvc      ports.LedgerService
	ReadSvc        ports.ReadService
	RebuildSvc     ports.RebuildService
	HealthCheckers []ports.HealthChecker
	Registry       *prometheus.Registry // nil = /metrics disabled
	JWT            config.JWTConfig
	Logger         zerolog.Logger
}

// Route is one entry in the route table. Admin routes sit behind JWT auth
// and require the admin role.
type Route struct {
	Method  string
	Path    string
	Admin   bool
	Handler gin.HandlerFunc
}

// Routes returns the complete route table. Every endpoint the server exposes
// under /api/v1 is declared here; nothing registers routes anywhere else.
func Routes(deps RouterDeps) []Route {
	walletHandler := NewWalletHandler(deps.LedgerSvc, deps.ReadSvc)
	intentHandler := NewIntentHandler(deps.LedgerSvc)
	adminHandler := NewAdminHandler(deps.RebuildSvc)

	return []Route{
		{Method: "POST", Path: "/wallets/:id/topup", Handler: walletHandler.TopUp},
		{Method: "GET", Path: "/wallets/:id/balance", Handler: walletHandler.GetBalance},
		{Method: "GET", Path: "/wallets/:id/transactions", Handler: walletHandler.GetTransactions},

		{Method: "POST", Path: "/payment-intents", Handler: intentHandler.CreateIntent},
		{Method: "POST", Path: "/payment-intents/:id/capture", Handler: intentHandler.CaptureIntent},
		{Method: "POST", Path: "/payment-intents/:id/release", Handler: intentHandler.ReleaseIntent},
		{Method: "POST", Path: "/payments/:id/refund", Handler: intentHandler.RefundPayment},

		{Method: "POST", Path: "/admin/wallets/:id/rebuild", Admin: true, Handler: adminHandler.RebuildWallet},
		{Method: "POST", Path: "/admin/rebuilds", Admin: true, Handler: adminHandler.RebuildBatch},
		{Method: "GET", Path: "/admin/wallets/:id/drift", Admin: true, Handler: adminHandler.DetectDrift},
	}
}

// SetupRouter initialises the Gin engine from the route table.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	if deps.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/api/v1")
	jwtAuth := middleware.JWTAuth(deps.JWT, deps.Logger)
	adminOnly := middleware.RequireAdmin()

	for _, rt := range Routes(deps) {
		if rt.Admin {
			v1.Handle(rt.Method, rt.Path, jwtAuth, adminOnly, rt.Handler)
			continue
		}
		v1.Handle(rt.Method, rt.Path, rt.Handler)
	}

	return r
}
