package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	portssvc "github.com/elysion-gg/elysion-bank/internal/core/ports/services"
	"github.com/elysion-gg/elysion-bank/internal/middleware"
	"github.com/elysion-gg/elysion-bank/internal/platform/config"
)

// transferRate bounds how often a single user can move money.
var transferRate = limiter.Rate{
	Period: time.Minute,
	Limit:  10,
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, cfg, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// All commands arrive from the gateway process with a signed bot token.
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.BotTokenSecret, false))
	admin := r.Group("/api/v1/admin", middleware.AuthMiddleware(cfg.BotTokenSecret, true))
	events := r.Group("/api/v1/events", middleware.AuthMiddleware(cfg.BotTokenSecret, true))

	transferLimiter := middleware.RateLimit(limiter.New(memory.NewStore(), transferRate))

	registerLedgerRoutes(v1, admin, services.Ledger, cfg.MaxTxnAmount, transferLimiter)
	registerSalaryRoutes(v1, admin, services.Ledger, services.SalaryConfig)
	registerVoiceRoutes(v1, events, services.Ledger, services.Voice, cfg.VoiceChannelCost)
}
