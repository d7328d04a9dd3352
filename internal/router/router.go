package router

import (
	"net/http"
	"time"

	"bazario/config"
	"bazario/internal/domain"
	"bazario/internal/handler"
	"bazario/internal/middleware"
	"bazario/internal/presence"
	"bazario/internal/repository"
	"bazario/internal/service"
	"bazario/internal/ws"
	"bazario/pkg/gateway"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Setup wires repositories, services and handlers onto the gin engine.
func Setup(cfg *config.Config, db *gorm.DB, rdb *redis.Client, gw gateway.Client, hub *ws.Hub) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	userRepo := repository.NewUserRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	topupRepo := repository.NewTopupOrderRepository(db)
	payoutRepo := repository.NewPayoutRepository(db)
	planRepo := repository.NewBoostPlanRepository(db)
	listingRepo := repository.NewListingRepository(db)

	tracker := presence.NewTracker(rdb)
	otpStore := presence.NewOTPStore(rdb)

	notifier := service.NewWalletNotifier(hub)
	ledger := service.NewLedgerService(db, gw, notifier, cfg.Payout)
	authSvc := service.NewAuthService(cfg, userRepo, otpStore)

	authH := handler.NewAuthHandler(authSvc)
	walletH := handler.NewWalletHandler(ledger, walletRepo, topupRepo)
	boostH := handler.NewBoostHandler(ledger, planRepo)
	listingH := handler.NewListingHandler(listingRepo)
	payoutH := handler.NewPayoutHandler(ledger, payoutRepo)
	adminH := handler.NewAdminHandler(ledger, payoutRepo, userRepo, tracker)
	webhookH := handler.NewWebhookHandler(ledger, gw)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	limiter := middleware.NewInMemoryRateLimiter(60, time.Minute)

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(limiter))
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authH.Register)
			auth.POST("/verify-email", authH.VerifyEmail)
			auth.POST("/login", authH.Login)
			auth.POST("/refresh", authH.Refresh)
		}

		// Gateway deliveries authenticate with the webhook signature, not a JWT.
		api.POST("/webhooks/razorpay", webhookH.Handle)

		authed := api.Group("")
		authed.Use(middleware.AuthRequired(&cfg.JWT))
		{
			wallet := authed.Group("/wallet")
			{
				wallet.GET("", walletH.GetBalance)
				wallet.GET("/transactions", walletH.ListTransactions)
				wallet.GET("/transactions/:id", walletH.GetTransaction)
				wallet.POST("/topup/order", walletH.CreateTopupOrder)
				wallet.GET("/topup/orders", walletH.ListTopupOrders)
				wallet.POST("/topup/verify", walletH.VerifyTopup)
			}

			authed.GET("/boost-plans", boostH.ListPlans)

			listings := authed.Group("/listings")
			{
				listings.POST("", listingH.Create)
				listings.GET("/mine", listingH.ListMine)
				listings.GET("/:id", listingH.Get)
				listings.POST("/:id/boost", boostH.Purchase)
			}

			payouts := authed.Group("/payouts")
			{
				payouts.POST("", payoutH.Create)
				payouts.GET("", payoutH.List)
				payouts.POST("/:id/cancel", payoutH.Cancel)
			}

			admin := authed.Group("/admin")
			admin.Use(middleware.RequireRole(domain.RoleAdmin))
			{
				admin.GET("/payouts", adminH.ListPayouts)
				admin.GET("/payouts/:id", adminH.GetPayout)
				admin.POST("/payouts/:id/process", adminH.ProcessPayout)
				admin.POST("/payouts/:id/reject", adminH.RejectPayout)
				admin.POST("/refunds", adminH.CreateRefund)
				admin.PUT("/users/:id/kyc", adminH.SetKYC)
			}
		}
	}

	r.GET("/ws/wallet", ws.UpgradeWalletWS(&cfg.JWT, hub, tracker))

	return r
}
