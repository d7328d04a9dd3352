package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bazario/config"
	"bazario/internal/database"
	"bazario/internal/repository"
	"bazario/internal/router"
	"bazario/internal/ws"
	"bazario/pkg/gateway"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("[Main] database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("[Main] migrate: %v", err)
	}
	database.SeedAdmin(db)
	database.SeedBoostPlans(db)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Printf("[Main] redis unavailable: %v", err)
	}

	gw := gateway.NewRazorpayClient(
		cfg.Razorpay.BaseURL,
		cfg.Razorpay.KeyID,
		cfg.Razorpay.KeySecret,
		cfg.Razorpay.WebhookSecret,
		cfg.Razorpay.AccountNumber,
	)

	hub := ws.NewHub()
	r := router.Setup(cfg, db, rdb, gw, hub)

	stopExpiry := startBoostExpiry(db)
	defer stopExpiry()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("[Main] listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[Main] server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("[Main] shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[Main] shutdown: %v", err)
	}
	_ = rdb.Close()
}

// startBoostExpiry clears lapsed listing boosts every few minutes. Purely a
// flag sweep; no wallet movement is involved.
func startBoostExpiry(db *gorm.DB) func() {
	listingRepo := repository.NewListingRepository(db)
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := listingRepo.ExpireBoosts(); err != nil {
					log.Printf("[Boost] expiry sweep: %v", err)
				} else if n > 0 {
					log.Printf("[Boost] expired %d boosts", n)
				}
			case <-done:
				return
			}
		}
	}()
	return func() { close(done) }
}
