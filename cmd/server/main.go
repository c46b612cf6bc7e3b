package main // Entry point package

import (
	"context" // Cancellation for background workers
	"log"     // Logging library

	"github.com/joho/godotenv"    // Loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/arthemi/roombook/internal/config"     // Internal config loader
	"github.com/arthemi/roombook/internal/database"   // MySQL connection pool
	"github.com/arthemi/roombook/internal/engine"     // Transactional reservation core
	"github.com/arthemi/roombook/internal/handler"    // HTTP handlers
	"github.com/arthemi/roombook/internal/middleware" // Rate limiting and response cache
	"github.com/arthemi/roombook/internal/payment"    // Payment gateway client
	"github.com/arthemi/roombook/internal/pricing"    // Price quoting
	"github.com/arthemi/roombook/internal/queue"      // Broker consumer
	"github.com/arthemi/roombook/internal/repository" // Data access layer
	"github.com/arthemi/roombook/internal/router"     // Route registration
	"github.com/arthemi/roombook/internal/sweeper"    // Expired-hold sweeper
)

func main() {
	// Load .env if present; real environments set variables directly.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}
	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	// Repositories share the pool; transactional methods take an explicit tx.
	rooms := repository.NewRoomRepo(db)
	bookings := repository.NewBookingRepo(db)
	credits := repository.NewCreditRepo(db)
	coupons := repository.NewCouponRepo(db)
	payments := repository.NewPaymentRepo(db)

	eng := engine.New(db, rooms, bookings, credits, coupons, payments,
		payment.LogGateway{}, pricing.HourlyQuoter{}, engine.Config{
			StaleHoldTolerance: cfg.StaleHoldTolerance,
			MinAdvanceNotice:   cfg.MinAdvanceNotice,
			RefundWindow:       cfg.RefundWindow,
			CleanupBuffer:      cfg.CleanupBuffer,
			PaymentHoldTTL:     cfg.PaymentHoldTTL,
			MinChargeCents:     cfg.MinChargeCents,
			DevCouponCodes:     cfg.DevCouponCodes,
			DevCouponEmails:    cfg.DevCouponEmails,
		})

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Background expiry sweeper; the same sweeper also backs /internal/sweep.
	sw := sweeper.New(eng, bookings, cfg.SweepInterval, cfg.ExpireLead, cfg.ExpireHorizon)
	go sw.Run(ctx)

	// Broker consumer writing the booking audit log.  Runs its own
	// reconnect loop and never takes the server down.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	e := echo.New()

	// Redis backs rate limiting and the public response cache.  A nil
	// client disables both gracefully.
	rdb := config.NewRedisClient()
	var cacheMW echo.MiddlewareFunc
	if rdb == nil {
		log.Println("redis unavailable: rate limiting and caching disabled")
	} else {
		e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
		cacheMW = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	}

	router.RegisterRoutes(e) // health check
	router.RegisterPublic(e, handler.NewAvailabilityHandler(rooms, bookings), cacheMW)
	router.RegisterBookings(e, handler.NewBookingHandler(eng, bookings, credits), cfg.JWTSecret)
	router.RegisterAdmin(e, handler.NewAdminHandler(eng, bookings), cfg.JWTSecret)
	router.RegisterInternal(e, handler.NewSweepHandler(sw, cfg.SweepSecret))

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
