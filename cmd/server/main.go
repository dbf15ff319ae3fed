package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/skyreserve/airline-reservation/internal/config"
	"github.com/skyreserve/airline-reservation/internal/database"
	"github.com/skyreserve/airline-reservation/internal/handler"
	"github.com/skyreserve/airline-reservation/internal/middleware"
	"github.com/skyreserve/airline-reservation/internal/queue"
	"github.com/skyreserve/airline-reservation/internal/repository"
	"github.com/skyreserve/airline-reservation/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg := config.Load()

	info := database.ParseDatabaseURL(cfg.DatabaseURL)
	legacy := database.ParseDatabaseURL(cfg.LegacyDBURL)
	db, dialect, err := database.Open(info, legacy)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	log.Printf("connected to %s backend", dialect.Name())

	customers := repository.NewCustomerRepo(db, dialect)
	agents := repository.NewAgentRepo(db, dialect)
	staff := repository.NewStaffRepo(db, dialect)
	fleet := repository.NewFleetRepo(db, dialect)
	flights := repository.NewFlightRepo(db, dialect)
	reservations := repository.NewReservationRepo(db, dialect)

	e := echo.New()

	// Response cache and rate limiting cover the public browse routes
	// only.  Authenticated responses are per-user and must not be served
	// from a shared cache or counted against a shared bucket.  Both
	// degrade to no-ops when Redis is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Print("redis unavailable; response cache and rate limiting disabled")
	}

	router.RegisterRoutes(e)
	router.RegisterPublic(e, handler.NewPublicHandler(flights, fleet),
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, customers, agents, staff, fleet), cfg.JWTSecret)
	router.RegisterCustomer(e, handler.NewCustomerHandler(customers, flights, reservations, cfg.RabbitURL), cfg.JWTSecret)
	router.RegisterAgent(e, handler.NewAgentHandler(agents, customers, flights, reservations, cfg.RabbitURL), cfg.JWTSecret)
	router.RegisterStaff(e, handler.NewStaffHandler(staff, flights, fleet), cfg.JWTSecret)

	// Purchase events are consumed in the background; the consumer keeps
	// reconnecting on broker failures.
	go func() {
		if err := queue.StartPurchaseConsumer(cfg.RabbitURL); err != nil {
			log.Printf("purchase consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
