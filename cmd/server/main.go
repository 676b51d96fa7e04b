package main

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ravshanbk/asset-reservation/internal/cache"
	"github.com/ravshanbk/asset-reservation/internal/config"
	"github.com/ravshanbk/asset-reservation/internal/database"
	"github.com/ravshanbk/asset-reservation/internal/engine"
	"github.com/ravshanbk/asset-reservation/internal/handler"
	"github.com/ravshanbk/asset-reservation/internal/queue"
	"github.com/ravshanbk/asset-reservation/internal/repository"
	"github.com/ravshanbk/asset-reservation/internal/router"
	queue_publisher "github.com/ravshanbk/asset-reservation/internal/service"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; caching and rate limiting disabled")
	}

	assetRepo := repository.NewAssetRepo(db)
	relRepo := repository.NewRelationshipRepo(db)
	resvRepo := repository.NewReservationRepo(db)

	// Asset lookups go through an injected TTL cache rather than any
	// process-global state; a nil Redis client makes it a passthrough.
	assets := cache.NewAssetCache(assetRepo, rdb, time.Duration(cfg.AssetCacheTTLSec)*time.Second)

	orch := engine.NewOrchestrator(assets, relRepo, resvRepo)
	var pub handler.EventPublisher = queue_publisher.Publisher{}

	h := router.Handlers{
		Booking:  handler.NewBookingHandler(orch, resvRepo, pub),
		Admin:    handler.NewAdminHandler(orch, resvRepo, pub),
		Asset:    handler.NewAssetHandler(assets, orch.Resolver()),
		Calendar: handler.NewCalendarHandler(orch.Index(), engine.NewAggregator(resvRepo)),
	}

	// Background consumer mirrors reservation events to logs/reservation.log.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e, h, cfg.JWTSecret, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
