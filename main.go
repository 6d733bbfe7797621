package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"

	"library_backend/internals/configs"
	database "library_backend/internals/databases"
	fineService "library_backend/internals/features/fines/service"
	reservationScheduler "library_backend/internals/features/reservations/scheduler"
	reservationService "library_backend/internals/features/reservations/service"
	"library_backend/internals/helpers/ttlstore"
	middlewares "library_backend/internals/middlewares"
	routes "library_backend/internals/route"
	"library_backend/internals/seeds"
)

func main() {
	configs.LoadEnv()

	app := fiber.New(fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
		ProxyHeader:           fiber.HeaderXForwardedFor,
		BodyLimit:             4 * 1024 * 1024,
	})

	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
	middlewares.SetupMiddlewares(app)

	// DB connect + pool + schema
	database.ConnectDB()
	database.TunePool()
	if err := database.Migrate(database.DB); err != nil {
		log.Fatalf("[DB] migrate: %v", err)
	}
	if err := seeds.RunAllSeeds(database.DB); err != nil {
		log.Fatalf("[SEED] %v", err)
	}
	database.WarmUpQueries()

	// schedulers after the DB is ready
	store := ttlstore.NewGormStore(database.DB)
	purge, err := ttlstore.StartPurgeScheduler(store, configs.App.TTLPurgeCron)
	if err != nil {
		log.Fatalf("[CLEANUP] schedule: %v", err)
	}
	sweep, err := reservationScheduler.StartExpirySweep(
		reservationService.NewReservationService(database.DB),
		configs.App.ReservationSweepCron,
	)
	if err != nil {
		log.Fatalf("[SWEEP] schedule: %v", err)
	}

	var gateway fineService.PaymentGateway
	if configs.App.MidtransServerKey != "" {
		gateway = fineService.NewMidtransGateway(configs.App.MidtransServerKey, configs.App.MidtransUseProd)
		log.Println("[MIDTRANS] gateway enabled")
	} else {
		log.Println("[MIDTRANS] MIDTRANS_SERVER_KEY not set, online fine payment disabled")
	}

	routes.SetupRoutes(app, database.DB, routes.Deps{
		Secret:  configs.App.JWTSecret,
		Tokens:  store,
		Gateway: gateway,
	})

	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	go func() {
		log.Printf("[HTTP] listening on :%s", configs.App.Port)
		if err := app.Listen("0.0.0.0:" + configs.App.Port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown: stop accepting, drain crons, close the pool
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	<-sweep.Stop().Done()
	<-purge.Stop().Done()
	database.Close(database.DB)
	log.Println("[HTTP] stopped")
}
