package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shop-backend/internal/config"
	"shop-backend/internal/env"
	"shop-backend/internal/infrastructure/paymob"
	"shop-backend/internal/infrastructure/repo"
	"shop-backend/internal/server"
	"shop-backend/internal/usecase"
)

func main() {
	env.Load(".env", ".env.local")
	envDefaults := config.EnvDefaults()

	envName := flag.String("env", envDefaults.Env, "")
	port := flag.Int("port", envDefaults.Port, "")
	dbDSN := flag.String("db-dsn", envDefaults.DBDSN, "")
	migrationsDir := flag.String("migrations", envDefaults.MigrationsDir, "")
	flag.Parse()

	cfg := envDefaults
	cfg.Env = *envName
	cfg.Port = *port
	cfg.DBDSN = *dbDSN
	cfg.MigrationsDir = *migrationsDir

	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	var orders usecase.OrderRepo
	if cfg.DBDSN != "" {
		pg, err := repo.NewPostgresRepo(cfg.DBDSN)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer pg.Close()
		if err := pg.RunMigrations(cfg.MigrationsDir); err != nil {
			log.Fatalf("migrations: %v", err)
		}
		log.Println("database migrations completed")
		orders = pg
	} else {
		log.Println("no SHOP_DB_DSN set, using in-memory order store")
		orders = repo.NewMemoryOrderRepo()
	}

	processor := paymob.NewClient(cfg.PaymobBaseURL, cfg.PaymobAPIKey, cfg.PaymobIntegrationID, cfg.Currency)
	checkout := &usecase.CheckoutService{Repo: orders, Processor: processor, Currency: cfg.Currency}
	reconciler := usecase.NewReconcileService(orders)
	webhooks := &usecase.WebhookService{Secret: cfg.PaymobHMACSecret, Transactions: reconciler}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      server.New(cfg, checkout, webhooks, orders).Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("shop-backend (%s) listening on :%d", cfg.Env, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}
	log.Println("server exited")
}
