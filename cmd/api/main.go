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

	"github.com/joho/godotenv"

	"github.com/jagmag/crm-backend/internal/config"
	"github.com/jagmag/crm-backend/internal/handler"
	authService "github.com/jagmag/crm-backend/internal/service/auth"
	"github.com/jagmag/crm-backend/internal/service/connector"
	conversationService "github.com/jagmag/crm-backend/internal/service/conversation"
	customerService "github.com/jagmag/crm-backend/internal/service/customer"
	dashboardService "github.com/jagmag/crm-backend/internal/service/dashboard"
	"github.com/jagmag/crm-backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	var st store.Store
	if cfg.Database.URL != "" {
		pg, err := store.NewPostgres(cfg.Database.URL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		st = pg
		log.Println("connected to hosted database")
	} else {
		log.Println("DATABASE_URL not set, using in-memory store (data will not persist)")
		st = store.NewMemory()
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Printf("store close: %v", err)
		}
	}()

	tokens := authService.New(authService.Config{
		Secret:   cfg.Auth.Secret,
		TokenTTL: cfg.Auth.TokenTTL,
	})

	connectorClient := connector.NewClient(connector.Config{
		BaseURL:     cfg.Connector.BaseURL,
		AdminSecret: cfg.Connector.AdminSecret,
		Timeout:     cfg.Connector.Timeout,
	})
	if !connectorClient.Configured() {
		log.Println("connector credentials not configured, refresh endpoint disabled")
	}

	router := handler.NewRouter(handler.Deps{
		Tokens:        tokens,
		LoginPassword: cfg.Auth.Password,
		Reader:        conversationService.NewReader(st),
		Customers:     customerService.NewService(st),
		Dashboards:    dashboardService.NewService(st),
		Connector:     connectorClient,
		Store:         st,
	})

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("jagmag CRM backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
