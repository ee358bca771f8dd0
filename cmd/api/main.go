package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harentsoaR/clinic-api/internal/config"
	"github.com/harentsoaR/clinic-api/internal/database"
	"github.com/harentsoaR/clinic-api/internal/events"
	"github.com/harentsoaR/clinic-api/internal/handlers"
	"github.com/harentsoaR/clinic-api/internal/identity"
	"github.com/harentsoaR/clinic-api/internal/middleware"
	"github.com/harentsoaR/clinic-api/internal/services"
	"github.com/harentsoaR/clinic-api/internal/store"
	"github.com/harentsoaR/clinic-api/internal/utils"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-api",
		Short: "Clinic management API",
	}
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required")
			}
			db, err := database.OpenPostgres(cfg.DatabaseURL, cfg.IsDev())
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			fmt.Println("migrations applied")
			return nil
		},
	}
}

func runServer(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger, err := utils.NewLogger(cfg.LogLevel, cfg.LogFormat, "clinic-api")
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	loc, _ := cfg.Location()

	var st store.Store
	switch cfg.Store {
	case config.StoreMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		st = store.NewMemoryStore()
	default:
		db, err := database.OpenPostgres(cfg.DatabaseURL, cfg.IsDev())
		if err != nil {
			return err
		}
		if err := database.Migrate(db); err != nil {
			return err
		}
		st = store.NewGormStore(db)
	}

	hub := events.NewHub(logger)
	publishers := events.Multi{hub}

	if cfg.RedisAddr != "" {
		rdb, err := database.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		publishers = append(publishers, events.NewRedisPublisher(rdb))
		logger.Info("publishing events to redis", zap.String("addr", cfg.RedisAddr))
	}

	if cfg.MongoURI != "" {
		client, mdb, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return err
		}
		defer client.Disconnect(context.Background()) //nolint:errcheck
		publishers = append(publishers, events.NewArchive(mdb))
		logger.Info("archiving events to mongo", zap.String("database", cfg.MongoDatabase))
	}

	var sms services.Notifier
	if cfg.TextbeltAPIKey != "" {
		sms = services.NewNotificationService(cfg.TextbeltURL, cfg.TextbeltAPIKey, loc, logger)
	}

	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	svc := services.New(services.Options{
		Store:    st,
		Events:   publishers,
		SMS:      sms,
		Tokens:   tokens,
		IDs:      identity.NewGenerator(cfg.IDMaxAttempts),
		Logger:   logger,
		Location: loc,
	})

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: !cfg.AllowAllOrigins(),
		MaxAge:           12 * time.Hour,
	}
	if cfg.AllowAllOrigins() {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSOrigins
	}
	r.Use(cors.New(corsCfg))

	handlers.NewHandler(svc, hub, logger).RegisterRoutes(r, tokens)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("port", cfg.Port), zap.String("store", cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server exited")
	return nil
}
