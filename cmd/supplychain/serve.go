package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"supplychain/internal/api"
	"supplychain/internal/auth"
	"supplychain/internal/config"
	"supplychain/internal/database"
	"supplychain/internal/forecast"
	"supplychain/internal/grpcserver"
	"supplychain/internal/logging"
	"supplychain/internal/monitoring"
	"supplychain/internal/push"
	"supplychain/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API, push channel, metrics and health servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger, err := logging.New(cfg.Log)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		return err
	}
	if cfg.Database.Seed {
		n, err := database.Seed(db)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Info("seeded starter inventory", zap.Int("items", n))
		}
	}
	st := store.New(db, cfg.Database.Driver)

	monitor := monitoring.NewMonitor()

	// Push channel, optionally shared between instances through redis
	hub := push.NewHub(push.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Recorder:       monitor,
		Logger:         logger.Named("push"),
	})
	defer hub.Close()

	var publisher push.Publisher = hub
	if cfg.Broker.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Broker.RedisAddr,
			Password: cfg.Broker.RedisPassword,
			DB:       cfg.Broker.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis at %s: %w", cfg.Broker.RedisAddr, err)
		}
		relay := push.NewRedisRelay(rdb, cfg.Broker.Channel, hub, logger.Named("relay"))
		publisher = relay
		go func() {
			if err := relay.Run(ctx); err != nil {
				logger.Error("redis relay stopped", zap.Error(err))
			}
		}()
	}

	// Restock advisor
	model, err := forecast.NewModel(cfg.Advisor)
	if err != nil {
		return err
	}
	advisor := forecast.NewAdvisor(model, logger.Named("advisor"))

	var issuer *auth.Issuer
	if cfg.Auth.Enabled {
		issuer = auth.NewIssuer(cfg.Auth)
	}

	srv := api.NewServer(api.Deps{
		Items:          st.Items,
		Orders:         st.Orders,
		Customers:      st.Customers,
		Suppliers:      st.Suppliers,
		Reports:        st.Reports,
		DB:             st,
		Publisher:      publisher,
		Hub:            hub,
		Issuer:         issuer,
		Monitor:        monitor,
		Advisor:        advisor,
		Logger:         logger.Named("api"),
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	errCh := make(chan error, 3)
	servers := []*http.Server{{Addr: cfg.Server.Addr, Handler: srv.Router}}

	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, monitor.Handler())
		servers = append(servers, &http.Server{Addr: cfg.Metrics.Addr, Handler: mux})
	}

	for _, s := range servers {
		s := s
		logger.Info("starting http server", zap.String("addr", s.Addr))
		go func() {
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("http server on %s: %w", s.Addr, err)
			}
		}()
	}

	var health *grpcserver.Server
	if cfg.GRPC.Enabled {
		lis, err := net.Listen("tcp", cfg.GRPC.Addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.GRPC.Addr, err)
		}
		health = grpcserver.New(logger.Named("grpc"))
		go health.Watch(ctx, cfg.GRPC.CheckInterval, st.Ping)
		logger.Info("starting grpc health server", zap.String("addr", cfg.GRPC.Addr))
		go func() {
			if err := health.Serve(lis); err != nil {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down servers")
	case err := <-errCh:
		logger.Error("server failed", zap.Error(err))
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	hub.Close()
	for _, s := range servers {
		if err := s.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http server shutdown", zap.String("addr", s.Addr), zap.Error(err))
		}
	}
	if health != nil {
		health.Stop()
	}
	logger.Info("servers stopped")
	return nil
}
