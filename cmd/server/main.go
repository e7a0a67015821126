package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"

	"placement/portal/internal/config"
	"placement/portal/internal/db"
	placementgrpc "placement/portal/internal/grpc"
	internalhttp "placement/portal/internal/http"
	"placement/portal/internal/jobs"
	"placement/portal/internal/logging"
	"placement/portal/internal/oauth"
	"placement/portal/internal/ratelimit"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	if cfg.MigrateOnStart {
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			log.WithError(err).Fatal("migrations failed")
		}
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("db connection failed")
	}
	defer pool.Close()
	store := db.NewStore(pool)

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.WithError(err).Fatal("redis ping failed")
		}
		cancel()
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.WithError(err).Warn("redis close error")
			}
		}()
	}

	var limiter ratelimit.Limiter
	if redisClient != nil {
		limiter = ratelimit.NewRedisLimiter(redisClient, "placement:apply", cfg.ApplyRateLimit, cfg.ApplyRateWindow, log)
	} else {
		limiter = ratelimit.NewMemoryLimiter(cfg.ApplyRateLimit, cfg.ApplyRateWindow)
	}

	var google *oauth.Google
	if cfg.GoogleEnabled() {
		google = oauth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL,
			oauth.NewRedisStateStore(redisClient), cfg.OAuthStateTTL)
	}

	server := internalhttp.NewServer(cfg, store, limiter, google, log)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if _, err := jobs.StartOfferCloseJob(ctx, cfg, store.Queries, log); err != nil {
		log.WithError(err).Fatal("offer close job init failed")
	}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("placement http listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("http server error")
		}
	}()

	var grpcServer *grpc.Server
	if cfg.ServiceAuthToken != "" {
		serviceAuthInterceptor, err := placementgrpc.NewServiceAuthUnaryInterceptor(cfg.ServiceAuthToken)
		if err != nil {
			log.WithError(err).Fatal("grpc service auth init failed")
		}
		grpcServer = grpc.NewServer(grpc.UnaryInterceptor(serviceAuthInterceptor))
		placementgrpc.RegisterPlacementQueryServiceServer(grpcServer, placementgrpc.NewPlacementQueryServer(store.Queries, log))

		go func() {
			listener, err := net.Listen("tcp", cfg.GRPCAddr)
			if err != nil {
				log.WithError(err).Fatal("grpc listen error")
			}
			log.WithField("addr", cfg.GRPCAddr).Info("placement grpc listening")
			if err := grpcServer.Serve(listener); err != nil {
				log.WithError(err).Fatal("grpc server error")
			}
		}()
	} else {
		log.Warn("SERVICE_AUTH_TOKEN not set, grpc query service disabled")
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("shutdown error")
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	log.Info("placement stopped")
}
