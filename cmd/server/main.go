package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/campusdeals/api/internal/api"
	"github.com/campusdeals/api/internal/config"
	"github.com/campusdeals/api/internal/database"
	"github.com/campusdeals/api/internal/messaging"
	"github.com/campusdeals/api/internal/realtime"
	"github.com/campusdeals/api/internal/stats"
)

type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, strings.Split(value, ",")...)
	return nil
}

var (
	addr           string
	dsn            string
	signingKey     string
	redisAddr      string
	allowedOrigins stringSliceFlag
)

func main() {
	config.LoadEnv("")

	flag.StringVar(&addr, "addr", config.Getenv("SERVER_ADDR", "localhost:8000"), "server address")
	flag.StringVar(&dsn, "dsn", config.Getenv("DATABASE_DSN",
		"host=localhost user=postgres password=postgres dbname=postgres sslmode=disable"), "database connection string")
	flag.StringVar(&signingKey, "signing-key", config.Getenv("SIGNING_KEY", ""), "base64 encoded signing key")
	flag.StringVar(&redisAddr, "redis-addr", config.Getenv("REDIS_ADDR", ""), "redis address for shared presence, empty for in-process")
	flag.Var(&allowedOrigins, "allowed-origins", "comma-separated list of allowed origins for CORS")
	flag.Parse()

	if len(allowedOrigins) == 0 {
		if origins := config.Getenv("ALLOWED_ORIGINS", ""); origins != "" {
			allowedOrigins = strings.Split(origins, ",")
		}
	}

	logger := log.New(os.Stderr, "[campusdeals] ", log.LstdFlags)

	cfg, err := config.NewConfig(addr, dsn, signingKey, redisAddr, allowedOrigins)
	if err != nil {
		logger.Fatal("config:", err)
	}

	dbConn, err := database.NewPgRepository(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("db open:", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Fatal("db close:", err)
		}
	}()

	if err := dbConn.Migrate(); err != nil {
		logger.Fatal("db migrate:", err)
	}

	mux := http.NewServeMux()

	statsUpdater := stats.NewStatsUpdater(mux)
	for _, metric := range []string{
		stats.ActiveConnections,
		stats.LiveDeliveries,
		stats.OfflineStores,
		stats.MessagesSent,
		stats.ReadReceipts,
		stats.ConnectionFailures,
	} {
		statsUpdater.RegisterMetric(metric)
	}

	var presence realtime.Registry
	if cfg.RedisAddr != "" {
		redisPresence, err := realtime.NewRedisRegistry(cfg.RedisAddr)
		if err != nil {
			logger.Fatal("redis presence:", err)
		}
		defer func() {
			if err := redisPresence.Close(); err != nil {
				logger.Println("redis close:", err)
			}
		}()
		presence = redisPresence
	} else {
		presence = realtime.NewLocalRegistry()
	}

	store := messaging.NewStore(dbConn, logger)
	rtServer := realtime.NewServer(logger, store, presence, statsUpdater)

	srv := api.NewApp(mux, logger, rtServer, dbConn, store, statsUpdater, cfg)

	statsUpdater.Run()
	defer statsUpdater.Stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Printf("received signal: %s\n", sig)
	case err := <-errCh:
		logger.Println("server:", err)
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("HTTP server shutdown:", err)
	}

	logger.Println("closing realtime connections...")
	rtServer.Shutdown()

	logger.Println("shutdown complete")
}
