package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/sbilibin2017/rewear-exchange/internal/handlers"
	"github.com/sbilibin2017/rewear-exchange/internal/jwt"
	"github.com/sbilibin2017/rewear-exchange/internal/logger"
	"github.com/sbilibin2017/rewear-exchange/internal/middlewares"
	"github.com/sbilibin2017/rewear-exchange/internal/repositories"
	"github.com/sbilibin2017/rewear-exchange/internal/services"
	"github.com/sbilibin2017/rewear-exchange/internal/txmanager"

	_ "github.com/jackc/pgx/v5/stdlib"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// config holds every setting read from the environment.
type config struct {
	AppHost  string
	AppPort  string
	LogLevel string

	PGHost         string
	PGPort         int
	PGUser         string
	PGPassword     string
	PGDB           string
	PGMaxOpenConns int
	PGMaxIdleConns int
	PGLockTimeout  time.Duration

	RedisHost         string
	RedisPort         int
	RedisDB           int
	RedisPassword     string
	RedisPoolSize     int
	RedisMinIdleConns int
	RedisExchangesTTL time.Duration

	KafkaBrokers       []string
	KafkaExchangeTopic string

	JWTSecretKey  string
	JWTExpiration time.Duration

	SignupBonusPoints int64
}

// @title rewear-exchange API
// @version 1.0.0
// @description Peer-to-peer clothing exchange with direct swaps and point-based exchanges
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service. Version: %s, Commit: %s, Build: %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns the
// application, database, Redis, Kafka, logging, and JWT configuration.
func parseConfig(path string) (cfg config, err error) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}
	getInt := func(key, defaultValue string) (int, error) {
		v, err := strconv.Atoi(getEnv(key, defaultValue))
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return v, nil
	}

	// Application config
	cfg.AppHost = getEnv("APP_HOST", "localhost")
	cfg.AppPort = getEnv("APP_PORT", "8080")
	cfg.LogLevel = getEnv("APP_LOG_LEVEL", "info")

	// PostgreSQL config
	cfg.PGHost = getEnv("POSTGRES_HOST", "localhost")
	cfg.PGUser = getEnv("POSTGRES_USER", "user")
	cfg.PGPassword = getEnv("POSTGRES_PASSWORD", "password")
	cfg.PGDB = getEnv("POSTGRES_DB", "database")
	if cfg.PGPort, err = getInt("POSTGRES_PORT", "5432"); err != nil {
		return
	}
	if cfg.PGMaxOpenConns, err = getInt("POSTGRES_MAX_OPEN_CONNS", "16"); err != nil {
		return
	}
	if cfg.PGMaxIdleConns, err = getInt("POSTGRES_MAX_IDLE_CONNS", "8"); err != nil {
		return
	}
	lockTimeoutMS, err := getInt("POSTGRES_LOCK_TIMEOUT_MS", "2000")
	if err != nil {
		return
	}
	cfg.PGLockTimeout = time.Duration(lockTimeoutMS) * time.Millisecond

	// Redis config
	cfg.RedisHost = getEnv("REDIS_HOST", "localhost")
	if cfg.RedisPort, err = getInt("REDIS_PORT", "6379"); err != nil {
		return
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", "0"); err != nil {
		return
	}
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	if cfg.RedisPoolSize, err = getInt("REDIS_POOL_SIZE", "10"); err != nil {
		return
	}
	if cfg.RedisMinIdleConns, err = getInt("REDIS_MIN_IDLE_CONNS", "2"); err != nil {
		return
	}
	ttlSecond, err := getInt("REDIS_EXCHANGES_TTL_SECOND", "60")
	if err != nil {
		return
	}
	cfg.RedisExchangesTTL = time.Duration(ttlSecond) * time.Second

	// Kafka config, an empty broker list disables publishing
	for _, broker := range strings.Split(getEnv("KAFKA_BROKERS", ""), ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
		}
	}
	cfg.KafkaExchangeTopic = getEnv("KAFKA_EXCHANGE_TOPIC", "exchange-events")

	// JWT config
	cfg.JWTSecretKey = getEnv("JWT_SECRET_KEY", "my_super_secret_key")
	jwtExpSecond, err := getInt("JWT_EXP_SECOND", "3600")
	if err != nil {
		return
	}
	cfg.JWTExpiration = time.Duration(jwtExpSecond) * time.Second

	bonus, err := getInt("SIGNUP_BONUS_POINTS", "100")
	if err != nil {
		return
	}
	cfg.SignupBonusPoints = int64(bonus)

	return cfg, nil
}

// run initializes the logger, database, Redis, Kafka writer, and HTTP server.
// It sets up routes, applies middleware, and handles graceful shutdown.
func run(ctx context.Context, cfg config) error {
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infof("Logger initialized with level %s", cfg.LogLevel)

	// Connect to PostgreSQL
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.PGUser, cfg.PGPassword, cfg.PGHost, cfg.PGPort, cfg.PGDB)
	logger.Log.Infow("Connecting to PostgreSQL", "host", cfg.PGHost, "port", cfg.PGPort, "db", cfg.PGDB)

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return fmt.Errorf("PostgreSQL connection error: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.PGMaxOpenConns)
	db.SetMaxIdleConns(cfg.PGMaxIdleConns)
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("PostgreSQL ping failed: %w", err)
	}
	if err := repositories.Migrate(ctx, db); err != nil {
		return fmt.Errorf("schema migration failed: %w", err)
	}

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     cfg.RedisPoolSize,
		MinIdleConns: cfg.RedisMinIdleConns,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis connection error: %w", err)
	}
	defer rdb.Close()

	// Kafka writer for exchange lifecycle events
	var kafkaWriter services.KafkaWriter
	if len(cfg.KafkaBrokers) > 0 {
		w := &kafka.Writer{
			Addr:                   kafka.TCP(cfg.KafkaBrokers...),
			Topic:                  cfg.KafkaExchangeTopic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		}
		defer w.Close()
		kafkaWriter = w
		logger.Log.Infow("Kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaExchangeTopic)
	}

	// Initialize JWT service
	jwtSvc := jwt.New(jwt.WithSecretKey(cfg.JWTSecretKey), jwt.WithExpiration(cfg.JWTExpiration))

	// Initialize repositories
	txManager := txmanager.New(db, cfg.PGLockTimeout)
	userReadRepo := repositories.NewUserReadRepository(db)
	userWriteRepo := repositories.NewUserWriteRepository(db)
	itemRepo := repositories.NewItemRepository(db, txmanager.GetTxFromContext)
	exchangeRepo := repositories.NewExchangeRepository(db, txmanager.GetTxFromContext)
	ledgerRepo := repositories.NewLedgerRepository(db, txmanager.GetTxFromContext)
	exchangeCache := repositories.NewExchangeListCacheRepository(rdb, cfg.RedisExchangesTTL)

	// Initialize services
	authService := services.NewAuthService(userReadRepo, userWriteRepo, jwtSvc, cfg.SignupBonusPoints)
	userService := services.NewUserService(userReadRepo)
	itemService := services.NewItemService(txManager, itemRepo, exchangeRepo, exchangeCache)
	exchangeService := services.NewExchangeService(txManager, exchangeRepo, itemRepo, ledgerRepo, exchangeCache, kafkaWriter)

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware)

	r.Get("/health", handlers.NewHealthHandler(db))

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/register", handlers.NewRegisterHandler(authService))
		r.Post("/login", handlers.NewLoginHandler(authService))
		r.Get("/items", handlers.NewListItemsHandler(itemService))
		r.Get("/items/{id}", handlers.NewGetItemHandler(itemService))

		// Protected routes with JWT middleware
		r.Group(func(r chi.Router) {
			r.Use(middlewares.AuthMiddleware(jwtSvc))

			r.Get("/balance", handlers.NewGetBalanceHandler(userService, jwtSvc))
			r.Get("/users/stats", handlers.NewGetStatsHandler(userService, jwtSvc))
			r.Get("/users/my-items", handlers.NewListMyItemsHandler(itemService, jwtSvc))
			r.Post("/items", handlers.NewCreateItemHandler(itemService, jwtSvc))
			r.Put("/items/{id}", handlers.NewUpdateItemHandler(itemService, jwtSvc))
			r.Delete("/items/{id}", handlers.NewDeleteItemHandler(itemService, jwtSvc))

			r.Get("/exchanges", handlers.NewListExchangesHandler(exchangeService, jwtSvc))
			r.Post("/exchanges", handlers.NewCreateExchangeHandler(exchangeService, jwtSvc))
			r.Put("/exchanges/{id}/accept", handlers.NewExchangeTransitionHandler(exchangeService.Accept, jwtSvc, "Exchange accepted successfully"))
			r.Put("/exchanges/{id}/reject", handlers.NewExchangeTransitionHandler(exchangeService.Reject, jwtSvc, "Exchange rejected successfully"))
			r.Put("/exchanges/{id}/complete", handlers.NewExchangeTransitionHandler(exchangeService.Complete, jwtSvc, "Exchange completed successfully"))
			r.Put("/exchanges/{id}/cancel", handlers.NewExchangeTransitionHandler(exchangeService.Cancel, jwtSvc, "Exchange cancelled successfully"))
		})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", cfg.AppHost, cfg.AppPort)),
	))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort),
		Handler: r,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s:%s", cfg.AppHost, cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
