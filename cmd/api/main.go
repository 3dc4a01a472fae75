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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm/logger"

	"github.com/yourusername/testps-api/internal/config"
	"github.com/yourusername/testps-api/internal/domain/repository"
	"github.com/yourusername/testps-api/internal/handler"
	"github.com/yourusername/testps-api/internal/middleware"
	memoryRepo "github.com/yourusername/testps-api/internal/repository/memory"
	pgRepo "github.com/yourusername/testps-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/testps-api/internal/repository/redis"
	"github.com/yourusername/testps-api/internal/service"
	"github.com/yourusername/testps-api/pkg/auth"
	"github.com/yourusername/testps-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	isProduction := gin.Mode() == gin.ReleaseMode
	gormLogLevel := logger.Info
	if isProduction {
		gormLogLevel = logger.Warn
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), gormLogLevel)
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Хранилище одноразовых кодов и лимитер: Redis, если включен, иначе память процесса
	var (
		cacheRepo   repository.CacheRepository
		limiter     middleware.Limiter
		closeCache  func() error
		stopLimiter func()
	)
	if cfg.Redis.Enabled {
		redisClient, err := database.NewUniversalRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Printf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		log.Println("Successfully connected to Redis")

		redisCache, err := redisRepo.NewCacheRepo(redisClient)
		if err != nil {
			log.Printf("Failed to initialize CacheRepo: %v", err)
			os.Exit(1)
		}
		cacheRepo = redisCache
		closeCache = redisClient.Close
		limiter = middleware.NewRateLimiter(redisClient)
		stopLimiter = func() {}
	} else {
		log.Println("Redis отключен: коды и лимиты хранятся в памяти процесса")
		memCache := memoryRepo.NewCacheRepo(time.Minute)
		cacheRepo = memCache
		closeCache = memCache.Close
		localLimiter := middleware.NewLocalRateLimiter(5 * time.Minute)
		limiter = localLimiter
		stopLimiter = localLimiter.Stop
	}

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	testRepo := pgRepo.NewTestRepo(db)
	resultRepo := pgRepo.NewResultRepo(db)

	// Почтовый транспорт. Без ключа сервер стартует, а отправка кода вернет ошибку конфигурации.
	var emailService service.EmailService = &service.UnconfiguredEmailService{}
	if cfg.Email.Configured() {
		resendService, err := service.NewResendEmailService(cfg.Email.ResendAPIKey, cfg.Email.From)
		if err != nil {
			log.Printf("Failed to initialize EmailService: %v", err)
			os.Exit(1)
		}
		emailService = resendService
	} else {
		log.Println("Warning: RESEND_API_KEY/EMAIL_FROM не заданы, отправка кодов недоступна")
	}

	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Инициализируем сервисы
	otpService, err := service.NewOTPService(cacheRepo, emailService, cfg.Auth.OTPTTL, cfg.Auth.OTPRetention)
	if err != nil {
		log.Printf("Failed to initialize OTPService: %v", err)
		os.Exit(1)
	}
	authService, err := service.NewAuthService(userRepo, jwtService, otpService)
	if err != nil {
		log.Printf("Failed to initialize AuthService: %v", err)
		os.Exit(1)
	}
	userService := service.NewUserService(userRepo)
	testService := service.NewTestService(testRepo)
	resultService := service.NewResultService(resultRepo, testRepo, userRepo)
	analyticsService := service.NewAnalyticsService(resultRepo, testRepo)

	// Инициализируем роутер Gin
	router := gin.Default()

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	trustedProxies := []string{"127.0.0.1", "::1"}
	if isProduction {
		trustedProxies = nil
	}
	if err := router.SetTrustedProxies(trustedProxies); err != nil {
		log.Printf("Warning: failed to set trusted proxies: %v", err)
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	handler.RegisterRoutes(router, handler.Routes{
		Auth:           handler.NewAuthHandler(authService),
		Users:          handler.NewUserHandler(userService),
		Tests:          handler.NewTestHandler(testService),
		Results:        handler.NewResultHandler(resultService, analyticsService),
		AuthMiddleware: middleware.NewAuthMiddleware(jwtService),
		SendOTPLimit: limiter.Limit(middleware.OTPRateLimitConfig(
			cfg.Auth.SendOTPLimit.Requests, cfg.Auth.SendOTPLimit.Window,
		)),
	})

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	log.Println("Shutting down server...")

	// Создаем контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	stopLimiter()
	if err := closeCache(); err != nil {
		log.Printf("Error closing cache: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Println("Server exited properly")
}
