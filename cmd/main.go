package main

import (
  "fmt"
  "os"
  "time"

  "github.com/joho/godotenv"

  "github.com/autolog-org/autolog-backend/internal/db"
  "github.com/autolog-org/autolog-backend/internal/handlers"
  "github.com/autolog-org/autolog-backend/internal/logger"
  "github.com/autolog-org/autolog-backend/internal/middleware"
  "github.com/autolog-org/autolog-backend/internal/ratelimit"
  "github.com/autolog-org/autolog-backend/internal/repos"
  "github.com/autolog-org/autolog-backend/internal/seed"
  "github.com/autolog-org/autolog-backend/internal/server"
  "github.com/autolog-org/autolog-backend/internal/services"
  "github.com/autolog-org/autolog-backend/internal/utils"
)

func main() {
  // Env bootstrap (optional .env for local dev)
  if err := godotenv.Load(); err != nil {
    fmt.Println("No .env file found, relying on process environment")
  }

  // Logger Setup
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Environment Variables
  log.Info("Attempting to load environment variables for Main now...")
  codeTTL := utils.GetEnvAsDuration("OTP_TTL_MINUTES", 10*time.Minute, log)
  rateLimitCount := utils.GetEnvAsInt("RATE_LIMIT_COUNT", 5, log)
  rateLimitWindow := utils.GetEnvAsDuration("RATE_LIMIT_WINDOW_MINUTES", 10*time.Minute, log)
  redisAddress := utils.GetEnv("REDIS_ADDRESS", "localhost:6379", log)
  redisPassword := utils.GetEnv("REDIS_PASSWORD", "", log)
  log.Debug("Environment variables loaded for Main :)",
    "codeTTL", codeTTL,
    "rateLimitCount", rateLimitCount,
    "rateLimitWindow", rateLimitWindow,
    "redisAddress", redisAddress,
  )

  // Postgres Setup
  log.Info("Setting Up Postgres from Main now...")
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Fatal error: DB init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Warn("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()
  log.Info("Postgres Setup From Main Successful :)")

  // Repositories Setup
  log.Info("Setting Up Repositories from Main now...")
  memberRepo := repos.NewMemberRepo(thePG, log)
  vehicleRepo := repos.NewVehicleRepo(thePG, log)
  verificationCodeRepo := repos.NewVerificationCodeRepo(thePG, log)
  serviceHistoryRepo := repos.NewServiceHistoryRepo(thePG, log, verificationCodeRepo)
  log.Info("Repositories Set Up From Main Successful :)")

  // Seed Setup (dev only)
  if utils.GetEnv("SEED_DEMO_DATA", "false", log) == "true" {
    log.Info("Attempting to Seed Demo Data From Main now...")
    if err := seed.SeedDemoData(thePG, memberRepo, vehicleRepo); err != nil {
      log.Warn("Failed to seed demo data :(", "error", err)
    }
  }

  // Rate Limiter Setup
  log.Info("Setting Up Rate Limiter From Main Now :)")
  var limiter ratelimit.Limiter
  redisLimiter, err := ratelimit.NewRedisFixedWindowLimiter(log, redisAddress, redisPassword, rateLimitCount, rateLimitWindow)
  if err != nil {
    log.Warn("Failed to init redis rate limiter, issuance will not be rate limited", "error", err)
    limiter = ratelimit.NoopLimiter{}
  } else {
    limiter = redisLimiter
  }

  // Services Setup
  log.Info("Setting up Services from Main now...")
  textService, err := services.NewTextService(log)
  if err != nil {
    log.Error("Fatal error: Cannot init TextService", "error", err)
    os.Exit(1)
  }
  verificationService := services.NewVerificationService(thePG, log, vehicleRepo, verificationCodeRepo, textService, limiter, codeTTL)
  serviceLogService := services.NewServiceLogService(thePG, log, verificationService, serviceHistoryRepo)
  log.Info("Services Set Up From Main Successful :)")

  // Handler Setup
  log.Info("Setting Up Handlers from Main now...")
  verificationHandler := handlers.NewVerificationHandler(verificationService, serviceLogService)
  historyHandler := handlers.NewHistoryHandler(serviceLogService)
  log.Info("Handlers Set Up From Main Successful :)")

  // MiddleWare Setup
  log.Info("Setting Up Middleware from Main now...")
  rateLimitMiddleware := middleware.NewRateLimitMiddleware(log, limiter)
  requestContext := middleware.RequestContext(log)
  log.Info("Middleware Set Up From Main Successful :)")

  // Router Setup
  log.Info("Setting Up Router from Main now...")
  router := server.NewRouter(server.RouterConfig{
    VerificationHandler:    verificationHandler,
    HistoryHandler:         historyHandler,
    RequestContext:         requestContext,
    RateLimitMiddleware:    rateLimitMiddleware,
  })
  log.Info("Router Set Up From Main Successful :)")

  port := utils.GetEnv("PORT", "8080", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Warn("Server failed: %v", err)
  }
}
