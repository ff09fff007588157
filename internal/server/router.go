package server

import (
  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"

  "github.com/autolog-org/autolog-backend/internal/handlers"
  "github.com/autolog-org/autolog-backend/internal/middleware"
)

type RouterConfig struct {
  VerificationHandler   *handlers.VerificationHandler
  HistoryHandler        *handlers.HistoryHandler
  RequestContext        gin.HandlerFunc
  RateLimitMiddleware   *middleware.RateLimitMiddleware
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  //-----------------------------------------
  // Cors Setup
  //-----------------------------------------
  router.Use(cors.New(cors.Config{
    AllowOrigins: []string{
        "http://localhost:3000",
        "https://autolog.app",
        "https://www.autolog.app",
    },
    AllowMethods:     []string{"GET","POST","PUT","DELETE","PATCH","OPTIONS"},
    AllowHeaders:     []string{"Authorization","Content-Type","X-Requested-With"},
    AllowCredentials: true,
  }))
  router.Use(cfg.RequestContext)

  //-----------------------------------------
  // Health Routes
  //-----------------------------------------
  router.GET("/healthz", handlers.Healthz)

  //-----------------------------------------
  // Public Routes
  //-----------------------------------------
  api := router.Group("/api")
  {
    verification := api.Group("/verification")
    verification.POST("/request-code", cfg.RateLimitMiddleware.LimitByClientIP(), cfg.VerificationHandler.RequestCode)
    verification.POST("/submit-log", cfg.VerificationHandler.SubmitServiceLog)

    api.GET("/vehicles/:plate/history", cfg.HistoryHandler.GetVehicleHistory)
  }

  return router
}
