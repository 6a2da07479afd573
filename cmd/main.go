package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/strikelab/cyberlab/config"
	"github.com/strikelab/cyberlab/database"
	"github.com/strikelab/cyberlab/internal/cache"
	adminctrl "github.com/strikelab/cyberlab/internal/controller/admin"
	userctrl "github.com/strikelab/cyberlab/internal/controller/user"
	"github.com/strikelab/cyberlab/internal/logger"
	"github.com/strikelab/cyberlab/internal/middleware"
	"github.com/strikelab/cyberlab/internal/model"
	"github.com/strikelab/cyberlab/internal/repository"
	"github.com/strikelab/cyberlab/internal/service"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title CyberLab Learning API
// @version 1.0
// @description Practice lab progression engine: lab catalog, attempt tracking, hint disclosure, submissions and point awards.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		// Core application components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase, // Provides *gorm.DB
			cache.NewCatalogCache,
			service.NewStaticEntitlements,
			NewGinEngine,
		),

		// Repositories layer
		fx.Provide(
			repository.NewModuleRepository,
			repository.NewLabRepository,
			repository.NewAttemptRepository,
			repository.NewPointsRepository,
		),

		// Services layer
		fx.Provide(
			service.NewCatalogService,
			service.NewProgressService,
			service.NewHintService,
			service.NewSubmissionService,
			service.NewAdminLabService,
		),

		// API controllers layer
		fx.Provide(
			userctrl.NewLearningController,
			adminctrl.NewAdminLabController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestLogger())
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // Be more specific in production
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI at /swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	learningCtrl *userctrl.LearningController,
	adminLabCtrl *adminctrl.AdminLabController,
) {
	// Admin routes (prefixed with /api/v1/admin)
	adminAPIGroup := router.Group("/api/v1/admin")
	{
		adminAPIGroup.POST("/labs", adminLabCtrl.CreateLab)
		adminAPIGroup.POST("/progress/reset", adminLabCtrl.ResetProgress)
	}

	// Student-facing routes (prefixed with /api/v1)
	learningAPIGroup := router.Group("/api/v1/learning")
	{
		learningAPIGroup.GET("/modules", learningCtrl.GetModules)
		learningAPIGroup.GET("/progress", learningCtrl.GetProgressSummary)
		learningAPIGroup.GET("/:module_slug/labs", learningCtrl.GetModuleLabs)
		learningAPIGroup.GET("/:module_slug/labs/:lab_slug", learningCtrl.GetLabDetail)
		learningAPIGroup.POST("/:module_slug/labs/:lab_slug/start", learningCtrl.StartLab)
		learningAPIGroup.POST("/:module_slug/labs/:lab_slug/hint", learningCtrl.GetHint)
		learningAPIGroup.POST("/:module_slug/labs/:lab_slug/submit", learningCtrl.SubmitLab)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("CyberLab API server starting on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.LearningModule{},
		&model.PracticeLab{},
		&model.LabAttempt{},
		&model.UserPointsLedger{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
