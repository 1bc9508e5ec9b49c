package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/formloom/formloom-backend/internal/api/handlers"
	"github.com/formloom/formloom-backend/internal/api/middleware"
	"github.com/formloom/formloom-backend/internal/config"
	"github.com/formloom/formloom-backend/internal/cron"
	"github.com/formloom/formloom-backend/internal/db"
	"github.com/formloom/formloom-backend/internal/email"
	"github.com/formloom/formloom-backend/internal/media"
	"github.com/formloom/formloom-backend/internal/repository"
	"github.com/formloom/formloom-backend/internal/seed"
	"github.com/formloom/formloom-backend/internal/service"
	"github.com/formloom/formloom-backend/internal/socket"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// ============================================
	// Database migrations
	// ============================================
	log.Println("[DB] Running migrations...")
	if err := db.RunMigrations(cfg.DatabaseURL, "./internal/db/migrations"); err != nil {
		log.Fatalf("[DB] Migration failed: %v", err)
	}
	log.Println("[DB] Migrations completed")

	// ============================================
	// PostgreSQL (pgxpool for repositories, sqlx for analytics)
	// ============================================
	postgres, err := db.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[DB] Failed to connect: %v", err)
	}
	defer postgres.Close()

	sqlxDB, err := sqlx.Connect("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[DB] Failed to open sqlx connection: %v", err)
	}
	defer sqlxDB.Close()

	repos := repository.NewRepositories(postgres.Pool, sqlxDB)

	// ============================================
	// Redis cache (optional)
	// ============================================
	var redisDB *db.RedisDB
	if cfg.RedisURL != "" {
		redisDB, err = db.NewRedisDB(cfg.RedisURL)
		if err != nil {
			log.Printf("[Redis] Unavailable, continuing without cache: %v", err)
			redisDB = nil
		} else {
			defer redisDB.Close()
		}
	}

	// ============================================
	// Email (optional)
	// ============================================
	var mailer service.Mailer
	emailSvc := email.NewService(cfg)
	if emailSvc.Enabled() {
		mailer = emailSvc
		log.Println("[EMAIL] SMTP configured")
	} else {
		log.Println("[EMAIL] Not configured, invitations will not be mailed")
	}

	// ============================================
	// Media signing (optional)
	// ============================================
	cloudinary := media.NewCloudinary(cfg)
	var mediaStore service.MediaStore
	if cloudinary.Enabled() {
		mediaStore = cloudinary
		log.Println("[MEDIA] Cloudinary configured")
	}

	// ============================================
	// WebSocket hub
	// ============================================
	hub := socket.NewHub()
	go hub.Run()

	// ============================================
	// Services
	// ============================================
	deps := service.Deps{
		Repos:       repos,
		Config:      cfg,
		Mailer:      mailer,
		MediaStore:  mediaStore,
		Broadcaster: hub,
	}
	if redisDB != nil {
		deps.Cache = redisDB
	}
	services := service.NewServices(deps)

	// ============================================
	// Cron jobs
	// ============================================
	scheduler := cron.NewScheduler(services.Analytics)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("[CRON] Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	// ============================================
	// Seed (development only)
	// ============================================
	if cfg.Environment != "production" {
		if err := seed.Run(context.Background(), repos); err != nil {
			log.Printf("[SEED] Failed: %v", err)
		}
	}

	// ============================================
	// Router
	// ============================================
	healthHandler := handlers.NewHealthHandler(postgres.Pool, redisDB, hub)
	h := handlers.NewHandlers(services, cloudinary, healthHandler)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": "formloom-backend"})
	})

	api := r.Group("/api/v1")
	{
		api.GET("/health", h.Health.Check)

		auth := api.Group("/auth")
		{
			auth.POST("/sign-up", h.Auth.SignUp)
			auth.POST("/sign-in", h.Auth.SignIn)
		}

		// Public form filler endpoints
		forms := api.Group("/forms")
		{
			forms.GET("/:formId", h.Form.GetPublished)
			forms.POST("/:formId/submissions", h.Form.Submit)
			forms.POST("/:formId/visits", h.Form.TrackVisit)
		}

		api.GET("/ws", socket.Handler(hub, services.Auth, repos.MemberRepo))

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(services.Auth))
		{
			users := protected.Group("/users")
			{
				users.GET("/invitations", h.Member.ListInvitations)
				users.POST("/accept-invite", h.Member.AcceptInvitation)
				users.PATCH("/reject-invite", h.Member.RejectInvitation)
			}

			workspaces := protected.Group("/workspaces")
			{
				workspaces.POST("", h.Workspace.Create)
				workspaces.GET("", h.Workspace.List)
				workspaces.GET("/:workspaceId", h.Workspace.Get)
				workspaces.PATCH("/:workspaceId", h.Workspace.Update)
				workspaces.DELETE("/:workspaceId", h.Workspace.Delete)

				workspaces.GET("/:workspaceId/members", h.Member.List)
				workspaces.GET("/:workspaceId/member/role", h.Member.GetRole)
				workspaces.POST("/:workspaceId/invite", h.Member.Invite)
				workspaces.DELETE("/:workspaceId/leave", h.Member.Leave)
				workspaces.DELETE("/:workspaceId/remove/:userId", h.Member.Remove)

				workspaces.GET("/:workspaceId/assets", h.Asset.List)
				workspaces.POST("/:workspaceId/assets", h.Asset.Add)
				workspaces.DELETE("/:workspaceId/assets", h.Asset.Delete)

				workspaces.POST("/:workspaceId/forms", h.Form.Create)
				workspaces.GET("/:workspaceId/forms", h.Form.List)
				workspaces.DELETE("/:workspaceId/forms/:formId", h.Form.Delete)
				workspaces.PATCH("/:workspaceId/forms/:formId/status", h.Form.ToggleStatus)
				workspaces.GET("/:workspaceId/forms/:formId/responses", h.Form.GetResponses)
				workspaces.GET("/:workspaceId/forms/:formId/pages", h.Form.GetWithPage)
				workspaces.PATCH("/:workspaceId/forms/:formId/pages", h.Form.UpdatePage)
				workspaces.POST("/:workspaceId/forms/:formId/pages/next", h.Form.CreateNextPage)
				workspaces.GET("/:workspaceId/forms/:formId/analytics", h.Form.GetAnalytics)
			}

			mediaGroup := protected.Group("/media")
			{
				mediaGroup.POST("/signed-url", h.Media.SignUpload)
				mediaGroup.DELETE("/delete", h.Media.Delete)
			}
		}
	}

	// ============================================
	// Server with graceful shutdown
	// ============================================
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("[HTTP] Listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[HTTP] Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[HTTP] Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("[HTTP] Forced shutdown: %v", err)
	}
	log.Println("[HTTP] Server stopped")
}
