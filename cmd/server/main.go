package main

import (
	"log"

	"github.com/evjobsch/backend/internal/config"
	"github.com/evjobsch/backend/internal/handler"
	"github.com/evjobsch/backend/internal/middleware"
	"github.com/evjobsch/backend/internal/model"
	"github.com/evjobsch/backend/internal/realtime"
	"github.com/evjobsch/backend/internal/repository"
	"github.com/evjobsch/backend/internal/service"
	"github.com/evjobsch/backend/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()
	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	// Without Redis the change bus falls back to in-process delivery and
	// rate limiting is disabled. Fine for a single instance, not for more.
	var rdb *redis.Client
	var bus realtime.Bus
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		rdb = redis.NewClient(opts)
		bus = realtime.NewRedisBus(rdb)
	} else {
		log.Println("WARNING: REDIS_URL is not set, using in-process change bus")
		bus = realtime.NewMemoryBus()
	}

	meiliClient := meilisearch.New(cfg.MeiliSearchHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	searchService := service.NewSearchService(meiliClient)

	postRepo := repository.NewPostRepository(db)
	replyRepo := repository.NewReplyRepository(db)
	jobRepo := repository.NewJobRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, bus)
	panelService := service.NewPanelService(notificationService, cfg.MarkReadDelay)
	postService := service.NewPostService(postRepo, replyRepo, likeRepo, notificationService, searchService, bus, rdb, cfg)
	jobService := service.NewJobService(jobRepo, applicationRepo, likeRepo, notificationService, searchService, bus, rdb, cfg)

	postHandler := handler.NewPostHandler(postService, bus)
	jobHandler := handler.NewJobHandler(jobService, bus)
	notificationHandler := handler.NewNotificationHandler(notificationService, panelService, bus)

	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.AllowedOrigins},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)

	api := router.Group("/api")
	api.Use(authMiddleware.RequireAuth())
	{
		api.POST("/posts", postHandler.CreatePost)
		api.GET("/posts", postHandler.ListPosts)
		api.PUT("/posts/:id", postHandler.UpdatePost)
		api.DELETE("/posts/:id", postHandler.DeletePost)
		api.POST("/posts/:id/like", postHandler.ToggleLike)
		api.POST("/posts/:id/replies", postHandler.CreateReply)
		api.GET("/posts/:id/replies", postHandler.ListReplies)
		api.GET("/posts/stream", postHandler.StreamPosts)
		api.GET("/posts/:id/replies/stream", postHandler.StreamReplies)

		api.POST("/jobs", jobHandler.CreateJob)
		api.GET("/jobs", jobHandler.ListJobs)
		api.GET("/jobs/search", jobHandler.SearchJobs)
		api.GET("/jobs/stream", jobHandler.StreamJobs)
		api.GET("/jobs/:id", jobHandler.GetJob)
		api.PUT("/jobs/:id", jobHandler.UpdateJob)
		api.DELETE("/jobs/:id", jobHandler.DeleteJob)
		api.POST("/jobs/:id/like", jobHandler.ToggleLike)
		api.POST("/jobs/:id/applications", jobHandler.Apply)
		api.GET("/jobs/:id/applications", jobHandler.ListApplications)
		api.GET("/jobs/:id/applications/stream", jobHandler.StreamApplications)

		api.GET("/notifications", notificationHandler.GetNotifications)
		api.GET("/notifications/unread", notificationHandler.UnreadCount)
		api.POST("/notifications/read", notificationHandler.MarkAllAsRead)
		api.POST("/notifications/panel/open", notificationHandler.OpenPanel)
		api.POST("/notifications/panel/end", notificationHandler.EndPanelSession)
		api.GET("/notifications/stream", notificationHandler.Stream)
	}

	reconciler := service.NewReconciler(postRepo, bus, cfg.ReconcileInterval)
	if err := reconciler.Start(); err != nil {
		log.Fatalf("failed to start reconciliation job: %v", err)
	}
	defer reconciler.Stop()

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Post{},
		&model.Reply{},
		&model.Job{},
		&model.Application{},
		&model.PostLike{},
		&model.JobLike{},
		&model.Notification{},
	)
}
