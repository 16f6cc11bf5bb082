package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"gripelogger/backend/internal/api/handler"
	"gripelogger/backend/internal/api/middleware"
	"gripelogger/backend/internal/auth"
	"gripelogger/backend/internal/blobstore"
	"gripelogger/backend/internal/config"
	"gripelogger/backend/internal/models"
	"gripelogger/backend/internal/notify"
	"gripelogger/backend/internal/storage"
	"gripelogger/backend/internal/telegram"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.UserRole{},
		&models.Complaint{},
		&models.Comment{},
		&models.Attachment{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting Gripe Logger Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set!")
	}

	db, rdb := setupDependencies(cfg)
	s := storage.NewStorageService(db, rdb)

	hub := notify.NewManager(s)
	go hub.Run()

	var alerts telegram.Alerter = telegram.NopAlerter{}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		notifier, err := telegram.NewNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			log.Fatalf("Failed to start Telegram notifier: %v", err)
		}
		alerts = notifier
	}

	a := auth.SetupAuth(cfg.JWTSecret)
	blobs := blobstore.NewDiskStore(cfg.UploadDir)
	h := handler.NewHandler(s, a, blobs, hub, alerts)

	r := gin.Default()

	// Public auth surface
	r.POST("/api/auth/signup", h.SignUp)
	r.POST("/api/auth/signin", h.SignIn)

	authed := r.Group("/", middleware.RequireAuth(a, s))
	{
		authed.POST("/api/auth/signout", h.SignOut)
		authed.GET("/api/auth/me", h.Me)

		// Complaint reads are role-scoped inside the handlers: students
		// see their own records, admins see everything.
		authed.GET("/api/complaints", h.ListComplaints)
		authed.GET("/api/complaints/:id", h.GetComplaint)
		authed.GET("/api/complaints/:id/comments", h.ListComments)
		authed.POST("/api/complaints/:id/comments", h.CreateComment)
		authed.GET("/api/complaints/:id/attachments", h.ListAttachments)
		authed.POST("/api/complaints/:id/attachments", h.UploadAttachments)
		authed.GET("/api/attachments/:id/download", h.DownloadAttachment)
		authed.DELETE("/api/attachments/:id", h.DeleteAttachment)

		authed.GET("/ws", h.ServeWebSocket)

		student := authed.Group("/", middleware.RequireRole(models.RoleStudent))
		{
			student.POST("/api/complaints", h.CreateComplaint)
			student.PATCH("/api/complaints/:id", h.UpdateComplaint)
			student.DELETE("/api/complaints/:id", h.DeleteComplaint)
		}

		admin := authed.Group("/", middleware.RequireRole(models.RoleAdmin))
		{
			admin.PATCH("/api/complaints/:id/status", h.TriageComplaint)
			admin.GET("/api/admin/stats", h.Stats)
		}
	}

	server := &http.Server{
		Addr:           cfg.HTTPAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
