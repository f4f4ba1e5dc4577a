package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"civicreport-be/config"
	"civicreport-be/controllers"
	"civicreport-be/middlewares"
	"civicreport-be/models"
	"civicreport-be/routes"
	"civicreport-be/services"
	"civicreport-be/store"
	"civicreport-be/store/memstore"
	"civicreport-be/store/mongostore"
)

// dataStore is everything the service layer needs from persistence.
type dataStore interface {
	store.IssueStore
	store.CommentStore
	store.UserStore
}

func main() {
	cfg := config.Load()

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	var db dataStore
	if cfg.MongoURI != "" {
		mongoDB, err := config.ConnectDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			logger.Fatal("failed to connect to MongoDB", zap.Error(err))
		}
		mongoStore := mongostore.New(mongoDB)
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			logger.Fatal("failed to create indexes", zap.Error(err))
		}
		db = mongoStore
		logger.Info("MongoDB connection established")
	} else {
		logger.Warn("MONGODB_URI not set, using in-memory store; data will not survive restarts")
		db = memstore.New()
	}

	issueService := services.NewIssueService(db, db, logger)
	commentService := services.NewCommentService(db, db, logger)

	seedAdmin(ctx, db, cfg, logger)

	auth := middlewares.AuthMiddleware(cfg.JWTSecret, logger)

	var createLimiter gin.HandlerFunc
	if cfg.RedisAddr != "" {
		redisClient, err := config.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Fatal("failed to connect to Redis", zap.Error(err))
		}
		createLimiter = middlewares.IssueRateLimiter(redisClient, logger, cfg.IssueDailyLimit, 24*time.Hour)
		logger.Info("Redis connection established")
	} else {
		logger.Warn("REDIS_ADDRESS not set, issue creation is not rate limited")
	}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	routes.AuthRoutes(r, controllers.NewAuthController(db, cfg.JWTSecret, cfg.Env, cfg.Domain, logger), auth)
	routes.IssueRoutes(r, controllers.NewIssueController(issueService, logger), controllers.NewCommentController(commentService, logger), auth, createLimiter)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}

// seedAdmin creates the configured admin account if it does not exist yet.
func seedAdmin(ctx context.Context, users store.UserStore, cfg *config.Config, logger *zap.Logger) {
	if cfg.SeedAdminEmail == "" || cfg.SeedAdminPassword == "" {
		return
	}
	if _, err := users.FindUserByEmail(ctx, cfg.SeedAdminEmail); err == nil {
		return
	}

	admin := models.User{
		Name:      cfg.SeedAdminName,
		Email:     cfg.SeedAdminEmail,
		Password:  cfg.SeedAdminPassword,
		Role:      models.RoleAdmin,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := admin.HashPassword(); err != nil {
		logger.Error("failed to hash seed admin password", zap.Error(err))
		return
	}
	if err := users.InsertUser(ctx, &admin); err != nil {
		logger.Error("failed to seed admin account", zap.Error(err))
		return
	}
	logger.Info("seeded admin account", zap.String("email", cfg.SeedAdminEmail))
}
