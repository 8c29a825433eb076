package server

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	googleauth "videocoach-backend/internal/auth"
	"videocoach-backend/internal/feedback"
	"videocoach-backend/internal/llm"
	"videocoach-backend/internal/llm/gemini"
	"videocoach-backend/internal/llm/openai"
	"videocoach-backend/internal/provider"
	"videocoach-backend/internal/shared/config"
	"videocoach-backend/internal/shared/metrics"
	"videocoach-backend/internal/shared/server/middleware"
	"videocoach-backend/internal/shared/server/respond"
	"videocoach-backend/internal/shared/storage/db"
	"videocoach-backend/internal/shared/storage/object"
	localstore "videocoach-backend/internal/shared/storage/object/local"
	miniostore "videocoach-backend/internal/shared/storage/object/minio"
	s3store "videocoach-backend/internal/shared/storage/object/s3"
	"videocoach-backend/internal/users"
	"videocoach-backend/internal/videos"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Auth(cfg.Env),
	)

	// Dependencies
	store := newObjectStore(cfg)

	var sqlDB *sql.DB
	if cfg.DatabaseURL != "" {
		dbConn, err := db.Connect(context.Background(), cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			log.Printf("failed to connect database, falling back to memory: %v", err)
		} else {
			if err := db.RunMigrations(context.Background(), dbConn); err != nil {
				log.Printf("failed to run migrations, falling back to memory: %v", err)
				dbConn = nil
			}
		}
		sqlDB = dbConn
	}

	var userRepo users.Repo
	var videoRepo videos.VideosRepo
	var feedbackRepo feedback.Repo
	if sqlDB != nil {
		userRepo = &users.PGRepo{DB: sqlDB}
		videoRepo = &videos.PGRepo{DB: sqlDB}
		feedbackRepo = &feedback.PGRepo{DB: sqlDB}
	} else {
		userRepo = users.NewMemoryRepo()
		videoRepo = videos.NewMemoryRepo()
		feedbackRepo = feedback.NewMemoryRepo()
	}

	userSvc := users.NewService(userRepo)
	userHandler := users.NewHandler(userSvc)

	videoSvc := &videos.Service{Store: store, Repo: videoRepo, StoreProvider: cfg.ObjectStoreType}
	videoHandler := videos.NewHandler(videoSvc)

	motionClient := provider.NewClient(cfg.MotionAPIURL, cfg.MotionAPITimeout, cfg.MaxRetryAttempts)
	llmClient := newLLMClient(cfg)

	feedbackSvc := &feedback.Service{
		Repo:            feedbackRepo,
		Videos:          videoSvc,
		Provider:        motionClient,
		LLM:             llmClient,
		ProviderEnabled: cfg.MotionAPIEnabled,
		ProviderName:    "motion-api",
		ModelName:       cfg.LLMModel,
	}
	feedbackHandler := feedback.NewHandler(feedbackSvc)

	googleAuthSvc := googleauth.NewGoogleService(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, cfg.UIRedirectURL, userSvc)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		status := gin.H{"ok": true}
		if cfg.MotionAPIEnabled {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
			defer cancel()
			if err := motionClient.HealthCheck(ctx); err != nil {
				status["motionApi"] = "unreachable"
			} else {
				status["motionApi"] = "ok"
			}
		}
		respond.JSON(c, http.StatusOK, status)
	})
	googleAuthSvc.RegisterRoutes(api)
	userHandler.RegisterRoutes(api)
	videoHandler.RegisterRoutes(api)
	feedbackHandler.RegisterRoutes(api)

	return r
}

func newObjectStore(cfg config.Config) object.ObjectStore {
	switch cfg.ObjectStoreType {
	case "s3":
		store, err := s3store.New(context.Background(), cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			log.Printf("failed to init s3 store, falling back to local: %v", err)
			return localstore.New(cfg.LocalStoreDir)
		}
		return store
	case "minio":
		store, err := miniostore.New(context.Background(), cfg.MinioEndpoint, cfg.MinioRegion, cfg.MinioBucket, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
		if err != nil {
			log.Printf("failed to init minio store, falling back to local: %v", err)
			return localstore.New(cfg.LocalStoreDir)
		}
		return store
	default:
		return localstore.New(cfg.LocalStoreDir)
	}
}

func newLLMClient(cfg config.Config) llm.Client {
	switch cfg.LLMProvider {
	case "openai":
		client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel)
		if err != nil {
			log.Printf("openai client unavailable: %v", err)
			return llm.PlaceholderClient{}
		}
		return client
	default:
		client, err := gemini.NewClient(cfg.GeminiAPIKey, cfg.LLMModel)
		if err != nil {
			log.Printf("gemini client unavailable: %v", err)
			return llm.PlaceholderClient{}
		}
		return client
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
