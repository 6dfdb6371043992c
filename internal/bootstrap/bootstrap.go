package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	appAuth "github.com/campusshare/campusshare/internal/app/auth"
	appControllers "github.com/campusshare/campusshare/internal/app/controllers"
	appRepos "github.com/campusshare/campusshare/internal/app/repositories"
	appRoutes "github.com/campusshare/campusshare/internal/app/routes"
	appServices "github.com/campusshare/campusshare/internal/app/services"
	"github.com/campusshare/campusshare/internal/config"
	"github.com/campusshare/campusshare/internal/db"
	appMiddleware "github.com/campusshare/campusshare/internal/middleware"
	pkgAuth "github.com/campusshare/campusshare/internal/pkg/auth"
	"github.com/campusshare/campusshare/internal/pkg/binstore"
	"github.com/campusshare/campusshare/internal/pkg/logger"
	"github.com/campusshare/campusshare/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos              *appRepos.Repositories
	BinaryStore        binstore.Store
	JWTService         *pkgAuth.JWTService
	AuthzService       *appAuth.AuthorizationService
	AuthService        *appServices.AuthService
	ResourceService    *appServices.ResourceService
	UserService        *appServices.UserService
	DownloadService    *appServices.DownloadService
	FeedService        *appServices.FeedService
	AuthController     *appControllers.AuthController
	ResourceController *appControllers.ResourceController
	DownloadController *appControllers.DownloadController
	AdminController    *appControllers.AdminController
	AuthMiddleware     *appMiddleware.AuthMiddleware
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	logger.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, nil
}

// SetupDatabase establishes the MongoDB connection and seeds default data.
func SetupDatabase(ctx context.Context, cfg *config.Config) (*db.Mongo, error) {
	logger.Info().Msg("Establishing database connection...")
	mongoDB, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	repos := appRepos.NewRepositories(mongoDB.Database)
	if err := seed.CreateDefaultData(ctx, repos, cfg); err != nil {
		// Seeding failure should not prevent startup
		logger.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return mongoDB, nil
}

// BuildDependencies initializes repositories, services and controllers.
func BuildDependencies(cfg *config.Config, mongoDB *db.Mongo) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.Repos = appRepos.NewRepositories(mongoDB.Database)

	store, err := binstore.NewStore(binstore.Config{
		Provider: cfg.Storage.Provider,
		Cloudinary: binstore.CloudinaryConfig{
			CloudName:    cfg.Storage.Cloudinary.CloudName,
			UploadPreset: cfg.Storage.Cloudinary.UploadPreset,
			BaseURL:      cfg.Storage.Cloudinary.BaseURL,
			Timeout:      config.Duration(cfg.Storage.Cloudinary.Timeout, 60*time.Second),
		},
		S3: binstore.S3Config{
			Region:        cfg.Storage.S3.Region,
			Bucket:        cfg.Storage.S3.Bucket,
			AccessKey:     cfg.Storage.S3.AccessKey,
			SecretKey:     cfg.Storage.S3.SecretKey,
			Endpoint:      cfg.Storage.S3.Endpoint,
			PublicBaseURL: cfg.Storage.S3.PublicBaseURL,
			KeyPrefix:     cfg.Storage.S3.KeyPrefix,
		},
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize binary store")
		return nil, fmt.Errorf("failed to initialize binary store: %w", err)
	}
	deps.BinaryStore = store

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  config.Duration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: config.Duration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.AuthzService = appAuth.NewAuthorizationService(deps.Repos.User)

	deps.AuthService = appServices.NewAuthService(deps.Repos.User, deps.Repos.Token, deps.JWTService)
	deps.ResourceService = appServices.NewResourceService(deps.Repos.Resource, deps.Repos.User, deps.BinaryStore, deps.AuthzService)
	deps.UserService = appServices.NewUserService(deps.Repos.User, deps.ResourceService, deps.Repos.Token)
	deps.DownloadService = appServices.NewDownloadService(deps.Repos.Download, deps.Repos.Resource, deps.ResourceService)
	deps.FeedService = appServices.NewFeedService(deps.Repos.Resource)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.Repos.User)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, deps.UserService)
	deps.ResourceController = appControllers.NewResourceController(deps.ResourceService, deps.FeedService, deps.AuthzService)
	deps.DownloadController = appControllers.NewDownloadController(deps.DownloadService)
	deps.AdminController = appControllers.NewAdminController(deps.UserService, deps.ResourceService)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		logger.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		logger.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger())
	router.Use(appMiddleware.CORS(cfg.CORS.AllowedOrigins))

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.ResourceController,
		deps.DownloadController,
		deps.AdminController,
		deps.AuthMiddleware,
	)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
