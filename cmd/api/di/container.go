package di

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"store-api/cmd/api/infrastructure"
	"store-api/internal/adapter/cache"
	"store-api/internal/adapter/db/postgres"
	ginhandler "store-api/internal/adapter/gin/handler"
	"store-api/internal/adapter/repository/cached"
	"store-api/internal/config"
	"store-api/internal/usecase/auth"
	"store-api/internal/usecase/user"
	"store-api/pkg/metrics"
	redisclient "store-api/pkg/redis"
	"store-api/pkg/security"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client
	Metrics     *metrics.Metrics
	UserUC      user.Usecase
	AuthUC      *auth.Service
	UserHandler *ginhandler.UserHandler
	AuthHandler *ginhandler.AuthHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	hasher, err := security.NewPasswordHasher(cfg.Auth.PasswordHashAlgo, cfg.Auth.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to create password hasher: %w", err)
	}

	issuer, err := security.NewTokenIssuer(cfg.Auth.TokenSecret, cfg.Auth.TokenAlgorithm, security.WithIssuer(cfg.Auth.TokenIssuer))
	if err != nil {
		return nil, fmt.Errorf("failed to create token issuer: %w", err)
	}

	// a throwaway hash with the live parameters, verified for unknown emails
	dummyHash, err := hasher.Hash(time.Now().String())
	if err != nil {
		return nil, fmt.Errorf("failed to create dummy hash: %w", err)
	}

	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	rdb, err := infrastructure.NewRedisClient(cfg, l)
	if err != nil {
		_ = infrastructure.CloseDatabase(db)
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	var repo user.Repository = postgres.NewUserRepoPG(db, l)
	if rdb != nil {
		userCache := cache.NewRedisUserCache(rdb.Client, time.Duration(cfg.Redis.CacheTTL)*time.Second, l)
		repo = cached.NewCachedUserRepository(repo, userCache, l)
	}

	m := metrics.New(strings.ReplaceAll(cfg.Logger.ServiceName, "-", "_"))

	userUC := user.New(repo, hasher, l)
	authUC := auth.New(repo, hasher, issuer, cfg.Auth.TokenTTL(), l, auth.WithDummyHash(dummyHash))

	return &Container{
		Config:      cfg,
		Logger:      l,
		DB:          db,
		RedisClient: rdb,
		Metrics:     m,
		UserUC:      userUC,
		AuthUC:      authUC,
		UserHandler: ginhandler.NewUserHandler(userUC, l),
		AuthHandler: ginhandler.NewAuthHandler(authUC, m, l),
	}, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	return errors.Join(errs...)
}
