package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	ginrouter "store-api/internal/adapter/gin/router"
)

// SetupGinServer creates and configures the Gin REST API server
func SetupGinServer(deps ginrouter.Deps, ginAddr string, l *zap.Logger) *http.Server {
	router := ginrouter.SetupRouter(deps)

	l.Info("Gin REST API configured", zap.String("address", ginAddr))

	return &http.Server{
		Addr:              ginAddr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
