package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"store-api/cmd/api/di"
	ginrouter "store-api/internal/adapter/gin/router"
	"store-api/internal/config"
)

// Server struct holds all server dependencies
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	GRPC   *grpc.Server
	Gin    *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, l *zap.Logger, c *di.Container) *Server {
	s := &Server{
		Config: cfg,
		Logger: l,
		GRPC:   SetupGRPC(c.UserUC, c.AuthUC, c.Metrics, l),
	}

	s.Gin = SetupGinServer(ginrouter.Deps{
		UserHandler: c.UserHandler,
		AuthHandler: c.AuthHandler,
		Verifier:    c.AuthUC,
		Metrics:     c.Metrics,
		ServiceName: cfg.Logger.ServiceName,
		Log:         l,
	}, s.httpAddress(), l)

	return s
}

// Start runs the gRPC and Gin servers and blocks until the first one stops.
// A server stopped by shutdown is not an error.
func (s *Server) Start() error {
	errCh := make(chan error, 2)

	go func() {
		if err := s.startGRPC(); err != nil {
			errCh <- fmt.Errorf("failed to start gRPC server: %w", err)
			return
		}
		errCh <- nil
	}()

	go func() {
		if err := s.startGin(); err != nil {
			errCh <- fmt.Errorf("failed to start Gin server: %w", err)
			return
		}
		errCh <- nil
	}()

	return <-errCh
}

// startGRPC starts the gRPC server
func (s *Server) startGRPC() error {
	lc := net.ListenConfig{}
	lis, err := lc.Listen(context.Background(), "tcp", s.grpcAddress())
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.Logger.Info("gRPC server running", zap.String("address", s.grpcAddress()))
	if err := s.GRPC.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// startGin starts the REST API server
func (s *Server) startGin() error {
	s.Logger.Info("REST API running", zap.String("address", s.httpAddress()))
	if err := s.Gin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// grpcAddress returns the gRPC server address
func (s *Server) grpcAddress() string {
	return ":" + s.Config.App.GRPCPort
}

// httpAddress returns the HTTP server address
func (s *Server) httpAddress() string {
	return ":" + s.Config.App.HTTPPort
}
