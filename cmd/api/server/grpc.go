package server

import (
	"go.uber.org/zap"
	"google.golang.org/grpc"

	grpcadapter "store-api/internal/adapter/grpc"
	"store-api/internal/usecase/user"
	"store-api/pkg/logger"
	"store-api/pkg/metrics"
)

// SetupGRPC creates and configures the gRPC server
func SetupGRPC(userUC user.Usecase, authUC grpcadapter.AuthUsecase, m *metrics.Metrics, l *zap.Logger) *grpc.Server {
	// ErrorInterceptor runs innermost so logging and metrics see the mapped status
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.RequestIDInterceptor(),
			grpcadapter.LoggingInterceptor(l),
			grpcadapter.MetricsInterceptor(m),
			grpcadapter.ErrorInterceptor(l),
		),
	)
	grpcadapter.RegisterUserServiceServer(grpcServer, grpcadapter.NewUserServiceServer(userUC, authUC, m, l))

	return grpcServer
}
