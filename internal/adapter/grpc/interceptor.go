package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pkgerrors "store-api/pkg/errors"
	"store-api/pkg/logger"
	"store-api/pkg/metrics"
)

// ErrorInterceptor hides untyped errors behind a generic Internal status.
// Typed errors from pkg/errors carry their own status.
func ErrorInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if err == nil {
			return resp, nil
		}
		if _, ok := err.(pkgerrors.GRPCStatuser); ok {
			return nil, err
		}
		logger.WithContext(ctx, log).Error("unhandled grpc error", zap.String("method", info.FullMethod), zap.Error(err))
		return nil, status.Error(codes.Internal, pkgerrors.ErrInternal.Message)
	}
}

// LoggingInterceptor logs each call once it completes.
func LoggingInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("latency", time.Since(start)),
		}
		reqLog := logger.WithContext(ctx, log)
		if code == codes.Internal || code == codes.Unknown {
			reqLog.Error("grpc request", append(fields, zap.Error(err))...)
		} else {
			reqLog.Info("grpc request", fields...)
		}
		return resp, err
	}
}

// MetricsInterceptor counts calls by method and status code.
func MetricsInterceptor(m *metrics.Metrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		m.GRPCRequestsTotal.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
		return resp, err
	}
}
