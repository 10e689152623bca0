package grpc

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// LoggingInterceptor returns a gRPC unary server interceptor that logs every call
// with its method, status code and latency. A panicking handler is turned into
// codes.Internal instead of taking the server down.
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp interface{}, err error) {
		started := time.Now()

		defer func() {
			if r := recover(); r != nil {
				logger.ErrorContext(ctx, "gRPC handler panicked",
					slog.String("method", info.FullMethod),
					slog.Any("panic", r))
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}

			code := status.Code(err)
			level := slog.LevelInfo
			if code != codes.OK {
				level = slog.LevelWarn
			}
			if code == codes.Internal || code == codes.Unknown {
				level = slog.LevelError
			}

			logger.Log(ctx, level, "gRPC request",
				slog.String("method", info.FullMethod),
				slog.String("code", code.String()),
				slog.Duration("elapsed", time.Since(started)))
		}()

		return handler(ctx, req)
	}
}
