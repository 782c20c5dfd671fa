package interceptor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/nickprotop/NeighborTools-sub003/internal/logger"
)

const requestIDHeader = "x-request-id"

// Logging tags each call with a request id, logs its outcome and turns panics into Internal errors.
func Logging() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		requestID := incomingRequestID(ctx)
		ctx = logger.WithRequestID(ctx, requestID)
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDHeader, requestID))

		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorContext(ctx, "Handler panicked", "method", info.FullMethod, "panic", r)
				err = status.Error(codes.Internal, "internal error")
			}

			code := status.Code(err)
			args := []any{"method", info.FullMethod, "code", code.String(), "duration", time.Since(start)}
			switch code {
			case codes.OK:
				logger.InfoContext(ctx, "gRPC call", args...)
			case codes.Internal, codes.Unknown:
				logger.ErrorContext(ctx, "gRPC call failed", append(args, "error", err)...)
			default:
				logger.WarnContext(ctx, "gRPC call rejected", append(args, "error", err)...)
			}
		}()

		return handler(ctx, req)
	}
}

func incomingRequestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get(requestIDHeader); len(ids) > 0 && ids[0] != "" {
			return ids[0]
		}
	}
	return uuid.NewString()
}
