package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nickprotop/NeighborTools-sub003/internal/domain"
	"github.com/nickprotop/NeighborTools-sub003/internal/logger"
)

// toStatus converts service errors into gRPC status errors. Unknown errors are logged and hidden.
func toStatus(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var code codes.Code
	switch {
	case errors.Is(err, domain.ErrValidation):
		code = codes.InvalidArgument
	case errors.Is(err, domain.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrConcurrencyConflict):
		code = codes.Aborted
	case errors.Is(err, domain.ErrInvalidStateTransition):
		code = codes.FailedPrecondition
	case errors.Is(err, domain.ErrPermissionDenied):
		code = codes.PermissionDenied
	case errors.Is(err, domain.ErrRateLimited):
		code = codes.ResourceExhausted
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	default:
		logger.ErrorContext(ctx, "Unhandled error", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(code, err.Error())
}
