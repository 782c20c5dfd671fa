package grpc

import (
	"context"
	"strconv"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// userIDHeader is written by the auth interceptor after the token checks out.
const userIDHeader = "user-id"

// GetUserIDFromContext returns the authenticated caller.
func GetUserIDFromContext(ctx context.Context) (int32, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return 0, status.Error(codes.Unauthenticated, "metadata is not provided")
	}

	ids := md.Get(userIDHeader)
	if len(ids) == 0 {
		return 0, status.Error(codes.Unauthenticated, "caller is not authenticated")
	}

	userID, err := strconv.ParseInt(ids[0], 10, 32)
	if err != nil {
		return 0, status.Errorf(codes.InvalidArgument, "invalid user id %q", ids[0])
	}
	if userID <= 0 {
		return 0, status.Error(codes.Unauthenticated, "caller is not authenticated")
	}
	return int32(userID), nil
}
