package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified name clients dial.
const ServiceName = "neighbortools.v1.BundleRentalService"

// BundleRentalServiceServer is the server API. Requests and responses are JSON-shaped structs
// so clients can call it without generated stubs.
type BundleRentalServiceServer interface {
	CheckBundleAvailability(context.Context, *structpb.Struct) (*structpb.Struct, error)
	QuoteBundle(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RequestBundleRental(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SubmitDecision(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ConfirmPickup(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ConfirmReturn(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CancelBundleRental(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetBundleRental(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListMyBundleRentals(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(BundleRentalServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, call unaryMethod) grpc.MethodHandler {
	fullMethod := "/" + ServiceName + "/" + name
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BundleRentalServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(BundleRentalServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// BundleRentalService_ServiceDesc is the grpc.ServiceDesc for BundleRentalService.
var BundleRentalService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BundleRentalServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CheckBundleAvailability", Handler: unaryHandler("CheckBundleAvailability", BundleRentalServiceServer.CheckBundleAvailability)},
		{MethodName: "QuoteBundle", Handler: unaryHandler("QuoteBundle", BundleRentalServiceServer.QuoteBundle)},
		{MethodName: "RequestBundleRental", Handler: unaryHandler("RequestBundleRental", BundleRentalServiceServer.RequestBundleRental)},
		{MethodName: "SubmitDecision", Handler: unaryHandler("SubmitDecision", BundleRentalServiceServer.SubmitDecision)},
		{MethodName: "ConfirmPickup", Handler: unaryHandler("ConfirmPickup", BundleRentalServiceServer.ConfirmPickup)},
		{MethodName: "ConfirmReturn", Handler: unaryHandler("ConfirmReturn", BundleRentalServiceServer.ConfirmReturn)},
		{MethodName: "CancelBundleRental", Handler: unaryHandler("CancelBundleRental", BundleRentalServiceServer.CancelBundleRental)},
		{MethodName: "GetBundleRental", Handler: unaryHandler("GetBundleRental", BundleRentalServiceServer.GetBundleRental)},
		{MethodName: "ListMyBundleRentals", Handler: unaryHandler("ListMyBundleRentals", BundleRentalServiceServer.ListMyBundleRentals)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "neighbortools/v1/bundle_rental.proto",
}

func RegisterBundleRentalServiceServer(s grpc.ServiceRegistrar, srv BundleRentalServiceServer) {
	s.RegisterService(&BundleRentalService_ServiceDesc, srv)
}
