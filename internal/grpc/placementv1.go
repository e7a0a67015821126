package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Service and message shapes of placement.v1.PlacementQueryService. Messages
// are protobuf well-known types so no generated code is required.
const (
	serviceName                   = "placement.v1.PlacementQueryService"
	getApplicationMethod          = "/" + serviceName + "/GetApplication"
	listStudentApplicationsMethod = "/" + serviceName + "/ListStudentApplications"
)

type PlacementQueryServiceServer interface {
	GetApplication(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ListStudentApplications(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

func RegisterPlacementQueryServiceServer(registrar grpc.ServiceRegistrar, srv PlacementQueryServiceServer) {
	registrar.RegisterService(&placementQueryServiceDesc, srv)
}

var placementQueryServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*PlacementQueryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetApplication", Handler: getApplicationHandler},
		{MethodName: "ListStudentApplications", Handler: listStudentApplicationsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "placement/v1/query.proto",
}

func getApplicationHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PlacementQueryServiceServer).GetApplication(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getApplicationMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PlacementQueryServiceServer).GetApplication(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func listStudentApplicationsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PlacementQueryServiceServer).ListStudentApplications(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listStudentApplicationsMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PlacementQueryServiceServer).ListStudentApplications(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

type PlacementQueryServiceClient interface {
	GetApplication(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListStudentApplications(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type placementQueryServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewPlacementQueryServiceClient(cc grpc.ClientConnInterface) PlacementQueryServiceClient {
	return &placementQueryServiceClient{cc: cc}
}

func (c *placementQueryServiceClient) GetApplication(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getApplicationMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *placementQueryServiceClient) ListStudentApplications(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, listStudentApplicationsMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
