package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The wall service speaks well-known protobuf types only, so it is
// declared by hand instead of being generated from a .proto file.

const ServiceName = "wishwall.v1.WallService"

const (
	WallService_CreateSession_FullMethodName = "/wishwall.v1.WallService/CreateSession"
	WallService_Submit_FullMethodName        = "/wishwall.v1.WallService/Submit"
	WallService_Approve_FullMethodName       = "/wishwall.v1.WallService/Approve"
	WallService_Reject_FullMethodName        = "/wishwall.v1.WallService/Reject"
	WallService_ClearAll_FullMethodName      = "/wishwall.v1.WallService/ClearAll"
	WallService_WatchQueue_FullMethodName    = "/wishwall.v1.WallService/WatchQueue"
	WallService_WatchWall_FullMethodName     = "/wishwall.v1.WallService/WatchWall"
)

// WallServiceServer is the server API for the wall service.
type WallServiceServer interface {
	// CreateSession returns a signed anonymous session token.
	CreateSession(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
	// Submit takes the wish text and returns the new message id.
	Submit(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	Approve(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	Reject(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	// ClearAll takes the confirmation flag and returns the number of deleted messages.
	ClearAll(context.Context, *wrapperspb.BoolValue) (*wrapperspb.Int64Value, error)
	WatchQueue(*emptypb.Empty, WallService_WatchServer) error
	WatchWall(*emptypb.Empty, WallService_WatchServer) error
}

// UnimplementedWallServiceServer must be embedded to have forward compatible implementations.
type UnimplementedWallServiceServer struct{}

func (UnimplementedWallServiceServer) CreateSession(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CreateSession not implemented")
}
func (UnimplementedWallServiceServer) Submit(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Submit not implemented")
}
func (UnimplementedWallServiceServer) Approve(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Approve not implemented")
}
func (UnimplementedWallServiceServer) Reject(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Reject not implemented")
}
func (UnimplementedWallServiceServer) ClearAll(context.Context, *wrapperspb.BoolValue) (*wrapperspb.Int64Value, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ClearAll not implemented")
}
func (UnimplementedWallServiceServer) WatchQueue(*emptypb.Empty, WallService_WatchServer) error {
	return status.Errorf(codes.Unimplemented, "method WatchQueue not implemented")
}
func (UnimplementedWallServiceServer) WatchWall(*emptypb.Empty, WallService_WatchServer) error {
	return status.Errorf(codes.Unimplemented, "method WatchWall not implemented")
}

func RegisterWallServiceServer(s grpc.ServiceRegistrar, srv WallServiceServer) {
	s.RegisterService(&WallService_ServiceDesc, srv)
}

func _WallService_CreateSession_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WallServiceServer).CreateSession(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: WallService_CreateSession_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(WallServiceServer).CreateSession(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _WallService_Submit_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WallServiceServer).Submit(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: WallService_Submit_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(WallServiceServer).Submit(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _WallService_Approve_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WallServiceServer).Approve(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: WallService_Approve_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(WallServiceServer).Approve(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _WallService_Reject_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WallServiceServer).Reject(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: WallService_Reject_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(WallServiceServer).Reject(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _WallService_ClearAll_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.BoolValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WallServiceServer).ClearAll(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: WallService_ClearAll_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(WallServiceServer).ClearAll(ctx, req.(*wrapperspb.BoolValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _WallService_WatchQueue_Handler(srv any, stream grpc.ServerStream) error {
	m := new(emptypb.Empty)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(WallServiceServer).WatchQueue(m, &wallServiceWatchServer{ServerStream: stream})
}

func _WallService_WatchWall_Handler(srv any, stream grpc.ServerStream) error {
	m := new(emptypb.Empty)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(WallServiceServer).WatchWall(m, &wallServiceWatchServer{ServerStream: stream})
}

// WallService_WatchServer streams views, each one replacing the previous.
type WallService_WatchServer interface {
	Send(*structpb.Struct) error
	grpc.ServerStream
}

type wallServiceWatchServer struct {
	grpc.ServerStream
}

func (x *wallServiceWatchServer) Send(m *structpb.Struct) error {
	return x.ServerStream.SendMsg(m)
}

// WallService_ServiceDesc is the grpc.ServiceDesc for the wall service.
var WallService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*WallServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateSession", Handler: _WallService_CreateSession_Handler},
		{MethodName: "Submit", Handler: _WallService_Submit_Handler},
		{MethodName: "Approve", Handler: _WallService_Approve_Handler},
		{MethodName: "Reject", Handler: _WallService_Reject_Handler},
		{MethodName: "ClearAll", Handler: _WallService_ClearAll_Handler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "WatchQueue", Handler: _WallService_WatchQueue_Handler, ServerStreams: true},
		{StreamName: "WatchWall", Handler: _WallService_WatchWall_Handler, ServerStreams: true},
	},
	Metadata: "wishwall/v1/wall.proto",
}
