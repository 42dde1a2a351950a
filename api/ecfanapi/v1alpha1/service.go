// Package ecfanapiv1alpha1 defines the gRPC service of the EC fan agent.
//
// Messages are protobuf well-known types; structured payloads (status, configuration,
// apply results) travel as google.protobuf.Struct with the JSON field names of the Go types.
package ecfanapiv1alpha1

import (
	context "context"

	grpc "google.golang.org/grpc"
	codes "google.golang.org/grpc/codes"
	status "google.golang.org/grpc/status"
	emptypb "google.golang.org/protobuf/types/known/emptypb"
	structpb "google.golang.org/protobuf/types/known/structpb"
	wrapperspb "google.golang.org/protobuf/types/known/wrapperspb"
)

// This is a compile-time assertion to ensure that this file is compatible with the grpc package it is being compiled against.
const _ = grpc.SupportPackageIsVersion7

const (
	EcFanAgentService_GetStatus_FullMethodName    = "/api.ecfanapi.v1alpha1.EcFanAgentService/GetStatus"
	EcFanAgentService_WriteConfig_FullMethodName  = "/api.ecfanapi.v1alpha1.EcFanAgentService/WriteConfig"
	EcFanAgentService_ReadRegister_FullMethodName = "/api.ecfanapi.v1alpha1.EcFanAgentService/ReadRegister"
	EcFanAgentService_WaitForReady_FullMethodName = "/api.ecfanapi.v1alpha1.EcFanAgentService/WaitForReady"
)

// EcFanAgentServiceClient is the client API for EcFanAgentService service.
type EcFanAgentServiceClient interface {
	// GetStatus reads the current fan status and programmed configuration
	GetStatus(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	// WriteConfig writes a fan configuration and returns the verification result
	WriteConfig(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	// ReadRegister reads a single byte of EC memory
	ReadRegister(ctx context.Context, in *wrapperspb.UInt32Value, opts ...grpc.CallOption) (*wrapperspb.UInt32Value, error)
	// WaitForReady blocks until the agent owns an initialized EC
	WaitForReady(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error)
}

type ecFanAgentServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewEcFanAgentServiceClient(cc grpc.ClientConnInterface) EcFanAgentServiceClient {
	return &ecFanAgentServiceClient{cc}
}

func (c *ecFanAgentServiceClient) GetStatus(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	err := c.cc.Invoke(ctx, EcFanAgentService_GetStatus_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ecFanAgentServiceClient) WriteConfig(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	err := c.cc.Invoke(ctx, EcFanAgentService_WriteConfig_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ecFanAgentServiceClient) ReadRegister(ctx context.Context, in *wrapperspb.UInt32Value, opts ...grpc.CallOption) (*wrapperspb.UInt32Value, error) {
	out := new(wrapperspb.UInt32Value)
	err := c.cc.Invoke(ctx, EcFanAgentService_ReadRegister_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ecFanAgentServiceClient) WaitForReady(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	err := c.cc.Invoke(ctx, EcFanAgentService_WaitForReady_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// EcFanAgentServiceServer is the server API for EcFanAgentService service.
// All implementations must embed UnimplementedEcFanAgentServiceServer
// for forward compatibility
type EcFanAgentServiceServer interface {
	GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	WriteConfig(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ReadRegister(context.Context, *wrapperspb.UInt32Value) (*wrapperspb.UInt32Value, error)
	WaitForReady(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	mustEmbedUnimplementedEcFanAgentServiceServer()
}

// UnimplementedEcFanAgentServiceServer must be embedded to have forward compatible implementations.
type UnimplementedEcFanAgentServiceServer struct {
}

func (UnimplementedEcFanAgentServiceServer) GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetStatus not implemented")
}
func (UnimplementedEcFanAgentServiceServer) WriteConfig(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method WriteConfig not implemented")
}
func (UnimplementedEcFanAgentServiceServer) ReadRegister(context.Context, *wrapperspb.UInt32Value) (*wrapperspb.UInt32Value, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ReadRegister not implemented")
}
func (UnimplementedEcFanAgentServiceServer) WaitForReady(context.Context, *emptypb.Empty) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method WaitForReady not implemented")
}
func (UnimplementedEcFanAgentServiceServer) mustEmbedUnimplementedEcFanAgentServiceServer() {}

func RegisterEcFanAgentServiceServer(s grpc.ServiceRegistrar, srv EcFanAgentServiceServer) {
	s.RegisterService(&EcFanAgentService_ServiceDesc, srv)
}

func _EcFanAgentService_GetStatus_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EcFanAgentServiceServer).GetStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: EcFanAgentService_GetStatus_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(EcFanAgentServiceServer).GetStatus(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _EcFanAgentService_WriteConfig_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EcFanAgentServiceServer).WriteConfig(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: EcFanAgentService_WriteConfig_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(EcFanAgentServiceServer).WriteConfig(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _EcFanAgentService_ReadRegister_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.UInt32Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EcFanAgentServiceServer).ReadRegister(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: EcFanAgentService_ReadRegister_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(EcFanAgentServiceServer).ReadRegister(ctx, req.(*wrapperspb.UInt32Value))
	}
	return interceptor(ctx, in, info, handler)
}

func _EcFanAgentService_WaitForReady_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EcFanAgentServiceServer).WaitForReady(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: EcFanAgentService_WaitForReady_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(EcFanAgentServiceServer).WaitForReady(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// EcFanAgentService_ServiceDesc is the grpc.ServiceDesc for EcFanAgentService service.
// It's only intended for direct use with grpc.RegisterService,
// and not to be introspected or modified (even as a copy)
var EcFanAgentService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "api.ecfanapi.v1alpha1.EcFanAgentService",
	HandlerType: (*EcFanAgentServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetStatus",
			Handler:    _EcFanAgentService_GetStatus_Handler,
		},
		{
			MethodName: "WriteConfig",
			Handler:    _EcFanAgentService_WriteConfig_Handler,
		},
		{
			MethodName: "ReadRegister",
			Handler:    _EcFanAgentService_ReadRegister_Handler,
		},
		{
			MethodName: "WaitForReady",
			Handler:    _EcFanAgentService_WaitForReady_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "api/ecfanapi/v1alpha1/ecfanapi.proto",
}
