package agent

import (
	"context"
	"errors"

	ecfanapiv1alpha1 "github.com/uptime-induestries/ecfan-agent/api/ecfanapi/v1alpha1"
	"github.com/uptime-induestries/ecfan-agent/pkg/ec"
	"github.com/uptime-induestries/ecfan-agent/pkg/fancontroller"
	"github.com/uptime-induestries/ecfan-agent/pkg/fancurve"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// EcFanAgent implementing the EcFanAgentServiceServer
type agentGrpcService struct {
	ecfanapiv1alpha1.UnimplementedEcFanAgentServiceServer

	Agent EcFanAgent
}

// NewGrpcServiceFor creates a new gRPC service for a given agent
func NewGrpcServiceFor(agent EcFanAgent) *agentGrpcService {
	return &agentGrpcService{
		Agent: agent,
	}
}

// grpcError maps controller errors onto gRPC status codes
func grpcError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fancontroller.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, fancontroller.ErrNotInitialized):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, fancontroller.ErrCapabilityUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// GetStatus reads the fan status from the EC
func (service *agentGrpcService) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	st, err := service.Agent.ReadStatus(ctx)
	if err != nil {
		return nil, grpcError(err)
	}
	return ecfanapiv1alpha1.ToStruct(st)
}

// WriteConfig writes and verifies a fan configuration
func (service *agentGrpcService) WriteConfig(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var cfg fancurve.Config
	if err := ecfanapiv1alpha1.FromStruct(req, &cfg); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	res, err := service.Agent.WriteConfig(ctx, cfg)
	if err != nil {
		return nil, grpcError(err)
	}
	return ecfanapiv1alpha1.ToStruct(res)
}

// ReadRegister reads one byte of EC memory
func (service *agentGrpcService) ReadRegister(ctx context.Context, req *wrapperspb.UInt32Value) (*wrapperspb.UInt32Value, error) {
	if req.GetValue() > 0xFFFF {
		return nil, status.Errorf(codes.InvalidArgument, "address 0x%X exceeds 16 bits", req.GetValue())
	}
	val, err := service.Agent.ReadRegister(ctx, ec.Address(req.GetValue()))
	if err != nil {
		return nil, grpcError(err)
	}
	return wrapperspb.UInt32(uint32(val)), nil
}

// WaitForReady blocks until the agent owns an initialized EC
func (service *agentGrpcService) WaitForReady(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	return &emptypb.Empty{}, grpcError(service.Agent.WaitForReady(ctx))
}
