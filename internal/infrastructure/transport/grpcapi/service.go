package grpcapi

import (
	"context"
	"time"

	"google.golang.org/grpc"

	"github.com/crepric/netfailoverd/internal/application/queryfacade"
	"github.com/crepric/netfailoverd/internal/domain/routing"
)

// serviceName mirrors the reference implementation's NetworkConfig gRPC
// service, renamed into this module's namespace.
const serviceName = "netfailoverd.v1.NetworkConfig"

// GetDefaultGwRequest carries no fields.
type GetDefaultGwRequest struct{}

// GetDefaultGwResponse reports the current primary default gateway.
type GetDefaultGwResponse struct {
	DefaultGwInterface string `json:"default_gw_interface"`
}

// GetIfStatusRequest carries no fields.
type GetIfStatusRequest struct{}

// InterfaceStatusMsg is one row of GetIfStatusResponse.
type InterfaceStatusMsg struct {
	IfName        string    `json:"if_name"`
	Status        string    `json:"status"`
	LastCheckedAt time.Time `json:"last_checked_at"`
}

// GetIfStatusResponse lists every monitored interface's health status.
type GetIfStatusResponse struct {
	Interfaces []InterfaceStatusMsg `json:"interfaces"`
}

// ForceNewGatewayRequest names the interface to promote.
type ForceNewGatewayRequest struct {
	IfName string `json:"if_name"`
}

// ForceNewGatewayResponse carries no fields. The RPC always returns OK at
// the transport level regardless of the underlying routing.Status — see
// Server.forceNewGateway.
type ForceNewGatewayResponse struct{}

// HealthRequest carries no fields.
type HealthRequest struct{}

// HealthResponse reports whether the daemon currently has a primary
// default gateway, a cheap proxy for "has completed initial sync".
type HealthResponse struct {
	Serving bool `json:"serving"`
}

// networkConfig is the facade surface the service handlers need.
type networkConfig interface {
	GetDefaultGw() (string, bool)
	GetIfStatus() []queryfacade.InterfaceStatus
	ForceNewGateway(ifName string) routing.Status
}

func decodeRequest(dec func(any) error, v any) error {
	return dec(v)
}

func handleGetDefaultGw(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	var req GetDefaultGwRequest
	if err := decodeRequest(dec, &req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(*Server).getDefaultGw(ctx, &req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/GetDefaultGw"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(*Server).getDefaultGw(ctx, req.(*GetDefaultGwRequest))
	}
	return interceptor(ctx, &req, info, handler)
}

func handleGetIfStatus(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	var req GetIfStatusRequest
	if err := decodeRequest(dec, &req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(*Server).getIfStatus(ctx, &req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/GetIfStatus"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(*Server).getIfStatus(ctx, req.(*GetIfStatusRequest))
	}
	return interceptor(ctx, &req, info, handler)
}

func handleForceNewGateway(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	var req ForceNewGatewayRequest
	if err := decodeRequest(dec, &req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(*Server).forceNewGateway(ctx, &req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/ForceNewGateway"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(*Server).forceNewGateway(ctx, req.(*ForceNewGatewayRequest))
	}
	return interceptor(ctx, &req, info, handler)
}

func handleHealth(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	var req HealthRequest
	if err := decodeRequest(dec, &req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(*Server).health(ctx, &req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Health"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(*Server).health(ctx, req.(*HealthRequest))
	}
	return interceptor(ctx, &req, info, handler)
}

// serviceDesc hand-authors the grpc.ServiceDesc generated code would
// normally produce from a .proto file, since no daemonpb package exists
// in this repository to generate from. Each Handler assumes the jsonCodec
// registered in codec.go, selected per RPC via the "json" content-subtype
// (see Dial/CallOption usage in a client).
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*networkConfig)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetDefaultGw", Handler: handleGetDefaultGw},
		{MethodName: "GetIfStatus", Handler: handleGetIfStatus},
		{MethodName: "ForceNewGateway", Handler: handleForceNewGateway},
		{MethodName: "Health", Handler: handleHealth},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "netfailoverd/v1/network_config.proto",
}
