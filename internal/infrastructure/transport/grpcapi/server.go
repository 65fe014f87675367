// Package grpcapi implements the RPC Transport (component G): a gRPC
// server exposing the Query Facade as the NetworkConfig service, alongside
// the standard gRPC health-checking service.
package grpcapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/crepric/netfailoverd/internal/application/queryfacade"
	"github.com/crepric/netfailoverd/internal/domain/routing"
)

// ErrServerAlreadyRunning indicates Serve was called on a running server.
var ErrServerAlreadyRunning error = errors.New("server already running")

// Server is the RPC Transport. It wraps a *grpc.Server serving the
// NetworkConfig service directly over a queryfacade.Facade, plus the
// standard grpc_health_v1 health service.
type Server struct {
	facade       *queryfacade.Facade
	listenAddr   string
	drainTimeout time.Duration
	logger       *slog.Logger

	grpcServer   *grpc.Server
	healthServer *health.Server

	mu       sync.Mutex
	running  bool
	listener net.Listener
}

// New constructs a Server. listenAddr is the rpc.listen_address
// configuration field (e.g. "0.0.0.0:50051"); drainTimeout bounds
// GracefulStop.
func New(facade *queryfacade.Facade, listenAddr string, drainTimeout time.Duration, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()

	s := &Server{
		facade:       facade,
		listenAddr:   listenAddr,
		drainTimeout: drainTimeout,
		logger:       logger,
		grpcServer:   grpcServer,
		healthServer: healthServer,
	}

	grpcServer.RegisterService(&serviceDesc, networkConfig(s))
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	healthServer.SetServingStatus(serviceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	return s
}

// MarkServing flips the health service to SERVING, once the composition
// root has started the Health Monitor and Route Manager.
func (s *Server) MarkServing() {
	s.healthServer.SetServingStatus(serviceName, grpc_health_v1.HealthCheckResponse_SERVING)
	s.healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
}

// Serve starts listening and blocks until the server stops.
func (s *Server) Serve() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("serve: %w", ErrServerAlreadyRunning)
	}
	listener, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("listen: %w", err)
	}
	s.listener = listener
	s.running = true
	s.mu.Unlock()

	s.logger.Info("rpc transport listening", "address", listener.Addr().String())
	return s.grpcServer.Serve(listener)
}

// Stop gracefully stops the server, forcing a hard stop if drainTimeout
// elapses before in-flight RPCs finish.
func (s *Server) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()

	timeout := s.drainTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	select {
	case <-stopped:
	case <-time.After(timeout):
		s.logger.Warn("rpc transport drain timeout elapsed, forcing stop")
		s.grpcServer.Stop()
		<-stopped
	}
}

// Address returns the server's listening address, or "" if Serve has not
// yet opened a listener. The address is still reported after Stop.
func (s *Server) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) GetDefaultGw() (string, bool) {
	return s.facade.GetDefaultGw()
}

func (s *Server) GetIfStatus() []queryfacade.InterfaceStatus {
	return s.facade.GetIfStatus()
}

func (s *Server) ForceNewGateway(ifName string) routing.Status {
	return s.facade.ForceNewGateway(ifName)
}

func (s *Server) getDefaultGw(_ context.Context, _ *GetDefaultGwRequest) (*GetDefaultGwResponse, error) {
	name, ok := s.GetDefaultGw()
	if !ok {
		return nil, status.Error(codes.NotFound, "no default gateway is currently set")
	}
	return &GetDefaultGwResponse{DefaultGwInterface: name}, nil
}

func (s *Server) getIfStatus(_ context.Context, _ *GetIfStatusRequest) (*GetIfStatusResponse, error) {
	statuses := s.GetIfStatus()
	out := make([]InterfaceStatusMsg, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, InterfaceStatusMsg{
			IfName:        st.IfName,
			Status:        st.Status.String(),
			LastCheckedAt: st.LastCheckedAt,
		})
	}
	return &GetIfStatusResponse{Interfaces: out}, nil
}

// forceNewGateway always returns OK at the transport level, preserving
// the reference implementation's NetworkConfigImpl::ForceNewGateway
// behavior (see queryfacade.Facade.ForceNewGateway's doc comment): the
// internal routing.Status is logged, never surfaced as a transport error.
func (s *Server) forceNewGateway(_ context.Context, req *ForceNewGatewayRequest) (*ForceNewGatewayResponse, error) {
	result := s.ForceNewGateway(req.IfName)
	if !result.IsOk() {
		s.logger.Warn("force new gateway did not succeed", "interface", req.IfName, "result", result.Kind(), "message", result.Message())
	}
	return &ForceNewGatewayResponse{}, nil
}

func (s *Server) health(_ context.Context, _ *HealthRequest) (*HealthResponse, error) {
	_, ok := s.GetDefaultGw()
	return &HealthResponse{Serving: ok}, nil
}
