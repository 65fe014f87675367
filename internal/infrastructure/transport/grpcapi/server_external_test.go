package grpcapi_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/crepric/netfailoverd/internal/application/queryfacade"
	"github.com/crepric/netfailoverd/internal/domain/netstatus"
	"github.com/crepric/netfailoverd/internal/domain/routing"
	"github.com/crepric/netfailoverd/internal/infrastructure/transport/grpcapi"
)

type fakeHealth struct{}

func (fakeHealth) CheckStatus(name string) (netstatus.Record, bool) {
	if name != "eth0" {
		return netstatus.Record{}, false
	}
	return netstatus.Record{Status: netstatus.Healthy, LastCheckedAt: time.Now()}, true
}

func (fakeHealth) InterfaceNames() []string { return []string{"eth0"} }

type fakeRoutes struct {
	primary    string
	forceCalls []string
}

func (f *fakeRoutes) PrimaryDefaultGwInterface() string { return f.primary }

func (f *fakeRoutes) SetDefaultGw(name string) routing.Status {
	f.forceCalls = append(f.forceCalls, name)
	return routing.Ok()
}

func startTestServer(t *testing.T) (*grpcapi.Server, *grpc.ClientConn, *fakeRoutes) {
	t.Helper()
	routes := &fakeRoutes{primary: "eth0"}
	facade := queryfacade.New(fakeHealth{}, routes)
	srv := grpcapi.New(facade, "127.0.0.1:0", 2*time.Second, nil)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve() }()

	var addr string
	require.Eventually(t, func() bool {
		addr = srv.Address()
		return addr != ""
	}, time.Second, 5*time.Millisecond)
	srv.MarkServing()

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		srv.Stop()
		<-errCh
	})
	return srv, conn, routes
}

func TestServer_GetDefaultGw_OverJSONCodec(t *testing.T) {
	_, conn, _ := startTestServer(t)

	var resp grpcapi.GetDefaultGwResponse
	err := conn.Invoke(context.Background(), "/netfailoverd.v1.NetworkConfig/GetDefaultGw",
		&grpcapi.GetDefaultGwRequest{}, &resp, grpc.CallContentSubtype("json"))
	require.NoError(t, err)
	assert.Equal(t, "eth0", resp.DefaultGwInterface)
}

func TestServer_GetIfStatus_OverJSONCodec(t *testing.T) {
	_, conn, _ := startTestServer(t)

	var resp grpcapi.GetIfStatusResponse
	err := conn.Invoke(context.Background(), "/netfailoverd.v1.NetworkConfig/GetIfStatus",
		&grpcapi.GetIfStatusRequest{}, &resp, grpc.CallContentSubtype("json"))
	require.NoError(t, err)
	require.Len(t, resp.Interfaces, 1)
	assert.Equal(t, "eth0", resp.Interfaces[0].IfName)
	assert.Equal(t, "HEALTHY", resp.Interfaces[0].Status)
}

func TestServer_ForceNewGateway_OverJSONCodec(t *testing.T) {
	_, conn, routes := startTestServer(t)

	var resp grpcapi.ForceNewGatewayResponse
	err := conn.Invoke(context.Background(), "/netfailoverd.v1.NetworkConfig/ForceNewGateway",
		&grpcapi.ForceNewGatewayRequest{IfName: "eth1"}, &resp, grpc.CallContentSubtype("json"))
	require.NoError(t, err)
	assert.Equal(t, []string{"eth1"}, routes.forceCalls)
}

func TestServer_Health_OverJSONCodec(t *testing.T) {
	_, conn, _ := startTestServer(t)

	var resp grpcapi.HealthResponse
	err := conn.Invoke(context.Background(), "/netfailoverd.v1.NetworkConfig/Health",
		&grpcapi.HealthRequest{}, &resp, grpc.CallContentSubtype("json"))
	require.NoError(t, err)
	assert.True(t, resp.Serving)
}

func TestServer_GRPCHealthService_StillServesProtoCodec(t *testing.T) {
	_, conn, _ := startTestServer(t)
	client := grpc_health_v1.NewHealthClient(conn)

	resp, err := client.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.Status)
}

func TestServer_Serve_SecondCallFails(t *testing.T) {
	srv, _, _ := startTestServer(t)
	err := srv.Serve()
	assert.ErrorIs(t, err, grpcapi.ErrServerAlreadyRunning)
}

func TestServer_Stop_IsIdempotent(t *testing.T) {
	srv, _, _ := startTestServer(t)
	srv.Stop()
	assert.NotPanics(t, func() { srv.Stop() })
}
