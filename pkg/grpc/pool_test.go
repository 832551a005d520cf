package grpc

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func TestGetConnectionReusesTarget(t *testing.T) {
	pool := NewPool()
	t.Cleanup(func() { _ = pool.Close() })

	a, err := pool.GetConnection("localhost:50052")
	require.NoError(t, err)
	b, err := pool.GetConnection("localhost:50052")
	require.NoError(t, err)
	c, err := pool.GetConnection("localhost:50053")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, pool.Len())
}

func TestGetConnectionReplacesClosed(t *testing.T) {
	pool := NewPool()
	t.Cleanup(func() { _ = pool.Close() })

	a, err := pool.GetConnection("localhost:50052")
	require.NoError(t, err)
	require.NoError(t, a.Close())

	b, err := pool.GetConnection("localhost:50052")
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}

func TestCloseEmptiesPool(t *testing.T) {
	pool := NewPool()
	_, err := pool.GetConnection("localhost:50052")
	require.NoError(t, err)

	require.NoError(t, pool.Close())
	assert.Zero(t, pool.Len())
}

func TestInterceptorsRunOnCall(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	server := grpc.NewServer()
	healthpb.RegisterHealthServer(server, health.NewServer())
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	var calls []string
	pool := NewPool(
		WithLogger(zaptest.NewLogger(t)),
		WithInterceptor(func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
			calls = append(calls, method)
			return invoker(ctx, method, req, reply, cc, opts...)
		}),
	)
	t.Cleanup(func() { _ = pool.Close() })

	conn, err := pool.GetConnection("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
	assert.Equal(t, []string{"/grpc.health.v1.Health/Check"}, calls)
}
