package observability

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"prediction-dashboard-service/internal/observability/metrics"
)

func dialHealth(t *testing.T, lis *bufconn.Listener) grpc_health_v1.HealthClient {
	t.Helper()
	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return grpc_health_v1.NewHealthClient(conn)
}

func TestHealthServer_ServingLifecycle(t *testing.T) {
	lis := bufconn.Listen(1024 * 1024)
	m := metrics.NewMetrics(prometheus.NewRegistry())
	h := NewHealthServer("bufnet", m)
	h.Serve(lis)
	defer h.Shutdown()

	client := dialHealth(t, lis)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: DashboardService})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Status != grpc_health_v1.HealthCheckResponse_SERVING {
		t.Errorf("expected SERVING, got %s", resp.Status)
	}

	h.SetServing(false)
	resp, err = client.Check(ctx, &grpc_health_v1.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Status != grpc_health_v1.HealthCheckResponse_NOT_SERVING {
		t.Errorf("expected NOT_SERVING, got %s", resp.Status)
	}

	checks := testutil.ToFloat64(m.ProbeCalls.WithLabelValues(grpc_health_v1.Health_Check_FullMethodName, "OK"))
	if checks != 2 {
		t.Errorf("expected 2 recorded health checks, got %v", checks)
	}
}

func TestHealthServer_UnknownServiceCounted(t *testing.T) {
	lis := bufconn.Listen(1024 * 1024)
	m := metrics.NewMetrics(prometheus.NewRegistry())
	h := NewHealthServer("bufnet", m)
	h.Serve(lis)
	defer h.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := dialHealth(t, lis).Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: "unknown"})
	if err == nil {
		t.Fatal("expected NotFound for an unregistered service")
	}

	got := testutil.ToFloat64(m.ProbeCalls.WithLabelValues(grpc_health_v1.Health_Check_FullMethodName, "NotFound"))
	if got != 1 {
		t.Errorf("expected 1 NotFound probe, got %v", got)
	}
}
