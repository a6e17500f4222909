package observability

import (
	"net"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"prediction-dashboard-service/internal/observability/metrics"
)

// DashboardService is the health service name reported for the dashboard API.
const DashboardService = "prediction.dashboard.v1.Dashboard"

// HealthServer serves the standard gRPC health protocol for orchestrator probes.
type HealthServer struct {
	server *grpc.Server
	health *health.Server
	addr   string
}

// NewHealthServer creates a gRPC health server listening on addr. Probe
// calls are counted in m, or in the default metrics when m is nil.
func NewHealthServer(addr string, m *metrics.Metrics) *HealthServer {
	if m == nil {
		m = metrics.DefaultMetrics
	}
	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(ProbeUnaryInterceptor(m)),
		grpc.ChainStreamInterceptor(ProbeStreamInterceptor(m)),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)

	// Enable gRPC reflection for debugging tools like grpcurl
	reflection.Register(server)

	return &HealthServer{
		server: server,
		health: healthServer,
		addr:   addr,
	}
}

// SetServing marks the process and the dashboard service as serving or not.
func (h *HealthServer) SetServing(serving bool) {
	st := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if serving {
		st = grpc_health_v1.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus("", st)
	h.health.SetServingStatus(DashboardService, st)
}

// Start listens on the configured address and serves in a goroutine.
func (h *HealthServer) Start() error {
	lis, err := net.Listen("tcp", h.addr)
	if err != nil {
		return err
	}
	h.Serve(lis)
	return nil
}

// Serve marks the services serving and serves lis in a goroutine.
func (h *HealthServer) Serve(lis net.Listener) {
	h.SetServing(true)

	go func() {
		log.Info().Str("addr", lis.Addr().String()).Msg("Starting gRPC health server")
		if err := h.server.Serve(lis); err != nil {
			log.Error().Err(err).Msg("gRPC health server error")
		}
	}()
}

// Shutdown marks the services not serving and stops gracefully.
func (h *HealthServer) Shutdown() {
	log.Info().Msg("Shutting down gRPC health server")
	h.SetServing(false)
	h.server.GracefulStop()
}
