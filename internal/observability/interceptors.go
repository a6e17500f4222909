package observability

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"prediction-dashboard-service/internal/observability/metrics"
)

// ProbeUnaryInterceptor counts health Check calls per method and status code.
func ProbeUnaryInterceptor(m *metrics.Metrics) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		recordProbe(m, info.FullMethod, err, time.Since(start))
		return resp, err
	}
}

// ProbeStreamInterceptor counts health Watch and reflection streams.
func ProbeStreamInterceptor(m *metrics.Metrics) grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		start := time.Now()
		err := handler(srv, ss)
		recordProbe(m, info.FullMethod, err, time.Since(start))
		return err
	}
}

func recordProbe(m *metrics.Metrics, method string, err error, d time.Duration) {
	code := status.Code(err).String()
	m.RecordProbe(method, code, d.Seconds())
	log.Debug().
		Str("method", method).
		Str("code", code).
		Dur("duration", d).
		Msg("gRPC probe")
}
