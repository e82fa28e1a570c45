package grpc

import (
	"context"
	"errors"
	"net"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"jurny-api/internal/observability"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthServer exposes grpc.health.v1 for orchestrator probes. Its status
// follows the database.
type HealthServer struct {
	server *gogrpc.Server
	health *health.Server
	db     Pinger
	log    *zap.Logger
}

// NewHealthServer builds the gRPC server with tracing and metrics attached.
func NewHealthServer(db Pinger, serviceName string, log *zap.Logger) *HealthServer {
	if log == nil {
		log = zap.NewNop()
	}
	server := gogrpc.NewServer(
		gogrpc.StatsHandler(otelgrpc.NewServerHandler()),
		gogrpc.ChainUnaryInterceptor(observability.GRPCServerMetricsUnaryInterceptor()),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(server, hs)
	hs.SetServingStatus(serviceName, healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	return &HealthServer{server: server, health: hs, db: db, log: log}
}

// Refresh pings the database and publishes the resulting status.
func (s *HealthServer) Refresh(ctx context.Context, serviceName string) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if s.db != nil {
		if err := s.db.PingContext(ctx); err != nil {
			s.log.Warn("health: database ping failed", zap.Error(err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus(serviceName, status)
	s.health.SetServingStatus("", status)
	return status
}

// Serve blocks until the listener fails or Stop is called.
func (s *HealthServer) Serve(lis net.Listener) error {
	err := s.server.Serve(lis)
	if errors.Is(err, gogrpc.ErrServerStopped) {
		return nil
	}
	return err
}

func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}
