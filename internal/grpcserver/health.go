// Package grpcserver exposes the standard gRPC health service, reporting
// SERVING while the database answers pings.
package grpcserver

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name checked by orchestrators that ask
// for this server specifically rather than the whole process.
const ServiceName = "supplychain.Inventory"

// CheckFunc reports whether a dependency is healthy
type CheckFunc func(ctx context.Context) error

// Server wraps a grpc.Server carrying the health and reflection services
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	logger *zap.Logger
}

// New creates the server. Every service starts NOT_SERVING until the first check.
func New(logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		grpc:   grpc.NewServer(),
		health: health.NewServer(),
		logger: logger,
	}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	reflection.Register(s.grpc)

	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

func (s *Server) setStatus(status healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Watch runs check immediately and then every interval until ctx is done,
// publishing the result as the serving status.
func (s *Server) Watch(ctx context.Context, interval time.Duration, check CheckFunc) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := healthpb.HealthCheckResponse_UNKNOWN
	for {
		checkCtx, cancel := context.WithTimeout(ctx, interval)
		err := check(checkCtx)
		cancel()

		status := healthpb.HealthCheckResponse_SERVING
		if err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
		if status != last {
			if err != nil {
				s.logger.Warn("health check failing", zap.Error(err))
			} else {
				s.logger.Info("health check passing")
			}
			last = status
		}
		s.setStatus(status)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Serve accepts connections on lis until Stop is called
func (s *Server) Serve(lis net.Listener) error {
	if err := s.grpc.Serve(lis); err != nil {
		return fmt.Errorf("grpc server stopped: %w", err)
	}
	return nil
}

// Stop marks every service NOT_SERVING and drains in-flight calls
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
