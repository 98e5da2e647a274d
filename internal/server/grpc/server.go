// Package grpc serves the operational gRPC endpoint: the standard health
// service, fed by a periodic readiness check.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/roomify-app/roomify/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported next to the overall "" entry.
const ServiceName = "roomify.Server"

// CheckFunc reports whether the server's dependencies are reachable.
type CheckFunc func(ctx context.Context) error

type GRPCServer struct {
	address       string
	logger        logging.Logger
	health        *health.Server
	check         CheckFunc
	checkInterval time.Duration
}

func NewGRPCServer(a string, l logging.Logger, check CheckFunc, checkInterval time.Duration) (*GRPCServer, error) {
	if checkInterval <= 0 {
		checkInterval = 10 * time.Second
	}
	return &GRPCServer{
		address:       a,
		logger:        l.With("module", "grpc_server"),
		health:        health.NewServer(),
		check:         check,
		checkInterval: checkInterval,
	}, nil
}

// Run listens on the configured address until ctx ends.
func (s *GRPCServer) Run(ctx context.Context) error {
	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx ends.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.recoveryInterceptor, s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	s.updateHealth(ctx)

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(s.checkInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.logger.Info(ctx, "Stopping gRPC server...")
				s.health.Shutdown()
				srv.GracefulStop()
				close(done)
				return
			case <-ticker.C:
				s.updateHealth(ctx)
			}
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}
	<-done
	return nil
}

func (s *GRPCServer) updateHealth(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if s.check != nil {
		checkCtx, cancel := context.WithTimeout(ctx, s.checkInterval)
		err := s.check(checkCtx)
		cancel()
		if err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			s.logger.Warn(ctx, "readiness check failed", "error", err)
		}
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
