package api

import (
	"context"
	"fmt"
	"net"
	"time"

	"shareit/internal/config"
	"shareit/internal/logging"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// HealthServiceName is the service name reported next to the overall "" status.
const HealthServiceName = "shareit.ShareIt"

// GRPCServer serves grpc.health.v1.Health whose status follows the store.
type GRPCServer struct {
	cfg      config.APIGRPCConfig
	pinger   Pinger
	health   *health.Server
	server   *grpc.Server
	listener net.Listener
	log      *zerolog.Logger
}

func NewGRPCServer(cfg config.APIGRPCConfig, pinger Pinger, logger *zerolog.Logger) (*GRPCServer, error) {
	addr := fmt.Sprintf(":%d", cfg.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("grpc listen %s: %w", addr, err)
	}

	unary := ChainUnaryInterceptors(
		LoggingUnaryInterceptor(logger),
	)
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(unary))

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	if cfg.Reflection {
		reflection.Register(grpcServer)
	}

	s := &GRPCServer{
		cfg:      cfg,
		pinger:   pinger,
		health:   healthServer,
		server:   grpcServer,
		listener: lis,
		log:      logging.Component(logger, "grpc"),
	}
	// NOT_SERVING until the first ping succeeds
	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return s, nil
}

func (s *GRPCServer) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *GRPCServer) setStatus(st healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(HealthServiceName, st)
}

// CheckOnce pings the store and publishes the result.
func (s *GRPCServer) CheckOnce(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	st := healthpb.HealthCheckResponse_SERVING
	if s.pinger != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := s.pinger.Ping(pingCtx); err != nil {
			s.log.Warn().Err(err).Msg("database ping failed")
			st = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.setStatus(st)
	return st
}

// WatchHealth refreshes the health status every HealthInterval until ctx ends.
func (s *GRPCServer) WatchHealth(ctx context.Context) {
	interval := s.cfg.HealthInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	s.CheckOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.CheckOnce(ctx)
		}
	}
}

func (s *GRPCServer) Serve() error {
	s.log.Info().Str("addr", s.Addr()).Msg("gRPC health listening")
	return s.server.Serve(s.listener)
}

func (s *GRPCServer) Shutdown(ctx context.Context) {
	if s.server == nil {
		return
	}
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return
	case <-ctx.Done():
		s.log.Warn().Msg("gRPC graceful shutdown timed out; forcing stop")
		s.server.Stop()
		return
	case <-time.After(10 * time.Second):
		s.log.Warn().Msg("gRPC graceful shutdown timed out; forcing stop")
		s.server.Stop()
		return
	}
}
