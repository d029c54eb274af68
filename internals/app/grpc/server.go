package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/mercadolocal/marketplace-service/internals/app/config"
	"github.com/mercadolocal/marketplace-service/internals/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const (
	serviceName   = "marketplace.MarketplaceService"
	probeInterval = 15 * time.Second
)

// Pinger reports whether the database answers.
type Pinger interface {
	PingPostgres(ctx context.Context) error
}

type Server struct {
	grpc   *grpc.Server
	health *health.Server
	db     Pinger
	log    logger.Logger
}

func NewServer(db Pinger, log logger.Logger) *Server {
	grpcServer := grpc.NewServer(
		grpc.MaxRecvMsgSize(1024*1024*4),
		grpc.MaxSendMsgSize(1024*1024*4),
	)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	return &Server{grpc: grpcServer, health: healthServer, db: db, log: log}
}

// StartgRPCServer listens on GRPC_PORT and keeps the health status in step with the database
// until ctx is cancelled.
func (s *Server) StartgRPCServer(ctx context.Context, cfg config.Config) error {
	lis, err := net.Listen("tcp", ":"+cfg.GRPC_PORT)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", cfg.GRPC_PORT, err)
	}

	s.probe(ctx)
	go s.watch(ctx)

	go func() {
		s.log.Info("gRPC Server started on port %s", cfg.GRPC_PORT)
		if err := s.grpc.Serve(lis); err != nil {
			s.log.Error("Failed to serve gRPC: %v", err)
		}
	}()

	return nil
}

func (s *Server) probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if err := s.db.PingPostgres(ctx); err != nil {
		s.log.Warn("Database ping failed: %v", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(serviceName, status)
	return status
}

func (s *Server) watch(ctx context.Context) {
	ticker := time.NewTicker(probeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.probe(ctx)
		}
	}
}

func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
