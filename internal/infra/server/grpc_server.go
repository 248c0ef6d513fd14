package server

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/Miraines/MoonyAndStarry/community-service/internal/adapters/transport/grpc/middleware"
	"github.com/Miraines/MoonyAndStarry/community-service/internal/infra/config"
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const stopTimeout = 5 * time.Second

// NewGRPCServer builds the ops server. TLS is used only when both the
// certificate and the key are configured.
func NewGRPCServer(cfg *config.Config, hs healthpb.HealthServer, logger *zap.Logger) (*grpc.Server, error) {
	opts := []grpc.ServerOption{
		grpc.UnaryInterceptor(middleware.ChainUnaryServer(logger)),
		grpc.StreamInterceptor(middleware.ChainStreamServer(logger)),
	}
	if cfg.HTTPSCertFile != "" && cfg.HTTPSKeyFile != "" {
		creds, err := credentials.NewServerTLSFromFile(cfg.HTTPSCertFile, cfg.HTTPSKeyFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, grpc.Creds(creds))
	}

	srv := grpc.NewServer(opts...)
	healthpb.RegisterHealthServer(srv, hs)
	grpc_prometheus.Register(srv)
	grpc_prometheus.EnableHandlingTimeHistogram()
	reflection.Register(srv)
	return srv, nil
}

// StartGRPCServer listens on cfg.GRPCAddress and serves until ctx ends.
func StartGRPCServer(ctx context.Context, cfg *config.Config, hs healthpb.HealthServer, logger *zap.Logger) error {
	srv, err := NewGRPCServer(cfg, hs, logger)
	if err != nil {
		return err
	}
	lis, err := net.Listen("tcp", cfg.GRPCAddress)
	if err != nil {
		return err
	}
	return Serve(ctx, srv, lis, logger)
}

// Serve blocks until ctx is cancelled or the server fails. Shutdown is
// graceful, forced after stopTimeout.
func Serve(ctx context.Context, srv *grpc.Server, lis net.Listener, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("gRPC server listening", zap.String("addr", lis.Addr().String()))
		if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("stopping gRPC server")

	done := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(done)
	}()

	t := time.NewTimer(stopTimeout)
	defer t.Stop()
	select {
	case <-t.C:
		srv.Stop()
	case <-done:
	}
	logger.Info("gRPC server stopped")
	return nil
}
