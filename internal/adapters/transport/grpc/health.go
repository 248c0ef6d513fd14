package grpc

import (
	"context"
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health entry that tracks the HTTP API dependencies.
const ServiceName = "community.v1.Community"

type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

func DBProbe(db *sql.DB) Probe {
	return Probe{Name: "postgres", Check: db.PingContext}
}

func RedisProbe(cli redis.UniversalClient) Probe {
	return Probe{Name: "redis", Check: func(ctx context.Context) error {
		return cli.Ping(ctx).Err()
	}}
}

// HealthReporter keeps a standard health server in step with its probes.
type HealthReporter struct {
	srv     *health.Server
	probes  []Probe
	timeout time.Duration
	log     *zap.Logger
}

func NewHealthReporter(log *zap.Logger, probes ...Probe) *HealthReporter {
	return &HealthReporter{
		srv:     health.NewServer(),
		probes:  probes,
		timeout: 2 * time.Second,
		log:     log,
	}
}

func (h *HealthReporter) Server() healthpb.HealthServer { return h.srv }

// Refresh runs every probe once and publishes the result for both the
// overall ("") and the named service.
func (h *HealthReporter) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	st := healthpb.HealthCheckResponse_SERVING
	for _, p := range h.probes {
		pctx, cancel := context.WithTimeout(ctx, h.timeout)
		err := p.Check(pctx)
		cancel()
		if err != nil {
			h.log.Warn("health probe failed", zap.String("probe", p.Name), zap.Error(err))
			st = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	h.srv.SetServingStatus("", st)
	h.srv.SetServingStatus(ServiceName, st)
	return st
}

// Run refreshes every interval until ctx ends, then marks everything as
// not serving so in-flight watchers see the shutdown.
func (h *HealthReporter) Run(ctx context.Context, interval time.Duration) error {
	h.Refresh(ctx)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			h.srv.Shutdown()
			return nil
		case <-t.C:
			h.Refresh(ctx)
		}
	}
}
