// Package grpcserver runs the gRPC ops listener: the standard health service
// and, in dev mode, server reflection.
package grpcserver

import (
	"context"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name reported for the HTTP API.
const ServiceName = "minuteminds.API"

// Ops is the health listener of the API process.
type Ops struct {
	srv    *grpc.Server
	health *health.Server
	log    *zap.Logger
}

// NewOps builds the listener. Both the overall ("") and ServiceName statuses start as NOT_SERVING.
func NewOps(log *zap.Logger, dev bool) *Ops {
	if log == nil {
		log = zap.NewNop()
	}
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			RecoverUnary(log),
			LoggingUnary(log),
		),
	)
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	if dev {
		reflection.Register(s)
	}
	return &Ops{srv: s, health: hs, log: log}
}

// SetServing flips the reported status of the API.
func (o *Ops) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	o.health.SetServingStatus("", st)
	o.health.SetServingStatus(ServiceName, st)
}

// Serve blocks serving lis until Stop.
func (o *Ops) Serve(lis net.Listener) error {
	o.log.Info("ops listener", zap.String("addr", lis.Addr().String()))
	return o.srv.Serve(lis)
}

// Stop reports NOT_SERVING and stops gracefully, forcing the stop when ctx ends first.
func (o *Ops) Stop(ctx context.Context) {
	o.health.Shutdown()
	done := make(chan struct{})
	go func() {
		o.srv.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		o.srv.Stop()
	}
}
