package grpcserver

import (
	"context"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// LoggingUnary logs method, code, duration and peer of every unary call. Health
// checks also log the checked service and the status it reported. Failed calls
// are logged at warn level.
func LoggingUnary(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := next(ctx, req)

		var remote string
		if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
			remote = p.Addr.String()
		}
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("dur", time.Since(start)),
			zap.String("peer", remote),
		}
		fields = append(fields, healthFields(req, resp)...)

		lvl := zapcore.DebugLevel
		if err != nil {
			lvl = zapcore.WarnLevel
		}
		log.Log(lvl, "grpc", fields...)
		return resp, err
	}
}

func healthFields(req, resp any) []zap.Field {
	in, ok := req.(*healthpb.HealthCheckRequest)
	if !ok {
		return nil
	}
	svc := in.GetService()
	if svc == "" {
		svc = "(server)"
	}
	fields := []zap.Field{zap.String("service", svc)}
	if out, ok := resp.(*healthpb.HealthCheckResponse); ok && out != nil {
		fields = append(fields, zap.String("status", out.GetStatus().String()))
	}
	return fields
}

// RecoverUnary turns a handler panic into codes.Internal.
func RecoverUnary(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic",
					zap.Any("reason", r),
					zap.ByteString("stack", debug.Stack()),
					zap.String("method", info.FullMethod),
				)
				err = status.Error(codes.Internal, "internal")
			}
		}()
		return next(ctx, req)
	}
}
