package utils

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devayla/base-counter/common/logger"
	"google.golang.org/grpc"
)

func LoggingInterceptor(log *logger.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if err != nil {
			log.Warn("gRPC call failed", "method", info.FullMethod, "duration", time.Since(start), "error", err)
			return resp, err
		}
		log.Debug("gRPC call", "method", info.FullMethod, "duration", time.Since(start))
		return resp, err
	}
}

// WaitForGracefulShutdown blocks until SIGINT/SIGTERM or ctx is done.
func WaitForGracefulShutdown(ctx context.Context) os.Signal {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(c)

	select {
	case sig := <-c:
		return sig
	case <-ctx.Done():
		return nil
	}
}
