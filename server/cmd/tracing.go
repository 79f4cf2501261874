package cmd

import (
	"context"
	"os"
	"time"

	"go.ntppool.org/common/config/depenv"
	"go.ntppool.org/common/logger"
	"go.ntppool.org/common/tracing"
)

// InitTracing sets up the OTLP trace exporter when
// OTEL_EXPORTER_OTLP_ENDPOINT is configured.
func InitTracing(ctx context.Context, deployEnv depenv.DeploymentEnvironment) (tracing.TpShutdownFunc, error) {
	log := logger.FromContext(ctx)

	if len(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")) == 0 {
		log.DebugContext(ctx, "tracing not configured")
		return func(context.Context) error { return nil }, nil
	}

	tpShutdownFn, err := tracing.InitTracer(ctx,
		&tracing.TracerConfig{
			ServiceName: "imagerotate",
			Environment: deployEnv.String(),
		},
	)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context) error {
		log.Debug("shutting down trace provider")
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tpShutdownFn(shutdownCtx)
	}, nil
}
