package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.ntppool.org/common/health"
	"go.ntppool.org/common/logger"
	"go.ntppool.org/common/metricsserver"
	"go.ntppool.org/common/version"
	"golang.org/x/sync/errgroup"

	"go.ntppool.org/imagerotate/catalog"
	"go.ntppool.org/imagerotate/selector"
	"go.ntppool.org/imagerotate/server"
)

func (cmd ServerCmd) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	log.InfoContext(ctx, "imagerotate starting", "version", version.Version())

	depEnv, err := cmd.deploymentEnv()
	if err != nil {
		return err
	}

	tpShutdown, err := InitTracing(ctx, depEnv)
	if err != nil {
		return err
	}
	defer tpShutdown(context.Background())

	metricssrv := metricsserver.New()
	version.RegisterMetric("imagerotate", metricssrv.Registry())
	go func() {
		if err := metricssrv.ListenAndServe(ctx, cmd.MetricsPort); err != nil {
			log.Error("metrics server error", "err", err)
		}
	}()

	metrics := selector.NewMetrics(metricssrv.Registry())

	cat, _, err := catalog.LoadFile(ctx, cmd.Images)
	if err != nil {
		// keep serving; the watcher picks up a fixed file
		log.ErrorContext(ctx, "could not load catalog", "file", cmd.Images, "err", err)
	}

	sl := selector.NewSelector(cat, log, metrics, selector.WithRecencySize(cmd.RecencySize))

	srv, err := server.NewServer(ctx, log, server.Config{
		Listen:   cmd.Listen,
		Registry: metricssrv.Registry(),
	}, sl)
	if err != nil {
		log.Error("NewServer() error", "err", err)
		return fmt.Errorf("srv setup: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	go health.HealthCheckListener(ctx, cmd.HealthPort, log)

	if cmd.Watch {
		g.Go(func() error {
			err := catalog.Watch(ctx, cmd.Images, func(cat *catalog.Catalog, _ catalog.LoadStats) {
				sl.SetCatalog(cat)
			})
			if err != nil {
				log.WarnContext(ctx, "catalog watcher stopped, reloading disabled", "err", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		return srv.Run(ctx)
	})

	err = g.Wait()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "err", err)
		return err
	}

	return nil
}
