// Command lazyq-demo runs the sample queries through the pipeline engine and
// logs their results.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kbukum/lazyq/bootstrap"
	"github.com/kbukum/lazyq/config"
	"github.com/kbukum/lazyq/observability"
	_ "github.com/kbukum/lazyq/storage/local"
	_ "github.com/kbukum/lazyq/storage/s3"
)

const appName = "lazyq-demo"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts ...config.LoaderOption) error {
	var cfg DemoConfig
	opts = append([]config.LoaderOption{config.WithEnvPrefix("LAZYQ")}, opts...)
	if err := config.LoadConfig(appName, &cfg, opts...); err != nil {
		return err
	}

	app, err := bootstrap.NewApp(&cfg, bootstrap.WithComponentLoggers("movies"))
	if err != nil {
		return err
	}

	r := &runner{app: app}
	if cfg.Telemetry.Enabled {
		app.OnStart(func(ctx context.Context) error {
			return startTelemetry(ctx, app, r)
		})
	}
	return app.RunTask(ctx, func(ctx context.Context) error {
		return runQueries(ctx, r)
	})
}

// startTelemetry installs the OTLP tracer and meter providers and registers
// their shutdown as stop hooks.
func startTelemetry(ctx context.Context, app *bootstrap.App[*DemoConfig], r *runner) error {
	cfg := app.Cfg
	tp, err := observability.InitTracer(ctx, cfg.Telemetry.Tracer(app.Name, app.Version, cfg.Environment))
	if err != nil {
		return err
	}
	app.OnStop(tp.Shutdown)

	mp, err := observability.InitMeter(ctx, cfg.Telemetry.Meter(app.Name, app.Version, cfg.Environment))
	if err != nil {
		return err
	}
	app.OnStop(mp.Shutdown)

	metrics, err := observability.NewMetrics(observability.Meter())
	if err != nil {
		return err
	}
	r.metrics = metrics
	app.Logger.Info("telemetry enabled", map[string]interface{}{"endpoint": cfg.Telemetry.Endpoint})
	return nil
}
