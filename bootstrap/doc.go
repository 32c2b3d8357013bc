// Package bootstrap runs a lazyq binary's lifecycle: configuration defaults
// and validation, logger setup, start and stop hooks, and a summary of every
// tracked query.
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    return err
//	}
//	app.OnStop(flushTelemetry)
//	return app.RunTask(ctx, func(ctx context.Context) error {
//	    return app.Track("users", func() (int, error) { ... })
//	})
package bootstrap
