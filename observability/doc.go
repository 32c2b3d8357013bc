// Package observability instruments lazyq pipelines with zerolog and
// OpenTelemetry.
//
// The stages are pass-through operators: they never change, reorder, or
// buffer elements, and they only act when a downstream consumer pulls.
//
//	q := observability.Traced(
//	    observability.Metered(
//	        observability.Logged(sample.UsersByFirstName(users, "Ana"), log, "users_by_first_name"),
//	        metrics, "users_by_first_name"),
//	    "users_by_first_name")
//
// Exporters:
//
//	tp, err := observability.InitTracer(ctx, cfg.Telemetry.Tracer(name, version, env))
//	defer tp.Shutdown(ctx)
//
//	mp, err := observability.InitMeter(ctx, cfg.Telemetry.Meter(name, version, env))
//	defer mp.Shutdown(ctx)
//	metrics, err := observability.NewMetrics(observability.Meter())
package observability
