// Package logger provides structured logging for lazyq using zerolog.
//
// It supports JSON and console output, level configuration, component
// and stage scoped loggers, and trace correlation through the
// OpenTelemetry span stored in a context.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("sample")
//	log.WithStage("where").Debug("element", logger.Fields("index", 3))
package logger
