// Package config loads and validates lazyq binary configuration.
//
// Values come from a config.yml resolved next to the binary's cmd
// directory, then from a .env file loaded with godotenv, then from the
// process environment. Viper merges the layers and unmarshals them into
// the caller's struct.
//
// # Usage
//
//	var cfg DemoConfig
//	err := config.Load("lazyq-demo", &cfg, config.WithEnvPrefix("LAZYQ"))
//
// With the LAZYQ prefix, LAZYQ_LOGGING_LEVEL=debug overrides logging.level.
package config
