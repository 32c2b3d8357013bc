// Package validation checks configuration structs and query arguments.
//
// Struct tag validation uses go-playground/validator and reports failures
// as INVALID_CONFIG errors. The programmatic Validator collects argument
// problems and reports them as INVALID_ARGUMENT errors.
//
// # Struct Tag Validation
//
//	type TelemetryConfig struct {
//	    Endpoint string `mapstructure:"endpoint" validate:"required_if=Enabled true"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	err := validation.New().
//	    Required("first_name", name).
//	    Min("limit", limit, 0).
//	    Err()
package validation
