package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/lazyq/errors"
)

func TestValidatorRequired(t *testing.T) {
	v := New()
	v.Required("first_name", "Ana")
	if v.HasErrors() {
		t.Error("expected no errors for valid input")
	}

	v2 := New()
	v2.Required("first_name", "")
	if !v2.HasErrors() {
		t.Error("expected error for empty required field")
	}

	v3 := New()
	v3.Required("first_name", "   ")
	if !v3.HasErrors() {
		t.Error("expected error for whitespace-only required field")
	}
}

func TestValidatorMin(t *testing.T) {
	if New().Min("limit", 0, 0).HasErrors() {
		t.Error("expected 0 to satisfy min 0")
	}
	if !New().Min("limit", -1, 0).HasErrors() {
		t.Error("expected error for value below min")
	}
}

func TestValidatorOneOf(t *testing.T) {
	allowed := []string{"asc", "desc"}
	if New().OneOf("direction", "asc", allowed).HasErrors() {
		t.Error("expected no error for allowed value")
	}
	if New().OneOf("direction", "", allowed).HasErrors() {
		t.Error("expected empty value to be skipped")
	}
	v := New().OneOf("direction", "sideways", allowed)
	if !v.HasErrors() || !strings.Contains(v.Errors()[0].Message, "asc, desc") {
		t.Errorf("expected one-of error, got %v", v.Errors())
	}
}

func TestValidatorCustom(t *testing.T) {
	if New().Custom(true, "x", "bad").HasErrors() {
		t.Error("expected no error when condition holds")
	}
	v := New().Custom(false, "x", "bad")
	if !v.HasErrors() || v.Errors()[0].Message != "bad" {
		t.Errorf("expected custom error, got %v", v.Errors())
	}
}

func TestValidatorValidate(t *testing.T) {
	if New().Validate() != nil {
		t.Error("expected nil for no errors")
	}
	if New().Err() != nil {
		t.Error("expected nil error for no errors")
	}

	appErr := New().Required("first_name", "").Min("limit", -2, 0).Validate()
	if appErr == nil {
		t.Fatal("expected AppError")
	}
	if appErr.Code != errors.ErrCodeInvalidArgument {
		t.Errorf("expected INVALID_ARGUMENT, got %s", appErr.Code)
	}
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 2 {
		t.Errorf("expected 2 field errors in details, got %v", appErr.Details["fields"])
	}
	if _, ok := appErr.Details["argument"]; ok {
		t.Error("argument detail should only be set for a single failure")
	}
}

func TestValidatorSingleArgument(t *testing.T) {
	appErr := New().Required("first_name", "").Validate()
	if appErr.Details["argument"] != "first_name" {
		t.Errorf("expected argument detail, got %v", appErr.Details)
	}
}

type telemetry struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint" validate:"required_if=Enabled true"`
}

type demoConfig struct {
	Name        string    `mapstructure:"name" validate:"required"`
	Environment string    `mapstructure:"environment" validate:"oneof=development staging production"`
	Limit       int       `mapstructure:"limit" validate:"gte=0"`
	Telemetry   telemetry `mapstructure:"telemetry"`
}

func TestStructValidateValid(t *testing.T) {
	cfg := demoConfig{Name: "lazyq", Environment: "development", Telemetry: telemetry{Enabled: true, Endpoint: "localhost:4318"}}
	if err := Validate(cfg); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestStructValidateInvalid(t *testing.T) {
	cfg := demoConfig{Environment: "qa", Limit: -1, Telemetry: telemetry{Enabled: true}}
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.IsCode(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("expected INVALID_CONFIG, got %v", err)
	}
	for _, want := range []string{"name: is required", "environment: must be one of", "limit: must be at least 0", "telemetry.endpoint: is required"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %q, got %q", want, err.Error())
		}
	}
	appErr, _ := errors.AsAppError(err)
	if fields, _ := appErr.Details["fields"].([]FieldError); len(fields) != 4 {
		t.Errorf("expected 4 field errors, got %v", appErr.Details["fields"])
	}
}

func TestStructValidateMaxMin(t *testing.T) {
	type Input struct {
		Code string `yaml:"code" validate:"required,min=3,max=10"`
	}

	if err := Validate(Input{Code: "abc"}); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
	err := Validate(Input{Code: "ab"})
	if err == nil || !strings.Contains(err.Error(), "code: must be at least 3 characters") {
		t.Errorf("expected error for code too short, got %v", err)
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Name":        "name",
		"FirstName":   "first_name",
		"already_low": "already_low",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
