package main

import (
	"github.com/kbukum/lazyq/config"
	"github.com/kbukum/lazyq/errors"
	"github.com/kbukum/lazyq/observability"
	"github.com/kbukum/lazyq/resilience"
	"github.com/kbukum/lazyq/storage"
	"github.com/kbukum/lazyq/validation"
)

// DemoConfig is the configuration of lazyq-demo.
type DemoConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Telemetry            observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
	Demo                 Settings             `yaml:"demo" mapstructure:"demo"`
}

// Settings controls the data sources and query parameters of the demo.
type Settings struct {
	// UsersFile and LocationsFile replace the built-in tables when set.
	UsersFile     string `yaml:"users_file" mapstructure:"users_file"`
	LocationsFile string `yaml:"locations_file" mapstructure:"locations_file"`
	// Retry governs reopening the files at the start of each traversal.
	Retry resilience.RetryConfig `yaml:"retry" mapstructure:"retry"`
	// Storage resolves the file paths against an object store when enabled.
	Storage storage.Config `yaml:"storage" mapstructure:"storage"`

	// Zero selects the default for each value below.
	MinUserID int `yaml:"min_user_id" mapstructure:"min_user_id" validate:"gte=1"`
	Top       int `yaml:"top" mapstructure:"top" validate:"gte=1"`
	PageSize  int `yaml:"page_size" mapstructure:"page_size" validate:"gte=1"`
	MovieYear int `yaml:"movie_year" mapstructure:"movie_year"`
	// Preview is the number of results logged per query.
	Preview int `yaml:"preview" mapstructure:"preview" validate:"gte=1"`
}

// ApplyDefaults fills unset demo values after the service defaults.
func (c *DemoConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
	if c.Demo.MinUserID == 0 {
		c.Demo.MinUserID = 5000
	}
	if c.Demo.Top == 0 {
		c.Demo.Top = 3
	}
	if c.Demo.PageSize == 0 {
		c.Demo.PageSize = 3
	}
	if c.Demo.MovieYear == 0 {
		c.Demo.MovieYear = 2000
	}
	if c.Demo.Preview == 0 {
		c.Demo.Preview = 5
	}
	if c.Demo.Storage.Enabled {
		c.Demo.Storage.ApplyDefaults()
	}
}

// Validate checks the service, telemetry, and demo sections.
func (c *DemoConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(&c.Telemetry); err != nil {
		return prefixed("telemetry", err)
	}
	if err := validation.Validate(&c.Demo); err != nil {
		return prefixed("demo", err)
	}
	if c.Demo.Storage.Enabled {
		if err := c.Demo.Storage.Validate(); err != nil {
			return prefixed("demo.storage", err)
		}
	}
	return nil
}

func prefixed(section string, err error) error {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return err
	}
	return errors.InvalidConfig(section + ": " + appErr.Message).WithCause(err)
}
