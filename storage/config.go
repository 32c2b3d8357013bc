package storage

import "github.com/kbukum/lazyq/validation"

// Provider constants for supported storage backends.
const (
	ProviderLocal = "local"
	ProviderS3    = "s3"
)

// Default configuration values.
const (
	DefaultProvider = ProviderLocal
	DefaultBasePath = "."
	DefaultRegion   = "us-east-1"
)

// Config holds storage configuration.
type Config struct {
	// Enabled routes file sources through the configured backend.
	Enabled bool `yaml:"enabled" mapstructure:"enabled" json:"enabled"`

	// Provider selects the storage backend: "local" or "s3".
	Provider string `yaml:"provider" mapstructure:"provider" json:"provider"`

	// BasePath is the root directory for local storage.
	BasePath string `yaml:"base_path" mapstructure:"base_path" json:"base_path"`

	// Bucket is the S3 bucket name.
	Bucket string `yaml:"bucket" mapstructure:"bucket" json:"bucket"`

	// Region is the AWS region for S3.
	Region string `yaml:"region" mapstructure:"region" json:"region"`

	// Endpoint is a custom S3-compatible endpoint (e.g. MinIO).
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint" json:"endpoint"`

	// AccessKey is the AWS access key ID.
	AccessKey string `yaml:"access_key" mapstructure:"access_key" json:"access_key"`

	// SecretKey is the AWS secret access key.
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key" json:"-"`

	// ForcePathStyle forces path-style URLs instead of virtual-hosted-style.
	ForcePathStyle bool `yaml:"force_path_style" mapstructure:"force_path_style" json:"force_path_style"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.BasePath == "" {
		c.BasePath = DefaultBasePath
	}
	if c.Region == "" {
		c.Region = DefaultRegion
	}
}

// Validate checks that the configuration is valid for the selected provider.
func (c *Config) Validate() error {
	v := validation.New().
		Required("provider", c.Provider).
		OneOf("provider", c.Provider, []string{ProviderLocal, ProviderS3})
	switch c.Provider {
	case ProviderLocal:
		v.Required("base_path", c.BasePath)
	case ProviderS3:
		v.Required("bucket", c.Bucket).
			Required("region", c.Region).
			Custom((c.AccessKey == "") == (c.SecretKey == ""), "secret_key", "must be set together with access_key")
	}
	return v.Err()
}
