// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Transport kinds.
const (
	TransportLocal   = "local"
	TransportElastic = "elastic"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds configuration for the search runtime.
type Config struct {
	// Transport selects the search backend: "local" or "elastic".
	Transport string `yaml:"transport"`

	// DBPath is the badger directory for the local transport.
	DBPath string `yaml:"db_path"`

	// InMemory keeps the local store in memory and ignores DBPath.
	InMemory bool `yaml:"in_memory"`

	// URL is the base URL of an Elasticsearch-compatible server.
	// Example: "http://localhost:9200"
	URL string `yaml:"url"`

	// Index is the default index searched by every component.
	Index string `yaml:"index"`

	// Type narrows searches to a specific index. "*" means all.
	Type string `yaml:"type"`

	// Headers are sent with every backend request.
	Headers map[string]string `yaml:"headers"`

	// PreferencePrefix is prepended to the component ID to form the
	// per-component preference token.
	PreferencePrefix string `yaml:"preference_prefix"`

	// PoolSize bounds concurrent in-flight searches.
	// Default: 8
	PoolSize int `yaml:"pool_size"`

	// Timeout bounds a single HTTP search request.
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the number of attempts for retryable HTTP failures.
	MaxRetries int `yaml:"max_retries"`

	// RetryDelay is the base delay for exponential backoff.
	RetryDelay time.Duration `yaml:"retry_delay"`

	// MetricsNamespace prefixes every exported Prometheus metric.
	// An empty value disables metrics.
	MetricsNamespace string `yaml:"metrics_namespace"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithTransport sets the transport kind.
func WithTransport(kind string) ConfigOption {
	return func(c *Config) {
		c.Transport = kind
	}
}

// WithDBPath sets the local store directory.
func WithDBPath(path string) ConfigOption {
	return func(c *Config) {
		c.DBPath = path
	}
}

// WithInMemory keeps the local store in memory.
func WithInMemory(inMemory bool) ConfigOption {
	return func(c *Config) {
		c.InMemory = inMemory
	}
}

// WithURL selects the elastic transport and sets its URL.
func WithURL(url string) ConfigOption {
	return func(c *Config) {
		c.Transport = TransportElastic
		c.URL = url
	}
}

// WithIndex sets the default index.
func WithIndex(index string) ConfigOption {
	return func(c *Config) {
		c.Index = index
	}
}

// WithType sets the index override.
func WithType(docType string) ConfigOption {
	return func(c *Config) {
		c.Type = docType
	}
}

// WithHeaders sets the request headers.
func WithHeaders(headers map[string]string) ConfigOption {
	return func(c *Config) {
		c.Headers = headers
	}
}

// WithPreferencePrefix sets the preference token prefix.
func WithPreferencePrefix(prefix string) ConfigOption {
	return func(c *Config) {
		c.PreferencePrefix = prefix
	}
}

// WithPoolSize sets the dispatch pool size.
func WithPoolSize(size int) ConfigOption {
	return func(c *Config) {
		c.PoolSize = size
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithRetry sets retry attempts and the base backoff delay.
func WithRetry(maxRetries int, delay time.Duration) ConfigOption {
	return func(c *Config) {
		c.MaxRetries = maxRetries
		c.RetryDelay = delay
	}
}

// WithMetricsNamespace sets the metrics namespace.
func WithMetricsNamespace(namespace string) ConfigOption {
	return func(c *Config) {
		c.MetricsNamespace = namespace
	}
}

// DefaultConfig returns a Config for an on-disk local store.
func DefaultConfig() *Config {
	return &Config{
		Transport:        TransportLocal,
		DBPath:           "searchflow.db",
		Index:            "default",
		Type:             "*",
		PreferencePrefix: "",
		PoolSize:         8,
		Timeout:          30 * time.Second,
		MaxRetries:       3,
		RetryDelay:       200 * time.Millisecond,
		MetricsNamespace: "searchflow",
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithURL("http://localhost:9200"),
//	    WithIndex("products"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Load reads a YAML file on top of DefaultConfig and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of DefaultConfig. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize ensures the configuration is in a canonical form.
func (c *Config) Normalize() {
	c.Transport = strings.ToLower(strings.TrimSpace(c.Transport))
	c.URL = strings.TrimSuffix(strings.TrimSpace(c.URL), "/")
	c.Index = strings.TrimSpace(c.Index)
	if c.Type == "" {
		c.Type = "*"
	}
}

// Validate checks that the configuration is valid and complete.
// It normalizes the configuration first.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.Transport {
	case TransportLocal:
		if !c.InMemory && c.DBPath == "" {
			return fmt.Errorf("%w: db_path is required for the local transport", ErrInvalidConfig)
		}
	case TransportElastic:
		if c.URL == "" {
			return fmt.Errorf("%w: url is required for the elastic transport", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown transport %q", ErrInvalidConfig, c.Transport)
	}
	if c.Index == "" {
		return fmt.Errorf("%w: index is required", ErrInvalidConfig)
	}
	if c.PoolSize < 1 {
		return fmt.Errorf("%w: pool_size must be at least 1", ErrInvalidConfig)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidConfig)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("%w: max_retries must be at least 1", ErrInvalidConfig)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: retry_delay must not be negative", ErrInvalidConfig)
	}
	return nil
}
