// Package config resolves the tool's configuration from the environment, an
// optional .env file, and an optional YAML config file.
package config

import (
	"fmt"
	"strings"
	"time"

	"tmc/internal/pdq"
	"tmc/internal/query"
)

// Config is the resolved configuration.
type Config struct {
	// Domain is the TMC organization name; it forms the default base URL.
	// Comes from TMC_DOMAIN.
	Domain string `yaml:"-"`
	// Token is the bearer token sent with every request. Comes from
	// TMC_TOKEN. How the token is obtained is out of scope here.
	Token string `yaml:"-"`
	// Debug turns on diagnostic echo. Comes from TMC_DEBUG or --debug.
	Debug bool `yaml:"-"`
	// NoCache bypasses the response cache. Comes from TMC_NO_CACHE or
	// --no-cache.
	NoCache bool `yaml:"-"`

	// BaseURL overrides the URL derived from Domain. TMC_BASE_URL wins over
	// the config file.
	BaseURL string `yaml:"baseURL,omitempty"`
	// Pagination adjusts how collection endpoints are paged.
	Pagination PaginationConfig `yaml:"pagination,omitempty"`
	// Cache adjusts the on-disk response cache.
	Cache CacheConfig `yaml:"cache,omitempty"`
	// PDQs are user-defined query plans, registered next to the built-ins.
	PDQs []pdq.Definition `yaml:"pdqs,omitempty"`
}

// PaginationConfig carries the config-file pagination overrides. Zero fields
// keep the defaults.
type PaginationConfig struct {
	TokenField string `yaml:"tokenField,omitempty"`
	TokenParam string `yaml:"tokenParam,omitempty"`
	SizeParam  string `yaml:"sizeParam,omitempty"`
	Size       int    `yaml:"size,omitempty"`
	MaxPages   int    `yaml:"maxPages,omitempty"`
}

// Defaults converts the overrides into the session-level pagination
// defaults.
func (p PaginationConfig) Defaults() query.Pagination {
	return query.Pagination{
		TokenField: p.TokenField,
		TokenParam: p.TokenParam,
		SizeParam:  p.SizeParam,
		Size:       p.Size,
		MaxPages:   p.MaxPages,
	}
}

// CacheConfig carries the config-file cache overrides.
type CacheConfig struct {
	// Dir is the cache directory. Empty uses the temp-dir default.
	Dir string `yaml:"dir,omitempty"`
	// TTLSeconds is how long entries stay fresh. Zero uses the default.
	TTLSeconds int `yaml:"ttlSeconds,omitempty"`
}

// TTL returns the configured entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// APIBaseURL returns the base URL requests go to.
func (c Config) APIBaseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return fmt.Sprintf("https://%s.tmc.cloud.vmware.com", c.Domain)
}

// MissingEnvError indicates required environment variables are not set.
// This is a precondition failure: nothing has been fetched yet.
type MissingEnvError struct {
	// Vars names the missing variables.
	Vars []string
}

func (e *MissingEnvError) Error() string {
	return fmt.Sprintf("environment variable(s) required: %s", strings.Join(e.Vars, ", "))
}
