package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/doodlesbykumbi/incidentd/pkg/db"
)

const (
	DefaultConfigPath = "/etc/incidents"
	ConfigFileName    = "incidents.yml"
)

// Attribute sources, from lowest to highest precedence.
const (
	SourceDefault     = "default"
	SourceFile        = "file"
	SourceEnvironment = "environment"
)

// IncidentsConfig holds all incidentd configuration settings
type IncidentsConfig struct {
	// BindAddress is the address the HTTP server listens on
	BindAddress string `yaml:"bind_address" json:"bind_address" validate:"required"`

	// Port is the HTTP server port
	Port int `yaml:"port" json:"port" validate:"min=1,max=65535"`

	// DatabaseURL selects the database dialect and location
	DatabaseURL string `yaml:"database_url" json:"database_url" validate:"required"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level" json:"log_level" validate:"oneof=debug info warn error"`

	// LogFormat is one of text, json
	LogFormat string `yaml:"log_format" json:"log_format" validate:"oneof=text json"`

	// ReadTimeout is the HTTP server read timeout in seconds
	ReadTimeout int `yaml:"read_timeout" json:"read_timeout" validate:"gt=0"`

	// WriteTimeout is the HTTP server write timeout in seconds
	WriteTimeout int `yaml:"write_timeout" json:"write_timeout" validate:"gt=0"`

	// ShutdownTimeout bounds graceful shutdown, in seconds
	ShutdownTimeout int `yaml:"shutdown_timeout" json:"shutdown_timeout" validate:"gt=0"`

	// MaxRequestBytes caps the size of request bodies
	MaxRequestBytes int64 `yaml:"max_request_bytes" json:"max_request_bytes" validate:"gt=0"`

	// AuditEnabled enables the RFC5424 audit trail
	AuditEnabled bool `yaml:"audit_enabled" json:"audit_enabled"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// fileConfig mirrors IncidentsConfig with optional fields so that values
// explicitly set to their zero value in the file are still recorded.
type fileConfig struct {
	BindAddress     *string `yaml:"bind_address"`
	Port            *int    `yaml:"port"`
	DatabaseURL     *string `yaml:"database_url"`
	LogLevel        *string `yaml:"log_level"`
	LogFormat       *string `yaml:"log_format"`
	ReadTimeout     *int    `yaml:"read_timeout"`
	WriteTimeout    *int    `yaml:"write_timeout"`
	ShutdownTimeout *int    `yaml:"shutdown_timeout"`
	MaxRequestBytes *int64  `yaml:"max_request_bytes"`
	AuditEnabled    *bool   `yaml:"audit_enabled"`
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

var validate = validator.New()

// Default returns the built-in configuration, every attribute sourced "default".
func Default() *IncidentsConfig {
	c := &IncidentsConfig{
		BindAddress:     "127.0.0.1",
		Port:            5000,
		DatabaseURL:     "sqlite3://incidents.db",
		LogLevel:        "info",
		LogFormat:       "text",
		ReadTimeout:     15,
		WriteTimeout:    15,
		ShutdownTimeout: 10,
		MaxRequestBytes: 1 << 20,
		AuditEnabled:    true,
		sources:         make(map[string]string),
	}
	for _, name := range attributeNames() {
		c.sources[name] = SourceDefault
	}
	return c
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file values.
// The config file is $INCIDENTS_CONFIG_PATH/incidents.yml and is optional.
func Load() (*IncidentsConfig, error) {
	configPath := os.Getenv("INCIDENTS_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	return LoadFile(filepath.Join(configPath, ConfigFileName))
}

// LoadFile loads configuration from the given file, which may not exist,
// overlaid with environment variables.
func LoadFile(path string) (*IncidentsConfig, error) {
	config := Default()
	config.configFilePath = path

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		config.applyFileConfig(&file)
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := config.applyEnvConfig(); err != nil {
		return nil, err
	}

	return config, nil
}

func attributeNames() []string {
	return []string{
		"bind_address", "port", "database_url", "log_level", "log_format",
		"read_timeout", "write_timeout", "shutdown_timeout",
		"max_request_bytes", "audit_enabled",
	}
}

func (c *IncidentsConfig) applyFileConfig(file *fileConfig) {
	setFromFile(c, "bind_address", file.BindAddress, &c.BindAddress)
	setFromFile(c, "port", file.Port, &c.Port)
	setFromFile(c, "database_url", file.DatabaseURL, &c.DatabaseURL)
	setFromFile(c, "log_level", file.LogLevel, &c.LogLevel)
	setFromFile(c, "log_format", file.LogFormat, &c.LogFormat)
	setFromFile(c, "read_timeout", file.ReadTimeout, &c.ReadTimeout)
	setFromFile(c, "write_timeout", file.WriteTimeout, &c.WriteTimeout)
	setFromFile(c, "shutdown_timeout", file.ShutdownTimeout, &c.ShutdownTimeout)
	setFromFile(c, "max_request_bytes", file.MaxRequestBytes, &c.MaxRequestBytes)
	setFromFile(c, "audit_enabled", file.AuditEnabled, &c.AuditEnabled)
}

func setFromFile[T any](c *IncidentsConfig, name string, value *T, dst *T) {
	if value == nil {
		return
	}
	*dst = *value
	c.sources[name] = SourceFile
}

func (c *IncidentsConfig) applyEnvConfig() error {
	if val := os.Getenv("INCIDENTS_BIND_ADDRESS"); val != "" {
		c.BindAddress = val
		c.sources["bind_address"] = SourceEnvironment
	}
	if val := os.Getenv("DATABASE_URL"); val != "" {
		c.DatabaseURL = val
		c.sources["database_url"] = SourceEnvironment
	}
	if val := os.Getenv("INCIDENTS_LOG_LEVEL"); val != "" {
		c.LogLevel = strings.ToLower(val)
		c.sources["log_level"] = SourceEnvironment
	}
	if val := os.Getenv("INCIDENTS_LOG_FORMAT"); val != "" {
		c.LogFormat = strings.ToLower(val)
		c.sources["log_format"] = SourceEnvironment
	}

	ints := []struct {
		env  string
		name string
		dst  *int
	}{
		{"PORT", "port", &c.Port},
		{"INCIDENTS_READ_TIMEOUT", "read_timeout", &c.ReadTimeout},
		{"INCIDENTS_WRITE_TIMEOUT", "write_timeout", &c.WriteTimeout},
		{"INCIDENTS_SHUTDOWN_TIMEOUT", "shutdown_timeout", &c.ShutdownTimeout},
	}
	for _, e := range ints {
		val := os.Getenv(e.env)
		if val == "" {
			continue
		}
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", e.env, val, err)
		}
		*e.dst = i
		c.sources[e.name] = SourceEnvironment
	}

	if val := os.Getenv("INCIDENTS_MAX_REQUEST_BYTES"); val != "" {
		i, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid INCIDENTS_MAX_REQUEST_BYTES value %q: %w", val, err)
		}
		c.MaxRequestBytes = i
		c.sources["max_request_bytes"] = SourceEnvironment
	}
	if val := os.Getenv("INCIDENTS_AUDIT_ENABLED"); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid INCIDENTS_AUDIT_ENABLED value %q: %w", val, err)
		}
		c.AuditEnabled = b
		c.sources["audit_enabled"] = SourceEnvironment
	}
	return nil
}

// ConfigFilePath returns the path to the config file
func (c *IncidentsConfig) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *IncidentsConfig) Source(name string) string {
	if c.sources == nil {
		return SourceDefault
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return SourceDefault
}

// Addr returns the host:port the HTTP server listens on.
func (c *IncidentsConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.BindAddress, c.Port)
}

// ReadTimeoutDuration returns the read timeout as a duration
func (c *IncidentsConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(c.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns the write timeout as a duration
func (c *IncidentsConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(c.WriteTimeout) * time.Second
}

// ShutdownTimeoutDuration returns the shutdown timeout as a duration
func (c *IncidentsConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Second
}

// Validate validates the configuration
func (c *IncidentsConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, _, err := db.ParseURL(c.DatabaseURL); err != nil {
		return fmt.Errorf("invalid database_url: %w", err)
	}
	return nil
}

// Attributes returns all configuration attributes with their values and sources
func (c *IncidentsConfig) Attributes() []Attribute {
	return []Attribute{
		{Name: "bind_address", Value: c.BindAddress, Source: c.Source("bind_address")},
		{Name: "port", Value: strconv.Itoa(c.Port), Source: c.Source("port")},
		{Name: "database_url", Value: redactURL(c.DatabaseURL), Source: c.Source("database_url")},
		{Name: "log_level", Value: c.LogLevel, Source: c.Source("log_level")},
		{Name: "log_format", Value: c.LogFormat, Source: c.Source("log_format")},
		{Name: "read_timeout", Value: strconv.Itoa(c.ReadTimeout), Source: c.Source("read_timeout")},
		{Name: "write_timeout", Value: strconv.Itoa(c.WriteTimeout), Source: c.Source("write_timeout")},
		{Name: "shutdown_timeout", Value: strconv.Itoa(c.ShutdownTimeout), Source: c.Source("shutdown_timeout")},
		{Name: "max_request_bytes", Value: strconv.FormatInt(c.MaxRequestBytes, 10), Source: c.Source("max_request_bytes")},
		{Name: "audit_enabled", Value: strconv.FormatBool(c.AuditEnabled), Source: c.Source("audit_enabled")},
	}
}

// FormatText returns a text representation of the configuration
func (c *IncidentsConfig) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-20s %-40s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-20s %-40s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-20s %-40s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *IncidentsConfig) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// redactURL hides the password of a database URL.
func redactURL(raw string) string {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return raw
	}
	userinfo, host, ok := strings.Cut(rest, "@")
	if !ok {
		return raw
	}
	user, _, hasPassword := strings.Cut(userinfo, ":")
	if !hasPassword {
		return raw
	}
	return scheme + "://" + user + ":xxxxx@" + host
}
