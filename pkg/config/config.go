package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/tablegate/config"
	ConfigFileName    = "tablegate.yml"
)

// Config holds all tablegate configuration settings.
type Config struct {
	// TrustedProxies is a list of CIDR ranges for trusted proxies
	TrustedProxies []string `yaml:"trusted_proxies" json:"trusted_proxies"`

	// APIRowListLimitMax is the maximum number of rows a single data-plane
	// listing request may return
	APIRowListLimitMax int `yaml:"api_row_list_limit_max" json:"api_row_list_limit_max"`

	// TokenTTLMinutes is the lifetime of issued auth tokens in minutes
	TokenTTLMinutes int `yaml:"token_ttl_minutes" json:"token_ttl_minutes"`

	// DataPlaneMaxOpenConns caps the pool size per managed connection
	DataPlaneMaxOpenConns int `yaml:"data_plane_max_open_conns" json:"data_plane_max_open_conns"`

	// DataPlaneConnectTimeoutSeconds bounds dialing a managed database
	DataPlaneConnectTimeoutSeconds int `yaml:"data_plane_connect_timeout_seconds" json:"data_plane_connect_timeout_seconds"`

	// MetricsEnabled exposes the /metrics endpoint
	MetricsEnabled bool `yaml:"metrics_enabled" json:"metrics_enabled"`

	// AuditEnabled persists audit events when an audit database is configured
	AuditEnabled bool `yaml:"audit_enabled" json:"audit_enabled"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// Attribute represents a configuration attribute with its value and source.
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Global singleton config
var (
	globalConfig *Config
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary.
func Get() *Config {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			// Return defaults on error
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment.
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

// newDefault returns a config with default values.
func newDefault() *Config {
	return &Config{
		TrustedProxies:                 []string{},
		APIRowListLimitMax:             1000,
		TokenTTLMinutes:                480,
		DataPlaneMaxOpenConns:          5,
		DataPlaneConnectTimeoutSeconds: 10,
		MetricsEnabled:                 true,
		AuditEnabled:                   true,
		sources:                        make(map[string]string),
	}
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file values.
func Load() (*Config, error) {
	config := newDefault()

	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	configPath := os.Getenv("TABLEGATE_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var fileConfig Config
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&fileConfig)
	}

	config.applyEnvConfig()

	return config, nil
}

func attributeNames() []string {
	return []string{
		"trusted_proxies", "api_row_list_limit_max", "token_ttl_minutes",
		"data_plane_max_open_conns", "data_plane_connect_timeout_seconds",
		"metrics_enabled", "audit_enabled",
	}
}

func (c *Config) applyFileConfig(file *Config) {
	if len(file.TrustedProxies) > 0 {
		c.TrustedProxies = file.TrustedProxies
		c.sources["trusted_proxies"] = "file"
	}
	if file.APIRowListLimitMax != 0 {
		c.APIRowListLimitMax = file.APIRowListLimitMax
		c.sources["api_row_list_limit_max"] = "file"
	}
	if file.TokenTTLMinutes != 0 {
		c.TokenTTLMinutes = file.TokenTTLMinutes
		c.sources["token_ttl_minutes"] = "file"
	}
	if file.DataPlaneMaxOpenConns != 0 {
		c.DataPlaneMaxOpenConns = file.DataPlaneMaxOpenConns
		c.sources["data_plane_max_open_conns"] = "file"
	}
	if file.DataPlaneConnectTimeoutSeconds != 0 {
		c.DataPlaneConnectTimeoutSeconds = file.DataPlaneConnectTimeoutSeconds
		c.sources["data_plane_connect_timeout_seconds"] = "file"
	}
}

func (c *Config) applyEnvConfig() {
	if val := os.Getenv("TABLEGATE_TRUSTED_PROXIES"); val != "" {
		c.TrustedProxies = splitAndTrim(val)
		c.sources["trusted_proxies"] = "environment"
	}
	if val := os.Getenv("TABLEGATE_API_ROW_LIST_LIMIT_MAX"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.APIRowListLimitMax = i
			c.sources["api_row_list_limit_max"] = "environment"
		}
	}
	if val := os.Getenv("TABLEGATE_TOKEN_TTL_MINUTES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.TokenTTLMinutes = i
			c.sources["token_ttl_minutes"] = "environment"
		}
	}
	if val := os.Getenv("TABLEGATE_DATA_PLANE_MAX_OPEN_CONNS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.DataPlaneMaxOpenConns = i
			c.sources["data_plane_max_open_conns"] = "environment"
		}
	}
	if val := os.Getenv("TABLEGATE_DATA_PLANE_CONNECT_TIMEOUT_SECONDS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.DataPlaneConnectTimeoutSeconds = i
			c.sources["data_plane_connect_timeout_seconds"] = "environment"
		}
	}
	if val := os.Getenv("TABLEGATE_METRICS_ENABLED"); val != "" {
		c.MetricsEnabled = val == "true" || val == "1"
		c.sources["metrics_enabled"] = "environment"
	}
	if val := os.Getenv("TABLEGATE_AUDIT_ENABLED"); val != "" {
		c.AuditEnabled = val == "true" || val == "1"
		c.sources["audit_enabled"] = "environment"
	}
}

// ConfigFilePath returns the path to the config file.
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute.
func (c *Config) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// TokenTTL returns the auth token TTL as a duration.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

// DataPlaneConnectTimeout returns the managed-connection dial timeout.
func (c *Config) DataPlaneConnectTimeout() time.Duration {
	return time.Duration(c.DataPlaneConnectTimeoutSeconds) * time.Second
}

// IsTrustedProxy checks if an IP is from a trusted proxy.
func (c *Config) IsTrustedProxy(ip string) bool {
	if len(c.TrustedProxies) == 0 {
		return false
	}

	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}

	for _, cidr := range c.TrustedProxies {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			// Try as plain IP
			if net.ParseIP(cidr) != nil && cidr == ip {
				return true
			}
			continue
		}
		if network.Contains(parsedIP) {
			return true
		}
	}
	return false
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			if net.ParseIP(cidr) == nil {
				return fmt.Errorf("invalid trusted_proxies value: %s", cidr)
			}
		}
	}

	if c.APIRowListLimitMax < 1 {
		return fmt.Errorf("api_row_list_limit_max must be positive, got %d", c.APIRowListLimitMax)
	}
	if c.TokenTTLMinutes < 1 {
		return fmt.Errorf("token_ttl_minutes must be positive, got %d", c.TokenTTLMinutes)
	}
	if c.DataPlaneMaxOpenConns < 1 {
		return fmt.Errorf("data_plane_max_open_conns must be positive, got %d", c.DataPlaneMaxOpenConns)
	}

	return nil
}

// Attributes returns all configuration attributes with their values and sources.
func (c *Config) Attributes() []Attribute {
	return []Attribute{
		{Name: "trusted_proxies", Value: strings.Join(c.TrustedProxies, ","), Source: c.Source("trusted_proxies")},
		{Name: "api_row_list_limit_max", Value: strconv.Itoa(c.APIRowListLimitMax), Source: c.Source("api_row_list_limit_max")},
		{Name: "token_ttl_minutes", Value: strconv.Itoa(c.TokenTTLMinutes), Source: c.Source("token_ttl_minutes")},
		{Name: "data_plane_max_open_conns", Value: strconv.Itoa(c.DataPlaneMaxOpenConns), Source: c.Source("data_plane_max_open_conns")},
		{Name: "data_plane_connect_timeout_seconds", Value: strconv.Itoa(c.DataPlaneConnectTimeoutSeconds), Source: c.Source("data_plane_connect_timeout_seconds")},
		{Name: "metrics_enabled", Value: strconv.FormatBool(c.MetricsEnabled), Source: c.Source("metrics_enabled")},
		{Name: "audit_enabled", Value: strconv.FormatBool(c.AuditEnabled), Source: c.Source("audit_enabled")},
	}
}

// FormatText returns a text representation of the configuration.
func (c *Config) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-40s %-30s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-40s %-30s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-40s %-30s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration.
func (c *Config) FormatJSON() (string, error) {
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

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
