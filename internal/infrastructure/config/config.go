package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the homegrid agent.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Agent      AgentConfig      `yaml:"agent"`
	Backend    BackendConfig    `yaml:"backend"`
	Realtime   RealtimeConfig   `yaml:"realtime"`
	API        APIConfig        `yaml:"api"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	InfluxDB   InfluxDBConfig   `yaml:"influxdb"`
	Database   DatabaseConfig   `yaml:"database"`
	Automation AutomationConfig `yaml:"automation"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// AgentConfig identifies this agent instance and the house it mirrors.
type AgentConfig struct {
	// Name is a human-readable instance name, used in MQTT client IDs and logs.
	Name string `yaml:"name"`

	// HouseID scopes the mirror to a single house. Realtime messages carrying
	// a different house_id are dropped before dispatch. Zero means unscoped.
	HouseID int `yaml:"house_id"`

	// Role is the role this agent acts as when filtering equipment visibility
	// (e.g. "owner", "member", "guest").
	Role string `yaml:"role"`
}

// BackendConfig contains connection settings for the smart-home backend.
type BackendConfig struct {
	// BaseURL is the HTTP origin of the backend (e.g. "https://home.example.net").
	// The WebSocket endpoint is derived from it by upgrading the scheme.
	BaseURL string `yaml:"base_url"`

	// WSPath is the realtime WebSocket path on the backend.
	WSPath string `yaml:"ws_path"`

	// Token is an opaque bearer token passed through on every request.
	// Issuing and refreshing tokens is the backend's concern, not ours.
	Token string `yaml:"token"`

	// Timeout is the per-request HTTP timeout in seconds.
	Timeout int `yaml:"timeout"`
}

// RealtimeConfig contains WebSocket session settings.
type RealtimeConfig struct {
	// PingInterval is the heartbeat interval in seconds.
	PingInterval int `yaml:"ping_interval"`

	// ReconnectBaseDelay is the initial reconnect delay in milliseconds.
	// The n-th attempt waits ReconnectBaseDelay * 2^n.
	ReconnectBaseDelay int `yaml:"reconnect_base_delay"`

	// MaxReconnectAttempts bounds automatic reconnection. Exhausting the
	// budget is terminal; the agent keeps serving its stale mirror.
	MaxReconnectAttempts int `yaml:"max_reconnect_attempts"`

	// MaxMessageSize is the inbound frame size limit in bytes.
	MaxMessageSize int `yaml:"max_message_size"`
}

// APIConfig contains settings for the local read-only status API.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// MQTTConfig contains MQTT event-bridge settings.
type MQTTConfig struct {
	Enabled bool             `yaml:"enabled"`
	Broker  MQTTBrokerConfig `yaml:"broker"`
	Auth    MQTTAuthConfig   `yaml:"auth"`
	QoS     int              `yaml:"qos"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// InfluxDBConfig contains InfluxDB telemetry settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// DatabaseConfig contains SQLite event-history settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// AutomationConfig controls the speculative trigger behaviour.
type AutomationConfig struct {
	// AutoTrigger invokes the backend trigger endpoint silently after every
	// applied sensor update. Failures are logged and never surfaced.
	AutoTrigger bool `yaml:"auto_trigger"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: HOMEGRID_SECTION_KEY
// For example: HOMEGRID_BACKEND_TOKEN, HOMEGRID_AGENT_HOUSE_ID
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			Name: "homegrid-agent",
			Role: "member",
		},
		Backend: BackendConfig{
			BaseURL: "http://localhost:8888",
			WSPath:  "/ws/realtime",
			Timeout: 10,
		},
		Realtime: RealtimeConfig{
			PingInterval:         30,
			ReconnectBaseDelay:   1000,
			MaxReconnectAttempts: 10,
			MaxMessageSize:       1 << 20,
		},
		API: APIConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    8090,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "homegrid-agent",
			},
			QoS: 1,
		},
		Database: DatabaseConfig{
			Path:        "./data/homegrid.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Automation: AutomationConfig{
			AutoTrigger: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: HOMEGRID_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HOMEGRID_AGENT_HOUSE_ID"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			cfg.Agent.HouseID = id
		}
	}
	if v := os.Getenv("HOMEGRID_BACKEND_BASE_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("HOMEGRID_BACKEND_TOKEN"); v != "" {
		cfg.Backend.Token = v
	}
	if v := os.Getenv("HOMEGRID_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("HOMEGRID_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("HOMEGRID_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
	if v := os.Getenv("HOMEGRID_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
	if v := os.Getenv("HOMEGRID_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Backend.BaseURL == "" {
		errs = append(errs, "backend.base_url is required")
	} else if !strings.HasPrefix(c.Backend.BaseURL, "http://") && !strings.HasPrefix(c.Backend.BaseURL, "https://") {
		errs = append(errs, "backend.base_url must be an http or https origin")
	}
	if c.Backend.WSPath == "" || !strings.HasPrefix(c.Backend.WSPath, "/") {
		errs = append(errs, "backend.ws_path must start with /")
	}
	if c.Realtime.PingInterval < 1 {
		errs = append(errs, "realtime.ping_interval must be at least 1 second")
	}
	if c.Realtime.MaxReconnectAttempts < 0 {
		errs = append(errs, "realtime.max_reconnect_attempts must not be negative")
	}
	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}
	if c.MQTT.Enabled && (c.MQTT.QoS < 0 || c.MQTT.QoS > 2) {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// WSEndpoint derives the WebSocket URL from the backend origin, upgrading
// the scheme (http to ws, https to wss).
func (c *Config) WSEndpoint() string {
	url := c.Backend.BaseURL
	switch {
	case strings.HasPrefix(url, "https://"):
		url = "wss://" + strings.TrimPrefix(url, "https://")
	case strings.HasPrefix(url, "http://"):
		url = "ws://" + strings.TrimPrefix(url, "http://")
	}
	return url + c.Backend.WSPath
}

// GetBackendTimeout returns the backend request timeout as a Duration.
func (c *Config) GetBackendTimeout() time.Duration {
	return time.Duration(c.Backend.Timeout) * time.Second
}

// GetPingInterval returns the realtime heartbeat interval as a Duration.
func (c *Config) GetPingInterval() time.Duration {
	return time.Duration(c.Realtime.PingInterval) * time.Second
}

// GetReconnectBaseDelay returns the initial reconnect delay as a Duration.
func (c *Config) GetReconnectBaseDelay() time.Duration {
	return time.Duration(c.Realtime.ReconnectBaseDelay) * time.Millisecond
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
