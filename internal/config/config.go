package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Timeular TimeularConfig `toml:"timeular"`
	Vertec   VertecConfig   `toml:"vertec"`
	Server   ServerConfig   `toml:"server"`
}

type TimeularConfig struct {
	APIURL    string `toml:"api_url"`
	APIKey    string `toml:"api_key"`
	APISecret string `toml:"api_secret"`
}

type VertecConfig struct {
	APIURL     string `toml:"api_url"`
	Token      string `toml:"token"`
	EmployeeID string `toml:"employee_id"`
}

type ServerConfig struct {
	Addr               string `toml:"addr"`
	HTTPTimeoutSeconds int    `toml:"http_timeout_seconds"`
}

func DefaultConfig() Config {
	return Config{
		Timeular: TimeularConfig{
			APIURL: "https://api.timeular.com/api/v3",
		},
		Server: ServerConfig{
			Addr:               ":3456",
			HTTPTimeoutSeconds: 30,
		},
	}
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "vertime"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			applyEnvOverrides(&cfg)
			return &cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TIMEULAR_API_URL"); v != "" {
		cfg.Timeular.APIURL = v
	}
	if v := os.Getenv("TIMEULAR_API_KEY"); v != "" {
		cfg.Timeular.APIKey = v
	}
	if v := os.Getenv("TIMEULAR_API_SECRET"); v != "" {
		cfg.Timeular.APISecret = v
	}
	if v := os.Getenv("VERTEC_API_URL"); v != "" {
		cfg.Vertec.APIURL = v
	}
	if v := os.Getenv("VERTEC_API_TOKEN"); v != "" {
		cfg.Vertec.Token = v
	}
	if v := os.Getenv("VERTEC_EMPLOYEE_ID"); v != "" {
		cfg.Vertec.EmployeeID = v
	}
	if v := os.Getenv("VERTIME_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("VERTIME_HTTP_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Server.HTTPTimeoutSeconds = n
		}
	}
}

// Validate reports the first missing credential. The dashboard needs all of
// them to render anything useful.
func (c *Config) Validate() error {
	switch {
	case c.Timeular.APIURL == "":
		return fmt.Errorf("timeular API URL not configured — set timeular.api_url or TIMEULAR_API_URL")
	case c.Timeular.APIKey == "":
		return fmt.Errorf("timeular API key not configured — set timeular.api_key or TIMEULAR_API_KEY")
	case c.Timeular.APISecret == "":
		return fmt.Errorf("timeular API secret not configured — set timeular.api_secret or TIMEULAR_API_SECRET")
	case c.Vertec.APIURL == "":
		return fmt.Errorf("vertec API URL not configured — set vertec.api_url or VERTEC_API_URL")
	case c.Vertec.Token == "":
		return fmt.Errorf("vertec token not configured — set vertec.token or VERTEC_API_TOKEN")
	case c.Vertec.EmployeeID == "":
		return fmt.Errorf("vertec employee ID not configured — set vertec.employee_id or VERTEC_EMPLOYEE_ID")
	}
	return nil
}

// HTTPTimeout returns the configured upstream request timeout.
func (c *Config) HTTPTimeout() time.Duration {
	if c.Server.HTTPTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Server.HTTPTimeoutSeconds) * time.Second
}
