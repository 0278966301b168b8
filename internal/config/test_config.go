package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	cfg := defaultConfig()
	cfg.API.BaseURL = "http://127.0.0.1"
	cfg.API.Key = "test-key"
	cfg.API.HTTPTimeout = 5 * time.Second
	cfg.API.UserAgent = "headlines-test/1.0"
	cfg.Database = DatabaseConfig{
		Path:    ":memory:",
		Timeout: 1 * time.Second,
	}
	cfg.Log = LogConfig{Level: "off"}
	return cfg
}
