package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every setting the service consumes.
type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	Database  DatabaseConfig
	Connector ConnectorConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	auth, err := loadAuthConfig()
	if err != nil {
		return nil, err
	}

	connector, err := loadConnectorConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:    server,
		Auth:      auth,
		Database:  loadDatabaseConfig(),
		Connector: connector,
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "3000"
	}

	if strings.Contains(port, ":") {
		// Allow passing ":3000" or "127.0.0.1:3000" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AuthConfig carries the token signing secret and the login password.
type AuthConfig struct {
	Secret   string
	Password string
	TokenTTL time.Duration
}

func loadAuthConfig() (AuthConfig, error) {
	secret := strings.TrimSpace(os.Getenv("CRM_JWT_SECRET"))
	if secret == "" {
		// Deployments that predate the dedicated secret reuse the
		// database service key.
		secret = strings.TrimSpace(os.Getenv("SUPABASE_SERVICE_ROLE_KEY"))
	}
	if secret == "" {
		return AuthConfig{}, errors.New("missing CRM_JWT_SECRET (or SUPABASE_SERVICE_ROLE_KEY fallback)")
	}

	ttl := time.Duration(0)
	if seconds, err := parseOptionalIntEnv("CRM_TOKEN_TTL"); err != nil {
		return AuthConfig{}, err
	} else if seconds != nil {
		if *seconds < 1 {
			return AuthConfig{}, fmt.Errorf("CRM_TOKEN_TTL must be positive, got %d", *seconds)
		}
		ttl = time.Duration(*seconds) * time.Second
	}

	return AuthConfig{
		Secret:   secret,
		Password: getEnvOrDefault("CRM_PASSWORD", "2211"),
		TokenTTL: ttl,
	}, nil
}

// DatabaseConfig locates the hosted store. An empty URL selects the
// in-memory adapter.
type DatabaseConfig struct {
	URL string
}

func loadDatabaseConfig() DatabaseConfig {
	url := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if url == "" {
		url = strings.TrimSpace(os.Getenv("SUPABASE_DB_URL"))
	}
	return DatabaseConfig{URL: url}
}

// ConnectorConfig locates the knowledge connector. Both fields must be
// present for the refresh endpoint to work.
type ConnectorConfig struct {
	BaseURL     string
	AdminSecret string
	Timeout     time.Duration
}

func loadConnectorConfig() (ConnectorConfig, error) {
	timeout := 60 * time.Second
	if seconds, err := parseOptionalIntEnv("CONNECTOR_TIMEOUT"); err != nil {
		return ConnectorConfig{}, err
	} else if seconds != nil {
		if *seconds < 1 {
			return ConnectorConfig{}, fmt.Errorf("CONNECTOR_TIMEOUT must be positive, got %d", *seconds)
		}
		timeout = time.Duration(*seconds) * time.Second
	}

	return ConnectorConfig{
		BaseURL:     strings.TrimRight(strings.TrimSpace(os.Getenv("JAGMAG_CONNECTOR_URL")), "/"),
		AdminSecret: strings.TrimSpace(os.Getenv("JAGMAG_ADMIN_SECRET")),
		Timeout:     timeout,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
