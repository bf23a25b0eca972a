package config

import (
	"fmt"
	"os"
)

const (
	portEnvVar     = "PORT"
	appNameVar     = "APP_NAME"
	databaseURLVar = "DATABASE_URL"
	redisURLVar    = "REDIS_URL"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if port != "" || port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Reent Identity")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func (EnvVars) GetRedisURL() string {
	return GetEnv(redisURLVar, "")
}

// GetTrustProxyHeaders reports whether X-Forwarded-For may be used to
// identify clients. Enable only when a trusted reverse proxy sets it.
func (EnvVars) GetTrustProxyHeaders() bool {
	return GetEnv("TRUST_PROXY_HEADERS", "false") == "true"
}

type Database struct{}

var _ DatabaseConfig = Database{}

func (Database) GetDatabaseURL() string {
	return GetEnv(databaseURLVar, "postgres://localhost:5432/reent?sslmode=disable")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
