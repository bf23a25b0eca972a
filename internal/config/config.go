package config

type Config interface {
	EnvConfig
	CorsConfig
	SecurityConfig
	DatabaseConfig
	ProviderConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetRedisURL() string
	GetTrustProxyHeaders() bool
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type DatabaseConfig interface {
	GetDatabaseURL() string
}

type mainConfig struct {
	EnvVars
	Cors
	Security
	Database
	Provider
}

func New() Config {
	return mainConfig{}
}
