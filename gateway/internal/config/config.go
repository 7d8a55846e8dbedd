package config

import (
	"github.com/Skotchmaster/storefront/pkg/config"
)

type Config struct {
	ListenAddr     string
	LogLevel       string
	CatalogURL     string
	AuthServiceURL string
	PushHubURL     string
	AllowedOrigins []string
	JWTSecret      []byte
}

func Load() *Config {
	base := config.Load()
	return &Config{
		ListenAddr:     config.EnvDefault("GATEWAY_ADDR", ":8080"),
		LogLevel:       base.LogLevel,
		CatalogURL:     base.CatalogURL,
		AuthServiceURL: base.AuthServiceURL,
		PushHubURL:     base.PushHubURL,
		AllowedOrigins: config.CSV(config.EnvDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		JWTSecret:      base.JWTSecret,
	}
}
