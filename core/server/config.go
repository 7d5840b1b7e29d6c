package server

import "strings"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080" validate:"required,numeric"`
	// ApiKey is the secret key required to access the API.
	// An empty key leaves the API open.
	ApiKey string `mapstructure:"api_key" default:""`
	// Prefix is the path under which feature routes are mounted.
	Prefix string `mapstructure:"prefix" default:"/api" validate:"startswith=/"`
	// Docs enables the swagger UI under /swagger.
	Docs bool `mapstructure:"docs" default:"true"`
}

// IsProtected reports whether requests must carry the API key.
func (c Config) IsProtected() bool {
	return strings.TrimSpace(c.ApiKey) != ""
}

// Address returns the listen address for the configured port.
func (c Config) Address() string {
	return ":" + c.Port
}
