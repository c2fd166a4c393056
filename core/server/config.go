package server

// Config holds configuration for the HTTP status server.
type Config struct {
	// Enabled turns the HTTP surface on. The middleware runs headless
	// without it.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8085"`
	// ApiKey is the secret key required to access the API. Empty disables
	// authentication, for single-host deployments behind a firewall.
	ApiKey string `mapstructure:"api_key" default:""`
}
