package config

// DefaultBaseURL is where the library service listens in development.
const DefaultBaseURL = "http://localhost:3001"

// APIConfig configures the remote library service.
type APIConfig struct {
	// BaseURL is the service root; the books resource lives at BaseURL/books.
	BaseURL string `yaml:"base_url"`
}
