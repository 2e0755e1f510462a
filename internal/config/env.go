package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Environment variables read for backend credentials. Secrets stay out
// of the config file.
const (
	// EnvScopusAPIKey holds the Elsevier Scopus API key used for
	// citation-count enrichment.
	EnvScopusAPIKey = "SCOPUS_API_KEY"

	// EnvDotenvFile overrides the dotenv file location (default ".env").
	EnvDotenvFile = "MATCHPUB_ENV_FILE"
)

// LoadEnv loads the dotenv file if one exists. Missing files are not
// an error; real environment variables always win over file values.
func LoadEnv() error {
	path := os.Getenv(EnvDotenvFile)
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// ScopusAPIKey returns the configured Scopus API key ("" if unset).
func ScopusAPIKey() string {
	return os.Getenv(EnvScopusAPIKey)
}
