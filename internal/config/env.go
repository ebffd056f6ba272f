package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Environment variables consulted by LoadEnvironment.
const (
	// EnvGSBAPIKey names the Google Safe Browsing API key variable.
	EnvGSBAPIKey = "GOOGLE_API_KEY"

	// EnvVTAPIKey names the VirusTotal API key variable.
	EnvVTAPIKey = "VIRUSTOTAL_API_KEY"

	// EnvModelPath overrides the classifier artifact location.
	EnvModelPath = "MODEL_PATH"
)

// LoadEnvironment fills credentials and the model path from the process
// environment, reading a .env file in the working directory first when one
// exists. Environment values take precedence over values loaded from the
// config file, so a key exported in the shell always wins over one written
// to disk.
//
// Design decision: API keys load from the environment rather than flags so
// they never appear in shell history or process listings.
func (c *Config) LoadEnvironment() {
	// A missing .env file is the normal case, not an error.
	_ = godotenv.Load() //nolint:errcheck

	if v := os.Getenv(EnvGSBAPIKey); v != "" {
		c.GSBAPIKey = v
	}
	if v := os.Getenv(EnvVTAPIKey); v != "" {
		c.VTAPIKey = v
	}
	if v := os.Getenv(EnvModelPath); v != "" {
		c.ModelPath = v
	}
}
