// Package config resolves all environment-driven configuration at process
// startup. Nothing outside this package and the CLI wiring reads the
// environment; the core packages receive explicit values.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// DefaultCalendarName is the target calendar when GOOGLE_CALENDAR_NAME is
// not set
const DefaultCalendarName = "Berkeley Calendar"

// Config holds everything read from the environment
type Config struct {
	Email        string // GRADESCOPE_EMAIL
	Password     string // GRADESCOPE_PASSWORD
	CalendarName string // GOOGLE_CALENDAR_NAME
	GoogleToken  string // GOOGLE_TOKEN, base64 token.json for CI
}

// FromEnv loads the full configuration, requiring Gradescope credentials.
// A .env file in the working directory is loaded first when present.
func FromEnv() (*Config, error) {
	_ = godotenv.Load()

	cfg := googleFromEnv()
	cfg.Email = os.Getenv("GRADESCOPE_EMAIL")
	cfg.Password = os.Getenv("GRADESCOPE_PASSWORD")

	if cfg.Email == "" || cfg.Password == "" {
		return nil, fmt.Errorf("GRADESCOPE_EMAIL and GRADESCOPE_PASSWORD must be set")
	}

	return cfg, nil
}

// GoogleFromEnv loads only the Google-side configuration. Used by actions
// that never talk to Gradescope, such as cleanup.
func GoogleFromEnv() *Config {
	_ = godotenv.Load()
	return googleFromEnv()
}

func googleFromEnv() *Config {
	name := os.Getenv("GOOGLE_CALENDAR_NAME")
	if name == "" {
		name = DefaultCalendarName
	}

	return &Config{
		CalendarName: name,
		GoogleToken:  os.Getenv("GOOGLE_TOKEN"),
	}
}
