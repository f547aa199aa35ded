/*
Copyright 2025-2026 the Bellhop Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults matching the public restful-booker deployment.
const (
	DefaultBaseURL  = "https://restful-booker.herokuapp.com"
	DefaultUsername = "admin"
	DefaultPassword = "password123"
)

// Config carries everything the framework reads from the environment.
// Command line flags may override individual fields after loading.
type Config struct {
	// BaseURL is the root URL of the booking API under test.
	BaseURL string

	// Username and Password are the credentials used to acquire tokens.
	Username string
	Password string

	// RequestTimeout bounds a single HTTP request, including retries of
	// the same attempt.
	RequestTimeout time.Duration

	// SuiteTimeout bounds the whole run; scenarios still queued when it
	// expires are reported as failed, never dropped.
	SuiteTimeout time.Duration

	// TokenTTL is the assumed token lifetime when the server issues
	// opaque tokens that carry no expiry of their own.
	TokenTTL time.Duration

	// StateFile is where session state (token, created booking IDs) is
	// persisted between runs.
	StateFile string

	// ReportDir, when set, enables the JSON/JUnit/XLSX report sinks.
	ReportDir string

	// Cleanup deletes bookings created during the run, including any
	// left over from a previous crashed run.
	Cleanup bool

	// ValidateContract checks responses against the bundled OpenAPI
	// document in addition to scenario expectations.
	ValidateContract bool

	DebugLogging bool
	LogRequests  bool
	LogResponses bool
}

// Load reads configuration from environment variables and .env files.
// Returns an error if required configuration values are missing.
func Load() (*Config, error) {
	loadEnvFile()

	config := &Config{
		BaseURL:          getStringWithDefault("BOOKER_BASE_URL", DefaultBaseURL),
		Username:         getStringWithDefault("BOOKER_USERNAME", DefaultUsername),
		Password:         getStringWithDefault("BOOKER_PASSWORD", DefaultPassword),
		RequestTimeout:   getDurationWithDefault("REQUEST_TIMEOUT", 30*time.Second),
		SuiteTimeout:     getDurationWithDefault("SUITE_TIMEOUT", 10*time.Minute),
		TokenTTL:         getDurationWithDefault("TOKEN_TTL", time.Hour),
		StateFile:        getStringWithDefault("STATE_FILE", filepath.Join(".bellhop", "state.json")),
		ReportDir:        os.Getenv("REPORT_DIR"),
		Cleanup:          getBoolWithDefault("BOOKER_CLEANUP", true),
		ValidateContract: getBoolWithDefault("VALIDATE_CONTRACT", false),
		DebugLogging:     getBoolWithDefault("DEBUG_LOGGING", false),
		LogRequests:      getBoolWithDefault("LOG_REQUESTS", false),
		LogResponses:     getBoolWithDefault("LOG_RESPONSES", false),
	}

	if err := validateRequiredFields(config); err != nil {
		return nil, err
	}

	return config, nil
}

// getStringWithDefault gets a string from environment variable or returns default.
func getStringWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return value
}

// getDurationWithDefault gets a duration from environment variable or returns default.
func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

// getBoolWithDefault gets a boolean from environment variable or returns default.
func getBoolWithDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolValue
}

func loadEnvFile() {
	envPaths := []string{
		".env",
		"../.env",    // From test directories
		"../../.env", // From test/e2e and test/contracts
	}

	var envPath string

	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				envPath = absPath
				break
			}
		}
	}

	if envPath == "" {
		// .env file not found - this is OK in CI/CD where env vars are set directly
		return
	}

	if err := godotenv.Load(envPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env file from %s: %v\n", envPath, err)
	}
}

// validateRequiredFields checks that all required configuration values are set.
// The defaults above mean these only trip when a value is explicitly blanked.
func validateRequiredFields(config *Config) error {
	var missing []string

	required := map[string]string{
		"BOOKER_BASE_URL": config.BaseURL,
		"BOOKER_USERNAME": config.Username,
		"BOOKER_PASSWORD": config.Password,
	}

	for envVar, value := range required {
		if value == "" {
			missing = append(missing, envVar)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s. Please set these environment variables or add them to a .env file", strings.Join(missing, ", "))
	}

	return nil
}
