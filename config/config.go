/*
Package config loads process configuration.

PRECEDENCE (highest first):
  command-line flags (spf13/pflag) > environment > .env file > defaults

VARIABLES:
  SALARY_PORT            HTTP port (8080)
  SALARY_DB              SQLite path (./data/salary.db)
  SALARY_CALENDAR_URL    Holiday API base URL
  SALARY_SETTINGS_FILE   Optional YAML settings used to seed the store
  SALARY_LOG_LEVEL       debug, info, warn, error (info)
  SALARY_LOG_PRETTY      Human-readable logs (false)
  SALARY_CONSOLE         Draw the meter on the terminal (false)
  SALARY_AUTOSTART       Start the meter on boot (true)
*/
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/warp/salary-meter/calendar"
)

// Config holds application configuration
type Config struct {
	Port         int
	DatabasePath string
	CalendarURL  string
	SettingsFile string
	LogLevel     string
	LogPretty    bool
	Console      bool
	AutoStart    bool
}

// Load reads .env (if present), the environment and then args.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnvAsInt("SALARY_PORT", 8080),
		DatabasePath: getEnv("SALARY_DB", "./data/salary.db"),
		CalendarURL:  getEnv("SALARY_CALENDAR_URL", calendar.DefaultEndpoint),
		SettingsFile: getEnv("SALARY_SETTINGS_FILE", ""),
		LogLevel:     getEnv("SALARY_LOG_LEVEL", "info"),
		LogPretty:    getEnvAsBool("SALARY_LOG_PRETTY", false),
		Console:      getEnvAsBool("SALARY_CONSOLE", false),
		AutoStart:    getEnvAsBool("SALARY_AUTOSTART", true),
	}

	fs := pflag.NewFlagSet("salary-meter", pflag.ContinueOnError)
	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "HTTP listen port")
	fs.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "SQLite database path")
	fs.StringVar(&cfg.CalendarURL, "calendar-url", cfg.CalendarURL, "holiday API base URL")
	fs.StringVar(&cfg.SettingsFile, "settings", cfg.SettingsFile, "YAML settings file used to seed the store")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.BoolVar(&cfg.LogPretty, "log-pretty", cfg.LogPretty, "human-readable logs")
	fs.BoolVar(&cfg.Console, "console", cfg.Console, "draw the meter on the terminal")
	fs.BoolVar(&cfg.AutoStart, "autostart", cfg.AutoStart, "start the meter on boot")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DatabasePath == "" {
		return errors.New("SALARY_DB is required")
	}
	u, err := url.Parse(c.CalendarURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid calendar URL %q", c.CalendarURL)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
