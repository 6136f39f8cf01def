package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const ServiceName = "usergraph"

var envPrefix = strings.ToUpper(ServiceName) + "_"

// Config holds all application configuration. Every flag defaults to the
// matching USERGRAPH_* environment variable.
type Config struct {
	Addr     string
	DiagAddr string
	Env      string

	DataFile string
	ReadFile string

	CORSOrigins []string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Routes prints the route docs and exits instead of serving.
	Routes bool
}

// Load reads an optional .env file, then the environment, then args.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	var origins string

	fs := flag.NewFlagSet(ServiceName, flag.ContinueOnError)
	fs.BoolVar(&cfg.Routes, "routes", getEnvBool("ROUTES", false), "Generate router documentation")
	fs.StringVar(&cfg.Addr, "addr", getEnv("ADDR", "127.0.0.1:3000"), "application address")
	fs.StringVar(&cfg.DiagAddr, "diag_addr", getEnv("DIAG_ADDR", ":9999"), "diag address")
	fs.StringVar(&cfg.Env, "env", getEnv("ENV", "development"), "environment: development or production")
	fs.StringVar(&cfg.DataFile, "data", getEnv("DATA_FILE", "mock.json"), "user collection file")
	fs.StringVar(&cfg.ReadFile, "read_file", getEnv("READ_FILE", "readFile.txt"), "file served by /getsync and /getasync")
	fs.StringVar(&origins, "cors_origins", getEnv("CORS_ORIGINS", "*"), "comma-separated allowed CORS origins")
	fs.DurationVar(&cfg.ReadTimeout, "read_timeout", getEnvDuration("READ_TIMEOUT", 10*time.Second), "HTTP read timeout")
	fs.DurationVar(&cfg.WriteTimeout, "write_timeout", getEnvDuration("WRITE_TIMEOUT", 10*time.Second), "HTTP write timeout")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown_timeout", getEnvDuration("SHUTDOWN_TIMEOUT", 5*time.Second), "graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.CORSOrigins = splitList(origins)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	if c.DiagAddr == "" {
		return errors.New("diag_addr is required")
	}
	if c.DataFile == "" {
		return errors.New("data is required")
	}
	if c.Env != "development" && c.Env != "production" {
		return fmt.Errorf("unknown env %q", c.Env)
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value
	}

	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(envPrefix + key)); err == nil {
		return value
	}

	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(envPrefix + key)); err == nil {
		return value
	}

	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
