// Package config loads server settings from defaults, an optional YAML
// file and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Blob backends.
const (
	BlobSQLite = "sqlite"
	BlobS3     = "s3"
)

// Config holds everything needed to run the server.
type Config struct {
	Listen          string        `yaml:"listen"`
	DBPath          string        `yaml:"db_path"`
	LogPath         string        `yaml:"log_path"`
	AdminIdentifier string        `yaml:"admin_identifier"`
	TokenTTL        time.Duration `yaml:"token_ttl"`
	ClaimRetries    int           `yaml:"claim_retries"`
	Blob            BlobConfig    `yaml:"blob"`
}

// BlobConfig selects where item photos are stored.
type BlobConfig struct {
	Backend string `yaml:"backend"`
	// PhotoBaseURL prefixes photo URLs for the sqlite backend.
	PhotoBaseURL string   `yaml:"photo_base_url"`
	S3           S3Config `yaml:"s3"`
}

// S3Config configures an S3-compatible bucket.
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	PublicURL string `yaml:"public_url"`
}

// LoadDefaults returns the built-in configuration.
func LoadDefaults() Config {
	return Config{
		Listen:          ":8080",
		DBPath:          "najdeno.sqlite3",
		AdminIdentifier: "admin",
		TokenTTL:        7 * 24 * time.Hour,
		ClaimRetries:    5,
		Blob: BlobConfig{
			Backend:      BlobSQLite,
			PhotoBaseURL: "/api/photos",
			S3:           S3Config{Region: "us-east-1"},
		},
	}
}

// Load builds the configuration. path may be empty; a missing file is an
// error only when path was given. Only flags set on the command line
// override the file.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	cfg := LoadDefaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if flags != nil {
		if err := cfg.applyFlags(flags); err != nil {
			return cfg, err
		}
	}

	return cfg, cfg.Validate()
}

// RegisterFlags declares the command-line overrides on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := LoadDefaults()
	fs.StringP("addr", "a", d.Listen, "listen address")
	fs.StringP("db", "d", d.DBPath, "SQLite database path")
	fs.StringP("log", "l", "", "log file path (default: stdout/stderr only)")
	fs.StringP("user", "u", d.AdminIdentifier, "admin identifier on first run")
	fs.Duration("token-ttl", d.TokenTTL, "lifetime of issued tokens")
	fs.Int("claim-retries", d.ClaimRetries, "retries for conflicting claim updates")
	fs.String("blob", d.Blob.Backend, "photo storage backend (sqlite|s3)")
	fs.String("s3-bucket", "", "S3 bucket for photos")
	fs.String("s3-endpoint", "", "S3 endpoint for MinIO and other compatible stores")
}

func (c *Config) applyFlags(fs *pflag.FlagSet) error {
	var errs []error
	fs.Visit(func(f *pflag.Flag) {
		v := f.Value.String()
		switch f.Name {
		case "addr":
			c.Listen = v
		case "db":
			c.DBPath = v
		case "log":
			c.LogPath = v
		case "user":
			c.AdminIdentifier = v
		case "token-ttl":
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("--token-ttl: %w", err))
			}
			c.TokenTTL = d
		case "claim-retries":
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("--claim-retries: %w", err))
			}
			c.ClaimRetries = n
		case "blob":
			c.Blob.Backend = v
		case "s3-bucket":
			c.Blob.S3.Bucket = v
		case "s3-endpoint":
			c.Blob.S3.Endpoint = v
		}
	})
	return errors.Join(errs...)
}

// Validate reports configuration values the server cannot run with.
func (c *Config) Validate() error {
	var problems []string
	if c.Listen == "" {
		problems = append(problems, "listen address is empty")
	}
	if c.DBPath == "" {
		problems = append(problems, "database path is empty")
	}
	if c.TokenTTL <= 0 {
		problems = append(problems, "token_ttl must be positive")
	}
	if c.ClaimRetries < 0 {
		problems = append(problems, "claim_retries must not be negative")
	}
	switch c.Blob.Backend {
	case BlobSQLite:
	case BlobS3:
		if c.Blob.S3.Bucket == "" {
			problems = append(problems, "s3 backend needs a bucket")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown blob backend %q", c.Blob.Backend))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
