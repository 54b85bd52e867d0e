package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML config at configPath and applies environment overrides.
// An empty configPath falls back to DefaultConfigPath, which may be absent.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	cfg := defaultAppConfig()
	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		raw := rawAppConfig{}
		if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config file %q: %w", path, err)
		}
		if err := applyRawAppConfig(&cfg, raw); err != nil {
			return nil, fmt.Errorf("config file %q: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// defaults plus environment
	default:
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Storage: StorageConfig{
			Driver: StorageFile,
		},
		Security: SecurityConfig{
			TokenTTL: defaultTokenTTL,
		},
	}
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) error {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(raw.NodeEnv); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(raw.DataDir); v != "" {
		cfg.DataDir = v
	}
	if v := strings.TrimSpace(raw.OperatorPassword); v != "" {
		cfg.OperatorPassword = v
	}
	if v := strings.TrimSpace(raw.MasterPassword); v != "" {
		cfg.OperatorPassword = v
	}
	if v := strings.TrimSpace(raw.RedisURL); v != "" {
		cfg.RedisURL = v
	}

	switch {
	case raw.AllowedOrigins != nil:
		cfg.AllowedOrigins = normalizeOrigins(raw.AllowedOrigins)
	case raw.CORSAllowedOrigins != nil:
		cfg.AllowedOrigins = normalizeOrigins(raw.CORSAllowedOrigins)
	}

	if v := strings.TrimSpace(raw.Storage.Driver); v != "" {
		cfg.Storage.Driver = v
	}
	if v := strings.TrimSpace(raw.Storage.DSN); v != "" {
		cfg.Storage.DSN = v
	}

	if v := strings.TrimSpace(raw.Paths.Logs); v != "" {
		cfg.Paths.Logs = v
	}
	if v := strings.TrimSpace(raw.LogDir); v != "" {
		cfg.Paths.Logs = v
	}
	if v := strings.TrimSpace(raw.Paths.Static); v != "" {
		cfg.Paths.Static = v
	}
	if v := strings.TrimSpace(raw.StaticDir); v != "" {
		cfg.Paths.Static = v
	}

	if raw.Security.RequireUpdateToken != nil {
		cfg.Security.RequireUpdateToken = *raw.Security.RequireUpdateToken
	}
	if v := strings.TrimSpace(raw.Security.TokenSecret); v != "" {
		cfg.Security.TokenSecret = v
	}
	if v := strings.TrimSpace(raw.Security.TokenTTL); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid security.token_ttl %q: %w", v, err)
		}
		cfg.Security.TokenTTL = ttl
	}

	cfg.Env = normalizeEnv(cfg.Env)
	cfg.Paths = normalizeRuntimePaths(cfg.Paths)
	cfg.Storage.Driver = normalizeDriver(cfg.Storage.Driver)
	return nil
}

// applyEnv applies the deployment environment variables on top of the file values.
func applyEnv(cfg *AppConfig) error {
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	if v := strings.TrimSpace(os.Getenv("DATA_DIR")); v != "" {
		cfg.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("RENDER_DATA_DIR")); v != "" {
		cfg.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("MASTER_PASSWORD")); v != "" {
		cfg.OperatorPassword = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_URL")); v != "" {
		cfg.RedisURL = v
	}
	return nil
}

func validate(cfg *AppConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", cfg.Port)
	}
	switch cfg.Storage.Driver {
	case StorageFile, StorageSQLite:
	case StorageMySQL:
		if cfg.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for driver %q", cfg.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage.driver %q, expected file, mysql or sqlite", cfg.Storage.Driver)
	}
	if cfg.Security.TokenTTL <= 0 {
		return fmt.Errorf("invalid security.token_ttl %s, expected > 0", cfg.Security.TokenTTL)
	}
	return nil
}

func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, defaultEnv)
}

// DataPath is the directory holding the document file or SQLite database.
func (c *AppConfig) DataPath() string {
	if c == nil {
		return ResolveRuntimePath("", defaultDataSubdir)
	}
	return ResolveRuntimePath(c.DataDir, defaultDataSubdir)
}

// DocumentPath is the full path of the JSON document file.
func (c *AppConfig) DocumentPath() string {
	return filepath.Join(c.DataPath(), DocumentFileName)
}

// StorageDSN returns the DSN for the SQL drivers. SQLite defaults to a file in the data directory.
func (c *AppConfig) StorageDSN() string {
	if c.Storage.DSN != "" {
		return c.Storage.DSN
	}
	if c.Storage.Driver == StorageSQLite {
		return filepath.Join(c.DataPath(), sqliteFileName)
	}
	return ""
}

func (c *AppConfig) LogDir() string {
	if c == nil {
		return ResolveRuntimePath("", defaultLogs)
	}
	return ResolveRuntimePath(c.Paths.Logs, defaultLogs)
}

func (c *AppConfig) StaticDir() string {
	if c == nil {
		return ResolveRuntimePath("", defaultStatic)
	}
	return ResolveRuntimePath(c.Paths.Static, defaultStatic)
}
