package config

import "time"

// AppConfig holds runtime startup configuration loaded from YAML and the environment.
type AppConfig struct {
	Port             int                `yaml:"port"`
	Env              string             `yaml:"env"` // "development" | "production"
	DataDir          string             `yaml:"data_dir"`
	OperatorPassword string             `yaml:"operator_password"`
	RedisURL         string             `yaml:"redis_url"`
	AllowedOrigins   []string           `yaml:"allowed_origins"`
	Storage          StorageConfig      `yaml:"storage"`
	Paths            RuntimePathsConfig `yaml:"paths"`
	Security         SecurityConfig     `yaml:"security"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"` // file | mysql | sqlite
	DSN    string `yaml:"dsn"`
}

type RuntimePathsConfig struct {
	Logs   string `yaml:"logs"`
	Static string `yaml:"static"`
}

// SecurityConfig controls the optional capability-token check on updates.
type SecurityConfig struct {
	RequireUpdateToken bool          `yaml:"require_update_token"`
	TokenSecret        string        `yaml:"token_secret"`
	TokenTTL           time.Duration `yaml:"token_ttl"`
}

type rawAppConfig struct {
	Port               int               `yaml:"port"`
	Env                string            `yaml:"env"`
	NodeEnv            string            `yaml:"node_env"`
	DataDir            string            `yaml:"data_dir"`
	OperatorPassword   string            `yaml:"operator_password"`
	MasterPassword     string            `yaml:"master_password"`
	RedisURL           string            `yaml:"redis_url"`
	AllowedOrigins     []string          `yaml:"allowed_origins"`
	CORSAllowedOrigins []string          `yaml:"cors_allowed_origins"`
	Storage            rawStorageConfig  `yaml:"storage"`
	Paths              rawPathsConfig    `yaml:"paths"`
	LogDir             string            `yaml:"log_dir"`
	StaticDir          string            `yaml:"static_dir"`
	Security           rawSecurityConfig `yaml:"security"`
}

type rawStorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type rawPathsConfig struct {
	Logs   string `yaml:"logs"`
	Static string `yaml:"static"`
}

type rawSecurityConfig struct {
	RequireUpdateToken *bool  `yaml:"require_update_token"`
	TokenSecret        string `yaml:"token_secret"`
	TokenTTL           string `yaml:"token_ttl"`
}
