package config

import "time"

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 3001
	defaultEnv        = "development"
	defaultDataSubdir = "data"
	defaultStatic     = "dist"
	defaultLogs       = "logs"
	defaultTokenTTL   = 12 * time.Hour

	// DocumentFileName is the file the document store writes under the data directory.
	DocumentFileName = "db.json"
	sqliteFileName   = "eden.sqlite"
)

// Storage drivers.
const (
	StorageFile   = "file"
	StorageMySQL  = "mysql"
	StorageSQLite = "sqlite"
)
