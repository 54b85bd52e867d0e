package database

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/edenspa/core/internal/config"
	"github.com/edenspa/core/internal/models"
	"gorm.io/gorm/logger"
)

func TestOpenSQLiteMigrates(t *testing.T) {
	db, err := Open(config.StorageSQLite, filepath.Join(t.TempDir(), "eden.sqlite"), logger.Silent)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !db.Migrator().HasTable(&models.OptionModel{}) {
		t.Fatal("options table not migrated")
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open("postgres", "", logger.Silent); err == nil {
		t.Fatal("Open accepted an unknown driver")
	}
}

func TestNormalizeMySQLDSN(t *testing.T) {
	got, err := normalizeMySQLDSN("eden:secret@tcp(db:3306)/eden")
	if err != nil {
		t.Fatalf("normalizeMySQLDSN: %v", err)
	}
	for _, want := range []string{"parseTime=true", "tcp(db:3306)/eden"} {
		if !strings.Contains(got, want) {
			t.Errorf("dsn %q missing %q", got, want)
		}
	}

	if _, err := normalizeMySQLDSN("not a dsn"); err == nil {
		t.Fatal("invalid dsn accepted")
	}
	if _, err := Open(config.StorageMySQL, "not a dsn", logger.Silent); err == nil {
		t.Fatal("Open accepted an invalid mysql dsn")
	}
}
