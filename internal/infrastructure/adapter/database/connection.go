package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openDialector picks the gorm dialector for the configured driver
func openDialector(config *Config) (gorm.Dialector, error) {
	switch config.Driver {
	case DriverPostgres:
		return postgres.Open(config.DSN()), nil
	case DriverSQLite:
		// foreign keys are off by default in sqlite
		return sqlite.Open(sqliteDSN(config.Path)), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", config.Driver)
	}
}

func sqliteDSN(path string) string {
	if path == ":memory:" {
		return "file::memory:?_foreign_keys=on"
	}
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
}

// isSingleWriter reports whether the pool must be limited to one connection
func isSingleWriter(config *Config) bool {
	return config.Driver == DriverSQLite
}
