// Package database names the timetable storage backends and opens the SQL
// ones.
package database

import (
	"fmt"
	"strings"
)

// Driver is a storage backend name as accepted by STORE_DRIVER.
type Driver string

const (
	DriverFile     Driver = "file"
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverRedis    Driver = "redis"
)

var knownDrivers = map[Driver]struct{ remote bool }{
	DriverFile:     {},
	DriverMemory:   {},
	DriverSQLite:   {},
	DriverPostgres: {remote: true},
	DriverRedis:    {remote: true},
}

// URL prefixes and suffixes that select a driver, checked in order.
var (
	urlPrefixes = []struct {
		prefix string
		driver Driver
	}{
		{"postgres://", DriverPostgres},
		{"postgresql://", DriverPostgres},
		{"redis://", DriverRedis},
		{"rediss://", DriverRedis},
		{"sqlite://", DriverSQLite},
		{"file:", DriverSQLite},
	}
	sqliteSuffixes = []string{".db", ".sqlite", ".sqlite3"}
)

func (d Driver) String() string { return string(d) }

// IsValid reports whether d names a supported backend.
func (d Driver) IsValid() bool {
	_, ok := knownDrivers[d]
	return ok
}

// IsRemote reports whether the backend lives behind a network connection.
func (d Driver) IsRemote() bool {
	return knownDrivers[d].remote
}

// ParseDriver resolves a configured driver name. An empty name or "auto"
// falls back to DetectDriver(url).
func ParseDriver(name, url string) (Driver, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		return DetectDriver(url), nil
	}
	if d := Driver(name); d.IsValid() {
		return d, nil
	}
	return "", fmt.Errorf("unsupported storage driver: %s", name)
}

// DetectDriver picks a backend from a connection string or path. Anything
// unrecognised, including the empty string, is the JSON file store.
func DetectDriver(url string) Driver {
	for _, p := range urlPrefixes {
		if strings.HasPrefix(url, p.prefix) {
			return p.driver
		}
	}
	for _, suffix := range sqliteSuffixes {
		if strings.HasSuffix(url, suffix) {
			return DriverSQLite
		}
	}
	return DriverFile
}
