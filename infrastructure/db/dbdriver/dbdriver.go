// Package dbdriver opens an index database by the name of its storage engine.
package dbdriver

import (
	"github.com/kaspanet/restindex/infrastructure/db/database"
	"github.com/kaspanet/restindex/infrastructure/db/database/ldb"
	"github.com/kaspanet/restindex/infrastructure/db/database/pebbledb"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Supported database drivers
const (
	LevelDBDriver = "leveldb"
	PebbleDriver  = "pebble"
)

// DefaultDriver is the driver used when none is configured.
const DefaultDriver = LevelDBDriver

// SupportedDrivers returns the names of all supported database drivers.
func SupportedDrivers() []string {
	return []string{LevelDBDriver, PebbleDriver}
}

// IsSupported returns whether the given driver name is supported.
func IsSupported(driver string) bool {
	for _, supported := range SupportedDrivers() {
		if driver == supported {
			return true
		}
	}
	return false
}

// Open opens the database at the given path using the given driver.
func Open(driver string, path string, cacheSizeMiB int) (database.Database, error) {
	switch driver {
	case LevelDBDriver:
		db, err := ldb.NewLevelDB(path, cacheSizeMiB)
		if err != nil {
			return nil, err
		}
		return db, nil
	case PebbleDriver:
		db, err := pebbledb.NewPebbleDB(path, cacheSizeMiB)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, errors.Errorf("unsupported database driver %q, supported drivers are %v",
			driver, SupportedDrivers())
	}
}

type collectorProvider interface {
	Collector(namespace string) prometheus.Collector
}

// Collector returns a prometheus collector exporting the storage engine
// metrics of db under the given namespace. It returns false if the
// database doesn't export any.
func Collector(db database.Database, namespace string) (prometheus.Collector, bool) {
	provider, ok := db.(collectorProvider)
	if !ok {
		return nil, false
	}
	return provider.Collector(namespace), true
}
