package pebbledb

import (
	"io"

	"github.com/cockroachdb/pebble"
	"github.com/kaspanet/restindex/infrastructure/db/database"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// PebbleDB defines a thin wrapper around pebble.
type PebbleDB struct {
	db *pebble.DB
}

// NewPebbleDB opens a pebble instance defined by the given path.
func NewPebbleDB(path string, cacheSizeMiB int) (*PebbleDB, error) {
	options, cache := Options(cacheSizeMiB)
	defer cache.Unref()

	db, err := pebble.Open(path, options)
	if err != nil {
		return nil, errors.Wrapf(err, "failed opening pebble database at %s", path)
	}
	return &PebbleDB{db: db}, nil
}

// Close closes the pebble instance.
func (db *PebbleDB) Close() error {
	err := db.db.Close()
	return errors.WithStack(err)
}

// Put sets the value for the given key. It overwrites
// any previous value for that key.
func (db *PebbleDB) Put(key *database.Key, value []byte) error {
	err := db.db.Set(key.Bytes(), value, pebble.Sync)
	return errors.WithStack(err)
}

// Get gets the value for the given key. It returns
// ErrNotFound if the given key does not exist.
func (db *PebbleDB) Get(key *database.Key) ([]byte, error) {
	return get(db.db, key)
}

// Has returns true if the database does contains the
// given key.
func (db *PebbleDB) Has(key *database.Key) (bool, error) {
	return has(db.db, key)
}

// Delete deletes the value for the given key. Will not
// return an error if the key doesn't exist.
func (db *PebbleDB) Delete(key *database.Key) error {
	err := db.db.Delete(key.Bytes(), pebble.Sync)
	return errors.WithStack(err)
}

// Cursor begins a new cursor over the given bucket.
func (db *PebbleDB) Cursor(bucket *database.Bucket) (database.Cursor, error) {
	iterator := db.db.NewIter(iterOptions(bucket))
	return newPebbleCursor(iterator, bucket), nil
}

// reader is the read surface shared by pebble databases and snapshots.
type reader interface {
	Get(key []byte) ([]byte, io.Closer, error)
}

func get(r reader, key *database.Key) ([]byte, error) {
	value, closer, err := r.Get(key.Bytes())
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, errors.Wrapf(database.ErrNotFound,
				"key %s not found", key)
		}
		return nil, errors.WithStack(err)
	}
	defer closer.Close()

	// The returned slice is only valid until the closer is called.
	data := make([]byte, len(value))
	copy(data, value)
	return data, nil
}

func has(r reader, key *database.Key) (bool, error) {
	_, closer, err := r.Get(key.Bytes())
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return false, nil
		}
		return false, errors.WithStack(err)
	}
	return true, errors.WithStack(closer.Close())
}

func iterOptions(bucket *database.Bucket) *pebble.IterOptions {
	return &pebble.IterOptions{
		LowerBound: bucket.Path(),
		UpperBound: bucket.UpperBound(),
	}
}

// Collector returns a prometheus collector exporting the engine
// metrics of this instance under the given namespace.
func (db *PebbleDB) Collector(namespace string) prometheus.Collector {
	return newCollector(db.db, namespace)
}
