package pebbledb

import "github.com/cockroachdb/pebble"

const (
	defaultCacheSizeMiB = 64
	defaultMaxOpenFiles = 500
)

// Options returns the pebble options used for opening an index database
// with a block cache of the given size. The caller owns the returned cache
// reference and must Unref it once the database is open.
// It's defined as a variable for the sake of testing.
var Options = func(cacheSizeMiB int) (*pebble.Options, *pebble.Cache) {
	if cacheSizeMiB <= 0 {
		cacheSizeMiB = defaultCacheSizeMiB
	}
	cache := pebble.NewCache(int64(cacheSizeMiB) << 20)
	options := &pebble.Options{
		Cache:        cache,
		MaxOpenFiles: defaultMaxOpenFiles,
		Logger:       pebbleLogger{},
	}
	return options, cache
}
