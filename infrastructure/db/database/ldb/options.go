package ldb

import "github.com/syndtr/goleveldb/leveldb/opt"

// The index database has its own profile, separate from the primary
// store: it is rebuildable, so it favors a small footprint.
var (
	defaultOptions = opt.Options{
		Compression:            opt.SnappyCompression,
		BlockCacheCapacity:     64 * opt.MiB,
		WriteBuffer:            32 * opt.MiB,
		DisableSeeksCompaction: true,
	}

	// Options is a function that returns a leveldb
	// opt.Options struct for opening a database.
	// It's defined as a variable for the sake of testing.
	Options = func() *opt.Options {
		options := defaultOptions
		return &options
	}
)
