package pebbledb

import (
	"bytes"

	"github.com/cockroachdb/pebble"
	"github.com/kaspanet/restindex/infrastructure/db/database"
	"github.com/pkg/errors"
)

// PebbleCursor is a thin wrapper around native pebble iterators.
type PebbleCursor struct {
	iterator *pebble.Iterator
	bucket   *database.Bucket

	// pebble iterators have no implicit starting position, so the
	// first Next has to be turned into First.
	isPositioned bool
	isClosed     bool
}

func newPebbleCursor(iterator *pebble.Iterator, bucket *database.Bucket) *PebbleCursor {
	return &PebbleCursor{
		iterator: iterator,
		bucket:   bucket,
	}
}

// Next moves the iterator to the next key/value pair. It returns false if
// the iterator is exhausted. Panics if the cursor is closed.
func (c *PebbleCursor) Next() bool {
	if c.isClosed {
		panic("cannot call next on a closed cursor")
	}
	if !c.isPositioned {
		return c.First()
	}
	if !c.iterator.Valid() {
		return false
	}
	return c.iterator.Next()
}

// First moves the iterator to the first key/value pair. It returns false if
// such a pair does not exist. Panics if the cursor is closed.
func (c *PebbleCursor) First() bool {
	if c.isClosed {
		panic("cannot call first on a closed cursor")
	}
	c.isPositioned = true
	return c.iterator.First()
}

// Seek moves the iterator to the first key/value pair whose key is greater
// than or equal to the given key. It returns ErrNotFound if such pair does
// not exist in the cursor's bucket.
func (c *PebbleCursor) Seek(key *database.Key) error {
	if c.isClosed {
		return errors.New("cannot seek a closed cursor")
	}

	keyBytes := key.Bytes()
	if !bytes.HasPrefix(keyBytes, c.bucket.Path()) {
		return errors.Wrapf(database.ErrNotFound, "key %s is "+
			"outside of bucket %s", key, c.bucket.Path())
	}
	c.isPositioned = true
	if !c.iterator.SeekGE(keyBytes) {
		return errors.Wrapf(database.ErrNotFound, "no key at "+
			"or after %s", key)
	}
	return nil
}

// Key returns the key of the current key/value pair, or ErrNotFound if done.
// The caller should not modify the contents of the returned key, and
// its contents may change on the next call to Next.
func (c *PebbleCursor) Key() (*database.Key, error) {
	if c.isClosed {
		return nil, errors.New("cannot get the key of a closed cursor")
	}
	if !c.isPositioned || !c.iterator.Valid() {
		return nil, errors.Wrapf(database.ErrNotFound, "cannot get the "+
			"key of an exhausted cursor")
	}
	suffix := bytes.TrimPrefix(c.iterator.Key(), c.bucket.Path())
	return c.bucket.Key(suffix), nil
}

// Value returns the value of the current key/value pair, or ErrNotFound if done.
// The caller should not modify the contents of the returned slice, and its
// contents may change on the next call to Next.
func (c *PebbleCursor) Value() ([]byte, error) {
	if c.isClosed {
		return nil, errors.New("cannot get the value of a closed cursor")
	}
	if !c.isPositioned || !c.iterator.Valid() {
		return nil, errors.Wrapf(database.ErrNotFound, "cannot get the "+
			"value of an exhausted cursor")
	}
	return c.iterator.Value(), nil
}

// Close releases associated resources.
func (c *PebbleCursor) Close() error {
	if c.isClosed {
		return errors.New("cannot close an already closed cursor")
	}
	c.isClosed = true
	err := c.iterator.Close()
	c.iterator = nil
	c.bucket = nil
	return errors.WithStack(err)
}
