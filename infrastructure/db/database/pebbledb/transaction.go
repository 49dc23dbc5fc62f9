package pebbledb

import (
	"github.com/cockroachdb/pebble"
	"github.com/kaspanet/restindex/infrastructure/db/database"
	"github.com/pkg/errors"
)

// PebbleTransaction is a thin wrapper around native pebble
// batches and snapshots. Writes go into the batch, reads go to
// the snapshot taken when the transaction began.
type PebbleTransaction struct {
	db       *PebbleDB
	snapshot *pebble.Snapshot
	batch    *pebble.Batch
	isClosed bool
}

// Begin begins a new transaction.
func (db *PebbleDB) Begin() (database.Transaction, error) {
	transaction := &PebbleTransaction{
		db:       db,
		snapshot: db.db.NewSnapshot(),
		batch:    db.db.NewBatch(),
		isClosed: false,
	}
	return transaction, nil
}

// Commit commits whatever changes were made to the database
// within this transaction.
func (tx *PebbleTransaction) Commit() error {
	if tx.isClosed {
		return errors.New("cannot commit a closed transaction")
	}

	tx.isClosed = true
	commitErr := tx.batch.Commit(pebble.Sync)
	tx.release()
	return errors.WithStack(commitErr)
}

// Rollback rolls back whatever changes were made to the
// database within this transaction.
func (tx *PebbleTransaction) Rollback() error {
	if tx.isClosed {
		return errors.New("cannot rollback a closed transaction")
	}

	tx.isClosed = true
	tx.release()
	return nil
}

func (tx *PebbleTransaction) release() {
	err := tx.snapshot.Close()
	if err != nil {
		log.Warnf("Failed closing snapshot: %s", err)
	}
	err = tx.batch.Close()
	if err != nil {
		log.Warnf("Failed closing batch: %s", err)
	}
}

// RollbackUnlessClosed rolls back changes that were made to
// the database within the transaction, unless the transaction
// had already been closed using either Rollback or Commit.
func (tx *PebbleTransaction) RollbackUnlessClosed() error {
	if tx.isClosed {
		return nil
	}
	return tx.Rollback()
}

// Put sets the value for the given key. It overwrites
// any previous value for that key.
func (tx *PebbleTransaction) Put(key *database.Key, value []byte) error {
	if tx.isClosed {
		return errors.New("cannot put into a closed transaction")
	}

	return errors.WithStack(tx.batch.Set(key.Bytes(), value, nil))
}

// Get gets the value for the given key. It returns
// ErrNotFound if the given key does not exist.
func (tx *PebbleTransaction) Get(key *database.Key) ([]byte, error) {
	if tx.isClosed {
		return nil, errors.New("cannot get from a closed transaction")
	}

	return get(tx.snapshot, key)
}

// Has returns true if the database does contains the
// given key.
func (tx *PebbleTransaction) Has(key *database.Key) (bool, error) {
	if tx.isClosed {
		return false, errors.New("cannot has from a closed transaction")
	}

	return has(tx.snapshot, key)
}

// Delete deletes the value for the given key. Will not
// return an error if the key doesn't exist.
func (tx *PebbleTransaction) Delete(key *database.Key) error {
	if tx.isClosed {
		return errors.New("cannot delete from a closed transaction")
	}

	return errors.WithStack(tx.batch.Delete(key.Bytes(), nil))
}

// Cursor begins a new cursor over the given bucket.
func (tx *PebbleTransaction) Cursor(bucket *database.Bucket) (database.Cursor, error) {
	if tx.isClosed {
		return nil, errors.New("cannot open a cursor from a closed transaction")
	}

	iterator := tx.snapshot.NewIter(iterOptions(bucket))
	return newPebbleCursor(iterator, bucket), nil
}
