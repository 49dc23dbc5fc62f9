package database

// Transaction defines the interface of a generic index database
// transaction.
//
// Writes are collected into a single batch that is applied atomically on
// Commit, in the order they were made, so a later write to a key overrides
// an earlier one. Reads go to a snapshot taken at Begin and don't observe
// the transaction's own uncommitted writes.
type Transaction interface {
	DataAccessor

	// Rollback rolls back whatever changes were made to the
	// database within this transaction.
	Rollback() error

	// Commit commits whatever changes were made to the database
	// within this transaction.
	Commit() error

	// RollbackUnlessClosed rolls back changes that were made to
	// the database within the transaction, unless the transaction
	// had already been closed using either Rollback or Commit.
	RollbackUnlessClosed() error
}
