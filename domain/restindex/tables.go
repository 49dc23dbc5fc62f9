package restindex

import (
	"github.com/kaspanet/restindex/domain/model/externalapi"
	"github.com/kaspanet/restindex/infrastructure/db/database"
)

var (
	indexBucket        = database.MakeBucket([]byte("rest-index"))
	transactionsBucket = indexBucket.Bucket([]byte("transactions"))
	ownerBucket        = indexBucket.Bucket([]byte("owner"))

	// bootstrappingKey is set while the tables are being rebuilt. It's
	// removed in the same batch that commits the transactions backfill.
	bootstrappingKey = indexBucket.Key([]byte("bootstrapping"))
)

// clearBatchSize is the number of deletions per batch when a table is cleared
const clearBatchSize = 10000

// tableBound states what keeps a table from growing without bound
type tableBound int

const (
	// boundedByLiveObjectSet tables only hold entries for live objects
	boundedByLiveObjectSet tableBound = iota

	// prunedWithCheckpoints tables drop entries in prune, in lockstep
	// with the primary store's checkpoint pruning
	prunedWithCheckpoints
)

// table is a single named ordered table of the index
type table struct {
	name   string
	bucket *database.Bucket
	bound  tableBound
}

func newTable(name string, bucket *database.Bucket, bound tableBound) *table {
	return &table{name: name, bucket: bucket, bound: bound}
}

// indexTables is the set of tables maintained by the REST index.
//
// NOTE: Before adding a new table make sure it is either:
//   - bounded in size by the live object set, or
//   - prunable, with corresponding logic in prune.
//
// Declare the bound in newTable and list the table in all().
type indexTables struct {
	database database.Database

	// transactions maps a transaction digest to the sequence number of the
	// checkpoint that included it. Only holds transactions that were not
	// yet pruned from the primary store.
	transactions *table

	// owner maps (owner address, object id) to the object's version and type,
	// for every live object owned by a single address. Entries of one address
	// are contiguous and ordered by object id.
	owner *table
}

func openTables(db database.Database) *indexTables {
	return &indexTables{
		database:     db,
		transactions: newTable("transactions", transactionsBucket, prunedWithCheckpoints),
		owner:        newTable("owner", ownerBucket, boundedByLiveObjectSet),
	}
}

func (it *indexTables) all() []*table {
	return []*table{it.transactions, it.owner}
}

// isEmpty returns true while a bootstrap is unfinished. Otherwise it only
// looks at the transactions table, since it is written last during bootstrap.
func (it *indexTables) isEmpty() (bool, error) {
	isBootstrapping, err := it.hadStartedBootstrap()
	if err != nil {
		return false, err
	}
	if isBootstrapping {
		return true, nil
	}
	return it.transactions.isEmpty(it.database)
}

func (it *indexTables) startBootstrap() error {
	return it.database.Put(bootstrappingKey, []byte{0})
}

func (it *indexTables) hadStartedBootstrap() (bool, error) {
	return it.database.Has(bootstrappingKey)
}

func (it *indexTables) finishBootstrap(dbTx database.Transaction) error {
	return dbTx.Delete(bootstrappingKey)
}

// clear deletes every entry of every table
func (it *indexTables) clear() error {
	for _, table := range it.all() {
		err := table.clear(it.database)
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *table) isEmpty(dbContext database.DataAccessor) (bool, error) {
	cursor, err := dbContext.Cursor(t.bucket)
	if err != nil {
		return false, err
	}
	defer cursor.Close()

	return !cursor.First(), nil
}

func (t *table) count(dbContext database.DataAccessor) (uint64, error) {
	cursor, err := dbContext.Cursor(t.bucket)
	if err != nil {
		return 0, err
	}
	defer cursor.Close()

	count := uint64(0)
	for cursor.Next() {
		count++
	}
	return count, nil
}

func (t *table) clear(db database.Database) error {
	cursor, err := db.Cursor(t.bucket)
	if err != nil {
		return err
	}
	defer cursor.Close()

	dbTx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		dbTx.RollbackUnlessClosed()
	}()

	deleted := 0
	staged := 0
	for cursor.Next() {
		key, err := cursor.Key()
		if err != nil {
			return err
		}
		err = dbTx.Delete(key)
		if err != nil {
			return err
		}
		deleted++
		staged++

		if staged == clearBatchSize {
			err = dbTx.Commit()
			if err != nil {
				return err
			}
			dbTx, err = db.Begin()
			if err != nil {
				return err
			}
			staged = 0
		}
	}

	err = dbTx.Commit()
	if err != nil {
		return err
	}
	log.Debugf("Cleared %d entries from the %s table", deleted, t.name)
	return nil
}

func transactionKey(digest *externalapi.TransactionDigest) *database.Key {
	return transactionsBucket.Key(digest[:])
}

// ownerAddressBucket holds the entries of a single owner address. Addresses
// are fixed width, so the bucket is a prefix of exactly that address' keys.
func ownerAddressBucket(owner *externalapi.Address) *database.Bucket {
	return ownerBucket.Bucket(owner[:])
}

func ownerKey(owner *externalapi.Address, objectID *externalapi.ObjectID) *database.Key {
	return ownerAddressBucket(owner).Key(objectID[:])
}
