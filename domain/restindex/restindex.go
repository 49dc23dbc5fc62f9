package restindex

import (
	"sync"

	"github.com/kaspanet/restindex/domain/model"
	"github.com/kaspanet/restindex/domain/model/externalapi"
	"github.com/kaspanet/restindex/infrastructure/db/database"
	"github.com/kaspanet/restindex/infrastructure/logger"
	"github.com/pkg/errors"
)

// RESTIndex maintains the secondary indexes served by the REST API: the
// objects owned by each address, and the checkpoint that included each
// transaction. It is derived entirely from the primary store and can be
// deleted and rebuilt at any time.
//
// IndexCheckpoint must be called by a single caller, once per executed
// checkpoint, in sequence order. Prune may be called concurrently with it.
type RESTIndex struct {
	tables *indexTables
	config *Config

	// pruneLock serializes Prune calls, and Reset against them
	pruneLock sync.Mutex
}

// New opens a REST index over the given database, and bootstraps it
// from the primary store if it's empty. A nil config means DefaultConfig.
//
// NOTE: No checkpoint may be indexed while this is called.
func New(db database.Database, objectStore model.ObjectStore,
	checkpointStore model.CheckpointStore, config *Config) (*RESTIndex, error) {

	restIndex, err := newRESTIndex(db, config)
	if err != nil {
		return nil, err
	}

	isEmpty, err := restIndex.IsEmpty()
	if err != nil {
		return nil, err
	}
	if isEmpty {
		err := restIndex.tables.bootstrap(objectStore, checkpointStore, restIndex.config.BootstrapBatchSize)
		if err != nil {
			return nil, errors.Wrap(err, "failed initializing the REST index")
		}
	}
	return restIndex, nil
}

// NewWithoutInit opens a REST index over the given database without
// bootstrapping it. Used for read only inspection.
func NewWithoutInit(db database.Database) *RESTIndex {
	restIndex, err := newRESTIndex(db, nil)
	if err != nil {
		// The default config is always valid
		panic(err)
	}
	return restIndex
}

func newRESTIndex(db database.Database, config *Config) (*RESTIndex, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BootstrapBatchSize <= 0 {
		return nil, errors.Errorf("bootstrap batch size must be positive, got %d",
			config.BootstrapBatchSize)
	}
	return &RESTIndex{
		tables: openTables(db),
		config: config,
	}, nil
}

// IsEmpty returns whether the index was never successfully bootstrapped,
// either because a bootstrap is unfinished or because the transactions
// table is empty. The owner table may legitimately be empty.
func (ri *RESTIndex) IsEmpty() (bool, error) {
	return ri.tables.isEmpty()
}

// Reset deletes the whole index and rebuilds it from the primary store.
// Both tables are always reset together.
//
// NOTE: No checkpoint may be indexed while this is called.
func (ri *RESTIndex) Reset(objectStore model.ObjectStore, checkpointStore model.CheckpointStore) error {
	ri.pruneLock.Lock()
	defer ri.pruneLock.Unlock()

	log.Infof("Resetting the REST index")
	return ri.tables.bootstrap(objectStore, checkpointStore, ri.config.BootstrapBatchSize)
}

// IndexCheckpoint applies an executed checkpoint to the index. Applying the
// same checkpoint again yields the same index contents.
func (ri *RESTIndex) IndexCheckpoint(checkpoint *externalapi.CheckpointData) error {
	return ri.tables.indexCheckpoint(checkpoint)
}

// IsCheckpointIndexed returns whether the given checkpoint was applied
// to the index. A host restarting after a crash uses it to decide
// whether to apply the checkpoint again.
func (ri *RESTIndex) IsCheckpointIndexed(checkpoint *externalapi.CheckpointData) (bool, error) {
	return ri.tables.isCheckpointIndexed(checkpoint)
}

// Prune removes the transactions of the given checkpoints from the
// index, following the primary store's own pruning.
func (ri *RESTIndex) Prune(contentsToPrune []*externalapi.CheckpointContents) error {
	ri.pruneLock.Lock()
	defer ri.pruneLock.Unlock()

	return ri.tables.prune(contentsToPrune)
}

// TransactionCheckpoint returns the sequence number of the checkpoint that
// included the given transaction
func (ri *RESTIndex) TransactionCheckpoint(digest *externalapi.TransactionDigest) (
	checkpointSequenceNumber uint64, found bool, err error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, "RESTIndex.TransactionCheckpoint")
	defer onEnd()

	return ri.tables.transactionCheckpoint(digest)
}

// OwnerIterator returns an iterator over the objects owned by the given
// address, starting at the object id start (inclusive). A nil start
// iterates from the first object.
// The caller is responsible for closing the iterator.
func (ri *RESTIndex) OwnerIterator(owner *externalapi.Address, start *externalapi.ObjectID) (*OwnerIterator, error) {
	return newOwnerIterator(ri.tables.database, owner, start)
}

// maxPreallocatedOwnedObjects caps the page capacity allocated by
// OwnedObjects before any object is read
const maxPreallocatedOwnedObjects = 1000

// OwnedObjects returns up to limit objects owned by the given address,
// starting at the object id start (inclusive, nil for the first object).
// It also returns the object id to start the next page from, or nil if
// there are no more objects.
func (ri *RESTIndex) OwnedObjects(owner *externalapi.Address, start *externalapi.ObjectID, limit int) (
	ownedObjects []*OwnedObject, next *externalapi.ObjectID, err error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, "RESTIndex.OwnedObjects")
	defer onEnd()

	if limit <= 0 {
		return nil, nil, errors.Errorf("limit must be positive, got %d", limit)
	}

	iterator, err := ri.OwnerIterator(owner, start)
	if err != nil {
		return nil, nil, err
	}
	defer iterator.Close()

	preallocated := limit
	if preallocated > maxPreallocatedOwnedObjects {
		preallocated = maxPreallocatedOwnedObjects
	}
	ownedObjects = make([]*OwnedObject, 0, preallocated)
	for iterator.Next() {
		ownedObject, err := iterator.Get()
		if err != nil {
			return nil, nil, err
		}
		if len(ownedObjects) == limit {
			next = &ownedObject.ID
			break
		}
		ownedObjects = append(ownedObjects, ownedObject)
	}
	return ownedObjects, next, nil
}

// Stats returns the number of entries in each table of the index
func (ri *RESTIndex) Stats() (*Stats, error) {
	transactions, err := ri.tables.transactions.count(ri.tables.database)
	if err != nil {
		return nil, err
	}
	ownedObjects, err := ri.tables.owner.count(ri.tables.database)
	if err != nil {
		return nil, err
	}
	return &Stats{
		Transactions: transactions,
		OwnedObjects: ownedObjects,
	}, nil
}
