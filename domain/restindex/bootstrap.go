package restindex

import (
	"time"

	"github.com/kaspanet/restindex/domain/model"
	"github.com/kaspanet/restindex/infrastructure/db/database"
	"github.com/kaspanet/restindex/infrastructure/logger"
	"github.com/pkg/errors"
)

// bootstrap rebuilds every table from the primary store: the transactions
// table from the retained checkpoint history and the owner table from the
// live object set.
//
// The bootstrapping marker is set before anything is cleared and removed
// together with the transactions backfill, which is committed last. A
// bootstrap that fails at any point leaves the index reported as empty, so
// it's retried from scratch on the next start.
func (it *indexTables) bootstrap(objectStore model.ObjectStore,
	checkpointStore model.CheckpointStore, batchSize int) error {

	onEnd := logger.LogAndMeasureExecutionTime(log, "indexTables.bootstrap")
	defer onEnd()
	defer observeDuration(operationBootstrap, time.Now())

	log.Infof("Initializing REST indexes")

	err := it.startBootstrap()
	if err != nil {
		return err
	}

	err = it.clear()
	if err != nil {
		return err
	}

	transactionsTx, err := it.database.Begin()
	if err != nil {
		return err
	}
	defer transactionsTx.RollbackUnlessClosed()

	transactionCount, err := it.stageTransactionBackfill(transactionsTx, checkpointStore)
	if err != nil {
		return err
	}

	objectCount, err := it.backfillOwners(objectStore, batchSize)
	if err != nil {
		return err
	}

	err = it.finishBootstrap(transactionsTx)
	if err != nil {
		return err
	}
	err = transactionsTx.Commit()
	if err != nil {
		return err
	}
	transactionsIndexed.Add(float64(transactionCount))

	log.Infof("Finished initializing REST indexes with %d transactions and %d owned objects",
		transactionCount, objectCount)
	return nil
}

// stageTransactionBackfill stages an entry for every transaction of every
// checkpoint in [highest pruned, highest executed]. Nothing is staged if no
// checkpoint was executed yet.
func (it *indexTables) stageTransactionBackfill(dbTx database.Transaction,
	checkpointStore model.CheckpointStore) (int, error) {

	highestExecuted, found, err := checkpointStore.HighestExecutedCheckpointSequenceNumber()
	if err != nil {
		return 0, err
	}
	if !found {
		log.Infof("No checkpoint was executed yet, skipping transaction backfill")
		return 0, nil
	}
	lowestAvailable, err := checkpointStore.HighestPrunedCheckpointSequenceNumber()
	if err != nil {
		return 0, err
	}

	log.Debugf("Backfilling transactions of checkpoints %d to %d", lowestAvailable, highestExecuted)

	transactionCount := 0
	for seq := lowestAvailable; seq <= highestExecuted; seq++ {
		checkpoint, found, err := checkpointStore.CheckpointBySequenceNumber(seq)
		if err != nil {
			return 0, err
		}
		if !found {
			return 0, errors.Wrapf(ErrMissingData, "missing checkpoint %d", seq)
		}
		contents, found, err := checkpointStore.CheckpointContents(&checkpoint.ContentDigest)
		if err != nil {
			return 0, err
		}
		if !found {
			return 0, errors.Wrapf(ErrMissingData, "missing contents %s of checkpoint %d",
				checkpoint.ContentDigest, seq)
		}

		entry := serializeTransactionEntry(checkpoint.SequenceNumber)
		for i := range contents.Transactions {
			err := dbTx.Put(transactionKey(&contents.Transactions[i]), entry)
			if err != nil {
				return 0, err
			}
		}
		transactionCount += len(contents.Transactions)

		// Guards against overflow when highestExecuted is the largest uint64
		if seq == highestExecuted {
			break
		}
	}
	return transactionCount, nil
}

// backfillOwners writes an owner entry for every normal live object owned
// by a single address, batchSize objects per database batch.
func (it *indexTables) backfillOwners(objectStore model.ObjectStore, batchSize int) (int, error) {
	iterator, err := objectStore.LiveObjectSetIterator()
	if err != nil {
		return 0, err
	}
	defer iterator.Close()

	dbTx, err := it.database.Begin()
	if err != nil {
		return 0, err
	}
	defer func() {
		dbTx.RollbackUnlessClosed()
	}()

	objectCount := 0
	staged := 0
	for ok := iterator.First(); ok; ok = iterator.Next() {
		liveObject, err := iterator.Get()
		if err != nil {
			return 0, err
		}
		object, isNormal := liveObject.ToNormal()
		if !isNormal {
			continue
		}
		owner, isAddressOwned := object.Owner.AddressOwner()
		if !isAddressOwned {
			continue
		}

		entry, err := newOwnerEntry(object)
		if err != nil {
			return 0, err
		}
		err = dbTx.Put(ownerKey(&owner, &object.ID), serializeOwnerEntry(entry))
		if err != nil {
			return 0, err
		}
		objectCount++
		staged++

		if staged == batchSize {
			err = dbTx.Commit()
			if err != nil {
				return 0, err
			}
			bootstrapObjects.Add(float64(staged))
			log.Debugf("Backfilled %d owned objects", objectCount)

			dbTx, err = it.database.Begin()
			if err != nil {
				return 0, err
			}
			staged = 0
		}
	}

	err = dbTx.Commit()
	if err != nil {
		return 0, err
	}
	bootstrapObjects.Add(float64(staged))
	return objectCount, nil
}
