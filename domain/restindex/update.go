package restindex

import (
	"time"

	"github.com/kaspanet/restindex/domain/model/externalapi"
	"github.com/kaspanet/restindex/infrastructure/db/database"
	"github.com/kaspanet/restindex/infrastructure/logger"
	"github.com/pkg/errors"
)

// ownerIndexChanges counts the owner table writes staged for a checkpoint
type ownerIndexChanges struct {
	upserted int
	deleted  int
}

// indexCheckpoint applies a single executed checkpoint to both tables in
// one database batch. Writes are staged in transaction order, so when
// several transactions of the checkpoint touch the same key the last one
// wins.
func (it *indexTables) indexCheckpoint(checkpoint *externalapi.CheckpointData) error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "indexTables.indexCheckpoint")
	defer onEnd()
	defer observeDuration(operationIndexCheckpoint, time.Now())

	if checkpoint.Summary == nil || checkpoint.Contents == nil {
		return errors.New("checkpoint data is missing its summary or contents")
	}
	seq := checkpoint.Summary.SequenceNumber
	log.Debugf("Indexing checkpoint %d", seq)

	dbTx, err := it.database.Begin()
	if err != nil {
		return err
	}
	defer dbTx.RollbackUnlessClosed()

	err = it.stageTransactions(dbTx, checkpoint)
	if err != nil {
		return err
	}

	changes := &ownerIndexChanges{}
	for _, transaction := range checkpoint.Transactions {
		err := it.stageOwnerChanges(dbTx, transaction, changes)
		if err != nil {
			return errors.Wrapf(err, "failed indexing transaction %s of checkpoint %d",
				transaction.Digest, seq)
		}
	}

	err = dbTx.Commit()
	if err != nil {
		return err
	}

	checkpointsIndexed.Inc()
	transactionsIndexed.Add(float64(len(checkpoint.Contents.Transactions)))
	ownerEntryOperations.WithLabelValues(ownerEntryOpUpsert).Add(float64(changes.upserted))
	ownerEntryOperations.WithLabelValues(ownerEntryOpDelete).Add(float64(changes.deleted))

	log.Debugf("Finished indexing checkpoint %d: %d transactions, %d owner upserts, %d owner deletions",
		seq, len(checkpoint.Contents.Transactions), changes.upserted, changes.deleted)
	return nil
}

func (it *indexTables) stageTransactions(dbTx database.Transaction, checkpoint *externalapi.CheckpointData) error {
	entry := serializeTransactionEntry(checkpoint.Summary.SequenceNumber)
	for i := range checkpoint.Contents.Transactions {
		err := dbTx.Put(transactionKey(&checkpoint.Contents.Transactions[i]), entry)
		if err != nil {
			return err
		}
	}
	return nil
}

func (it *indexTables) stageOwnerChanges(dbTx database.Transaction,
	transaction *externalapi.CheckpointTransaction, changes *ownerIndexChanges) error {

	removedObjects, err := transaction.RemovedObjects()
	if err != nil {
		return newMissingDataError(err)
	}
	for _, removedObject := range removedObjects {
		owner, isAddressOwned := removedObject.Owner.AddressOwner()
		if !isAddressOwned {
			continue
		}
		err := dbTx.Delete(ownerKey(&owner, &removedObject.ID))
		if err != nil {
			return err
		}
		changes.deleted++
	}

	for _, change := range transaction.ChangedObjects() {
		object := change.Object
		previous := change.Previous
		if previous != nil && !previous.Owner.Equal(&object.Owner) {
			previousOwner, wasAddressOwned := previous.Owner.AddressOwner()
			if wasAddressOwned {
				err := dbTx.Delete(ownerKey(&previousOwner, &previous.ID))
				if err != nil {
					return err
				}
				changes.deleted++
			}
		}

		owner, isAddressOwned := object.Owner.AddressOwner()
		if !isAddressOwned {
			continue
		}
		entry, err := newOwnerEntry(object)
		if err != nil {
			return err
		}
		err = dbTx.Put(ownerKey(&owner, &object.ID), serializeOwnerEntry(entry))
		if err != nil {
			return err
		}
		changes.upserted++
	}
	return nil
}

// isCheckpointIndexed returns whether every transaction of the given
// checkpoint maps to its sequence number
func (it *indexTables) isCheckpointIndexed(checkpoint *externalapi.CheckpointData) (bool, error) {
	if checkpoint.Summary == nil || checkpoint.Contents == nil {
		return false, errors.New("checkpoint data is missing its summary or contents")
	}
	for i := range checkpoint.Contents.Transactions {
		seq, found, err := it.transactionCheckpoint(&checkpoint.Contents.Transactions[i])
		if err != nil {
			return false, err
		}
		if !found || seq != checkpoint.Summary.SequenceNumber {
			return false, nil
		}
	}
	return true, nil
}

func (it *indexTables) transactionCheckpoint(digest *externalapi.TransactionDigest) (uint64, bool, error) {
	serializedEntry, err := it.database.Get(transactionKey(digest))
	if err != nil {
		if database.IsNotFoundError(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	seq, err := deserializeTransactionEntry(serializedEntry)
	if err != nil {
		return 0, false, err
	}
	return seq, true, nil
}
