package restindex

import (
	"time"

	"github.com/kaspanet/restindex/domain/model/externalapi"
	"github.com/kaspanet/restindex/infrastructure/logger"
	"github.com/pkg/errors"
)

// prune deletes the transactions of the given checkpoints from the
// transactions table in a single batch. Deleting a digest that is not
// in the table is a no-op.
//
// The owner table is bounded by the live object set and is not touched.
// Tables bound by checkpoint retention must be pruned here.
func (it *indexTables) prune(contentsToPrune []*externalapi.CheckpointContents) error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "indexTables.prune")
	defer onEnd()
	defer observeDuration(operationPrune, time.Now())

	dbTx, err := it.database.Begin()
	if err != nil {
		return err
	}
	defer dbTx.RollbackUnlessClosed()

	prunedCount := 0
	for i, contents := range contentsToPrune {
		if contents == nil {
			return errors.Errorf("checkpoint contents %d of %d to prune is nil", i, len(contentsToPrune))
		}
		for i := range contents.Transactions {
			err := dbTx.Delete(transactionKey(&contents.Transactions[i]))
			if err != nil {
				return err
			}
		}
		prunedCount += len(contents.Transactions)
	}

	err = dbTx.Commit()
	if err != nil {
		return err
	}
	transactionsPruned.Add(float64(prunedCount))

	log.Debugf("Pruned %d transactions of %d checkpoints", prunedCount, len(contentsToPrune))
	return nil
}
