package restindex

import (
	"encoding/binary"
	"sort"

	"github.com/kaspanet/restindex/domain/model/externalapi"
	"github.com/pkg/errors"
)

// testLedger is an in-memory primary store. It executes transactions built
// with newTransaction, groups them into checkpoints, and serves the live
// object set and checkpoint history the index is derived from.
type testLedger struct {
	liveObjects    map[externalapi.ObjectID]*externalapi.Object
	wrappedObjects map[externalapi.ObjectID]*externalapi.ObjectRef

	summaries   map[uint64]*externalapi.CheckpointSummary
	contents    map[externalapi.CheckpointContentsDigest]*externalapi.CheckpointContents
	checkpoints map[uint64]*externalapi.CheckpointData

	nextSequenceNumber uint64
	highestPruned      uint64

	pendingTransactions []*externalapi.CheckpointTransaction
	objectCounter       uint64
	transactionCounter  uint64
	version             externalapi.SequenceNumber

	liveObjectSetErr error
}

func newTestLedger() *testLedger {
	return &testLedger{
		liveObjects:    make(map[externalapi.ObjectID]*externalapi.Object),
		wrappedObjects: make(map[externalapi.ObjectID]*externalapi.ObjectRef),
		summaries:      make(map[uint64]*externalapi.CheckpointSummary),
		contents:       make(map[externalapi.CheckpointContentsDigest]*externalapi.CheckpointContents),
		checkpoints:    make(map[uint64]*externalapi.CheckpointData),
	}
}

func testAddress(n uint64) externalapi.Address {
	var address externalapi.Address
	address[0] = 0xad
	binary.BigEndian.PutUint64(address[externalapi.IdentifierSize-8:], n)
	return address
}

func testObjectID(n uint64) externalapi.ObjectID {
	var objectID externalapi.ObjectID
	binary.BigEndian.PutUint64(objectID[externalapi.IdentifierSize-8:], n)
	return objectID
}

// testTransaction records the effects of a transaction while
// applying them to the ledger's live object set
type testTransaction struct {
	ledger      *testLedger
	transaction *externalapi.CheckpointTransaction
	version     externalapi.SequenceNumber
}

func (tl *testLedger) newTransaction() *testTransaction {
	tl.transactionCounter++
	tl.version++
	var digest externalapi.TransactionDigest
	digest[0] = 0x7e
	binary.BigEndian.PutUint64(digest[externalapi.IdentifierSize-8:], tl.transactionCounter)

	return &testTransaction{
		ledger: tl,
		transaction: &externalapi.CheckpointTransaction{
			Digest:  digest,
			Effects: &externalapi.TransactionEffects{},
		},
		version: tl.version,
	}
}

func (tt *testTransaction) input(id externalapi.ObjectID) *externalapi.Object {
	object, ok := tt.ledger.liveObjects[id]
	if !ok {
		panic(errors.Errorf("object %s is not live", id))
	}
	inputCopy := *object
	tt.transaction.InputObjects = append(tt.transaction.InputObjects, &inputCopy)
	return &inputCopy
}

func (tt *testTransaction) output(object *externalapi.Object) {
	outputCopy := *object
	tt.transaction.OutputObjects = append(tt.transaction.OutputObjects, &outputCopy)
	liveCopy := outputCopy
	tt.ledger.liveObjects[object.ID] = &liveCopy
}

func (tt *testTransaction) create(owner externalapi.Owner, objectType externalapi.ObjectType) externalapi.ObjectID {
	tt.ledger.objectCounter++
	id := testObjectID(tt.ledger.objectCounter)
	tt.output(&externalapi.Object{
		ID:      id,
		Version: tt.version,
		Type:    objectType,
		Owner:   owner,
	})
	return id
}

func (tt *testTransaction) createPackage() externalapi.ObjectID {
	return tt.create(externalapi.NewImmutableOwner(), "")
}

func (tt *testTransaction) changeOwner(id externalapi.ObjectID, owner externalapi.Owner) {
	object := tt.input(id)
	tt.output(&externalapi.Object{
		ID:      id,
		Version: tt.version,
		Type:    object.Type,
		Owner:   owner,
	})
}

func (tt *testTransaction) transfer(id externalapi.ObjectID, to externalapi.Address) {
	tt.changeOwner(id, externalapi.NewAddressOwner(to))
}

func (tt *testTransaction) mutate(id externalapi.ObjectID) {
	object := tt.input(id)
	tt.output(&externalapi.Object{
		ID:      id,
		Version: tt.version,
		Type:    object.Type,
		Owner:   object.Owner,
	})
}

func (tt *testTransaction) delete(id externalapi.ObjectID) {
	tt.input(id)
	tt.transaction.Effects.Deleted = append(tt.transaction.Effects.Deleted,
		externalapi.ObjectRef{ID: id, Version: tt.version})
	delete(tt.ledger.liveObjects, id)
}

func (tt *testTransaction) wrap(id externalapi.ObjectID) {
	tt.input(id)
	tt.transaction.Effects.Wrapped = append(tt.transaction.Effects.Wrapped,
		externalapi.ObjectRef{ID: id, Version: tt.version})
	delete(tt.ledger.liveObjects, id)
	tt.ledger.wrappedObjects[id] = &externalapi.ObjectRef{ID: id, Version: tt.version}
}

func (tt *testTransaction) unwrap(id externalapi.ObjectID, owner externalapi.Owner, objectType externalapi.ObjectType) {
	if _, ok := tt.ledger.wrappedObjects[id]; !ok {
		panic(errors.Errorf("object %s is not wrapped", id))
	}
	delete(tt.ledger.wrappedObjects, id)
	tt.output(&externalapi.Object{
		ID:      id,
		Version: tt.version,
		Type:    objectType,
		Owner:   owner,
	})
}

func (tt *testTransaction) commit() *externalapi.CheckpointTransaction {
	tt.ledger.pendingTransactions = append(tt.ledger.pendingTransactions, tt.transaction)
	return tt.transaction
}

// commitCheckpoint seals every committed transaction into the next
// checkpoint and marks it executed
func (tl *testLedger) commitCheckpoint() *externalapi.CheckpointData {
	digests := make([]externalapi.TransactionDigest, len(tl.pendingTransactions))
	for i, transaction := range tl.pendingTransactions {
		digests[i] = transaction.Digest
	}
	contents := externalapi.NewCheckpointContents(digests...)
	summary := &externalapi.CheckpointSummary{
		SequenceNumber: tl.nextSequenceNumber,
		ContentDigest:  contents.Digest(),
	}
	checkpoint := &externalapi.CheckpointData{
		Summary:      summary,
		Contents:     contents,
		Transactions: tl.pendingTransactions,
	}

	tl.summaries[summary.SequenceNumber] = summary
	tl.contents[summary.ContentDigest] = contents
	tl.checkpoints[summary.SequenceNumber] = checkpoint
	tl.nextSequenceNumber++
	tl.pendingTransactions = nil
	return checkpoint
}

// prune drops the history of every checkpoint below lowestRetained and
// returns the contents that were dropped
func (tl *testLedger) prune(lowestRetained uint64) []*externalapi.CheckpointContents {
	var pruned []*externalapi.CheckpointContents
	for seq := tl.highestPruned; seq < lowestRetained; seq++ {
		summary, ok := tl.summaries[seq]
		if !ok {
			continue
		}
		pruned = append(pruned, tl.contents[summary.ContentDigest])
		delete(tl.summaries, seq)
		// Checkpoints with equal contents, such as empty ones, share an entry
		if !tl.isContentsRetained(&summary.ContentDigest) {
			delete(tl.contents, summary.ContentDigest)
		}
	}
	tl.highestPruned = lowestRetained
	return pruned
}

func (tl *testLedger) isContentsRetained(digest *externalapi.CheckpointContentsDigest) bool {
	for _, summary := range tl.summaries {
		if summary.ContentDigest == *digest {
			return true
		}
	}
	return false
}

func (tl *testLedger) expectedOwnerIndex() ownerIndexContents {
	expected := make(ownerIndexContents)
	for id, object := range tl.liveObjects {
		owner, ok := object.Owner.AddressOwner()
		if !ok {
			continue
		}
		expected[ownerIndexKey{owner: owner, objectID: id}] = OwnerEntry{
			Version: object.Version,
			Type:    object.Type,
		}
	}
	return expected
}

func (tl *testLedger) expectedTransactionIndex() transactionIndexContents {
	expected := make(transactionIndexContents)
	for seq, summary := range tl.summaries {
		for _, digest := range tl.contents[summary.ContentDigest].Transactions {
			expected[digest] = seq
		}
	}
	return expected
}

func (tl *testLedger) LiveObjectSetIterator() (externalapi.LiveObjectIterator, error) {
	liveObjects := make([]*externalapi.LiveObject, 0, len(tl.liveObjects)+len(tl.wrappedObjects))
	for _, object := range tl.liveObjects {
		objectCopy := *object
		liveObjects = append(liveObjects, &externalapi.LiveObject{Object: &objectCopy})
	}
	for _, ref := range tl.wrappedObjects {
		refCopy := *ref
		liveObjects = append(liveObjects, &externalapi.LiveObject{Wrapped: &refCopy})
	}
	sort.Slice(liveObjects, func(i, j int) bool {
		return liveObjectID(liveObjects[i]).String() < liveObjectID(liveObjects[j]).String()
	})
	return &testLiveObjectIterator{liveObjects: liveObjects, index: -1, err: tl.liveObjectSetErr}, nil
}

func liveObjectID(liveObject *externalapi.LiveObject) externalapi.ObjectID {
	if object, ok := liveObject.ToNormal(); ok {
		return object.ID
	}
	return liveObject.Wrapped.ID
}

func (tl *testLedger) HighestExecutedCheckpointSequenceNumber() (uint64, bool, error) {
	if tl.nextSequenceNumber == 0 {
		return 0, false, nil
	}
	return tl.nextSequenceNumber - 1, true, nil
}

func (tl *testLedger) HighestPrunedCheckpointSequenceNumber() (uint64, error) {
	return tl.highestPruned, nil
}

func (tl *testLedger) CheckpointBySequenceNumber(seq uint64) (*externalapi.CheckpointSummary, bool, error) {
	summary, ok := tl.summaries[seq]
	return summary, ok, nil
}

func (tl *testLedger) CheckpointContents(digest *externalapi.CheckpointContentsDigest) (
	*externalapi.CheckpointContents, bool, error) {

	contents, ok := tl.contents[*digest]
	return contents, ok, nil
}

type testLiveObjectIterator struct {
	liveObjects []*externalapi.LiveObject
	index       int
	err         error
}

func (it *testLiveObjectIterator) First() bool {
	it.index = 0
	return it.index < len(it.liveObjects)
}

func (it *testLiveObjectIterator) Next() bool {
	it.index++
	return it.index < len(it.liveObjects)
}

func (it *testLiveObjectIterator) Get() (*externalapi.LiveObject, error) {
	if it.err != nil {
		return nil, it.err
	}
	return it.liveObjects[it.index], nil
}

func (it *testLiveObjectIterator) Close() error {
	return nil
}
