package externalapi

import "github.com/pkg/errors"

// TransactionEffects is the subset of a transaction's effects
// that describes which objects it removed from the live object set
type TransactionEffects struct {
	Deleted []ObjectRef
	Wrapped []ObjectRef

	// UnwrappedThenDeleted objects were unwrapped and deleted in the same
	// transaction. They were not in the live object set before the
	// transaction, so they have no input object.
	UnwrappedThenDeleted []ObjectRef
}

// CheckpointTransaction is an executed transaction together with the
// objects it read and the objects it wrote
type CheckpointTransaction struct {
	Digest        TransactionDigest
	Effects       *TransactionEffects
	InputObjects  []*Object
	OutputObjects []*Object
}

// ObjectChange is an object written by a transaction, paired with its state
// before the transaction. Previous is nil for created and unwrapped objects.
type ObjectChange struct {
	Object   *Object
	Previous *Object
}

// RemovedObjects returns the prior state of every object this
// transaction deleted or wrapped
func (transaction *CheckpointTransaction) RemovedObjects() ([]*Object, error) {
	if transaction.Effects == nil {
		return nil, nil
	}
	inputObjects := transaction.inputObjectsByID()

	removedRefs := make([]ObjectRef, 0, len(transaction.Effects.Deleted)+len(transaction.Effects.Wrapped))
	removedRefs = append(removedRefs, transaction.Effects.Deleted...)
	removedRefs = append(removedRefs, transaction.Effects.Wrapped...)

	removedObjects := make([]*Object, 0, len(removedRefs))
	for _, ref := range removedRefs {
		object, ok := inputObjects[ref.ID]
		if !ok {
			return nil, errors.Errorf("transaction %s removed object %s "+
				"which is missing from its input objects", transaction.Digest, ref.ID)
		}
		removedObjects = append(removedObjects, object)
	}
	return removedObjects, nil
}

// ChangedObjects returns every object this transaction wrote, paired
// with its state before the transaction, if any
func (transaction *CheckpointTransaction) ChangedObjects() []*ObjectChange {
	inputObjects := transaction.inputObjectsByID()

	changes := make([]*ObjectChange, len(transaction.OutputObjects))
	for i, object := range transaction.OutputObjects {
		changes[i] = &ObjectChange{
			Object:   object,
			Previous: inputObjects[object.ID],
		}
	}
	return changes
}

func (transaction *CheckpointTransaction) inputObjectsByID() map[ObjectID]*Object {
	inputObjects := make(map[ObjectID]*Object, len(transaction.InputObjects))
	for _, object := range transaction.InputObjects {
		inputObjects[object.ID] = object
	}
	return inputObjects
}
