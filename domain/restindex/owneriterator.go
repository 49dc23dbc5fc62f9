package restindex

import (
	"github.com/kaspanet/restindex/domain/model/externalapi"
	"github.com/kaspanet/restindex/infrastructure/db/database"
	"github.com/pkg/errors"
)

// OwnerIterator iterates over the objects owned by a single address,
// in object id order
type OwnerIterator struct {
	cursor database.Cursor
	owner  externalapi.Address

	// isAtStart is set while the cursor rests on the first entry
	// and the next call to Next must not advance it
	isAtStart   bool
	isExhausted bool
	isClosed    bool
}

func newOwnerIterator(dbContext database.DataAccessor, owner *externalapi.Address,
	start *externalapi.ObjectID) (*OwnerIterator, error) {

	cursor, err := dbContext.Cursor(ownerAddressBucket(owner))
	if err != nil {
		return nil, err
	}
	iterator := &OwnerIterator{
		cursor: cursor,
		owner:  *owner,
	}
	if start == nil {
		return iterator, nil
	}

	err = cursor.Seek(ownerKey(owner, start))
	if err != nil {
		if database.IsNotFoundError(err) {
			iterator.isExhausted = true
			return iterator, nil
		}
		cursor.Close()
		return nil, err
	}
	iterator.isAtStart = true
	return iterator, nil
}

// Next moves the iterator to the next owned object. It returns false
// once there are no more objects.
func (oi *OwnerIterator) Next() bool {
	if oi.isClosed {
		panic("cannot call next on a closed owner iterator")
	}
	if oi.isExhausted {
		return false
	}
	if oi.isAtStart {
		oi.isAtStart = false
		return true
	}
	if !oi.cursor.Next() {
		oi.isExhausted = true
		return false
	}
	return true
}

// Get returns the owned object the iterator is at
func (oi *OwnerIterator) Get() (*OwnedObject, error) {
	if oi.isClosed {
		return nil, errors.New("cannot get from a closed owner iterator")
	}
	key, err := oi.cursor.Key()
	if err != nil {
		return nil, err
	}
	serializedEntry, err := oi.cursor.Value()
	if err != nil {
		return nil, err
	}
	return ownedObjectFromEntry(&oi.owner, key.Suffix(), serializedEntry)
}

// Close releases the iterator's resources
func (oi *OwnerIterator) Close() error {
	if oi.isClosed {
		return errors.New("cannot close an already closed owner iterator")
	}
	oi.isClosed = true
	return oi.cursor.Close()
}
