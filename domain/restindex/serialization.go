package restindex

import (
	"encoding/binary"

	"github.com/kaspanet/restindex/domain/model/externalapi"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

const transactionEntrySize = 8

func serializeTransactionEntry(checkpointSequenceNumber uint64) []byte {
	serializedEntry := make([]byte, transactionEntrySize)
	binary.BigEndian.PutUint64(serializedEntry, checkpointSequenceNumber)
	return serializedEntry
}

func deserializeTransactionEntry(serializedEntry []byte) (uint64, error) {
	if len(serializedEntry) != transactionEntrySize {
		return 0, errors.Errorf("invalid transaction entry size. Want: %d, got: %d",
			transactionEntrySize, len(serializedEntry))
	}
	return binary.BigEndian.Uint64(serializedEntry), nil
}

// Owner entry field numbers. Never reuse a removed field number.
const (
	ownerEntryVersionField protowire.Number = 1
	ownerEntryTypeField    protowire.Number = 2
)

func newOwnerEntry(object *externalapi.Object) (*OwnerEntry, error) {
	if object.IsPackage() {
		return nil, errors.Wrapf(ErrPackageOwned, "object %s at version %d",
			object.ID, object.Version)
	}
	return &OwnerEntry{
		Version: object.Version,
		Type:    object.Type,
	}, nil
}

func serializeOwnerEntry(entry *OwnerEntry) []byte {
	var serializedEntry []byte
	serializedEntry = protowire.AppendTag(serializedEntry, ownerEntryVersionField, protowire.VarintType)
	serializedEntry = protowire.AppendVarint(serializedEntry, uint64(entry.Version))
	serializedEntry = protowire.AppendTag(serializedEntry, ownerEntryTypeField, protowire.BytesType)
	serializedEntry = protowire.AppendString(serializedEntry, string(entry.Type))
	return serializedEntry
}

func deserializeOwnerEntry(serializedEntry []byte) (*OwnerEntry, error) {
	entry := &OwnerEntry{}
	for len(serializedEntry) > 0 {
		number, wireType, n := protowire.ConsumeTag(serializedEntry)
		if n < 0 {
			return nil, errors.Wrap(protowire.ParseError(n), "failed parsing owner entry tag")
		}
		serializedEntry = serializedEntry[n:]

		switch {
		case number == ownerEntryVersionField && wireType == protowire.VarintType:
			var version uint64
			version, n = protowire.ConsumeVarint(serializedEntry)
			entry.Version = externalapi.SequenceNumber(version)
		case number == ownerEntryTypeField && wireType == protowire.BytesType:
			var objectType string
			objectType, n = protowire.ConsumeString(serializedEntry)
			entry.Type = externalapi.ObjectType(objectType)
		default:
			n = protowire.ConsumeFieldValue(number, wireType, serializedEntry)
		}
		if n < 0 {
			return nil, errors.Wrapf(protowire.ParseError(n), "failed parsing owner entry field %d", number)
		}
		serializedEntry = serializedEntry[n:]
	}
	return entry, nil
}

func ownedObjectFromEntry(owner *externalapi.Address, objectIDBytes []byte,
	serializedEntry []byte) (*OwnedObject, error) {

	objectID, err := externalapi.NewObjectIDFromByteSlice(objectIDBytes)
	if err != nil {
		return nil, err
	}
	entry, err := deserializeOwnerEntry(serializedEntry)
	if err != nil {
		return nil, err
	}
	return &OwnedObject{
		Owner:   *owner,
		ID:      *objectID,
		Version: entry.Version,
		Type:    entry.Type,
	}, nil
}
