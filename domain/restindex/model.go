package restindex

import (
	"github.com/kaspanet/restindex/domain/model/externalapi"
)

// DefaultBootstrapBatchSize is the number of live objects written to the
// owner index per database batch during bootstrap
const DefaultBootstrapBatchSize = 1000

// Config holds the tunables of a RESTIndex
type Config struct {
	BootstrapBatchSize int
}

// DefaultConfig returns the default RESTIndex configuration
func DefaultConfig() *Config {
	return &Config{
		BootstrapBatchSize: DefaultBootstrapBatchSize,
	}
}

// OwnerEntry is the value stored in the owner index for an object.
// The object id is part of the key and isn't repeated here.
type OwnerEntry struct {
	Version externalapi.SequenceNumber
	Type    externalapi.ObjectType
}

// OwnedObject is an entry of the owner index, as returned to queries
type OwnedObject struct {
	Owner   externalapi.Address
	ID      externalapi.ObjectID
	Version externalapi.SequenceNumber
	Type    externalapi.ObjectType
}

// Stats holds the number of entries in each index table
type Stats struct {
	Transactions uint64
	OwnedObjects uint64
}
