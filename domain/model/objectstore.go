package model

import "github.com/kaspanet/restindex/domain/model/externalapi"

// ObjectStore is the primary object store the index is derived from
type ObjectStore interface {
	// LiveObjectSetIterator returns an iterator over a consistent snapshot
	// of the current live object set
	LiveObjectSetIterator() (externalapi.LiveObjectIterator, error)
}
