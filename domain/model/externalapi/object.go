package externalapi

// SequenceNumber is the version of an object
type SequenceNumber uint64

// ObjectType is the type tag of an object, e.g. "0x2::coin::Coin<0x2::sui::SUI>".
// Packages have no type tag.
type ObjectType string

// Object is the state of an object at a given version
type Object struct {
	ID      ObjectID
	Version SequenceNumber
	Type    ObjectType
	Owner   Owner
}

// IsPackage returns whether the object is a package
func (object *Object) IsPackage() bool {
	return object.Type == ""
}

// ObjectRef is a reference to an object at a given version
type ObjectRef struct {
	ID      ObjectID
	Version SequenceNumber
}

// LiveObject is an entry of the live object set. It is either a normal
// object or the marker left behind by an object that was wrapped
// into another object.
type LiveObject struct {
	Object  *Object
	Wrapped *ObjectRef
}

// ToNormal returns the object held by this entry, and false
// if the entry is a wrapped object marker.
func (liveObject *LiveObject) ToNormal() (*Object, bool) {
	if liveObject.Object == nil {
		return nil, false
	}
	return liveObject.Object, true
}

// LiveObjectIterator is an iterator over a snapshot of the live object set
type LiveObjectIterator interface {
	First() bool
	Next() bool
	Get() (*LiveObject, error)
	Close() error
}
