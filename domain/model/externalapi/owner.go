package externalapi

import "fmt"

// OwnerKind is the kind of ownership an object is held under
type OwnerKind uint8

// These are the possible owner kinds
const (
	// OwnerKindAddress is an object owned by a single account address
	OwnerKindAddress OwnerKind = iota

	// OwnerKindObject is an object owned by another object
	OwnerKindObject

	// OwnerKindShared is an object that can be mutated by any transaction
	// under consensus
	OwnerKindShared

	// OwnerKindImmutable is an object owned by no one, which can only be read
	OwnerKindImmutable
)

var ownerKindStrings = map[OwnerKind]string{
	OwnerKindAddress:   "address",
	OwnerKindObject:    "object",
	OwnerKindShared:    "shared",
	OwnerKindImmutable: "immutable",
}

func (kind OwnerKind) String() string {
	if kindString, ok := ownerKindStrings[kind]; ok {
		return kindString
	}
	return fmt.Sprintf("unknown(%d)", uint8(kind))
}

// Owner describes who owns an object.
// Address holds the owning address for address-owned objects and the
// parent object id for object-owned objects. InitialSharedVersion is
// only meaningful for shared objects.
type Owner struct {
	Kind                 OwnerKind
	Address              Address
	InitialSharedVersion SequenceNumber
}

// NewAddressOwner returns an owner for an object held by the given address
func NewAddressOwner(address Address) Owner {
	return Owner{Kind: OwnerKindAddress, Address: address}
}

// NewObjectOwner returns an owner for an object held by the given parent object
func NewObjectOwner(parent ObjectID) Owner {
	return Owner{Kind: OwnerKindObject, Address: Address(parent)}
}

// NewSharedOwner returns an owner for a shared object
func NewSharedOwner(initialSharedVersion SequenceNumber) Owner {
	return Owner{Kind: OwnerKindShared, InitialSharedVersion: initialSharedVersion}
}

// NewImmutableOwner returns an owner for an immutable object
func NewImmutableOwner() Owner {
	return Owner{Kind: OwnerKindImmutable}
}

// AddressOwner returns the owning address and true if the owner is a single
// address, and false otherwise.
func (owner *Owner) AddressOwner() (Address, bool) {
	if owner.Kind != OwnerKindAddress {
		return Address{}, false
	}
	return owner.Address, true
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Equal accordingly.
var _ = Owner{
	Kind:                 OwnerKindAddress,
	Address:              Address{},
	InitialSharedVersion: 0,
}

// Equal returns whether owner equals to other
func (owner *Owner) Equal(other *Owner) bool {
	if owner == nil || other == nil {
		return owner == other
	}
	if owner.Kind != other.Kind {
		return false
	}
	switch owner.Kind {
	case OwnerKindAddress, OwnerKindObject:
		return owner.Address == other.Address
	case OwnerKindShared:
		return owner.InitialSharedVersion == other.InitialSharedVersion
	default:
		return true
	}
}

func (owner Owner) String() string {
	switch owner.Kind {
	case OwnerKindAddress, OwnerKindObject:
		return fmt.Sprintf("%s(%s)", owner.Kind, owner.Address)
	case OwnerKindShared:
		return fmt.Sprintf("%s(%d)", owner.Kind, owner.InitialSharedVersion)
	default:
		return owner.Kind.String()
	}
}
