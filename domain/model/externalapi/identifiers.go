package externalapi

import (
	"encoding/hex"

	"github.com/pkg/errors"
)

// IdentifierSize is the size in bytes of addresses, object ids and digests.
const IdentifierSize = 32

// Address is the domain representation of an account address
type Address [IdentifierSize]byte

// ObjectID is the domain representation of an object id
type ObjectID [IdentifierSize]byte

// TransactionDigest is the domain representation of a transaction digest
type TransactionDigest [IdentifierSize]byte

// CheckpointContentsDigest is the digest that a checkpoint summary
// commits to its contents with
type CheckpointContentsDigest [IdentifierSize]byte

// NewAddressFromByteSlice parses an address out of a byte slice
func NewAddressFromByteSlice(addressBytes []byte) (*Address, error) {
	var address Address
	err := copyIdentifier(address[:], addressBytes)
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// NewAddressFromString parses an address out of its hexadecimal representation
func NewAddressFromString(addressString string) (*Address, error) {
	addressBytes, err := decodeIdentifierString(addressString)
	if err != nil {
		return nil, err
	}
	return NewAddressFromByteSlice(addressBytes)
}

// String returns the address as a hexadecimal string
func (address Address) String() string {
	return hex.EncodeToString(address[:])
}

// NewObjectIDFromByteSlice parses an object id out of a byte slice
func NewObjectIDFromByteSlice(objectIDBytes []byte) (*ObjectID, error) {
	var objectID ObjectID
	err := copyIdentifier(objectID[:], objectIDBytes)
	if err != nil {
		return nil, err
	}
	return &objectID, nil
}

// NewObjectIDFromString parses an object id out of its hexadecimal representation
func NewObjectIDFromString(objectIDString string) (*ObjectID, error) {
	objectIDBytes, err := decodeIdentifierString(objectIDString)
	if err != nil {
		return nil, err
	}
	return NewObjectIDFromByteSlice(objectIDBytes)
}

// String returns the object id as a hexadecimal string
func (objectID ObjectID) String() string {
	return hex.EncodeToString(objectID[:])
}

// NewTransactionDigestFromByteSlice parses a transaction digest out of a byte slice
func NewTransactionDigestFromByteSlice(digestBytes []byte) (*TransactionDigest, error) {
	var digest TransactionDigest
	err := copyIdentifier(digest[:], digestBytes)
	if err != nil {
		return nil, err
	}
	return &digest, nil
}

// NewTransactionDigestFromString parses a transaction digest out of its
// hexadecimal representation
func NewTransactionDigestFromString(digestString string) (*TransactionDigest, error) {
	digestBytes, err := decodeIdentifierString(digestString)
	if err != nil {
		return nil, err
	}
	return NewTransactionDigestFromByteSlice(digestBytes)
}

// String returns the transaction digest as a hexadecimal string
func (digest TransactionDigest) String() string {
	return hex.EncodeToString(digest[:])
}

// String returns the contents digest as a hexadecimal string
func (digest CheckpointContentsDigest) String() string {
	return hex.EncodeToString(digest[:])
}

func copyIdentifier(destination []byte, identifierBytes []byte) error {
	if len(identifierBytes) != IdentifierSize {
		return errors.Errorf("invalid identifier size. Want: %d, got: %d",
			IdentifierSize, len(identifierBytes))
	}
	copy(destination, identifierBytes)
	return nil
}

func decodeIdentifierString(identifierString string) ([]byte, error) {
	expectedLength := IdentifierSize * 2
	if len(identifierString) != expectedLength {
		return nil, errors.Errorf("identifier string length is %d, while it should be be %d",
			len(identifierString), expectedLength)
	}

	identifierBytes, err := hex.DecodeString(identifierString)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return identifierBytes, nil
}
