package externalapi

import (
	"golang.org/x/crypto/blake2b"
)

// CheckpointSummary is the certified header of a checkpoint
type CheckpointSummary struct {
	SequenceNumber uint64
	ContentDigest  CheckpointContentsDigest
}

// CheckpointContents is the ordered list of transactions
// included in a checkpoint
type CheckpointContents struct {
	Transactions []TransactionDigest
}

// NewCheckpointContents returns contents holding the given digests, in order
func NewCheckpointContents(transactions ...TransactionDigest) *CheckpointContents {
	return &CheckpointContents{Transactions: transactions}
}

// Digest returns the blake2b-256 digest of the contents' ordered
// transaction digests
func (contents *CheckpointContents) Digest() CheckpointContentsDigest {
	hasher, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only fails for oversized keys
		panic(err)
	}
	for _, transaction := range contents.Transactions {
		hasher.Write(transaction[:])
	}
	var digest CheckpointContentsDigest
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// CheckpointData is everything the execution pipeline hands over about a
// checkpoint once it has been fully executed
type CheckpointData struct {
	Summary      *CheckpointSummary
	Contents     *CheckpointContents
	Transactions []*CheckpointTransaction
}
