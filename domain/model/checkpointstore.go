package model

import "github.com/kaspanet/restindex/domain/model/externalapi"

// CheckpointStore is the store of certified checkpoints and their contents
type CheckpointStore interface {
	// HighestExecutedCheckpointSequenceNumber returns the sequence number of
	// the highest fully executed checkpoint, and false if none was executed yet
	HighestExecutedCheckpointSequenceNumber() (seq uint64, found bool, err error)

	// HighestPrunedCheckpointSequenceNumber returns the pruning watermark of
	// the primary store. It is zero when nothing was pruned yet
	HighestPrunedCheckpointSequenceNumber() (uint64, error)

	CheckpointBySequenceNumber(seq uint64) (*externalapi.CheckpointSummary, bool, error)
	CheckpointContents(digest *externalapi.CheckpointContentsDigest) (*externalapi.CheckpointContents, bool, error)
}
