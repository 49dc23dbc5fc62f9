package main

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"strings"
	"testing"

	"github.com/kaspanet/restindex/domain/model/externalapi"
	"github.com/kaspanet/restindex/domain/restindex"
	"github.com/kaspanet/restindex/infrastructure/db/database"
	"github.com/kaspanet/restindex/infrastructure/db/dbdriver"
)

// fakeStore serves a fixed live object set and a single executed checkpoint
type fakeStore struct {
	liveObjects []*externalapi.LiveObject
	summary     *externalapi.CheckpointSummary
	contents    *externalapi.CheckpointContents
}

func (fs *fakeStore) LiveObjectSetIterator() (externalapi.LiveObjectIterator, error) {
	return &fakeIterator{liveObjects: fs.liveObjects}, nil
}

func (fs *fakeStore) HighestExecutedCheckpointSequenceNumber() (uint64, bool, error) {
	return fs.summary.SequenceNumber, true, nil
}

func (fs *fakeStore) HighestPrunedCheckpointSequenceNumber() (uint64, error) {
	return fs.summary.SequenceNumber, nil
}

func (fs *fakeStore) CheckpointBySequenceNumber(seq uint64) (*externalapi.CheckpointSummary, bool, error) {
	return fs.summary, seq == fs.summary.SequenceNumber, nil
}

func (fs *fakeStore) CheckpointContents(digest *externalapi.CheckpointContentsDigest) (
	*externalapi.CheckpointContents, bool, error) {

	return fs.contents, *digest == fs.summary.ContentDigest, nil
}

type fakeIterator struct {
	liveObjects []*externalapi.LiveObject
	index       int
}

func (fi *fakeIterator) First() bool {
	fi.index = 0
	return fi.index < len(fi.liveObjects)
}

func (fi *fakeIterator) Next() bool {
	fi.index++
	return fi.index < len(fi.liveObjects)
}

func (fi *fakeIterator) Get() (*externalapi.LiveObject, error) {
	return fi.liveObjects[fi.index], nil
}

func (fi *fakeIterator) Close() error {
	return nil
}

var (
	testOwner   = externalapi.Address{0xad, 1}
	testDigest  = externalapi.TransactionDigest{0x7e, 1}
	testObjects = []externalapi.ObjectID{{1}, {2}, {3}}
)

func prepareIndexForTest(t *testing.T, testName string) (database.Database, *restindex.RESTIndex, func()) {
	path, err := ioutil.TempDir("", testName)
	if err != nil {
		t.Fatalf("%s: TempDir unexpectedly failed: %s", testName, err)
	}
	db, err := dbdriver.Open(dbdriver.DefaultDriver, path, 8)
	if err != nil {
		t.Fatalf("%s: Open unexpectedly failed: %s", testName, err)
	}

	contents := externalapi.NewCheckpointContents(testDigest)
	store := &fakeStore{
		summary: &externalapi.CheckpointSummary{
			SequenceNumber: 7,
			ContentDigest:  contents.Digest(),
		},
		contents: contents,
	}
	for i, id := range testObjects {
		store.liveObjects = append(store.liveObjects, &externalapi.LiveObject{Object: &externalapi.Object{
			ID:      id,
			Version: externalapi.SequenceNumber(i + 1),
			Type:    "0x2::coin::Coin",
			Owner:   externalapi.NewAddressOwner(testOwner),
		}})
	}
	restIndex, err := restindex.New(db, store, store, nil)
	if err != nil {
		t.Fatalf("%s: New unexpectedly failed: %s", testName, err)
	}

	teardown := func() {
		err := db.Close()
		if err != nil {
			t.Fatalf("%s: Close unexpectedly failed: %s", testName, err)
		}
		os.RemoveAll(path)
	}
	return db, restIndex, teardown
}

func executeCommandForTest(t *testing.T, cfg *configFlags, db database.Database,
	restIndex *restindex.RESTIndex, response interface{}, testName string) {

	output, err := executeCommand(cfg, db, restIndex)
	if err != nil {
		t.Fatalf("%s: executeCommand unexpectedly failed: %s", testName, err)
	}
	err = json.Unmarshal([]byte(output), response)
	if err != nil {
		t.Fatalf("%s: output is not valid JSON: %s\n%s", testName, err, output)
	}
}

func TestStatusCommand(t *testing.T) {
	db, restIndex, teardown := prepareIndexForTest(t, "TestStatusCommand")
	defer teardown()

	response := &statusResponse{}
	executeCommandForTest(t, &configFlags{commandName: statusCommandName}, db, restIndex, response,
		"TestStatusCommand")
	expected := statusResponse{IsEmpty: false, Transactions: 1, OwnedObjects: 3}
	if *response != expected {
		t.Fatalf("TestStatusCommand: unexpected response. Want: %+v, got: %+v", expected, *response)
	}
}

func TestTransactionCommand(t *testing.T) {
	db, restIndex, teardown := prepareIndexForTest(t, "TestTransactionCommand")
	defer teardown()

	cfg := &configFlags{commandName: transactionCommandName, transaction: &transactionConfig{}}
	cfg.transaction.Args.Digest = testDigest.String()
	response := &transactionResponse{}
	executeCommandForTest(t, cfg, db, restIndex, response, "TestTransactionCommand")
	if !response.Found || response.Checkpoint == nil || *response.Checkpoint != 7 {
		t.Fatalf("TestTransactionCommand: unexpected response %+v", response)
	}

	cfg.transaction.Args.Digest = externalapi.TransactionDigest{0xff}.String()
	response = &transactionResponse{}
	executeCommandForTest(t, cfg, db, restIndex, response, "TestTransactionCommand")
	if response.Found || response.Checkpoint != nil {
		t.Fatalf("TestTransactionCommand: unexpected response for an unknown digest %+v", response)
	}

	cfg.transaction.Args.Digest = "not hex"
	_, err := executeCommand(cfg, db, restIndex)
	if err == nil {
		t.Fatalf("TestTransactionCommand: executeCommand with a malformed digest unexpectedly succeeded")
	}
}

func TestOwnedCommand(t *testing.T) {
	db, restIndex, teardown := prepareIndexForTest(t, "TestOwnedCommand")
	defer teardown()

	cfg := &configFlags{commandName: ownedCommandName, owned: &ownedConfig{Limit: 2}}
	cfg.owned.Args.Address = testOwner.String()
	response := &ownedResponse{}
	executeCommandForTest(t, cfg, db, restIndex, response, "TestOwnedCommand")
	if len(response.Objects) != 2 || response.Next == nil || *response.Next != testObjects[2].String() {
		t.Fatalf("TestOwnedCommand: unexpected first page %+v", response)
	}
	if response.Objects[1].ObjectID != testObjects[1].String() || response.Objects[1].Version != 2 {
		t.Fatalf("TestOwnedCommand: unexpected object %+v", response.Objects[1])
	}

	cfg.owned.Start = *response.Next
	response = &ownedResponse{}
	executeCommandForTest(t, cfg, db, restIndex, response, "TestOwnedCommand")
	if len(response.Objects) != 1 || response.Next != nil {
		t.Fatalf("TestOwnedCommand: unexpected last page %+v", response)
	}
}

func TestMetricsCommand(t *testing.T) {
	db, restIndex, teardown := prepareIndexForTest(t, "TestMetricsCommand")
	defer teardown()

	output, err := executeCommand(&configFlags{commandName: metricsCommandName}, db, restIndex)
	if err != nil {
		t.Fatalf("TestMetricsCommand: executeCommand unexpectedly failed: %s", err)
	}
	if !strings.Contains(output, `rest_index_table_entries{table="owner"} 3`) {
		t.Fatalf("TestMetricsCommand: owner table size is missing from the output:\n%s", output)
	}
}
