package restindex

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"os"
	"testing"

	"github.com/kaspanet/restindex/domain/model/externalapi"
	"github.com/kaspanet/restindex/infrastructure/db/database"
	"github.com/kaspanet/restindex/infrastructure/db/dbdriver"
)

func prepareDatabaseForTest(t *testing.T, driver string, testName string) (db database.Database, teardownFunc func()) {
	path, err := ioutil.TempDir("", testName)
	if err != nil {
		t.Fatalf("%s: TempDir unexpectedly "+
			"failed: %s", testName, err)
	}
	db, err = dbdriver.Open(driver, path, 8)
	if err != nil {
		t.Fatalf("%s: Open unexpectedly "+
			"failed: %s", testName, err)
	}
	teardownFunc = func() {
		err = db.Close()
		if err != nil {
			t.Fatalf("%s: Close unexpectedly "+
				"failed: %s", testName, err)
		}
		os.RemoveAll(path)
	}
	return db, teardownFunc
}

// testForAllDatabaseTypes runs the given testFunc against a fresh database
// of every supported driver
func testForAllDatabaseTypes(t *testing.T, testName string,
	testFunc func(t *testing.T, db database.Database, testName string)) {

	for _, driver := range dbdriver.SupportedDrivers() {
		func() {
			db, teardownFunc := prepareDatabaseForTest(t, driver, testName)
			defer teardownFunc()

			testName := fmt.Sprintf("%s: %s", driver, testName)
			testFunc(t, db, testName)
		}()
	}
}

type ownerIndexKey struct {
	owner    externalapi.Address
	objectID externalapi.ObjectID
}

type ownerIndexContents map[ownerIndexKey]OwnerEntry

type transactionIndexContents map[externalapi.TransactionDigest]uint64

// readOwnerIndex reads the whole owner table, checking that it's ordered
// by address and then by object id
func readOwnerIndex(t *testing.T, db database.Database, testName string) ownerIndexContents {
	cursor, err := db.Cursor(ownerBucket)
	if err != nil {
		t.Fatalf("%s: Cursor unexpectedly failed: %s", testName, err)
	}
	defer cursor.Close()

	contents := make(ownerIndexContents)
	var previousSuffix []byte
	for cursor.Next() {
		key, err := cursor.Key()
		if err != nil {
			t.Fatalf("%s: Key unexpectedly failed: %s", testName, err)
		}
		// The suffix is address || '/' || object id
		suffix := key.Suffix()
		if len(suffix) != 2*externalapi.IdentifierSize+1 {
			t.Fatalf("%s: owner key %s has a malformed suffix", testName, key)
		}
		if previousSuffix != nil && bytes.Compare(previousSuffix, suffix) >= 0 {
			t.Fatalf("%s: owner keys are out of order", testName)
		}
		previousSuffix = append([]byte(nil), suffix...)

		var indexKey ownerIndexKey
		copy(indexKey.owner[:], suffix[:externalapi.IdentifierSize])
		copy(indexKey.objectID[:], suffix[externalapi.IdentifierSize+1:])

		value, err := cursor.Value()
		if err != nil {
			t.Fatalf("%s: Value unexpectedly failed: %s", testName, err)
		}
		entry, err := deserializeOwnerEntry(value)
		if err != nil {
			t.Fatalf("%s: deserializeOwnerEntry unexpectedly failed: %s", testName, err)
		}
		contents[indexKey] = *entry
	}
	return contents
}

func readTransactionIndex(t *testing.T, db database.Database, testName string) transactionIndexContents {
	cursor, err := db.Cursor(transactionsBucket)
	if err != nil {
		t.Fatalf("%s: Cursor unexpectedly failed: %s", testName, err)
	}
	defer cursor.Close()

	contents := make(transactionIndexContents)
	for cursor.Next() {
		key, err := cursor.Key()
		if err != nil {
			t.Fatalf("%s: Key unexpectedly failed: %s", testName, err)
		}
		digest, err := externalapi.NewTransactionDigestFromByteSlice(key.Suffix())
		if err != nil {
			t.Fatalf("%s: transaction key %s is malformed: %s", testName, key, err)
		}
		value, err := cursor.Value()
		if err != nil {
			t.Fatalf("%s: Value unexpectedly failed: %s", testName, err)
		}
		seq, err := deserializeTransactionEntry(value)
		if err != nil {
			t.Fatalf("%s: deserializeTransactionEntry unexpectedly failed: %s", testName, err)
		}
		contents[*digest] = seq
	}
	return contents
}
