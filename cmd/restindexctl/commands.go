package main

import (
	"bytes"
	"encoding/json"

	"github.com/kaspanet/restindex/domain/model/externalapi"
	"github.com/kaspanet/restindex/domain/restindex"
	"github.com/kaspanet/restindex/infrastructure/db/database"
	"github.com/kaspanet/restindex/infrastructure/db/dbdriver"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const metricsNamespace = "rest_index"

type statusResponse struct {
	IsEmpty      bool   `json:"isEmpty"`
	Transactions uint64 `json:"transactions"`
	OwnedObjects uint64 `json:"ownedObjects"`
}

type transactionResponse struct {
	Digest     string  `json:"digest"`
	Found      bool    `json:"found"`
	Checkpoint *uint64 `json:"checkpoint,omitempty"`
}

type ownedObjectResponse struct {
	ObjectID string `json:"objectId"`
	Version  uint64 `json:"version"`
	Type     string `json:"type"`
}

type ownedResponse struct {
	Owner   string                 `json:"owner"`
	Objects []*ownedObjectResponse `json:"objects"`
	Next    *string                `json:"next,omitempty"`
}

// executeCommand runs the selected command and returns its output
func executeCommand(cfg *configFlags, db database.Database, restIndex *restindex.RESTIndex) (string, error) {
	switch cfg.commandName {
	case statusCommandName:
		return marshalResponse(status(restIndex))
	case transactionCommandName:
		return marshalResponse(transaction(restIndex, cfg.transaction))
	case ownedCommandName:
		return marshalResponse(owned(restIndex, cfg.owned))
	case metricsCommandName:
		return metrics(db, restIndex)
	default:
		return "", errors.Errorf("unknown command %s", cfg.commandName)
	}
}

func marshalResponse(response interface{}, err error) (string, error) {
	if err != nil {
		return "", err
	}
	responseBytes, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return "", errors.WithStack(err)
	}
	return string(responseBytes), nil
}

func status(restIndex *restindex.RESTIndex) (*statusResponse, error) {
	isEmpty, err := restIndex.IsEmpty()
	if err != nil {
		return nil, err
	}
	stats, err := restIndex.Stats()
	if err != nil {
		return nil, err
	}
	return &statusResponse{
		IsEmpty:      isEmpty,
		Transactions: stats.Transactions,
		OwnedObjects: stats.OwnedObjects,
	}, nil
}

func transaction(restIndex *restindex.RESTIndex, cfg *transactionConfig) (*transactionResponse, error) {
	digest, err := externalapi.NewTransactionDigestFromString(cfg.Args.Digest)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid transaction digest %s", cfg.Args.Digest)
	}
	checkpoint, found, err := restIndex.TransactionCheckpoint(digest)
	if err != nil {
		return nil, err
	}
	response := &transactionResponse{
		Digest: digest.String(),
		Found:  found,
	}
	if found {
		response.Checkpoint = &checkpoint
	}
	return response, nil
}

func owned(restIndex *restindex.RESTIndex, cfg *ownedConfig) (*ownedResponse, error) {
	owner, err := externalapi.NewAddressFromString(cfg.Args.Address)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid address %s", cfg.Args.Address)
	}
	var start *externalapi.ObjectID
	if cfg.Start != "" {
		start, err = externalapi.NewObjectIDFromString(cfg.Start)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid start object id %s", cfg.Start)
		}
	}

	ownedObjects, next, err := restIndex.OwnedObjects(owner, start, cfg.Limit)
	if err != nil {
		return nil, err
	}
	response := &ownedResponse{
		Owner:   owner.String(),
		Objects: make([]*ownedObjectResponse, len(ownedObjects)),
	}
	for i, ownedObject := range ownedObjects {
		response.Objects[i] = &ownedObjectResponse{
			ObjectID: ownedObject.ID.String(),
			Version:  uint64(ownedObject.Version),
			Type:     string(ownedObject.Type),
		}
	}
	if next != nil {
		nextString := next.String()
		response.Next = &nextString
	}
	return response, nil
}

func metrics(db database.Database, restIndex *restindex.RESTIndex) (string, error) {
	registry := prometheus.NewRegistry()
	err := registry.Register(restindex.NewStatsCollector(restIndex))
	if err != nil {
		return "", errors.WithStack(err)
	}
	if collector, ok := dbdriver.Collector(db, metricsNamespace); ok {
		err := registry.Register(collector)
		if err != nil {
			return "", errors.WithStack(err)
		}
	}

	metricFamilies, err := registry.Gather()
	if err != nil {
		return "", errors.WithStack(err)
	}
	var buffer bytes.Buffer
	for _, metricFamily := range metricFamilies {
		_, err := expfmt.MetricFamilyToText(&buffer, metricFamily)
		if err != nil {
			return "", errors.WithStack(err)
		}
	}
	return buffer.String(), nil
}
