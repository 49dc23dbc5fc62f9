package main

import (
	"github.com/jessevdk/go-flags"
	"github.com/kaspanet/restindex/infrastructure/config"
	"github.com/pkg/errors"
)

const (
	statusCommandName      = "status"
	transactionCommandName = "transaction"
	ownedCommandName       = "owned"
	metricsCommandName     = "metrics"
)

const defaultOwnedLimit = 50

type statusConfig struct{}

type transactionConfig struct {
	Args struct {
		Digest string `positional-arg-name:"digest" description:"Hex encoded transaction digest"`
	} `positional-args:"yes" required:"yes"`
}

type ownedConfig struct {
	Start string `long:"start" description:"Hex encoded object id to start listing from (inclusive)"`
	Limit int    `long:"limit" description:"Maximum number of objects to list"`
	Args  struct {
		Address string `positional-arg-name:"address" description:"Hex encoded owner address"`
	} `positional-args:"yes" required:"yes"`
}

type metricsConfig struct{}

type configFlags struct {
	config.Flags

	// Set by parseConfig to the selected command's options
	commandName string
	transaction *transactionConfig
	owned       *ownedConfig
}

func parseConfig() (*configFlags, *config.Config, error) {
	cfg := &configFlags{Flags: *config.DefaultFlags()}
	parser := flags.NewParser(cfg, flags.HelpFlag)
	parser.Usage = "restindexctl [OPTIONS] <command> [COMMAND OPTIONS]"

	transactionCfg := &transactionConfig{}
	ownedCfg := &ownedConfig{Limit: defaultOwnedLimit}
	commands := []struct {
		name        string
		description string
		data        interface{}
	}{
		{statusCommandName, "Show whether the index is initialized and the size of its tables", &statusConfig{}},
		{transactionCommandName, "Show the checkpoint that included a transaction", transactionCfg},
		{ownedCommandName, "List the objects owned by an address", ownedCfg},
		{metricsCommandName, "Print the index and storage engine metrics in the prometheus text format", &metricsConfig{}},
	}
	for _, command := range commands {
		_, err := parser.AddCommand(command.name, command.description, command.description, command.data)
		if err != nil {
			return nil, nil, err
		}
	}

	_, err := parser.Parse()
	if err != nil {
		return nil, nil, err
	}
	if parser.Active == nil {
		return nil, nil, errors.New("a command must be specified")
	}

	resolvedConfig, err := cfg.Flags.Resolve()
	if err != nil {
		return nil, nil, err
	}

	cfg.commandName = parser.Active.Name
	cfg.transaction = transactionCfg
	cfg.owned = ownedCfg
	if cfg.owned.Limit <= 0 {
		return nil, nil, errors.Errorf("the limit option must be greater than 0 -- parsed [%d]", cfg.owned.Limit)
	}
	return cfg, resolvedConfig, nil
}
