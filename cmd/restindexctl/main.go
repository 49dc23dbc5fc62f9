package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/kaspanet/restindex/domain/restindex"
	"github.com/kaspanet/restindex/infrastructure/db/dbdriver"
	"github.com/kaspanet/restindex/infrastructure/logger"
	"github.com/kaspanet/restindex/util/panics"
)

const appName = "restindexctl"

func main() {
	defer panics.HandlePanic(log, nil)

	cfg, resolvedConfig, err := parseConfig()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			fmt.Println(err)
			os.Exit(0)
		}
		printErrorAndExit(fmt.Sprintf("error parsing command-line arguments: %s", err))
	}

	err = resolvedConfig.InitLog(appName)
	if err != nil {
		printErrorAndExit(fmt.Sprintf("error initializing the logger: %s", err))
	}

	log.Debugf("Opening the %s database at %s", resolvedConfig.DbType, resolvedConfig.DatabasePath())
	db, err := dbdriver.Open(resolvedConfig.DbType, resolvedConfig.DatabasePath(), resolvedConfig.CacheSizeMiB)
	if err != nil {
		panics.Exit(log, fmt.Sprintf("error opening the database: %s", err))
	}

	output, err := executeCommand(cfg, db, restindex.NewWithoutInit(db))
	if err != nil {
		db.Close()
		panics.Exit(log, fmt.Sprintf("error executing %s: %s", cfg.commandName, err))
	}
	fmt.Println(output)

	err = db.Close()
	if err != nil {
		panics.Exit(log, fmt.Sprintf("error closing the database: %s", err))
	}
	logger.BackendLog.Close()
}

func printErrorAndExit(message string) {
	fmt.Fprintf(os.Stderr, "%s\n", message)
	os.Exit(1)
}
