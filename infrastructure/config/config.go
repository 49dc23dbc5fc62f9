// Package config loads the configuration of tools operating on a REST
// index database.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/btcsuite/btcutil"
	"github.com/jessevdk/go-flags"
	"github.com/kaspanet/restindex/domain/restindex"
	"github.com/kaspanet/restindex/infrastructure/db/dbdriver"
	"github.com/kaspanet/restindex/infrastructure/logger"
	"github.com/pkg/errors"
)

const (
	defaultAppName        = "restindex"
	defaultDataDirname    = "data"
	defaultLogDirname     = "logs"
	defaultDatabaseName   = "rest-index"
	defaultLogLevel       = "info"
	defaultCacheSizeMiB   = 64
)

var (
	// DefaultAppDir is the default home directory for all data and logs
	DefaultAppDir = btcutil.AppDataDir(defaultAppName, false)
)

// Flags defines the configuration options of a REST index database.
type Flags struct {
	AppDir             string `short:"b" long:"appdir" description:"Directory to store data and logs"`
	DataDir            string `long:"datadir" description:"Directory of the index database (default: <appdir>/data)"`
	LogDir             string `long:"logdir" description:"Directory to log output (default: <appdir>/logs)"`
	DbType             string `long:"dbtype" description:"Database backend of the index {leveldb, pebble}"`
	CacheSizeMiB       int    `long:"cache-size-mib" description:"Size of the database block cache in MiB"`
	BootstrapBatchSize int    `long:"bootstrap-batch-size" description:"Number of live objects written per batch while bootstrapping"`
	DebugLevel         string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`
}

// Config is the resolved configuration
type Config struct {
	*Flags
}

// DefaultFlags returns the flags with every option set to its default
func DefaultFlags() *Flags {
	return &Flags{
		AppDir:             DefaultAppDir,
		DbType:             dbdriver.DefaultDriver,
		CacheSizeMiB:       defaultCacheSizeMiB,
		BootstrapBatchSize: restindex.DefaultBootstrapBatchSize,
		DebugLevel:         defaultLogLevel,
	}
}

// LoadConfig parses the given command line arguments over the defaults
// and resolves them. It returns the arguments that are not options.
func LoadConfig(args []string) (*Config, []string, error) {
	cfgFlags := DefaultFlags()
	parser := flags.NewParser(cfgFlags, flags.HelpFlag|flags.PassDoubleDash)
	remainingArgs, err := parser.ParseArgs(args)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := cfgFlags.Resolve()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return nil, nil, err
	}
	return cfg, remainingArgs, nil
}

// Resolve validates the flags and derives the directories that were not
// set explicitly.
func (cfgFlags *Flags) Resolve() (*Config, error) {
	if cfgFlags.AppDir == "" {
		cfgFlags.AppDir = DefaultAppDir
	}
	cfgFlags.AppDir = cleanAndExpandPath(cfgFlags.AppDir)

	if cfgFlags.DataDir == "" {
		cfgFlags.DataDir = filepath.Join(cfgFlags.AppDir, defaultDataDirname)
	}
	cfgFlags.DataDir = cleanAndExpandPath(cfgFlags.DataDir)

	if cfgFlags.LogDir == "" {
		cfgFlags.LogDir = filepath.Join(cfgFlags.AppDir, defaultLogDirname)
	}
	cfgFlags.LogDir = cleanAndExpandPath(cfgFlags.LogDir)

	if !dbdriver.IsSupported(cfgFlags.DbType) {
		return nil, errors.Errorf("the specified database type [%s] is invalid -- "+
			"supported types: %s", cfgFlags.DbType, strings.Join(dbdriver.SupportedDrivers(), ", "))
	}
	if cfgFlags.CacheSizeMiB < 0 {
		return nil, errors.Errorf("the cache-size-mib option may not be less than 0 -- parsed [%d]",
			cfgFlags.CacheSizeMiB)
	}
	if cfgFlags.BootstrapBatchSize <= 0 {
		return nil, errors.Errorf("the bootstrap-batch-size option must be greater than 0 -- parsed [%d]",
			cfgFlags.BootstrapBatchSize)
	}

	return &Config{Flags: cfgFlags}, nil
}

// DatabasePath returns the path of the index database
func (cfg *Config) DatabasePath() string {
	return filepath.Join(cfg.DataDir, defaultDatabaseName)
}

// RESTIndexConfig returns the configuration of the index itself
func (cfg *Config) RESTIndexConfig() *restindex.Config {
	return &restindex.Config{
		BootstrapBatchSize: cfg.BootstrapBatchSize,
	}
}

// LogFile returns the path of the log file of the given application
func (cfg *Config) LogFile(appName string) string {
	return filepath.Join(cfg.LogDir, appName+".log")
}

// ErrLogFile returns the path of the error log file of the given application
func (cfg *Config) ErrLogFile(appName string) string {
	return filepath.Join(cfg.LogDir, appName+"_err.log")
}

// InitLog starts logging to the log files of the given application,
// mirroring warnings and above to stderr, and applies the configured
// debug level.
func (cfg *Config) InitLog(appName string) error {
	if cfg.DebugLevel == "show" {
		fmt.Println("Supported subsystems", logger.SupportedSubsystems())
		os.Exit(0)
	}

	err := logger.ParseAndSetDebugLevels(cfg.DebugLevel)
	if err != nil {
		return err
	}
	return logger.InitLogWithConsole(cfg.LogFile(appName), cfg.ErrLogFile(appName), os.Stderr, logger.LevelWarn)
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		homeDir := filepath.Dir(DefaultAppDir)
		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but the variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}
