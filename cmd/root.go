package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/btecbytes/bytesapi/internal/config"
	"github.com/btecbytes/bytesapi/internal/database"
	"github.com/btecbytes/bytesapi/internal/vault"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var rootCmdPersistentFlags struct {
	LogFile    string
	ConfigFile string
	LogLevel   string
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootCmdPersistentFlags.LogFile, "log-file", "", "File to write logs to")
	rootCmd.PersistentFlags().StringVarP(&rootCmdPersistentFlags.ConfigFile, "config", "c", "", "Path to config file (default: search for config.yml in current dir, ~/.bytesapi, /etc/bytesapi)")
	rootCmd.PersistentFlags().StringVar(&rootCmdPersistentFlags.LogLevel, "log-level", "", "Log level (debug, info, warn, error) - overrides config file setting")
}

var rootCmd = &cobra.Command{
	Use:   "bytesapi",
	Short: "bytesapi serves the BTEC Bytes catalogue API",
	Long:  `bytesapi is a REST backend for users, categories, items and wishlists of the BTEC Bytes shop.`,
	Example: `bytesapi serve --config config.yml
  bytesapi serve -c /path/to/config.yml --log-level debug
  bytesapi apikey issue`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		if rootCmdPersistentFlags.LogLevel != "" {
			setLogLevel(rootCmdPersistentFlags.LogLevel)
		}
		logToFile()
	},
}

// loadConfig reads the configuration and applies its log level unless --log-level was given.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if rootCmdPersistentFlags.LogLevel == "" {
		setLogLevel(cfg.LogLevel)
	}
	return cfg, nil
}

// openDatabase resolves the database URI and opens the database.
func openDatabase(ctx context.Context, cfg *config.Config) (*database.Client, error) {
	uri, err := vault.DatabaseURI(ctx, cfg, vault.NewGetter)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database uri: %w", err)
	}
	db, err := database.New(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, nil
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info", "":
		log.SetLevel(log.InfoLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.Warnf("unknown log level %s, defaulting to info", level)
		log.SetLevel(log.InfoLevel)
	}
}

func logToFile() {
	if rootCmdPersistentFlags.LogFile == "" {
		return
	}
	file, err := os.OpenFile(rootCmdPersistentFlags.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec
	if err != nil {
		log.Errorf("failed to open log file: %v", err)
		return
	}

	// Create a multi-writer that writes to both console and file
	multiWriter := io.MultiWriter(os.Stderr, file)
	log.SetOutput(multiWriter)
	log.Info("logging to both console and file", "file", rootCmdPersistentFlags.LogFile)
}

// Execute runs the root command with fang's styled help and errors.
func Execute(ctx context.Context) error {
	return fang.Execute(ctx, rootCmd)
}
