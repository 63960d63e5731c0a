// Package cli implements the chat-memory CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/chat-memory/internal/config"
	"github.com/rcliao/chat-memory/internal/logging"
	"github.com/rcliao/chat-memory/internal/store"
)

var (
	configPath string
	dbPath     string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "chat-memory",
	Short: "Mine personal-fact memories from your chat conversations",
	Long: "chat-memory scrapes your own conversation history, extracts personal-fact\n" +
		"statements from your messages with pattern heuristics, and keeps them in a\n" +
		"local SQLite database for viewing, searching, and pruning.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if dbPath != "" {
			cfg.Store.DBPath = dbPath
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		logger, err = logging.New(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync()
		}
	},
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: ~/.chat-memory/config.yaml)")
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $CHAT_MEMORY_STORE_DB_PATH or ~/.chat-memory/memory.db)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// openStore opens the SQLite backend and loads the in-memory index.
func openStore(cmd *cobra.Command) (*store.Store, *store.SQLite, error) {
	backend, err := store.NewSQLite(cfg.Store.DBPath)
	if err != nil {
		return nil, nil, err
	}
	s := store.New(backend, logger)
	// A failed load is logged by the store; the session continues with
	// whatever is in memory.
	_ = s.Load(cmd.Context())
	return s, backend, nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
