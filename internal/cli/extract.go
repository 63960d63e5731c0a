package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/chat-memory/internal/fetch"
	"github.com/rcliao/chat-memory/internal/orchestrator"
)

func init() {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Run one extraction pass over your conversations",
		Long: "Fetch your recent conversations, mine your own messages for personal-fact\n" +
			"statements, and store the ones that survive deduplication.\n\n" +
			"Credentials come from config or environment: CHAT_MEMORY_FETCH_ORG_ID and\n" +
			"CHAT_MEMORY_FETCH_SESSION_KEY. With --file, extraction runs offline against\n" +
			"a local conversations export instead.",
		Run: runExtract,
	}

	cmd.Flags().String("file", "", "Extract from a local conversations export (JSON)")
	cmd.Flags().String("org", "", "Organization id (overrides config)")
	cmd.Flags().String("session-key", "", "Session cookie value (overrides config)")

	RootCmd.AddCommand(cmd)
}

func runExtract(cmd *cobra.Command, args []string) {
	file, _ := cmd.Flags().GetString("file")
	org, _ := cmd.Flags().GetString("org")
	sessionKey, _ := cmd.Flags().GetString("session-key")

	if org != "" {
		cfg.Fetch.OrgID = org
	}
	if sessionKey != "" {
		cfg.Fetch.SessionKey = sessionKey
	}

	var fetcher fetch.Fetcher
	if file != "" {
		f, err := fetch.NewFileFetcher(file)
		if err != nil {
			exitErr("open export", err)
		}
		fetcher = f
	} else {
		fetcher = fetch.NewClient(fetch.ClientConfig{
			BaseURL:       cfg.Fetch.BaseURL,
			OrgID:         cfg.Fetch.OrgID,
			Cookies:       []fetch.Cookie{{Name: "sessionKey", Value: cfg.Fetch.SessionKey}},
			Timeout:       time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second,
			RatePerSecond: cfg.Fetch.RatePerSecond,
		}, logger)
	}

	s, _, err := openStore(cmd)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	o := orchestrator.New(fetcher, s, orchestrator.Config{
		MaxConversations: cfg.Extraction.MaxConversations,
		BatchSize:        cfg.Extraction.BatchSize,
		BatchPause:       time.Duration(cfg.Extraction.BatchPauseMS) * time.Millisecond,
		MaxRetries:       cfg.Extraction.MaxRetries,
		InitialBackoff:   time.Duration(cfg.Extraction.InitialBackoffMS) * time.Millisecond,
		DedupeThreshold:  cfg.Extraction.DedupeThreshold,
	}, logger)

	summary, err := o.Run(cmd.Context())
	if summary != nil {
		b, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(b))
	}
	if err != nil {
		exitErr("extract", err)
	}
}
