package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/chat-memory/internal/dedupe"
	"github.com/rcliao/chat-memory/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import memories from a JSON export",
		Long:  "Import memories from an `export` dump. Near duplicates of existing memories are skipped.",
		Args:  cobra.ExactArgs(1),
		Run:   runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	data, err := os.ReadFile(args[0])
	if err != nil {
		exitErr("read file", err)
	}

	var memories []model.Memory
	if err := json.Unmarshal(data, &memories); err != nil {
		exitErr("parse file", err)
	}

	s, _, err := openStore(cmd)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	idx := dedupe.NewIndex(cfg.Extraction.DedupeThreshold, s.Contents())

	imported, skipped := 0, 0
	for _, m := range memories {
		if m.Content == "" || idx.IsDuplicate(m.Content) {
			skipped++
			continue
		}
		if !model.ValidCategories[m.Category] {
			skipped++
			continue
		}
		if m.ID == "" {
			m.ID = model.NewID()
		}
		if m.Source == "" {
			m.Source = model.SourceManual
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now().UTC()
		}
		s.Save(cmd.Context(), m)
		idx.Add(m.Content)
		imported++
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"imported":%d,"skipped":%d}`+"\n", imported, skipped)
}
