package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/chat-memory/internal/dedupe"
	"github.com/rcliao/chat-memory/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "add [content]",
		Short: "Seed a memory manually",
		Long:  "Store a manually written memory. It goes through the same duplicate filter as extracted ones.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runAdd,
	}

	cmd.Flags().StringP("category", "c", string(model.CategoryPersonal), "Category: PREFERENCE, PROFESSIONAL, PERSONAL")
	cmd.Flags().Float64("confidence", 1.0, "Confidence in [0,1]")

	RootCmd.AddCommand(cmd)
}

func runAdd(cmd *cobra.Command, args []string) {
	categoryStr, _ := cmd.Flags().GetString("category")
	confidence, _ := cmd.Flags().GetFloat64("confidence")

	category := model.Category(categoryStr)
	if !model.ValidCategories[category] {
		exitErr("add", fmt.Errorf("unknown category %q", categoryStr))
	}

	content := strings.TrimSpace(strings.Join(args, " "))
	if content == "" {
		exitErr("add", fmt.Errorf("content is required"))
	}

	s, _, err := openStore(cmd)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	idx := dedupe.NewIndex(cfg.Extraction.DedupeThreshold, s.Contents())
	if idx.IsDuplicate(content) {
		exitErr("add", fmt.Errorf("near-duplicate of an existing memory"))
	}

	m := model.Memory{
		ID:         model.NewID(),
		Content:    content,
		Category:   category,
		Source:     model.SourceManual,
		Confidence: model.ClampConfidence(confidence),
		CreatedAt:  time.Now().UTC(),
	}
	s.Save(cmd.Context(), m)

	b, _ := json.Marshal(m)
	fmt.Println(string(b))
}
