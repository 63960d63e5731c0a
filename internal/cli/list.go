package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/chat-memory/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List memories, newest first",
		Run:   runList,
	}

	cmd.Flags().StringP("category", "c", "", "Filter by category: PREFERENCE, PROFESSIONAL, PERSONAL")
	cmd.Flags().Float64("min-confidence", 0, "Only show memories at or above this confidence")
	cmd.Flags().IntP("limit", "l", 0, "Max results (0 = all)")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	category, _ := cmd.Flags().GetString("category")
	minConfidence, _ := cmd.Flags().GetFloat64("min-confidence")
	limit, _ := cmd.Flags().GetInt("limit")

	if category != "" && !model.ValidCategories[model.Category(category)] {
		exitErr("list", fmt.Errorf("unknown category %q", category))
	}

	s, _, err := openStore(cmd)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	var out []model.Memory
	for _, m := range s.List() {
		if category != "" && m.Category != model.Category(category) {
			continue
		}
		if m.Confidence < minConfidence {
			continue
		}
		out = append(out, m)
		if limit > 0 && len(out) >= limit {
			break
		}
	}

	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
}
