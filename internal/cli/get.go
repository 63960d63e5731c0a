package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a single memory",
		Args:  cobra.ExactArgs(1),
		Run:   runGet,
	}

	RootCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	s, _, err := openStore(cmd)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	m, ok := s.Get(args[0])
	if !ok {
		exitErr("get", fmt.Errorf("memory not found: %s", args[0]))
	}

	b, _ := json.MarshalIndent(m, "", "  ")
	fmt.Println(string(b))
}
