package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a memory",
		Args:  cobra.ExactArgs(1),
		Run:   runRm,
	}

	RootCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	id := args[0]

	s, _, err := openStore(cmd)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	_, existed := s.Get(id)
	s.Delete(cmd.Context(), id)

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"id":%q,"existed":%t}`+"\n", id, existed)
}
