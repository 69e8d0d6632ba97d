package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard the whole session",
		Long:  "Clears the stored mystery and starts over from the empty document. Requires --confirm; there is no undo.",
		RunE:  runReset,
	}

	cmd.Flags().Bool("confirm", false, "Really discard everything")

	RootCmd.AddCommand(cmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	confirm, _ := cmd.Flags().GetBool("confirm")

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if _, err := s.store.Reset(cmd.Context(), confirm); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Session cleared.")
	return nil
}
