package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chrismelba/noirplan/internal/output"
)

func init() {
	cmd := &cobra.Command{
		Use:   "clues",
		Short: "Generate the physical clues",
		RunE:  runClues,
	}
	RootCmd.AddCommand(cmd)
}

func runClues(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	doc, err := s.pipeline.RunClues(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), output.CluesTable(doc))
	return nil
}
