package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chrismelba/noirplan/internal/output"
)

func init() {
	cmd := &cobra.Command{
		Use:   "cast",
		Short: "Generate the suspects and assign the secret roles",
		RunE:  runCast,
	}
	RootCmd.AddCommand(cmd)
}

func runCast(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	doc, err := s.pipeline.RunCasting(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), output.CastTable(doc))
	return nil
}
