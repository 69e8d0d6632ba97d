package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chrismelba/noirplan/internal/output"
)

func init() {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the session summary",
		RunE:  runStatus,
	}
	RootCmd.AddCommand(cmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	doc := s.store.Document()
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, output.StatusTable(doc, s.store.Stage()))
	if len(doc.Characters) > 0 {
		fmt.Fprintln(out, output.CastTable(doc))
	}
	return nil
}
