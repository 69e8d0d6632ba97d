package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chrismelba/noirplan/internal/output"
)

func init() {
	cmd := &cobra.Command{
		Use:   "fix [issue id]",
		Short: "Resolve one consistency issue",
		Long:  "Rewrites the timeline to resolve the issue, marks it fixed and records the change in the audit notes.",
		Args:  cobra.ExactArgs(1),
		RunE:  runFix,
	}
	RootCmd.AddCommand(cmd)
}

func runFix(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	doc, err := s.pipeline.FixIssue(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), output.IssuesTable(*doc.Report))
	return nil
}
