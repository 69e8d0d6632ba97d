package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chrismelba/noirplan/internal/output"
)

func init() {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Check the mystery for logical defects",
		Long:  "Runs the consistency audit and the story beat coverage analysis, and stores both in the session.",
		RunE:  runAudit,
	}
	RootCmd.AddCommand(cmd)
}

func runAudit(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	doc, err := s.pipeline.RunAudit(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if doc.Report.IsValid {
		fmt.Fprintln(out, "The mystery is consistent.")
	} else {
		fmt.Fprintln(out, output.IssuesTable(*doc.Report))
	}
	fmt.Fprintln(out, doc.Report.Notes)
	return nil
}
