package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Generate the master timeline embedding the truth",
		RunE:  runTimeline,
	}
	RootCmd.AddCommand(cmd)
}

func runTimeline(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	doc, err := s.pipeline.RunTimeline(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), doc.Timeline)
	return nil
}
