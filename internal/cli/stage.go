package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chrismelba/noirplan/internal/mystery"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stage [name|next]",
		Short: "Show or switch the current pipeline stage",
		Long:  "Without arguments, prints the current stage. With a stage name or 'next', switches to it after checking that the required upstream data exists.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runStage,
	}
	RootCmd.AddCommand(cmd)
}

func runStage(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if len(args) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), s.store.Stage())
		return nil
	}

	if args[0] == "next" {
		next, err := s.pipeline.NextStage(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), next)
		return nil
	}

	stage, err := mystery.ParseStage(args[0])
	if err != nil {
		return err
	}
	if err := s.pipeline.SelectStage(cmd.Context(), stage); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), stage)
	return nil
}
