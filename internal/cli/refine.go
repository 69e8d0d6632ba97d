package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "refine [suggestion]",
		Short: "Revise the concept with a suggestion",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runRefine,
	}
	RootCmd.AddCommand(cmd)
}

func runRefine(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	doc, err := s.pipeline.RefineConcept(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\n\nVictim: %s\nIncident: %s\nTwist: %s\n",
		doc.Title, doc.VictimName, doc.Incident, doc.Twist)
	return nil
}
