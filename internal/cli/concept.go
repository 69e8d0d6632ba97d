package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chrismelba/noirplan/internal/gen"
)

func init() {
	cmd := &cobra.Command{
		Use:   "concept",
		Short: "Generate the base story concept",
		RunE:  runConcept,
	}

	cmd.Flags().String("theme", "", "Theme of the mystery (required)")
	cmd.Flags().String("location", "", "Proposed location")
	cmd.Flags().Int("guests", 6, "Number of suspects")
	cmd.Flags().String("details", "", "Free-text preferences")
	_ = cmd.MarkFlagRequired("theme")

	RootCmd.AddCommand(cmd)
}

func runConcept(cmd *cobra.Command, _ []string) error {
	theme, _ := cmd.Flags().GetString("theme")
	location, _ := cmd.Flags().GetString("location")
	guests, _ := cmd.Flags().GetInt("guests")
	details, _ := cmd.Flags().GetString("details")

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	doc, err := s.pipeline.RunConcept(cmd.Context(), gen.ConceptParams{
		Theme:     theme,
		Location:  location,
		NumGuests: guests,
		Details:   details,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\n\nVictim: %s\nIncident: %s\nTwist: %s\n",
		doc.Title, doc.VictimName, doc.Incident, doc.Twist)
	return nil
}
