package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chrismelba/noirplan/internal/gen"
	"github.com/chrismelba/noirplan/internal/output"
)

func init() {
	cmd := &cobra.Command{
		Use:   "lucky",
		Short: "Generate a complete kit in one go",
		Long:  "Runs every stage end to end: concept, cast with secret roles, timeline, clues and a dossier for each suspect.",
		RunE:  runLucky,
	}

	cmd.Flags().String("theme", "", "Theme of the mystery (required)")
	cmd.Flags().String("location", "", "Proposed location")
	cmd.Flags().Int("guests", 6, "Number of suspects")
	cmd.Flags().String("details", "", "Free-text preferences")
	_ = cmd.MarkFlagRequired("theme")

	RootCmd.AddCommand(cmd)
}

func runLucky(cmd *cobra.Command, _ []string) error {
	theme, _ := cmd.Flags().GetString("theme")
	location, _ := cmd.Flags().GetString("location")
	guests, _ := cmd.Flags().GetInt("guests")
	details, _ := cmd.Flags().GetString("details")

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	doc, err := s.pipeline.Lucky(cmd.Context(), gen.ConceptParams{
		Theme:     theme,
		Location:  location,
		NumGuests: guests,
		Details:   details,
	}, func(msg string) {
		fmt.Fprintln(cmd.OutOrStdout(), msg)
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), output.StatusTable(doc, s.store.Stage()))
	return nil
}
