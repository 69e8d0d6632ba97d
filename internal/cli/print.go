package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/chrismelba/noirplan/internal/errors"
	"github.com/chrismelba/noirplan/internal/output"
)

func init() {
	cmd := &cobra.Command{
		Use:   "print",
		Short: "Render the printable party kit",
		Long:  "Writes the printable HTML kit: the host guide with the hidden truth, one dossier card per suspect and the clue fabrication sheet.",
		RunE:  runPrint,
	}

	cmd.Flags().StringP("out", "o", "", "Output file (default: stdout)")

	RootCmd.AddCommand(cmd)
}

func runPrint(cmd *cobra.Command, _ []string) error {
	outPath, _ := cmd.Flags().GetString("out")

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	w := cmd.OutOrStdout()
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return errors.Wrap(err, "create output file")
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	return output.RenderHTML(w, s.store.Document())
}
