package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chrismelba/noirplan/internal/errors"
	"github.com/chrismelba/noirplan/internal/mystery"
	"github.com/chrismelba/noirplan/internal/output"
)

func init() {
	cmd := &cobra.Command{
		Use:   "flesh [character id]",
		Short: "Write the dossier for one suspect, or all of them",
		Long:  "Writes the full dossier for the suspect with the given id. With --all, writes dossiers for every suspect that does not have one yet, one at a time.",
		RunE:  runFlesh,
	}

	cmd.Flags().Bool("all", false, "Flesh every remaining suspect")

	RootCmd.AddCommand(cmd)
}

func runFlesh(cmd *cobra.Command, args []string) error {
	all, _ := cmd.Flags().GetBool("all")
	if !all && len(args) == 0 {
		return errors.New("pass a character id or --all")
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	var doc mystery.Mystery
	if all {
		doc, err = s.pipeline.FleshAll(cmd.Context(), func(msg string) {
			fmt.Fprintln(cmd.OutOrStdout(), msg)
		})
	} else {
		doc, err = s.pipeline.FleshCharacter(cmd.Context(), args[0])
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), output.CastTable(doc))
	return nil
}
