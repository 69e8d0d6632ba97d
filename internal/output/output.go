// Package output renders the finished party kit: a printable HTML document
// for the host and terminal tables for the CLI. Rendering is read-only over
// the document; anything missing is shown as missing rather than failing.
package output

import (
	"embed"
	"html/template"
	"io"

	"github.com/chrismelba/noirplan/internal/errors"
	"github.com/chrismelba/noirplan/internal/mystery"
)

//go:embed kit.gohtml
var templateFS embed.FS

var kitTemplate = template.Must(template.New("kit.gohtml").ParseFS(templateFS, "kit.gohtml"))

// kitView resolves the role ids to names once so the template stays dumb.
type kitView struct {
	mystery.Mystery
	KillerName   string
	SaboteurName string
}

// RenderHTML writes the printable kit: the host overview with the hidden
// truth, one dossier card per suspect, the clue fabrication sheet and the
// beat coverage. The page is meant to be printed and cut up, so the truth
// section and the dossiers carry page breaks.
func RenderHTML(w io.Writer, doc mystery.Mystery) error {
	view := kitView{
		Mystery:      doc,
		KillerName:   roleName(doc, doc.KillerID),
		SaboteurName: roleName(doc, doc.SaboteurID),
	}
	if err := kitTemplate.ExecuteTemplate(w, "kit.gohtml", view); err != nil {
		return errors.Wrap(err, "render kit")
	}
	return nil
}

func roleName(doc mystery.Mystery, id string) string {
	if c, ok := doc.CharacterByID(id); ok {
		return c.Name
	}
	return "Unassigned"
}
