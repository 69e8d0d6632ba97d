package output

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/chrismelba/noirplan/internal/mystery"
)

func renderTable(title string, headers []string, rows [][]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if title != "" {
		tw.SetTitle(title)
	}

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range header {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 1, AlignHeader: text.AlignLeft}})
	return tw.Render()
}

// StatusTable summarizes the session for the status command.
func StatusTable(doc mystery.Mystery, stage mystery.Stage) string {
	fleshedCount := 0
	for _, c := range doc.Characters {
		if c.IsFleshed {
			fleshedCount++
		}
	}
	timeline := "missing"
	if doc.Timeline != "" {
		timeline = "written"
	}
	audit := "not run"
	if doc.Report != nil {
		fixedCount := 0
		for _, issue := range doc.Report.Issues {
			if issue.Fixed {
				fixedCount++
			}
		}
		audit = fmt.Sprintf("%d issues, %d fixed", len(doc.Report.Issues), fixedCount)
	}

	return renderTable("", []string{"Field", "Value"}, [][]string{
		{"Stage", string(stage)},
		{"Title", doc.Title},
		{"Victim", doc.VictimName},
		{"Suspects", fmt.Sprintf("%d (%d fleshed)", len(doc.Characters), fleshedCount)},
		{"Clues", fmt.Sprintf("%d", len(doc.Clues))},
		{"Timeline", timeline},
		{"Audit", audit},
	})
}

// CastTable lists the suspects with their secret roles marked. Host eyes
// only; never hand this to the players.
func CastTable(doc mystery.Mystery) string {
	rows := make([][]string, len(doc.Characters))
	for i, c := range doc.Characters {
		role := ""
		if c.ID == doc.KillerID {
			role = "killer"
		}
		if c.ID == doc.SaboteurID {
			if role != "" {
				role += " + "
			}
			role += "saboteur"
		}
		dossier := ""
		if c.IsFleshed {
			dossier = "ready"
		}
		rows[i] = []string{c.Name, string(c.Gender), c.Archetype, c.InitialMotive, dossier, role}
	}
	return renderTable("Cast", []string{"Name", "Gender", "Archetype", "Motive", "Dossier", "Role"}, rows)
}

// CluesTable lists the physical clues for the fabrication session.
func CluesTable(doc mystery.Mystery) string {
	rows := make([][]string, len(doc.Clues))
	for i, c := range doc.Clues {
		rows[i] = []string{c.Name, c.LocationToHide, c.Relevance}
	}
	return renderTable("Clues", []string{"Name", "Hide at", "Relevance"}, rows)
}

// IssuesTable lists the audit findings.
func IssuesTable(report mystery.ConsistencyReport) string {
	rows := make([][]string, len(report.Issues))
	for i, issue := range report.Issues {
		status := "open"
		if issue.Fixed {
			status = "fixed"
		}
		rows[i] = []string{issue.ID, status, issue.Description, issue.Suggestion}
	}
	return renderTable("Consistency issues", []string{"ID", "Status", "Description", "Suggestion"}, rows)
}
