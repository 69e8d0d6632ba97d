package gen

import (
	"context"
	"fmt"
	"strings"

	"github.com/chrismelba/noirplan/internal/ai"
	"github.com/chrismelba/noirplan/internal/errors"
	"github.com/chrismelba/noirplan/internal/mystery"
)

const auditPromptFormat = `Audit this murder mystery for the 'Web of Suspicion' and 'Ambiguous Guilt' logic.

AUDIT CHECKLIST:
1. AMBIGUOUS GUILT: Does every suspect have a Private 'Dark Act' (an action with potentially lethal consequences) that makes them doubt their innocence?
2. WEB OF SUSPICION: Does the Public Info of characters successfully point to or incriminate the 'Dark Acts' of OTHER guests? Every private secret should be alluded to by at least one other character's public info.
3. TIMELINE ADHERENCE: Do sightings in Public Info match the movements and locations in the master Timeline?
4. SOLVABILITY: Is the 'Truth' (the actual killer's method) distinguishable from the 'False Leads' (the dark acts of the innocent) through logical deduction?

DATA:
%s
TIMELINE: %s
CLUES: %s

Return a JSON object with the keys isValid (boolean), issues (array of objects with id, description, suggestion) and notes (string).`

// digest renders the audit's textual view of the document: each suspect's
// round-1 disclosures, nothing else.
func digest(doc mystery.Mystery) string {
	var b strings.Builder
	for i, c := range doc.Characters {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "SUSPECT: %s\nROUND 1 PUBLIC: %s\nROUND 1 PRIVATE: %s",
			c.Name,
			strings.Join(c.Round1.PublicInfo, ", "),
			strings.Join(c.Round1.PrivateInfo, ", "))
	}
	return b.String()
}

func clueNames(clues []mystery.Clue) string {
	names := make([]string, len(clues))
	for i, c := range clues {
		names[i] = c.Name
	}
	return strings.Join(names, ", ")
}

// Audit evaluates the whole document for logical defects and returns the
// structured report. Read-only: committing the report is the caller's job.
func (s *Service) Audit(ctx context.Context, doc mystery.Mystery) (*mystery.ConsistencyReport, error) {
	prompt := fmt.Sprintf(auditPromptFormat, digest(doc), doc.Timeline, clueNames(doc.Clues))

	content, err := s.completer.Complete(ctx, ai.Request{
		System: jsonSystemPrompt,
		Prompt: prompt,
		JSON:   true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "check consistency")
	}

	var report mystery.ConsistencyReport
	if err = ai.DecodeJSON(content, &report); err != nil {
		return nil, errors.Wrap(err, "decode consistency report")
	}

	seen := make(map[string]bool, len(report.Issues))
	for i := range report.Issues {
		report.Issues[i].ID = ensureID(report.Issues[i].ID, seen)
		// Fresh issues are never pre-fixed, whatever the backend claims.
		report.Issues[i].Fixed = false
	}
	return &report, nil
}

const coveragePromptFormat = `Analyze the "Rule of Three" for this mystery.
Identify 3-5 major Story Beats and list the evidence supporting each.
STORY: %s
TIMELINE: %s

Return a JSON object with a single key "beats" holding an array of objects with the keys beatName, description and clues (array of strings).`

// AnalyzeCoverage identifies the major narrative beats and the clues
// supporting each. Informational only: it feeds the solvability view and is
// never consumed by other stages.
func (s *Service) AnalyzeCoverage(ctx context.Context, doc mystery.Mystery) ([]mystery.StoryBeat, error) {
	prompt := fmt.Sprintf(coveragePromptFormat, doc.Incident, doc.Timeline)

	content, err := s.completer.Complete(ctx, ai.Request{
		System: jsonSystemPrompt,
		Prompt: prompt,
		JSON:   true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "analyze coverage")
	}

	var payload struct {
		Beats []mystery.StoryBeat `json:"beats"`
	}
	if err = ai.DecodeJSON(content, &payload); err != nil {
		return nil, errors.Wrap(err, "decode story beats")
	}
	return payload.Beats, nil
}
