package gen

import (
	"context"
	"fmt"

	"github.com/chrismelba/noirplan/internal/ai"
	"github.com/chrismelba/noirplan/internal/errors"
	"github.com/chrismelba/noirplan/internal/mystery"
)

// CluesParams are the inputs of the clues stage.
type CluesParams struct {
	Incident   string
	Timeline   string
	Atmosphere string
	ClueTools  string
}

const cluesPromptFormat = `Generate 6-8 physical clues based on:
THE INCIDENT: %s
THE TRUTH/TIMELINE: %s
SETTING: %s
FABRICATION TOOLS: %s

For each clue, provide: id, name, description (how to fabricate it), locationToHide, and relevance.
Return a JSON object with a single key "clues" holding the array.`

// GenerateClues runs the clues stage.
func (s *Service) GenerateClues(ctx context.Context, params CluesParams) ([]mystery.Clue, error) {
	prompt := fmt.Sprintf(cluesPromptFormat, params.Incident, params.Timeline, params.Atmosphere, params.ClueTools)

	content, err := s.completer.Complete(ctx, ai.Request{
		System: jsonSystemPrompt,
		Prompt: prompt,
		JSON:   true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "generate clues")
	}

	var payload struct {
		Clues []mystery.Clue `json:"clues"`
	}
	if err = ai.DecodeJSON(content, &payload); err != nil {
		return nil, errors.Wrap(err, "decode clues")
	}
	if len(payload.Clues) == 0 {
		return nil, errors.Wrap(ai.ErrMalformedResponse, "clue list is empty")
	}

	seen := make(map[string]bool, len(payload.Clues))
	for i := range payload.Clues {
		payload.Clues[i].ID = ensureID(payload.Clues[i].ID, seen)
	}
	return payload.Clues, nil
}
