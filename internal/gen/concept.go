package gen

import (
	"context"
	"fmt"

	"github.com/chrismelba/noirplan/internal/ai"
	"github.com/chrismelba/noirplan/internal/errors"
)

// Concept is the base story produced by the first stage. It deliberately has
// no killer or saboteur field: roles are assigned later, after casting, so the
// backend cannot leak the culprit into the setup.
type Concept struct {
	Title      string `json:"title"`
	Victim     string `json:"victim"`
	Atmosphere string `json:"atmosphere"`
	Incident   string `json:"incident"`
	Parties    string `json:"parties"`
	Twist      string `json:"twist"`
}

// ConceptParams are the user-supplied seeds for the concept stage.
type ConceptParams struct {
	Theme     string
	Location  string
	NumGuests int
	Details   string
}

const conceptPromptFormat = `Design a murder mystery concept.
IMPORTANT: DO NOT specify who the killer is yet. Focus on the setup.

THEME: %s
PROPOSED LOCATION: %s
SUSPECT COUNT: %d
USER PREFERENCES: %s

Requirements:
1. title: A compelling name for the mystery.
2. victim: Name and role of the person found dead.
3. atmosphere: A detailed description of the setting and the mood of the event.
4. incident: A description of HOW the murder occurred (the mechanics/scene), but NOT WHO did it.
5. parties: Describe the general groups, factions, or types of people present.
6. twist: A mid-game complication or external chaos factor.

Return a JSON object with exactly the keys title, victim, atmosphere, incident, parties, twist.`

// GenerateConcept runs the concept stage.
func (s *Service) GenerateConcept(ctx context.Context, params ConceptParams) (Concept, error) {
	prompt := fmt.Sprintf(conceptPromptFormat, params.Theme, params.Location, params.NumGuests, params.Details)

	content, err := s.completer.Complete(ctx, ai.Request{
		System: jsonSystemPrompt,
		Prompt: prompt,
		JSON:   true,
	})
	if err != nil {
		return Concept{}, errors.Wrap(err, "generate story concept")
	}

	var concept Concept
	if err = ai.DecodeJSON(content, &concept); err != nil {
		return Concept{}, errors.Wrap(err, "decode story concept")
	}
	return concept, nil
}

const refinePromptFormat = `Modify the current mystery concept based on the user's suggestion.

CURRENT:
Title: %s
Victim: %s
Atmosphere: %s
Incident: %s
Parties: %s
Twist: %s

USER SUGGESTION: %q

Update the fields. DO NOT assign a killer yet.
Return a JSON object with exactly the keys title, victim, atmosphere, incident, parties, twist.`

// RefineConcept revises an existing concept with a free-text suggestion,
// keeping the same shape. Used for incremental tweaks without restarting the
// stage.
func (s *Service) RefineConcept(ctx context.Context, current Concept, suggestion string) (Concept, error) {
	prompt := fmt.Sprintf(refinePromptFormat,
		current.Title, current.Victim, current.Atmosphere, current.Incident, current.Parties, current.Twist,
		suggestion)

	content, err := s.completer.Complete(ctx, ai.Request{
		System: jsonSystemPrompt,
		Prompt: prompt,
		JSON:   true,
	})
	if err != nil {
		return Concept{}, errors.Wrap(err, "refine story concept")
	}

	var concept Concept
	if err = ai.DecodeJSON(content, &concept); err != nil {
		return Concept{}, errors.Wrap(err, "decode refined concept")
	}
	return concept, nil
}
