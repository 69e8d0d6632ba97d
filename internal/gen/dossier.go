package gen

import (
	"context"
	"fmt"
	"strings"

	"github.com/chrismelba/noirplan/internal/ai"
	"github.com/chrismelba/noirplan/internal/errors"
	"github.com/chrismelba/noirplan/internal/mystery"
)

// DossierParams are the inputs for fleshing exactly one character.
type DossierParams struct {
	Character  mystery.Character
	IsKiller   bool
	IsSaboteur bool
	Incident   string
	Timeline   string
	Twist      string
	// Cast is the full roster, used for cross-referencing sightings.
	Cast []mystery.Character
}

const dossierPromptFormat = `Flesh out the full dossier for: %s (%s).
ROLE STATUS: %s

THE TRUTH (Timeline): %s
THE INCIDENT: %s
OTHER GUESTS IN THE GAME: %s

WEB OF SUSPICION ARCHITECTURE:
1. PRIVATE INFO (Self-Incrimination / Dark Act):
   - Assign this character a "Dark Act" - an action they took that *could* have had lethal consequences for the victim (e.g., swapping pills, sabotaging equipment, leaving a door open for an enemy).
   - Lethal intent is OPTIONAL; the act could be a prank, petty revenge, or negligence, as long as it results in lethal potential.
   - CRITICAL: The character MUST be uncertain of the outcome (e.g., they fled before the consequence occurred). They must believe they *might* be the killer.

2. PUBLIC INFO (Incriminating Others):
   - This section MUST contain gossip, sightings, or overheard whispers about OTHER guests from the provided list.
   - These sightings must allude to the "Dark Acts" hidden in those other characters' dossiers.
   - Use the TIMELINE to ground these sightings in reality (e.g., if Suspect X was in the Hallway at 10 PM, this character might have seen them there).

Requirements:
- background: 2-3 paragraphs of personal history.
- relationships: How they feel about the other guests.
- connectionToVictim: Their tie to the victim.
- preGameBlurb: A costume and acting guide for the player.
- round1 privateInfo: Details of THEIR "Dark Act" and their subsequent guilt/fear (2-4 items).
- round1 publicInfo: 3-4 sightings of OTHER guests that make them look suspicious.
- round2: Info related to the Twist: %s.

Return a JSON object with the keys preGameBlurb, background, relationships, connectionToVictim, round1, round2.
round1 and round2 are objects with the keys publicInfo and privateInfo, each an array of strings.`

func roleStatus(isKiller, isSaboteur bool) string {
	switch {
	case isKiller && isSaboteur:
		return "THE ACTUAL KILLER AND THE SABOTEUR"
	case isKiller:
		return "THE ACTUAL KILLER"
	case isSaboteur:
		return "THE SABOTEUR"
	default:
		return "INNOCENT SUSPECT"
	}
}

// GenerateDossier fleshes one character. The returned character is a copy of
// the input with the narrative fields and both info blocks populated and
// IsFleshed set; the skeleton fields are untouched.
func (s *Service) GenerateDossier(ctx context.Context, params DossierParams) (mystery.Character, error) {
	others := make([]string, 0, len(params.Cast))
	for _, c := range params.Cast {
		if c.ID != params.Character.ID {
			others = append(others, c.Name)
		}
	}

	prompt := fmt.Sprintf(dossierPromptFormat,
		params.Character.Name, params.Character.Archetype,
		roleStatus(params.IsKiller, params.IsSaboteur),
		params.Timeline, params.Incident, strings.Join(others, ", "),
		params.Twist)

	content, err := s.completer.Complete(ctx, ai.Request{
		System: jsonSystemPrompt,
		Prompt: prompt,
		JSON:   true,
	})
	if err != nil {
		return mystery.Character{}, errors.Wrap(err, "generate character dossier")
	}

	var payload struct {
		PreGameBlurb       string                `json:"preGameBlurb"`
		Background         string                `json:"background"`
		Relationships      string                `json:"relationships"`
		ConnectionToVictim string                `json:"connectionToVictim"`
		Round1             mystery.CharacterInfo `json:"round1"`
		Round2             mystery.CharacterInfo `json:"round2"`
	}
	if err = ai.DecodeJSON(content, &payload); err != nil {
		return mystery.Character{}, errors.Wrap(err, "decode character dossier")
	}

	fleshed := params.Character
	fleshed.PreGameBlurb = payload.PreGameBlurb
	fleshed.Background = payload.Background
	fleshed.Relationships = payload.Relationships
	fleshed.ConnectionToVictim = payload.ConnectionToVictim
	fleshed.Round1 = payload.Round1
	fleshed.Round2 = payload.Round2
	fleshed.IsFleshed = true
	return fleshed, nil
}
