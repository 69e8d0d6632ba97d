package gen

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chrismelba/noirplan/internal/ai"
	"github.com/chrismelba/noirplan/internal/errors"
	"github.com/chrismelba/noirplan/internal/mystery"
)

// ErrRoleUnresolved means the killer or saboteur id does not name a cast
// member, so the timeline would embed a ground truth about nobody.
var ErrRoleUnresolved = errors.NewSentinel("role id does not resolve to a cast member")

// TimelineParams are the inputs of the timeline stage.
type TimelineParams struct {
	Incident   string
	Atmosphere string
	Cast       []mystery.Character
	KillerID   string
	SaboteurID string
}

const timelinePromptFormat = `Create the definitive Chronological Timeline and "Truth" for the mystery.

THE INCIDENT SETUP: %s
ATMOSPHERE: %s
GUESTS: %s

ASSIGNED ROLES:
- KILLER: %s
- SABOTEUR: %s

Requirements:
1. Invent the "TRUTH": How exactly did %s commit the murder?
2. Construct a 15-minute increment timeline for the 2 hours preceding and following the discovery.
3. Account for all guests. Ensure suspicious overlaps.`

// GenerateTimeline produces the master timeline as opaque prose. The output
// embeds the ground truth, so it is never shown to players directly.
func (s *Service) GenerateTimeline(ctx context.Context, params TimelineParams) (string, error) {
	killer, ok := characterIn(params.Cast, params.KillerID)
	if !ok {
		return "", errors.Wrap(ErrRoleUnresolved, "killer", slog.String("killerId", params.KillerID))
	}
	saboteur, ok := characterIn(params.Cast, params.SaboteurID)
	if !ok {
		return "", errors.Wrap(ErrRoleUnresolved, "saboteur", slog.String("saboteurId", params.SaboteurID))
	}

	prompt := fmt.Sprintf(timelinePromptFormat,
		params.Incident, params.Atmosphere, guestList(params.Cast),
		killer.Name, saboteur.Name, killer.Name)

	content, err := s.completer.Complete(ctx, ai.Request{
		System: proseSystemPrompt,
		Prompt: prompt,
	})
	if err != nil {
		return "", errors.Wrap(err, "generate timeline")
	}
	return content, nil
}

func characterIn(cast []mystery.Character, id string) (mystery.Character, bool) {
	for _, c := range cast {
		if c.ID == id {
			return c, true
		}
	}
	return mystery.Character{}, false
}
