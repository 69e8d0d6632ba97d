package gen

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chrismelba/noirplan/internal/ai"
	"github.com/chrismelba/noirplan/internal/errors"
	"github.com/chrismelba/noirplan/internal/mystery"
)

// CastParams are the inputs of the casting stage.
type CastParams struct {
	Incident  string
	Parties   string
	NumGuests int
}

const castPromptFormat = `Create %d unique suspects for a mystery.
CONTEXT: %s
GROUPS INVOLVED: %s

For each suspect, provide: id, name, gender (male/female), archetype, and initialMotive.
Return a JSON object with a single key "suspects" holding the array.`

// castSkeleton is the shape the backend returns per suspect. All narrative
// fields start empty; fleshing happens per character in the dossiers stage.
type castSkeleton struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Gender        string `json:"gender"`
	Archetype     string `json:"archetype"`
	InitialMotive string `json:"initialMotive"`
}

// GenerateCast runs the casting stage and returns character skeletons with
// unique ids and empty narrative fields.
func (s *Service) GenerateCast(ctx context.Context, params CastParams) ([]mystery.Character, error) {
	prompt := fmt.Sprintf(castPromptFormat, params.NumGuests, params.Incident, params.Parties)

	content, err := s.completer.Complete(ctx, ai.Request{
		System: jsonSystemPrompt,
		Prompt: prompt,
		JSON:   true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "generate cast list")
	}

	var payload struct {
		Suspects []castSkeleton `json:"suspects"`
	}
	if err = ai.DecodeJSON(content, &payload); err != nil {
		return nil, errors.Wrap(err, "decode cast list")
	}
	if len(payload.Suspects) == 0 {
		return nil, errors.Wrap(ai.ErrMalformedResponse, "cast list is empty")
	}

	seen := make(map[string]bool, len(payload.Suspects))
	characters := make([]mystery.Character, 0, len(payload.Suspects))
	for _, skeleton := range payload.Suspects {
		gender := mystery.Gender(skeleton.Gender)
		if !gender.Valid() {
			return nil, errors.Wrap(ai.ErrMalformedResponse, "unexpected gender",
				slog.String("gender", skeleton.Gender),
				slog.String("name", skeleton.Name))
		}
		characters = append(characters, mystery.Character{
			ID:            ensureID(skeleton.ID, seen),
			Name:          skeleton.Name,
			Gender:        gender,
			Archetype:     skeleton.Archetype,
			InitialMotive: skeleton.InitialMotive,
			IsFleshed:     false,
			Round1:        mystery.CharacterInfo{PublicInfo: []string{}, PrivateInfo: []string{}},
			Round2:        mystery.CharacterInfo{PublicInfo: []string{}, PrivateInfo: []string{}},
		})
	}
	return characters, nil
}
