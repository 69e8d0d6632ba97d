// Package gen builds the per-stage prompts for the generation backend and
// decodes the structured answers into domain records. Each operation is one
// gateway round trip; orchestration, merging and persistence live in the
// pipeline package.
package gen

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/chrismelba/noirplan/internal/ai"
	"github.com/chrismelba/noirplan/internal/mystery"
	"github.com/google/uuid"
)

const jsonSystemPrompt = "You are a master designer of murder mystery party games. " +
	"You answer with a single JSON object and nothing else."

const proseSystemPrompt = "You are a master designer of murder mystery party games. " +
	"You answer in plain prose."

// Service turns stage inputs into backend calls.
type Service struct {
	completer ai.Completer
	logger    *slog.Logger
}

// NewService wires the generators to a gateway.
func NewService(completer ai.Completer, logger *slog.Logger) *Service {
	return &Service{
		completer: completer,
		logger:    logger.With("source", "gen.Service"),
	}
}

// guestList renders the cast for prompts: "Name (Archetype), ...".
func guestList(cast []mystery.Character) string {
	parts := make([]string, len(cast))
	for i, c := range cast {
		parts[i] = fmt.Sprintf("%s (%s)", c.Name, c.Archetype)
	}
	return strings.Join(parts, ", ")
}

// ensureID backfills a missing id. The backend is asked for ids but cannot be
// trusted to supply unique ones.
func ensureID(id string, seen map[string]bool) string {
	if id == "" || seen[id] {
		id = uuid.NewString()
	}
	seen[id] = true
	return id
}
