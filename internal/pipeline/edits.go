package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/chrismelba/noirplan/internal/errors"
	"github.com/chrismelba/noirplan/internal/mystery"
)

// Manual edits bypass the generation backend entirely. They still go through
// the same replace-by-id merge as regeneration so that sibling entries come
// out byte-identical.

// UpdateCharacter replaces the cast member with updated.ID.
func (p *Pipeline) UpdateCharacter(ctx context.Context, updated mystery.Character) (mystery.Mystery, error) {
	doc := p.store.Document()
	cast, found := mystery.ReplaceCharacter(doc.Characters, updated)
	if !found {
		return mystery.Mystery{}, errors.Wrap(ErrUnknownCharacter, "update character", slog.String("id", updated.ID))
	}
	return p.store.Apply(ctx, mystery.Patch{Characters: mystery.CharacterList(cast)})
}

// AddCharacter appends a blank suspect skeleton to the cast. A missing id is
// filled in; the dossier fields start empty and unfleshed.
func (p *Pipeline) AddCharacter(ctx context.Context, character mystery.Character) (mystery.Mystery, error) {
	if character.ID == "" {
		character.ID = uuid.NewString()
	}
	if !character.Gender.Valid() {
		character.Gender = mystery.GenderFemale
	}
	character.IsFleshed = false
	character.Round1 = mystery.CharacterInfo{PublicInfo: []string{}, PrivateInfo: []string{}}
	character.Round2 = mystery.CharacterInfo{PublicInfo: []string{}, PrivateInfo: []string{}}

	doc := p.store.Document()
	cast := append(doc.Characters, character)
	return p.store.Apply(ctx, mystery.Patch{Characters: mystery.CharacterList(cast)})
}

// RemoveCharacter drops a suspect from the cast. Removing the current killer
// or saboteur is allowed; the dangling role reference shows up as a failed
// timeline precondition rather than being silently reassigned here.
func (p *Pipeline) RemoveCharacter(ctx context.Context, id string) (mystery.Mystery, error) {
	doc := p.store.Document()
	cast, found := mystery.RemoveCharacter(doc.Characters, id)
	if !found {
		return mystery.Mystery{}, errors.Wrap(ErrUnknownCharacter, "remove character", slog.String("id", id))
	}
	return p.store.Apply(ctx, mystery.Patch{Characters: mystery.CharacterList(cast)})
}

// ToggleGender flips the gender of one suspect.
func (p *Pipeline) ToggleGender(ctx context.Context, id string) (mystery.Mystery, error) {
	doc := p.store.Document()
	character, ok := doc.CharacterByID(id)
	if !ok {
		return mystery.Mystery{}, errors.Wrap(ErrUnknownCharacter, "toggle gender", slog.String("id", id))
	}
	character.Gender = character.Gender.Toggle()
	cast, _ := mystery.ReplaceCharacter(doc.Characters, character)
	return p.store.Apply(ctx, mystery.Patch{Characters: mystery.CharacterList(cast)})
}

// UpdateClue replaces the clue with updated.ID.
func (p *Pipeline) UpdateClue(ctx context.Context, updated mystery.Clue) (mystery.Mystery, error) {
	doc := p.store.Document()
	clues, found := mystery.ReplaceClue(doc.Clues, updated)
	if !found {
		return mystery.Mystery{}, errors.Wrap(ErrUnknownClue, "update clue", slog.String("id", updated.ID))
	}
	return p.store.Apply(ctx, mystery.Patch{Clues: mystery.ClueList(clues)})
}

// RemoveClue drops one clue.
func (p *Pipeline) RemoveClue(ctx context.Context, id string) (mystery.Mystery, error) {
	doc := p.store.Document()
	clues, found := mystery.RemoveClue(doc.Clues, id)
	if !found {
		return mystery.Mystery{}, errors.Wrap(ErrUnknownClue, "remove clue", slog.String("id", id))
	}
	return p.store.Apply(ctx, mystery.Patch{Clues: mystery.ClueList(clues)})
}

// EditStory applies free-text edits to the narrative fields: title, victim,
// environment, parties, clue tools, incident, timeline and twist. Collection
// and role fields in the patch are ignored so this entry point can never
// bypass the per-entity merge paths.
func (p *Pipeline) EditStory(ctx context.Context, patch mystery.Patch) (mystery.Mystery, error) {
	patch.Characters = nil
	patch.Clues = nil
	patch.KillerID = nil
	patch.SaboteurID = nil
	patch.Beats = nil
	patch.Report = nil
	return p.store.Apply(ctx, patch)
}

// SelectStage switches the session to the given stage after checking its
// preconditions, so navigation cannot outrun the generated data. Entering the
// audit stage with no report on file kicks off the audit immediately; the
// stage switch sticks even if that first audit fails.
func (p *Pipeline) SelectStage(ctx context.Context, stage mystery.Stage) error {
	if err := mystery.CanRun(stage, p.store.Document()); err != nil {
		return err
	}
	if err := p.store.SetStage(ctx, stage); err != nil {
		return err
	}
	if stage == mystery.StageAudit && p.store.Document().Report == nil {
		if _, err := p.RunAudit(ctx); err != nil {
			return errors.Wrap(err, "audit on entering stage")
		}
	}
	return nil
}

// NextStage advances to the stage after the current one.
func (p *Pipeline) NextStage(ctx context.Context) (mystery.Stage, error) {
	next := p.store.Stage().Next()
	if err := p.SelectStage(ctx, next); err != nil {
		return "", err
	}
	return next, nil
}
