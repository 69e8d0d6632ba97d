package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chrismelba/noirplan/internal/errors"
	"github.com/chrismelba/noirplan/internal/gen"
	"github.com/chrismelba/noirplan/internal/mystery"
)

// FleshCharacter generates the full dossier for exactly one suspect and
// replaces only that element in the cast. Every other suspect comes out of
// the commit byte-identical.
func (p *Pipeline) FleshCharacter(ctx context.Context, id string) (mystery.Mystery, error) {
	if err := p.characters.acquire(); err != nil {
		return mystery.Mystery{}, err
	}
	defer p.characters.release()

	doc := p.store.Document()
	if err := mystery.CanRun(mystery.StageDossiers, doc); err != nil {
		return mystery.Mystery{}, err
	}
	character, ok := doc.CharacterByID(id)
	if !ok {
		return mystery.Mystery{}, errors.Wrap(ErrUnknownCharacter, "flesh character", slog.String("id", id))
	}

	fleshed, err := p.fleshOne(ctx, doc, character)
	if err != nil {
		return mystery.Mystery{}, err
	}
	cast, _ := mystery.ReplaceCharacter(doc.Characters, fleshed)
	return p.store.Apply(ctx, mystery.Patch{Characters: mystery.CharacterList(cast)})
}

func (p *Pipeline) fleshOne(ctx context.Context, doc mystery.Mystery, character mystery.Character) (mystery.Character, error) {
	return p.gen.GenerateDossier(ctx, gen.DossierParams{
		Character:  character,
		IsKiller:   character.ID == doc.KillerID,
		IsSaboteur: character.ID == doc.SaboteurID,
		Incident:   doc.Incident,
		Timeline:   doc.Timeline,
		Twist:      doc.Twist,
		Cast:       doc.Characters,
	})
}

// FleshAll generates dossiers for every suspect that does not have one yet,
// strictly in cast order and strictly one at a time. The cast is committed
// after every single dossier, so a failure partway through keeps everything
// finished so far. Suspects already fleshed are skipped; running FleshAll on
// a fully fleshed cast makes no backend calls at all.
func (p *Pipeline) FleshAll(ctx context.Context, progress func(string)) (mystery.Mystery, error) {
	if err := p.characters.acquire(); err != nil {
		return mystery.Mystery{}, err
	}
	defer p.characters.release()
	return p.fleshAll(ctx, progress)
}

func (p *Pipeline) fleshAll(ctx context.Context, progress func(string)) (mystery.Mystery, error) {
	doc := p.store.Document()
	if err := mystery.CanRun(mystery.StageDossiers, doc); err != nil {
		return mystery.Mystery{}, err
	}

	total := len(doc.Characters)
	called := false
	for i, character := range doc.Characters {
		if character.IsFleshed {
			continue
		}
		// Spacing between consecutive calls, not before the first one.
		if called {
			if err := p.sleep(ctx, p.spacing); err != nil {
				return doc, err
			}
		}
		called = true

		emit(progress, fmt.Sprintf("Writing dossier for %s (%d/%d)...", character.Name, i+1, total))
		fleshed, err := p.fleshOne(ctx, doc, character)
		if err != nil {
			// Everything committed so far stays committed.
			return doc, errors.Wrap(err, "flesh all stopped", slog.String("character", character.Name))
		}

		cast, _ := mystery.ReplaceCharacter(doc.Characters, fleshed)
		doc, err = p.store.Apply(ctx, mystery.Patch{Characters: mystery.CharacterList(cast)})
		if err != nil {
			return mystery.Mystery{}, err
		}
	}
	return doc, nil
}

func emit(progress func(string), message string) {
	if progress != nil {
		progress(message)
	}
}
