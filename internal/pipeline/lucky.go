package pipeline

import (
	"context"

	"github.com/chrismelba/noirplan/internal/gen"
	"github.com/chrismelba/noirplan/internal/mystery"
)

// Lucky runs the whole pipeline end to end from the user's seeds: concept,
// casting with role assignment, timeline, clues, then a dossier for every
// suspect, finishing on the output stage. Every step commits before the next
// one starts, so an error partway through surfaces immediately and leaves
// all completed steps in place. Progress messages are delivered through the
// callback; pass nil to run silently.
func (p *Pipeline) Lucky(ctx context.Context, params gen.ConceptParams, progress func(string)) (mystery.Mystery, error) {
	if err := p.stages.acquire(); err != nil {
		return mystery.Mystery{}, err
	}
	defer p.stages.release()
	if err := p.characters.acquire(); err != nil {
		return mystery.Mystery{}, err
	}
	defer p.characters.release()

	emit(progress, "Crafting the core mystery...")
	if _, err := p.runConcept(ctx, params); err != nil {
		return mystery.Mystery{}, err
	}

	emit(progress, "Casting suspects and assigning secret roles...")
	if _, err := p.runCasting(ctx); err != nil {
		return mystery.Mystery{}, err
	}

	emit(progress, "Constructing the truth (timeline)...")
	if _, err := p.runTimeline(ctx); err != nil {
		return mystery.Mystery{}, err
	}

	emit(progress, "Fabricating the evidence...")
	if _, err := p.runClues(ctx); err != nil {
		return mystery.Mystery{}, err
	}

	doc, err := p.fleshAll(ctx, progress)
	if err != nil {
		return mystery.Mystery{}, err
	}

	emit(progress, "Finalizing the kit...")
	if err := p.store.SetStage(ctx, mystery.StageOutput); err != nil {
		return mystery.Mystery{}, err
	}
	return doc, nil
}
