// Package pipeline orchestrates the generation stages over the stored
// document. Each runner reads the current document, makes its backend calls
// through the gen service, and commits the result as a single patch. Mutating
// entry points are serialized by single-slot busy tokens so that two
// concurrent requests can never race on the same collection snapshot.
package pipeline

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/chrismelba/noirplan/internal/errors"
	"github.com/chrismelba/noirplan/internal/gen"
	"github.com/chrismelba/noirplan/internal/mystery"
	"github.com/chrismelba/noirplan/internal/random"
	"github.com/chrismelba/noirplan/internal/store"
)

// defaultSpacing is the pause between consecutive dossier calls in a bulk
// run, to go easy on the backend.
const defaultSpacing = 1000 * time.Millisecond

// ErrBusy is returned when a mutating operation is requested while another
// one holding the same slot is still in flight.
var ErrBusy = errors.NewSentinel("operation already in flight")

var (
	ErrUnknownCharacter = errors.NewSentinel("no character with that id")
	ErrUnknownClue      = errors.NewSentinel("no clue with that id")
	ErrUnknownIssue     = errors.NewSentinel("no consistency issue with that id")
	// ErrNoReport means an issue fix was requested before any audit has run.
	ErrNoReport = errors.NewSentinel("no consistency report")
)

// slot is a single task-in-flight token. Acquire fails instead of blocking:
// the caller is told the collection is busy rather than queued behind it.
type slot struct {
	name     string
	inFlight atomic.Bool
}

func (s *slot) acquire() error {
	if !s.inFlight.CompareAndSwap(false, true) {
		return errors.Wrap(ErrBusy, "acquire slot", slog.String("slot", s.name))
	}
	return nil
}

func (s *slot) release() {
	s.inFlight.Store(false)
}

// Pipeline runs generation stages against the store. One write-producing
// backend call is outstanding per slot at any time; the stages slot covers
// whole-stage runs and the bulk runner, the characters and issues slots
// cover per-entity work.
type Pipeline struct {
	store  *store.Store
	gen    *gen.Service
	logger *slog.Logger

	stages     slot
	characters slot
	issues     slot

	spacing time.Duration
	sleep   func(ctx context.Context, d time.Duration) error
}

type Option func(*Pipeline)

// WithSpacing overrides the pause between bulk dossier calls.
func WithSpacing(d time.Duration) Option {
	return func(p *Pipeline) {
		p.spacing = d
	}
}

// WithSleeper replaces the real pause with a recording hook for tests.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(p *Pipeline) {
		p.sleep = sleep
	}
}

// New wires the runners to the store and the gen service.
func New(documents *store.Store, generator *gen.Service, logger *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:      documents,
		gen:        generator,
		logger:     logger.With("source", "Pipeline"),
		stages:     slot{name: "stages"},
		characters: slot{name: "characters"},
		issues:     slot{name: "issues"},
		spacing:    defaultSpacing,
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "pause cancelled")
	case <-timer.C:
		return nil
	}
}

// RunConcept generates the base story from the user's seeds and commits it.
// The seeds themselves (theme, guest count) are committed alongside so they
// survive a restart.
func (p *Pipeline) RunConcept(ctx context.Context, params gen.ConceptParams) (mystery.Mystery, error) {
	if err := p.stages.acquire(); err != nil {
		return mystery.Mystery{}, err
	}
	defer p.stages.release()
	return p.runConcept(ctx, params)
}

func (p *Pipeline) runConcept(ctx context.Context, params gen.ConceptParams) (mystery.Mystery, error) {
	concept, err := p.gen.GenerateConcept(ctx, params)
	if err != nil {
		return mystery.Mystery{}, err
	}
	return p.store.Apply(ctx, mystery.Patch{
		Title:       mystery.String(concept.Title),
		Theme:       mystery.String(params.Theme),
		VictimName:  mystery.String(concept.Victim),
		Environment: mystery.String(concept.Atmosphere),
		Parties:     mystery.String(concept.Parties),
		Incident:    mystery.String(concept.Incident),
		Twist:       mystery.String(concept.Twist),
		NumGuests:   mystery.Int(params.NumGuests),
	})
}

// RefineConcept revises the committed concept with a free-text suggestion,
// keeping the overall shape. The cast, timeline and clues are untouched even
// if the revision contradicts them; the audit stage exists to catch that.
func (p *Pipeline) RefineConcept(ctx context.Context, suggestion string) (mystery.Mystery, error) {
	if err := p.stages.acquire(); err != nil {
		return mystery.Mystery{}, err
	}
	defer p.stages.release()

	doc := p.store.Document()
	current := gen.Concept{
		Title:      doc.Title,
		Victim:     doc.VictimName,
		Atmosphere: doc.Environment,
		Incident:   doc.Incident,
		Parties:    doc.Parties,
		Twist:      doc.Twist,
	}
	concept, err := p.gen.RefineConcept(ctx, current, suggestion)
	if err != nil {
		return mystery.Mystery{}, err
	}
	return p.store.Apply(ctx, mystery.Patch{
		Title:       mystery.String(concept.Title),
		VictimName:  mystery.String(concept.Victim),
		Environment: mystery.String(concept.Atmosphere),
		Parties:     mystery.String(concept.Parties),
		Incident:    mystery.String(concept.Incident),
		Twist:       mystery.String(concept.Twist),
	})
}

// RunCasting generates the suspect skeletons and assigns the secret roles.
// The cast is replaced wholesale, so any previously fleshed dossiers are
// discarded with it.
func (p *Pipeline) RunCasting(ctx context.Context) (mystery.Mystery, error) {
	if err := p.stages.acquire(); err != nil {
		return mystery.Mystery{}, err
	}
	defer p.stages.release()
	return p.runCasting(ctx)
}

func (p *Pipeline) runCasting(ctx context.Context) (mystery.Mystery, error) {
	doc := p.store.Document()
	if err := mystery.CanRun(mystery.StageCasting, doc); err != nil {
		return mystery.Mystery{}, err
	}

	cast, err := p.gen.GenerateCast(ctx, gen.CastParams{
		Incident:  doc.Incident,
		Parties:   doc.Parties,
		NumGuests: doc.NumGuests,
	})
	if err != nil {
		return mystery.Mystery{}, err
	}

	killerID, saboteurID, err := assignRoles(cast)
	if err != nil {
		return mystery.Mystery{}, err
	}
	p.logger.InfoContext(ctx, "roles assigned",
		slog.String("killerId", killerID),
		slog.String("saboteurId", saboteurID))

	return p.store.Apply(ctx, mystery.Patch{
		Characters: mystery.CharacterList(cast),
		KillerID:   mystery.String(killerID),
		SaboteurID: mystery.String(saboteurID),
	})
}

// assignRoles picks the killer and the saboteur as two independent uniform
// draws. With replacement: the same suspect can hold both roles, which is a
// legitimate (and fun) outcome.
func assignRoles(cast []mystery.Character) (killerID, saboteurID string, err error) {
	if len(cast) == 0 {
		return "", "", errors.Wrap(mystery.ErrStageNotReady, "cannot assign roles to an empty cast")
	}
	k, err := random.IntN(len(cast))
	if err != nil {
		return "", "", errors.Wrap(err, "draw killer")
	}
	s, err := random.IntN(len(cast))
	if err != nil {
		return "", "", errors.Wrap(err, "draw saboteur")
	}
	return cast[k].ID, cast[s].ID, nil
}

// RunTimeline generates the master timeline embedding the ground truth.
func (p *Pipeline) RunTimeline(ctx context.Context) (mystery.Mystery, error) {
	if err := p.stages.acquire(); err != nil {
		return mystery.Mystery{}, err
	}
	defer p.stages.release()
	return p.runTimeline(ctx)
}

func (p *Pipeline) runTimeline(ctx context.Context) (mystery.Mystery, error) {
	doc := p.store.Document()
	if err := mystery.CanRun(mystery.StageTimeline, doc); err != nil {
		return mystery.Mystery{}, err
	}

	timeline, err := p.gen.GenerateTimeline(ctx, gen.TimelineParams{
		Incident:   doc.Incident,
		Atmosphere: doc.Environment,
		Cast:       doc.Characters,
		KillerID:   doc.KillerID,
		SaboteurID: doc.SaboteurID,
	})
	if err != nil {
		return mystery.Mystery{}, err
	}
	return p.store.Apply(ctx, mystery.Patch{Timeline: mystery.String(timeline)})
}

// RunClues generates the physical clue list.
func (p *Pipeline) RunClues(ctx context.Context) (mystery.Mystery, error) {
	if err := p.stages.acquire(); err != nil {
		return mystery.Mystery{}, err
	}
	defer p.stages.release()
	return p.runClues(ctx)
}

func (p *Pipeline) runClues(ctx context.Context) (mystery.Mystery, error) {
	doc := p.store.Document()
	if err := mystery.CanRun(mystery.StageClues, doc); err != nil {
		return mystery.Mystery{}, err
	}

	clues, err := p.gen.GenerateClues(ctx, gen.CluesParams{
		Incident:   doc.Incident,
		Timeline:   doc.Timeline,
		Atmosphere: doc.Environment,
		ClueTools:  doc.ClueTools,
	})
	if err != nil {
		return mystery.Mystery{}, err
	}
	return p.store.Apply(ctx, mystery.Patch{Clues: mystery.ClueList(clues)})
}
