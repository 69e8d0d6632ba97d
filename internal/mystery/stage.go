package mystery

import (
	"log/slog"

	"github.com/chrismelba/noirplan/internal/errors"
)

// Stage is one named step of the generation pipeline.
type Stage string

const (
	StageConcept  Stage = "concept"
	StageCasting  Stage = "casting"
	StageTimeline Stage = "timeline"
	StageClues    Stage = "clues"
	StageDossiers Stage = "dossiers"
	StageAudit    Stage = "audit"
	StageOutput   Stage = "output"
)

// Stages in pipeline order.
var Stages = []Stage{
	StageConcept,
	StageCasting,
	StageTimeline,
	StageClues,
	StageDossiers,
	StageAudit,
	StageOutput,
}

var ErrUnknownStage = errors.NewSentinel("unknown stage")

// ErrStageNotReady means a stage was invoked before its upstream data exists.
// The pipeline refuses to run rather than sending a degenerate prompt to the
// backend.
var ErrStageNotReady = errors.NewSentinel("stage preconditions not met")

// ParseStage validates a stage name read from storage or a request.
func ParseStage(s string) (Stage, error) {
	for _, stage := range Stages {
		if Stage(s) == stage {
			return stage, nil
		}
	}
	return "", errors.Wrap(ErrUnknownStage, "parse stage", slog.String("stage", s))
}

// Next returns the stage after s, or s itself if it is the last one.
func (s Stage) Next() Stage {
	for i, stage := range Stages {
		if stage == s && i+1 < len(Stages) {
			return Stages[i+1]
		}
	}
	return s
}

// CanRun reports whether the document has the upstream data the stage needs.
// Returns nil when ready, or ErrStageNotReady annotated with the missing
// piece.
func CanRun(stage Stage, doc Mystery) error {
	switch stage {
	case StageConcept, StageOutput:
		return nil
	case StageCasting:
		if doc.Incident == "" {
			return errors.Wrap(ErrStageNotReady, "casting needs an incident description")
		}
	case StageTimeline:
		if len(doc.Characters) == 0 {
			return errors.Wrap(ErrStageNotReady, "timeline needs a cast")
		}
		if _, ok := doc.CharacterByID(doc.KillerID); !ok {
			return errors.Wrap(ErrStageNotReady, "killer does not resolve to a cast member",
				slog.String("killerId", doc.KillerID))
		}
		if _, ok := doc.CharacterByID(doc.SaboteurID); !ok {
			return errors.Wrap(ErrStageNotReady, "saboteur does not resolve to a cast member",
				slog.String("saboteurId", doc.SaboteurID))
		}
	case StageClues:
		if doc.Timeline == "" {
			return errors.Wrap(ErrStageNotReady, "clues need a timeline")
		}
	case StageDossiers:
		if doc.Timeline == "" {
			return errors.Wrap(ErrStageNotReady, "dossiers need a timeline")
		}
	case StageAudit:
		if !doc.AllFleshed() {
			return errors.Wrap(ErrStageNotReady, "audit needs every character fleshed")
		}
	default:
		return errors.Wrap(ErrUnknownStage, "can run", slog.String("stage", string(stage)))
	}
	return nil
}
