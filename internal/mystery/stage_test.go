package mystery_test

import (
	"testing"

	"github.com/chrismelba/noirplan/internal/mystery"
	"github.com/stretchr/testify/require"
)

func fleshedCast(ids ...string) []mystery.Character {
	characters := make([]mystery.Character, len(ids))
	for i, id := range ids {
		characters[i] = mystery.Character{ID: id, Name: id, IsFleshed: true}
	}
	return characters
}

func TestCanRun(t *testing.T) {
	ready := mystery.New()
	ready.Incident = "Poisoned sherry"
	ready.Timeline = "22:00 the lights went out"
	ready.Characters = fleshedCast("c1", "c2")
	ready.KillerID = "c1"
	ready.SaboteurID = "c2"

	tests := []struct {
		name    string
		stage   mystery.Stage
		mutate  func(doc *mystery.Mystery)
		wantErr error
	}{
		{
			name:   "concept always ready",
			stage:  mystery.StageConcept,
			mutate: func(doc *mystery.Mystery) { *doc = mystery.New() },
		},
		{
			name:    "casting needs incident",
			stage:   mystery.StageCasting,
			mutate:  func(doc *mystery.Mystery) { doc.Incident = "" },
			wantErr: mystery.ErrStageNotReady,
		},
		{
			name:   "casting ready with incident",
			stage:  mystery.StageCasting,
			mutate: func(doc *mystery.Mystery) {},
		},
		{
			name:    "timeline needs cast",
			stage:   mystery.StageTimeline,
			mutate:  func(doc *mystery.Mystery) { doc.Characters = nil },
			wantErr: mystery.ErrStageNotReady,
		},
		{
			name:    "timeline refuses dangling killer",
			stage:   mystery.StageTimeline,
			mutate:  func(doc *mystery.Mystery) { doc.Characters, _ = mystery.RemoveCharacter(doc.Characters, "c1") },
			wantErr: mystery.ErrStageNotReady,
		},
		{
			name:    "timeline refuses dangling saboteur",
			stage:   mystery.StageTimeline,
			mutate:  func(doc *mystery.Mystery) { doc.SaboteurID = "ghost" },
			wantErr: mystery.ErrStageNotReady,
		},
		{
			name:   "timeline ready with resolvable roles",
			stage:  mystery.StageTimeline,
			mutate: func(doc *mystery.Mystery) {},
		},
		{
			name:    "clues need timeline",
			stage:   mystery.StageClues,
			mutate:  func(doc *mystery.Mystery) { doc.Timeline = "" },
			wantErr: mystery.ErrStageNotReady,
		},
		{
			name:    "audit needs every character fleshed",
			stage:   mystery.StageAudit,
			mutate:  func(doc *mystery.Mystery) { doc.Characters[0].IsFleshed = false },
			wantErr: mystery.ErrStageNotReady,
		},
		{
			name:    "audit needs a cast at all",
			stage:   mystery.StageAudit,
			mutate:  func(doc *mystery.Mystery) { doc.Characters = nil },
			wantErr: mystery.ErrStageNotReady,
		},
		{
			name:   "output always ready",
			stage:  mystery.StageOutput,
			mutate: func(doc *mystery.Mystery) {},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := ready.Clone()
			tt.mutate(&doc)
			err := mystery.CanRun(tt.stage, doc)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestParseStage(t *testing.T) {
	stage, err := mystery.ParseStage("dossiers")
	require.NoError(t, err)
	require.Equal(t, mystery.StageDossiers, stage)

	_, err = mystery.ParseStage("SETUP")
	require.ErrorIs(t, err, mystery.ErrUnknownStage)
}

func TestStageNext(t *testing.T) {
	require.Equal(t, mystery.StageCasting, mystery.StageConcept.Next())
	require.Equal(t, mystery.StageOutput, mystery.StageOutput.Next(), "last stage stays put")
}
