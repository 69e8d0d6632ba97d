package mystery_test

import (
	"testing"

	"github.com/chrismelba/noirplan/internal/mystery"
	"github.com/stretchr/testify/require"
)

func TestPatchApply(t *testing.T) {
	base := mystery.New()
	base.Title = "The Gilded Cage"
	base.Incident = "Poisoned sherry at midnight"
	base.Characters = []mystery.Character{
		{ID: "c1", Name: "Lady Ashcroft", Gender: mystery.GenderFemale},
		{ID: "c2", Name: "Dr. Voss", Gender: mystery.GenderMale},
	}

	tests := []struct {
		name  string
		patch mystery.Patch
		check func(t *testing.T, got mystery.Mystery)
	}{
		{
			name:  "empty patch leaves everything untouched",
			patch: mystery.Patch{},
			check: func(t *testing.T, got mystery.Mystery) {
				require.Equal(t, base, got, "document changed without a patch field")
			},
		},
		{
			name:  "timeline replacement keeps siblings",
			patch: mystery.Patch{Timeline: mystery.String("T2")},
			check: func(t *testing.T, got mystery.Mystery) {
				require.Equal(t, "T2", got.Timeline)
				require.Equal(t, base.Title, got.Title, "title should be untouched")
				require.Equal(t, base.Characters, got.Characters, "characters should be untouched")
			},
		},
		{
			name:  "empty string replaces, nil does not",
			patch: mystery.Patch{Title: mystery.String("")},
			check: func(t *testing.T, got mystery.Mystery) {
				require.Empty(t, got.Title, "explicit empty string must replace")
				require.Equal(t, base.Incident, got.Incident)
			},
		},
		{
			name: "collection replacement is wholesale",
			patch: mystery.Patch{Characters: mystery.CharacterList([]mystery.Character{
				{ID: "c3", Name: "Inspector Hale", Gender: mystery.GenderMale},
			})},
			check: func(t *testing.T, got mystery.Mystery) {
				require.Len(t, got.Characters, 1)
				require.Equal(t, "c3", got.Characters[0].ID)
			},
		},
		{
			name:  "report attaches without touching beats",
			patch: mystery.Patch{Report: &mystery.ConsistencyReport{IsValid: true, Notes: "clean"}},
			check: func(t *testing.T, got mystery.Mystery) {
				require.NotNil(t, got.Report)
				require.True(t, got.Report.IsValid)
				require.Equal(t, base.Beats, got.Beats)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.patch.Apply(base.Clone())
			tt.check(t, got)
		})
	}
}

func TestReplaceCharacter(t *testing.T) {
	characters := []mystery.Character{
		{ID: "c1", Name: "Lady Ashcroft"},
		{ID: "c2", Name: "Dr. Voss"},
		{ID: "c3", Name: "Inspector Hale"},
	}

	updated := mystery.Character{ID: "c2", Name: "Dr. Voss", IsFleshed: true, Background: "A ruined practice"}
	got, found := mystery.ReplaceCharacter(characters, updated)

	require.True(t, found, "expected a match for c2")
	require.Equal(t, updated, got[1])
	require.Equal(t, characters[0], got[0], "sibling before the match changed")
	require.Equal(t, characters[2], got[2], "sibling after the match changed")

	_, found = mystery.ReplaceCharacter(characters, mystery.Character{ID: "nope"})
	require.False(t, found)
}

func TestRemoveCharacter(t *testing.T) {
	characters := []mystery.Character{
		{ID: "c1"},
		{ID: "c2"},
	}
	got, found := mystery.RemoveCharacter(characters, "c1")
	require.True(t, found)
	require.Len(t, got, 1)
	require.Equal(t, "c2", got[0].ID)

	got, found = mystery.RemoveCharacter(characters, "missing")
	require.False(t, found)
	require.Len(t, got, 2)
}

func TestCloneIsDeep(t *testing.T) {
	doc := mystery.New()
	doc.Characters = []mystery.Character{{
		ID:     "c1",
		Round1: mystery.CharacterInfo{PublicInfo: []string{"saw someone in the hallway"}},
	}}
	doc.Report = &mystery.ConsistencyReport{Issues: []mystery.ConsistencyIssue{{ID: "i1"}}}

	clone := doc.Clone()
	clone.Characters[0].Round1.PublicInfo[0] = "changed"
	clone.Report.Issues[0].Fixed = true

	require.Equal(t, "saw someone in the hallway", doc.Characters[0].Round1.PublicInfo[0])
	require.False(t, doc.Report.Issues[0].Fixed)
}
