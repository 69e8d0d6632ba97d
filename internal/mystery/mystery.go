// Package mystery holds the working document for a murder-mystery party kit:
// the story concept, the cast of suspects, the master timeline, the physical
// clues, the per-character dossiers and the consistency audit results. The
// document is a single aggregate owning all nested collections; entities are
// value-like and replaced wholesale on update, never mutated in place.
package mystery

// Gender of a suspect. The generation backend is asked for one of the two
// values below; anything else is rejected at decode time.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Toggle returns the other gender.
func (g Gender) Toggle() Gender {
	if g == GenderMale {
		return GenderFemale
	}
	return GenderMale
}

// Valid reports whether g is one of the two supported values.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// CharacterInfo holds one round's disclosures for a suspect: things they are
// meant to share and things they are meant to hide.
type CharacterInfo struct {
	PublicInfo  []string `json:"publicInfo"`
	PrivateInfo []string `json:"privateInfo"`
}

// Character is one suspect. The skeleton fields (ID through InitialMotive) are
// set at casting; the narrative fields and both info blocks stay empty until
// the dossier step has run, which is tracked by IsFleshed.
type Character struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Gender        Gender `json:"gender"`
	Archetype     string `json:"archetype"`
	InitialMotive string `json:"initialMotive"`
	// PreGameBlurb is the costume and acting guide handed to the player.
	PreGameBlurb       string `json:"preGameBlurb"`
	Background         string `json:"background"`
	Relationships      string `json:"relationships"`
	ConnectionToVictim string `json:"connectionToVictim"`
	IsFleshed          bool   `json:"isFleshed"`
	// Round1 covers play before the twist, Round2 after it.
	Round1 CharacterInfo `json:"round1"`
	Round2 CharacterInfo `json:"round2"`
}

// Clue is a physical prop the host fabricates and hides.
type Clue struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	LocationToHide string `json:"locationToHide"`
	Relevance      string `json:"relevance"`
}

// StoryBeat is one major narrative beat with the evidence paths supporting it.
// Beats are audit-derived and informational only.
type StoryBeat struct {
	BeatName    string   `json:"beatName"`
	Description string   `json:"description"`
	Clues       []string `json:"clues"`
}

// ConsistencyIssue is one logical defect found by the audit. Fixed is set only
// by the issue resolver; Suggestion is overwritten with the fix summary.
type ConsistencyIssue struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Suggestion  string `json:"suggestion"`
	Fixed       bool   `json:"fixed"`
}

// ConsistencyReport is the structured audit result. Notes is append-only:
// fixes append a marker, they never replace earlier notes.
type ConsistencyReport struct {
	IsValid bool               `json:"isValid"`
	Issues  []ConsistencyIssue `json:"issues"`
	Notes   string             `json:"notes"`
}

// Mystery is the single root aggregate for a working session. The JSON field
// names double as the persisted snapshot format.
type Mystery struct {
	Title       string `json:"title"`
	Theme       string `json:"theme"`
	VictimName  string `json:"victimName"`
	// Environment holds the detailed location and atmosphere description.
	Environment string `json:"environment"`
	// Parties describes the factions or groups present at the event.
	Parties   string `json:"generalParties"`
	ClueTools string `json:"clueTools"`
	// Incident is the "how it happened" description, without naming the killer.
	Incident string `json:"coreStory"`
	// Timeline is the chronological plan embedding the hidden truth. Opaque
	// prose: never parsed, only fed back into downstream prompts.
	Timeline  string `json:"timeline"`
	Twist     string `json:"twist"`
	NumGuests int    `json:"numGuests"`

	Characters []Character `json:"characters"`
	Clues      []Clue      `json:"clues"`

	// KillerID and SaboteurID reference Characters by id. Both are assigned
	// together after casting. They may point at the same character.
	KillerID   string `json:"killerId,omitempty"`
	SaboteurID string `json:"saboteurId,omitempty"`

	Beats  []StoryBeat        `json:"beats"`
	Report *ConsistencyReport `json:"consistencyReport"`
}

// New returns the empty document with the default seeds a fresh session
// starts from.
func New() Mystery {
	return Mystery{
		Environment: "A grand Victorian estate",
		Parties:     "High-society relatives and staff",
		ClueTools:   "Printer, household items, glue, ink",
		NumGuests:   6,
		Characters:  []Character{},
		Clues:       []Clue{},
		Beats:       []StoryBeat{},
	}
}

// CharacterByID returns the character with the given id and whether it exists.
func (m Mystery) CharacterByID(id string) (Character, bool) {
	for _, c := range m.Characters {
		if c.ID == id {
			return c, true
		}
	}
	return Character{}, false
}

// Clone returns a deep copy of the document so that callers can hand out
// snapshots without aliasing the live collections.
func (m Mystery) Clone() Mystery {
	out := m
	out.Characters = cloneCharacters(m.Characters)
	out.Clues = append([]Clue(nil), m.Clues...)
	out.Beats = cloneBeats(m.Beats)
	if m.Report != nil {
		report := *m.Report
		report.Issues = append([]ConsistencyIssue(nil), m.Report.Issues...)
		out.Report = &report
	}
	return out
}

func cloneCharacters(characters []Character) []Character {
	out := make([]Character, len(characters))
	for i, c := range characters {
		c.Round1.PublicInfo = append([]string(nil), c.Round1.PublicInfo...)
		c.Round1.PrivateInfo = append([]string(nil), c.Round1.PrivateInfo...)
		c.Round2.PublicInfo = append([]string(nil), c.Round2.PublicInfo...)
		c.Round2.PrivateInfo = append([]string(nil), c.Round2.PrivateInfo...)
		out[i] = c
	}
	return out
}

func cloneBeats(beats []StoryBeat) []StoryBeat {
	out := make([]StoryBeat, len(beats))
	for i, b := range beats {
		b.Clues = append([]string(nil), b.Clues...)
		out[i] = b
	}
	return out
}

// ReplaceCharacter returns a copy of the collection with the element matching
// updated.ID replaced and every other element untouched. The second return
// value reports whether a match was found.
func ReplaceCharacter(characters []Character, updated Character) ([]Character, bool) {
	out := make([]Character, len(characters))
	found := false
	for i, c := range characters {
		if c.ID == updated.ID {
			out[i] = updated
			found = true
			continue
		}
		out[i] = c
	}
	return out, found
}

// RemoveCharacter returns a copy of the collection without the element with
// the given id. Removing the current killer or saboteur leaves the role
// reference dangling; CanRun surfaces that before the timeline stage.
func RemoveCharacter(characters []Character, id string) ([]Character, bool) {
	out := make([]Character, 0, len(characters))
	found := false
	for _, c := range characters {
		if c.ID == id {
			found = true
			continue
		}
		out = append(out, c)
	}
	return out, found
}

// ReplaceClue mirrors ReplaceCharacter for the clue collection.
func ReplaceClue(clues []Clue, updated Clue) ([]Clue, bool) {
	out := make([]Clue, len(clues))
	found := false
	for i, c := range clues {
		if c.ID == updated.ID {
			out[i] = updated
			found = true
			continue
		}
		out[i] = c
	}
	return out, found
}

// RemoveClue mirrors RemoveCharacter for the clue collection.
func RemoveClue(clues []Clue, id string) ([]Clue, bool) {
	out := make([]Clue, 0, len(clues))
	found := false
	for _, c := range clues {
		if c.ID == id {
			found = true
			continue
		}
		out = append(out, c)
	}
	return out, found
}

// AllFleshed reports whether every character has a generated dossier.
func (m Mystery) AllFleshed() bool {
	if len(m.Characters) == 0 {
		return false
	}
	for _, c := range m.Characters {
		if !c.IsFleshed {
			return false
		}
	}
	return true
}
