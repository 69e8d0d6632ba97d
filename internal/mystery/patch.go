package mystery

// Patch is a sparse set of top-level field replacements. A nil field leaves
// the current value untouched; a non-nil field fully replaces it. This is the
// only way the document is mutated, so every write path shares the same
// shallow-merge semantics.
type Patch struct {
	Title       *string
	Theme       *string
	VictimName  *string
	Environment *string
	Parties     *string
	ClueTools   *string
	Incident    *string
	Timeline    *string
	Twist       *string
	NumGuests   *int

	Characters *[]Character
	Clues      *[]Clue

	KillerID   *string
	SaboteurID *string

	Beats  *[]StoryBeat
	Report *ConsistencyReport
}

// Apply merges the patch over doc and returns the result. doc is taken by
// value, so the caller's copy is never touched.
func (p Patch) Apply(doc Mystery) Mystery {
	if p.Title != nil {
		doc.Title = *p.Title
	}
	if p.Theme != nil {
		doc.Theme = *p.Theme
	}
	if p.VictimName != nil {
		doc.VictimName = *p.VictimName
	}
	if p.Environment != nil {
		doc.Environment = *p.Environment
	}
	if p.Parties != nil {
		doc.Parties = *p.Parties
	}
	if p.ClueTools != nil {
		doc.ClueTools = *p.ClueTools
	}
	if p.Incident != nil {
		doc.Incident = *p.Incident
	}
	if p.Timeline != nil {
		doc.Timeline = *p.Timeline
	}
	if p.Twist != nil {
		doc.Twist = *p.Twist
	}
	if p.NumGuests != nil {
		doc.NumGuests = *p.NumGuests
	}
	if p.Characters != nil {
		doc.Characters = *p.Characters
	}
	if p.Clues != nil {
		doc.Clues = *p.Clues
	}
	if p.KillerID != nil {
		doc.KillerID = *p.KillerID
	}
	if p.SaboteurID != nil {
		doc.SaboteurID = *p.SaboteurID
	}
	if p.Beats != nil {
		doc.Beats = *p.Beats
	}
	if p.Report != nil {
		doc.Report = p.Report
	}
	return doc
}

// String returns a pointer to s for building patches inline.
func String(s string) *string { return &s }

// Int returns a pointer to i for building patches inline.
func Int(i int) *int { return &i }

// CharacterList returns a pointer to cs for building patches inline.
func CharacterList(cs []Character) *[]Character { return &cs }

// ClueList returns a pointer to cs for building patches inline.
func ClueList(cs []Clue) *[]Clue { return &cs }

// BeatList returns a pointer to bs for building patches inline.
func BeatList(bs []StoryBeat) *[]StoryBeat { return &bs }
