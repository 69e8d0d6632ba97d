package gen

import (
	"context"
	"fmt"

	"github.com/chrismelba/noirplan/internal/ai"
	"github.com/chrismelba/noirplan/internal/errors"
)

// Resolution is the patch produced for one consistency issue: a full
// replacement timeline plus a human-readable summary of what changed.
type Resolution struct {
	Timeline string `json:"timeline"`
	Summary  string `json:"summary"`
}

const resolvePromptFormat = `Fix this logical inconsistency in a murder mystery: %q

CURRENT TIMELINE:
%s

Rewrite the timeline so the inconsistency is resolved, changing as little as possible.
Return a JSON object with the keys timeline (the full revised timeline) and summary (a short description of the change).`

// ResolveIssue asks the backend for a repair of one detected defect. The
// caller applies the returned timeline and marks the issue fixed; other
// issues are not touched.
func (s *Service) ResolveIssue(ctx context.Context, currentTimeline, issueDescription string) (Resolution, error) {
	prompt := fmt.Sprintf(resolvePromptFormat, issueDescription, currentTimeline)

	content, err := s.completer.Complete(ctx, ai.Request{
		System: jsonSystemPrompt,
		Prompt: prompt,
		JSON:   true,
	})
	if err != nil {
		return Resolution{}, errors.Wrap(err, "resolve inconsistency")
	}

	var resolution Resolution
	if err = ai.DecodeJSON(content, &resolution); err != nil {
		return Resolution{}, errors.Wrap(err, "decode resolution")
	}
	if resolution.Timeline == "" {
		return Resolution{}, errors.Wrap(ai.ErrMalformedResponse, "resolution has no timeline")
	}
	return resolution, nil
}
