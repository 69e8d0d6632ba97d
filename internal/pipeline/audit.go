package pipeline

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/chrismelba/noirplan/internal/errors"
	"github.com/chrismelba/noirplan/internal/mystery"
)

// RunAudit runs the consistency audit and the beat coverage analysis
// concurrently. This is the only place two backend calls are in flight at
// once. Both must succeed before anything commits; if either fails, the
// document keeps its previous report and beats.
func (p *Pipeline) RunAudit(ctx context.Context) (mystery.Mystery, error) {
	if err := p.stages.acquire(); err != nil {
		return mystery.Mystery{}, err
	}
	defer p.stages.release()
	return p.runAudit(ctx)
}

func (p *Pipeline) runAudit(ctx context.Context) (mystery.Mystery, error) {
	doc := p.store.Document()
	if err := mystery.CanRun(mystery.StageAudit, doc); err != nil {
		return mystery.Mystery{}, err
	}

	var (
		report *mystery.ConsistencyReport
		beats  []mystery.StoryBeat
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		report, err = p.gen.Audit(gctx, doc)
		return err
	})
	g.Go(func() error {
		var err error
		beats, err = p.gen.AnalyzeCoverage(gctx, doc)
		return err
	})
	if err := g.Wait(); err != nil {
		return mystery.Mystery{}, err
	}

	return p.store.Apply(ctx, mystery.Patch{
		Report: report,
		Beats:  mystery.BeatList(beats),
	})
}

// FixIssue asks the backend to repair one detected defect. On success the
// document's timeline is replaced wholesale, the issue is marked fixed with
// its suggestion overwritten by the fix summary, and a fix marker is appended
// to the report notes. Every other issue is untouched, so the report's
// history of defects survives each fix.
func (p *Pipeline) FixIssue(ctx context.Context, issueID string) (mystery.Mystery, error) {
	if err := p.issues.acquire(); err != nil {
		return mystery.Mystery{}, err
	}
	defer p.issues.release()

	doc := p.store.Document()
	if doc.Report == nil {
		return mystery.Mystery{}, errors.Wrap(ErrNoReport, "fix issue", slog.String("id", issueID))
	}
	issue, found := findIssue(doc.Report.Issues, issueID)
	if !found {
		return mystery.Mystery{}, errors.Wrap(ErrUnknownIssue, "fix issue", slog.String("id", issueID))
	}

	resolution, err := p.gen.ResolveIssue(ctx, doc.Timeline, issue.Description)
	if err != nil {
		return mystery.Mystery{}, err
	}

	report := *doc.Report
	report.Issues = make([]mystery.ConsistencyIssue, len(doc.Report.Issues))
	for i, existing := range doc.Report.Issues {
		if existing.ID == issueID {
			existing.Fixed = true
			existing.Suggestion = resolution.Summary
		}
		report.Issues[i] = existing
	}
	report.Notes = doc.Report.Notes + "\n(Fixed: " + resolution.Summary + ")"

	return p.store.Apply(ctx, mystery.Patch{
		Timeline: mystery.String(resolution.Timeline),
		Report:   &report,
	})
}

func findIssue(issues []mystery.ConsistencyIssue, id string) (mystery.ConsistencyIssue, bool) {
	for _, issue := range issues {
		if issue.ID == id {
			return issue, true
		}
	}
	return mystery.ConsistencyIssue{}, false
}
