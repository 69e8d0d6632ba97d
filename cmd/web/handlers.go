package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/chrismelba/noirplan/internal/errors"
	"github.com/chrismelba/noirplan/internal/gen"
	"github.com/chrismelba/noirplan/internal/mystery"
	"github.com/chrismelba/noirplan/internal/output"
	"github.com/chrismelba/noirplan/internal/random"
)

// luckyEventBuffer holds a full run's worth of progress messages, so the run
// can finish and release its busy slots even when nobody subscribes.
const luckyEventBuffer = 64

// healthy responds with a JSON object indicating that the server is healthy.
func (app *application) healthy(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (app *application) getMystery(w http.ResponseWriter, r *http.Request) {
	app.writeSession(w, r, app.store.Document())
}

func (app *application) selectStage(w http.ResponseWriter, r *http.Request) {
	stage, err := mystery.ParseStage(r.PathValue("stage"))
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	if err = app.pipeline.SelectStage(r.Context(), stage); err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeSession(w, r, app.store.Document())
}

func (app *application) nextStage(w http.ResponseWriter, r *http.Request) {
	if _, err := app.pipeline.NextStage(r.Context()); err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeSession(w, r, app.store.Document())
}

type conceptRequest struct {
	Theme     string `json:"theme"`
	Location  string `json:"location"`
	NumGuests int    `json:"numGuests"`
	Details   string `json:"details"`
}

func (r conceptRequest) params() gen.ConceptParams {
	return gen.ConceptParams{
		Theme:     r.Theme,
		Location:  r.Location,
		NumGuests: r.NumGuests,
		Details:   r.Details,
	}
}

func (app *application) runConcept(w http.ResponseWriter, r *http.Request) {
	var req conceptRequest
	if !app.decodeJSON(w, r, &req) {
		return
	}
	doc, err := app.pipeline.RunConcept(r.Context(), req.params())
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeSession(w, r, doc)
}

func (app *application) refineConcept(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Suggestion string `json:"suggestion"`
	}
	if !app.decodeJSON(w, r, &req) {
		return
	}
	doc, err := app.pipeline.RefineConcept(r.Context(), req.Suggestion)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeSession(w, r, doc)
}

func (app *application) runCasting(w http.ResponseWriter, r *http.Request) {
	doc, err := app.pipeline.RunCasting(r.Context())
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeSession(w, r, doc)
}

func (app *application) runTimeline(w http.ResponseWriter, r *http.Request) {
	doc, err := app.pipeline.RunTimeline(r.Context())
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeSession(w, r, doc)
}

func (app *application) runClues(w http.ResponseWriter, r *http.Request) {
	doc, err := app.pipeline.RunClues(r.Context())
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeSession(w, r, doc)
}

func (app *application) runAudit(w http.ResponseWriter, r *http.Request) {
	doc, err := app.pipeline.RunAudit(r.Context())
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeSession(w, r, doc)
}

// editStory applies manual free-text edits. Field names match the snapshot
// format; omitted fields stay untouched.
func (app *application) editStory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       *string `json:"title"`
		Theme       *string `json:"theme"`
		VictimName  *string `json:"victimName"`
		Environment *string `json:"environment"`
		Parties     *string `json:"generalParties"`
		ClueTools   *string `json:"clueTools"`
		Incident    *string `json:"coreStory"`
		Timeline    *string `json:"timeline"`
		Twist       *string `json:"twist"`
		NumGuests   *int    `json:"numGuests"`
	}
	if !app.decodeJSON(w, r, &req) {
		return
	}
	doc, err := app.pipeline.EditStory(r.Context(), mystery.Patch{
		Title:       req.Title,
		Theme:       req.Theme,
		VictimName:  req.VictimName,
		Environment: req.Environment,
		Parties:     req.Parties,
		ClueTools:   req.ClueTools,
		Incident:    req.Incident,
		Timeline:    req.Timeline,
		Twist:       req.Twist,
		NumGuests:   req.NumGuests,
	})
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeSession(w, r, doc)
}

func (app *application) addCharacter(w http.ResponseWriter, r *http.Request) {
	var character mystery.Character
	if !app.decodeJSON(w, r, &character) {
		return
	}
	doc, err := app.pipeline.AddCharacter(r.Context(), character)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeSession(w, r, doc)
}

func (app *application) updateCharacter(w http.ResponseWriter, r *http.Request) {
	var character mystery.Character
	if !app.decodeJSON(w, r, &character) {
		return
	}
	character.ID = r.PathValue("id")
	doc, err := app.pipeline.UpdateCharacter(r.Context(), character)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeSession(w, r, doc)
}

func (app *application) removeCharacter(w http.ResponseWriter, r *http.Request) {
	doc, err := app.pipeline.RemoveCharacter(r.Context(), r.PathValue("id"))
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeSession(w, r, doc)
}

func (app *application) fleshCharacter(w http.ResponseWriter, r *http.Request) {
	doc, err := app.pipeline.FleshCharacter(r.Context(), r.PathValue("id"))
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeSession(w, r, doc)
}

func (app *application) toggleGender(w http.ResponseWriter, r *http.Request) {
	doc, err := app.pipeline.ToggleGender(r.Context(), r.PathValue("id"))
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeSession(w, r, doc)
}

func (app *application) fleshAll(w http.ResponseWriter, r *http.Request) {
	doc, err := app.pipeline.FleshAll(r.Context(), nil)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeSession(w, r, doc)
}

func (app *application) updateClue(w http.ResponseWriter, r *http.Request) {
	var clue mystery.Clue
	if !app.decodeJSON(w, r, &clue) {
		return
	}
	clue.ID = r.PathValue("id")
	doc, err := app.pipeline.UpdateClue(r.Context(), clue)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeSession(w, r, doc)
}

func (app *application) removeClue(w http.ResponseWriter, r *http.Request) {
	doc, err := app.pipeline.RemoveClue(r.Context(), r.PathValue("id"))
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeSession(w, r, doc)
}

func (app *application) fixIssue(w http.ResponseWriter, r *http.Request) {
	doc, err := app.pipeline.FixIssue(r.Context(), r.PathValue("id"))
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeSession(w, r, doc)
}

// startLucky kicks off the end-to-end run in the background and returns the
// run id. Progress is streamed on /api/lucky/{run}/events.
func (app *application) startLucky(w http.ResponseWriter, r *http.Request) {
	var req conceptRequest
	if !app.decodeJSON(w, r, &req) {
		return
	}

	runID, err := random.Letters(12)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	// Buffered so the run never blocks on a subscriber that crashed or never
	// connected; an attentive subscriber drains faster than the run emits. A
	// blocked send here would hold the pipeline's busy slots forever.
	events := make(chan string, luckyEventBuffer)
	send := func(msg string) {
		select {
		case events <- msg:
		default:
			app.logger.Warn("dropping lucky progress event", slog.String("run", runID))
		}
	}
	app.broker.Publish(runID, events)

	// The run outlives the request; the progress stream is how the client
	// follows it.
	go func() {
		defer func() {
			close(events)
			app.broker.Unpublish(runID)
		}()
		if _, err := app.pipeline.Lucky(context.Background(), req.params(), send); err != nil {
			app.logger.Error("lucky run failed", errors.SlogError(err))
			send("Error: " + err.Error())
			return
		}
		send("Done")
	}()

	app.writeJSON(w, r, http.StatusAccepted, map[string]string{"run": runID})
}

// luckyEvents streams one run's progress as server-sent events. The stream
// ends when the run finishes or when the subscriber arrives too late.
func (app *application) luckyEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		app.serverError(w, r, errors.New("response writer does not support streaming"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	events, ok := <-app.broker.Subscribe(r.PathValue("run"))
	if !ok || events == nil {
		// Unknown run or the producer is already done.
		fmt.Fprint(w, "event: end\ndata: \n\n")
		flusher.Flush()
		return
	}
	for msg := range events {
		fmt.Fprintf(w, "data: %s\n\n", msg)
		flusher.Flush()
	}
	fmt.Fprint(w, "event: end\ndata: \n\n")
	flusher.Flush()
}

func (app *application) reset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Confirm bool `json:"confirm"`
	}
	if !app.decodeJSON(w, r, &req) {
		return
	}
	doc, err := app.store.Reset(r.Context(), req.Confirm)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeSession(w, r, doc)
}

// printKit renders the printable party kit.
func (app *application) printKit(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := output.RenderHTML(w, app.store.Document()); err != nil {
		app.serverError(w, r, err)
	}
}
