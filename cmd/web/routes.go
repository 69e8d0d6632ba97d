package main

import (
	"net/http"

	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/healthy", app.healthy)

	mux.HandleFunc("GET /api/mystery", app.getMystery)
	mux.HandleFunc("POST /api/stage/next", app.nextStage)
	mux.HandleFunc("POST /api/stage/{stage}", app.selectStage)

	mux.HandleFunc("POST /api/concept", app.runConcept)
	mux.HandleFunc("POST /api/concept/refine", app.refineConcept)
	mux.HandleFunc("POST /api/cast", app.runCasting)
	mux.HandleFunc("POST /api/timeline", app.runTimeline)
	mux.HandleFunc("POST /api/clues", app.runClues)
	mux.HandleFunc("POST /api/audit", app.runAudit)
	mux.HandleFunc("POST /api/story", app.editStory)

	mux.HandleFunc("POST /api/characters", app.addCharacter)
	mux.HandleFunc("POST /api/characters/flesh-all", app.fleshAll)
	mux.HandleFunc("PUT /api/characters/{id}", app.updateCharacter)
	mux.HandleFunc("DELETE /api/characters/{id}", app.removeCharacter)
	mux.HandleFunc("POST /api/characters/{id}/flesh", app.fleshCharacter)
	mux.HandleFunc("POST /api/characters/{id}/toggle-gender", app.toggleGender)

	mux.HandleFunc("PUT /api/clues/{id}", app.updateClue)
	mux.HandleFunc("DELETE /api/clues/{id}", app.removeClue)

	mux.HandleFunc("POST /api/issues/{id}/fix", app.fixIssue)

	mux.HandleFunc("POST /api/lucky", app.startLucky)
	mux.HandleFunc("GET /api/lucky/{run}/events", app.luckyEvents)

	mux.HandleFunc("POST /api/reset", app.reset)

	mux.HandleFunc("GET /kit", app.printKit)

	return alice.New(app.recoverPanic, app.logRequest, secureHeaders).Then(mux)
}
