package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/chrismelba/noirplan/internal/ai"
	"github.com/chrismelba/noirplan/internal/errors"
	"github.com/chrismelba/noirplan/internal/mystery"
	"github.com/chrismelba/noirplan/internal/pipeline"
	"github.com/chrismelba/noirplan/internal/store"
)

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error",
		slog.String("method", method), slog.String("uri", uri), errors.SlogError(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int, err error) {
	app.logger.Debug(http.StatusText(status),
		"method", r.Method, "uri", r.URL.RequestURI(), errors.SlogError(err))
	http.Error(w, err.Error(), status)
}

// handleError maps the domain sentinels onto HTTP statuses. Anything
// unrecognized is a server error.
func (app *application) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, pipeline.ErrBusy):
		app.clientError(w, r, http.StatusConflict, err)
	case errors.Is(err, mystery.ErrStageNotReady),
		errors.Is(err, mystery.ErrUnknownStage),
		errors.Is(err, store.ErrResetNotConfirmed):
		app.clientError(w, r, http.StatusUnprocessableEntity, err)
	case errors.Is(err, pipeline.ErrUnknownCharacter),
		errors.Is(err, pipeline.ErrUnknownClue),
		errors.Is(err, pipeline.ErrUnknownIssue),
		errors.Is(err, pipeline.ErrNoReport):
		app.clientError(w, r, http.StatusNotFound, err)
	case errors.Is(err, ai.ErrMalformedResponse):
		app.clientError(w, r, http.StatusBadGateway, err)
	default:
		app.serverError(w, r, err)
	}
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "encode response", errors.SlogError(err))
	}
}

func (app *application) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		app.clientError(w, r, http.StatusBadRequest, errors.Wrap(err, "decode request body"))
		return false
	}
	return true
}

// sessionResponse is the standard success payload: the whole document plus
// the current stage, mirroring what a restart would restore.
type sessionResponse struct {
	Mystery mystery.Mystery `json:"mystery"`
	Stage   mystery.Stage   `json:"stage"`
}

func (app *application) writeSession(w http.ResponseWriter, r *http.Request, doc mystery.Mystery) {
	app.writeJSON(w, r, http.StatusOK, sessionResponse{Mystery: doc, Stage: app.store.Stage()})
}
