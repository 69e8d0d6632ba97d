// Package store owns the live mystery document and its whole-document
// persistence. Every successful mutation is serialized to the snapshots table
// so that a restarted session picks up exactly where it left off.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/chrismelba/noirplan/internal/db"
	"github.com/chrismelba/noirplan/internal/errors"
	"github.com/chrismelba/noirplan/internal/mystery"
)

// Fixed snapshot keys. They match the storage keys of earlier releases so
// existing saves keep loading.
const (
	mysteryKey = "noirplan_mystery_data_v4"
	stageKey   = "noirplan_current_view_v4"
)

// ErrResetNotConfirmed is returned when Reset is called without the explicit
// confirmation the destructive action requires.
var ErrResetNotConfirmed = errors.NewSentinel("reset requires confirmation")

// Store holds the single live document and the current pipeline stage.
// All mutation is single-writer behind the mutex; callers receive deep copies.
type Store struct {
	dbs    *db.DBs
	logger *slog.Logger

	mu    sync.Mutex
	doc   mystery.Mystery
	stage mystery.Stage
}

// New restores the document and stage from the snapshots table. A missing or
// unreadable snapshot falls back to the empty document; restore is never
// fatal.
func New(ctx context.Context, dbs *db.DBs, logger *slog.Logger) (*Store, error) {
	s := &Store{
		dbs:    dbs,
		logger: logger.With("source", "Store"),
		doc:    mystery.New(),
		stage:  mystery.StageConcept,
	}

	if raw, err := s.loadSnapshot(ctx, mysteryKey); err != nil {
		return nil, err
	} else if raw != "" {
		var doc mystery.Mystery
		if err = json.Unmarshal([]byte(raw), &doc); err != nil {
			s.logger.Warn("discarding unreadable mystery snapshot", errors.SlogError(err))
		} else {
			s.doc = doc
		}
	}

	if raw, err := s.loadSnapshot(ctx, stageKey); err != nil {
		return nil, err
	} else if raw != "" {
		stage, err := mystery.ParseStage(raw)
		if err != nil {
			s.logger.Warn("discarding unreadable stage snapshot", errors.SlogError(err))
		} else {
			s.stage = stage
		}
	}

	return s, nil
}

func (s *Store) loadSnapshot(ctx context.Context, key string) (string, error) {
	var value string
	stmt := `SELECT value FROM snapshots WHERE key = ?`
	err := s.dbs.ReadDB.QueryRowContext(ctx, stmt, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "load snapshot", slog.String("key", key))
	}
	return value, nil
}

func (s *Store) saveSnapshot(ctx context.Context, key, value string) error {
	stmt := `INSERT INTO snapshots (key, value, updated_at)
VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
ON CONFLICT (key) DO UPDATE SET value      = excluded.value,
                                updated_at = excluded.updated_at`
	if _, err := s.dbs.ReadWriteDB.ExecContext(ctx, stmt, key, value); err != nil {
		return errors.Wrap(err, "save snapshot", slog.String("key", key))
	}
	return nil
}

// Document returns a deep copy of the current document.
func (s *Store) Document() mystery.Mystery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Stage returns the current pipeline stage.
func (s *Store) Stage() mystery.Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// Apply merges the patch over the document, persists the result and returns
// the updated document. The document stays unchanged if persistence fails.
func (s *Store) Apply(ctx context.Context, patch mystery.Patch) (mystery.Mystery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := patch.Apply(s.doc.Clone())
	if err := s.persistDocument(ctx, updated); err != nil {
		return mystery.Mystery{}, err
	}
	s.doc = updated
	return updated.Clone(), nil
}

func (s *Store) persistDocument(ctx context.Context, doc mystery.Mystery) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "marshal mystery")
	}
	return s.saveSnapshot(ctx, mysteryKey, string(raw))
}

// SetStage persists and switches the current pipeline stage.
func (s *Store) SetStage(ctx context.Context, stage mystery.Stage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.saveSnapshot(ctx, stageKey, string(stage)); err != nil {
		return err
	}
	s.stage = stage
	return nil
}

// Reset restores the empty document and clears persisted state. The caller
// must pass confirm=true; this is the only destructive operation in the
// system.
func (s *Store) Reset(ctx context.Context, confirm bool) (mystery.Mystery, error) {
	if !confirm {
		return mystery.Mystery{}, ErrResetNotConfirmed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stmt := `DELETE FROM snapshots WHERE key IN (?, ?)`
	if _, err := s.dbs.ReadWriteDB.ExecContext(ctx, stmt, mysteryKey, stageKey); err != nil {
		return mystery.Mystery{}, errors.Wrap(err, "clear snapshots")
	}

	s.doc = mystery.New()
	s.stage = mystery.StageConcept
	return s.doc.Clone(), nil
}
