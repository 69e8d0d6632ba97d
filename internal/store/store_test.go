package store_test

import (
	"context"
	"io"
	"testing"

	"github.com/chrismelba/noirplan/internal/db"
	"github.com/chrismelba/noirplan/internal/mystery"
	"github.com/chrismelba/noirplan/internal/store"
	"github.com/chrismelba/noirplan/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

// newTestDB creates a new in-memory database for testing purposes.
func newTestDB(t *testing.T) *db.DBs {
	t.Helper()
	dbs, err := db.NewDB(":memory:")
	require.NoError(t, err, "open test database")
	t.Cleanup(func() {
		require.NoError(t, dbs.Close(), "close test database")
	})
	return dbs
}

func newTestStore(t *testing.T, dbs *db.DBs) *store.Store {
	t.Helper()
	s, err := store.New(context.Background(), dbs, testhelpers.NewLogger(io.Discard))
	require.NoError(t, err, "create store")
	return s
}

func TestStoreStartsEmpty(t *testing.T) {
	t.Parallel()
	s := newTestStore(t, newTestDB(t))

	doc := s.Document()
	require.Equal(t, mystery.New(), doc)
	require.Equal(t, mystery.StageConcept, s.Stage())
}

func TestApplyMergesShallowly(t *testing.T) {
	t.Parallel()
	s := newTestStore(t, newTestDB(t))
	ctx := context.Background()

	_, err := s.Apply(ctx, mystery.Patch{
		Title:    mystery.String("The Gilded Cage"),
		Incident: mystery.String("Poisoned sherry"),
	})
	require.NoError(t, err)

	before := s.Document()
	got, err := s.Apply(ctx, mystery.Patch{Timeline: mystery.String("T1")})
	require.NoError(t, err)

	require.Equal(t, "T1", got.Timeline)
	require.Equal(t, before.Title, got.Title, "omitted field changed")
	require.Equal(t, before.Incident, got.Incident, "omitted field changed")
	require.Equal(t, before.Environment, got.Environment, "default seed changed")
}

func TestPersistenceRoundTrip(t *testing.T) {
	t.Parallel()
	dbs := newTestDB(t)
	ctx := context.Background()

	s := newTestStore(t, dbs)
	_, err := s.Apply(ctx, mystery.Patch{
		Title: mystery.String("The Gilded Cage"),
		Characters: mystery.CharacterList([]mystery.Character{
			{ID: "c1", Name: "Lady Ashcroft", Gender: mystery.GenderFemale},
		}),
		KillerID: mystery.String("c1"),
	})
	require.NoError(t, err)
	require.NoError(t, s.SetStage(ctx, mystery.StageCasting))

	// A fresh store over the same database restores the same state.
	restored := newTestStore(t, dbs)
	doc := restored.Document()
	require.Equal(t, "The Gilded Cage", doc.Title)
	require.Len(t, doc.Characters, 1)
	require.Equal(t, "c1", doc.KillerID)
	require.Equal(t, mystery.StageCasting, restored.Stage())
}

func TestCorruptSnapshotFallsBackToEmpty(t *testing.T) {
	t.Parallel()
	dbs := newTestDB(t)
	ctx := context.Background()

	_, err := dbs.ReadWriteDB.ExecContext(ctx,
		`INSERT INTO snapshots (key, value) VALUES ('noirplan_mystery_data_v4', 'not json')`)
	require.NoError(t, err)
	_, err = dbs.ReadWriteDB.ExecContext(ctx,
		`INSERT INTO snapshots (key, value) VALUES ('noirplan_current_view_v4', 'NOT_A_STAGE')`)
	require.NoError(t, err)

	s := newTestStore(t, dbs)
	require.Equal(t, mystery.New(), s.Document(), "corrupt snapshot should fall back to empty document")
	require.Equal(t, mystery.StageConcept, s.Stage())
}

func TestResetRequiresConfirmation(t *testing.T) {
	t.Parallel()
	dbs := newTestDB(t)
	ctx := context.Background()
	s := newTestStore(t, dbs)

	_, err := s.Apply(ctx, mystery.Patch{Title: mystery.String("Doomed")})
	require.NoError(t, err)

	_, err = s.Reset(ctx, false)
	require.ErrorIs(t, err, store.ErrResetNotConfirmed)
	require.Equal(t, "Doomed", s.Document().Title, "unconfirmed reset must not touch the document")

	doc, err := s.Reset(ctx, true)
	require.NoError(t, err)
	require.Equal(t, mystery.New(), doc)

	// Persisted state is gone too.
	restored := newTestStore(t, dbs)
	require.Equal(t, mystery.New(), restored.Document())
}
