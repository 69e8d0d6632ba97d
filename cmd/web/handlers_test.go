package main

import (
	"bufio"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/chrismelba/noirplan/internal/mystery"
)

const conceptContent = `{
	"title": "The Gilded Cage",
	"victim": "Lord Ashcroft, the host",
	"atmosphere": "Fog pressing on the conservatory glass",
	"incident": "Poisoned during the toast",
	"parties": "Family, staff and one uninvited guest",
	"twist": "The lights fail at midnight"
}`

const castContent = `{"suspects": [
	{"id": "c1", "name": "Ada Blackwood", "gender": "female", "archetype": "The Widow", "initialMotive": "Inheritance"},
	{"id": "c2", "name": "Bertram Hale", "gender": "male", "archetype": "The Butler", "initialMotive": "Blackmail"},
	{"id": "c3", "name": "Clara Finch", "gender": "female", "archetype": "The Heiress", "initialMotive": "Jealousy"}
]}`

const cluesContent = `{"clues": [
	{"id": "k1", "name": "Torn glove", "description": "Cut and scorch a glove", "locationToHide": "Fireplace", "relevance": "Places the killer at the hearth"}
]}`

const dossierContent = `{
	"preGameBlurb": "Wear black",
	"background": "Grew up on the estate",
	"relationships": "Distrusts the staff",
	"connectionToVictim": "Owed the victim money",
	"round1": {"publicInfo": ["Saw a figure near the conservatory"], "privateInfo": ["Swapped the decanters"]},
	"round2": {"publicInfo": [], "privateInfo": ["Knows who touched the fuse box"]}
}`

func fullFlowRules() []backendRule {
	return []backendRule{
		{contains: "Design a murder mystery concept", content: conceptContent},
		{contains: "unique suspects", content: castContent},
		{contains: "Chronological Timeline", content: "Timeline prose covering every guest"},
		{contains: "physical clues", content: cluesContent},
		{contains: "Flesh out the full dossier", content: dossierContent},
	}
}

func TestMysteryStartsWithDefaults(t *testing.T) {
	t.Parallel()
	server := startTestServer(t, os.Stderr, nil)

	resp := server.Get(t, "/api/mystery")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	session := decodeSession(t, resp)
	require.Equal(t, mystery.StageConcept, session.Stage)
	require.Equal(t, "A grand Victorian estate", session.Mystery.Environment)
	require.Equal(t, 6, session.Mystery.NumGuests)
}

func TestConceptThenCasting(t *testing.T) {
	t.Parallel()
	server := startTestServer(t, os.Stderr, fullFlowRules())

	resp := server.PostJSON(t, "/api/concept", map[string]any{
		"theme": "Gothic revenge", "location": "An estate", "numGuests": 3, "details": "",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	session := decodeSession(t, resp)
	require.Equal(t, "The Gilded Cage", session.Mystery.Title)
	require.Equal(t, "Gothic revenge", session.Mystery.Theme)

	resp = server.Do(t, http.MethodPost, "/api/cast")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	session = decodeSession(t, resp)
	require.Len(t, session.Mystery.Characters, 3)
	_, ok := session.Mystery.CharacterByID(session.Mystery.KillerID)
	require.True(t, ok, "killer id must resolve")

	// The committed state is what a fresh GET sees.
	session = decodeSession(t, server.Get(t, "/api/mystery"))
	require.Len(t, session.Mystery.Characters, 3)
}

func TestStagePreconditionsOverHTTP(t *testing.T) {
	t.Parallel()
	server := startTestServer(t, os.Stderr, nil)

	resp := server.Do(t, http.MethodPost, "/api/timeline")
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
	require.Zero(t, server.backend.callCount(), "no backend call when the stage is not ready")

	resp = server.Do(t, http.MethodPost, "/api/stage/bogus")
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}

func TestUnknownEntityIs404(t *testing.T) {
	t.Parallel()
	server := startTestServer(t, os.Stderr, nil)

	resp := server.Do(t, http.MethodDelete, "/api/characters/nope")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	resp = server.Do(t, http.MethodPost, "/api/issues/nope/fix")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}

func TestLuckyStreamsProgressAndFinishes(t *testing.T) {
	t.Parallel()
	server := startTestServer(t, os.Stderr, fullFlowRules())

	resp := server.PostJSON(t, "/api/lucky", map[string]any{
		"theme": "Gothic revenge", "location": "An estate", "numGuests": 3, "details": "",
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var started struct {
		Run string `json:"run"`
	}
	decodeInto(t, resp, &started)
	require.NotEmpty(t, started.Run)

	events := server.Get(t, "/api/lucky/"+started.Run+"/events")
	require.Equal(t, http.StatusOK, events.StatusCode)
	require.Equal(t, "text/event-stream", events.Header.Get("Content-Type"))

	var messages []string
	scanner := bufio.NewScanner(events.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if data, ok := strings.CutPrefix(line, "data: "); ok && data != "" {
			messages = append(messages, data)
		}
	}
	require.NoError(t, events.Body.Close())

	require.NotEmpty(t, messages)
	require.Equal(t, "Crafting the core mystery...", messages[0])
	require.Equal(t, "Done", messages[len(messages)-1])

	session := decodeSession(t, server.Get(t, "/api/mystery"))
	require.Equal(t, mystery.StageOutput, session.Stage)
	require.True(t, session.Mystery.AllFleshed())
	require.NotEmpty(t, session.Mystery.Timeline)
}

func TestLuckyCompletesWithoutSubscriber(t *testing.T) {
	t.Parallel()
	server := startTestServer(t, os.Stderr, fullFlowRules())

	resp := server.PostJSON(t, "/api/lucky", map[string]any{
		"theme": "Gothic revenge", "location": "An estate", "numGuests": 3, "details": "",
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	// Nobody ever reads the progress stream. The run must still finish and
	// release its busy slots.
	deadline := time.Now().Add(10 * time.Second)
	for {
		session := decodeSession(t, server.Get(t, "/api/mystery"))
		if session.Stage == mystery.StageOutput {
			require.True(t, session.Mystery.AllFleshed())
			break
		}
		require.True(t, time.Now().Before(deadline), "run did not finish without a subscriber, stage %s", session.Stage)
		time.Sleep(10 * time.Millisecond)
	}

	resp = server.PostJSON(t, "/api/concept", map[string]any{"theme": "t", "numGuests": 3})
	require.Equal(t, http.StatusOK, resp.StatusCode, "slots must be free after an unwatched run")
	require.NoError(t, resp.Body.Close())
}

func TestResetRequiresConfirmation(t *testing.T) {
	t.Parallel()
	server := startTestServer(t, os.Stderr, fullFlowRules())

	session := decodeSession(t, server.PostJSON(t, "/api/concept", map[string]any{
		"theme": "t", "numGuests": 3,
	}))
	require.Equal(t, "The Gilded Cage", session.Mystery.Title)

	resp := server.PostJSON(t, "/api/reset", map[string]any{"confirm": false})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	session = decodeSession(t, server.Get(t, "/api/mystery"))
	require.Equal(t, "The Gilded Cage", session.Mystery.Title, "refused reset must not clear anything")

	session = decodeSession(t, server.PostJSON(t, "/api/reset", map[string]any{"confirm": true}))
	require.Empty(t, session.Mystery.Title)
	require.Equal(t, mystery.StageConcept, session.Stage)
}

func TestPrintableKit(t *testing.T) {
	t.Parallel()
	server := startTestServer(t, os.Stderr, fullFlowRules())

	decodeSession(t, server.PostJSON(t, "/api/concept", map[string]any{"theme": "t", "numGuests": 3}))

	resp := server.Get(t, "/kit")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, "The Gilded Cage", page.Find("#host-guide h1").Text())
	require.Equal(t, "Unassigned", page.Find("#killer-name").Text())
}

func TestManualStoryEdit(t *testing.T) {
	t.Parallel()
	server := startTestServer(t, os.Stderr, nil)

	session := decodeSession(t, server.PostJSON(t, "/api/story", map[string]any{
		"title": "Hand-written title",
	}))
	require.Equal(t, "Hand-written title", session.Mystery.Title)
	require.Equal(t, "A grand Victorian estate", session.Mystery.Environment, "omitted field changed")
	require.Zero(t, server.backend.callCount(), "manual edits must never call the backend")
}
