package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrismelba/noirplan/internal/errors"
	"github.com/chrismelba/noirplan/internal/logging"
)

// waitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func waitForReady(ctx context.Context, endpoint string) error {
	timeout := 1 * time.Second
	client := http.Client{}
	startTime := time.Now()
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	for {
		if req, err = http.NewRequestWithContext(
			ctx,
			http.MethodGet,
			endpoint,
			nil,
		); err != nil {
			return errors.Wrap(err, "create request")
		}

		if resp, err = client.Do(req); err == nil {
			if resp.StatusCode == http.StatusOK {
				if err = resp.Body.Close(); err != nil {
					return errors.Wrap(err, "close response body")
				}
				return nil
			}
			if err = resp.Body.Close(); err != nil {
				return errors.Wrap(err, "close response body")
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(250 * time.Millisecond)
		}
	}
}

// backendRule routes one prompt family of the fake generation backend to a
// canned completion.
type backendRule struct {
	contains string
	content  string
	status   int
}

// fakeBackend mimics the chat completion endpoint closely enough for the
// gateway: it reads the last message, picks the first matching rule and
// answers in the wire shape the client expects.
type fakeBackend struct {
	mu    sync.Mutex
	rules []backendRule
	calls []string
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeBackend) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		prompt := req.Messages[len(req.Messages)-1].Content

		f.mu.Lock()
		f.calls = append(f.calls, prompt)
		f.mu.Unlock()

		for _, rule := range f.rules {
			if strings.Contains(prompt, rule.contains) {
				if rule.status != 0 {
					http.Error(w, "simulated failure", rule.status)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				response := map[string]any{
					"choices": []map[string]any{
						{"message": map[string]any{"role": "assistant", "content": rule.content}},
					},
				}
				if err := json.NewEncoder(w).Encode(response); err != nil {
					http.Error(w, err.Error(), http.StatusInternalServerError)
				}
				return
			}
		}
		http.Error(w, "no rule for prompt: "+prompt, http.StatusBadRequest)
	})
}

type testServer struct {
	url     string
	client  http.Client
	backend *fakeBackend
}

// startTestServer starts the whole application against an in-memory database
// and the fake backend, waits for it to be ready, and returns the server URL
// for testing.
func startTestServer(t *testing.T, w io.Writer, rules []backendRule) testServer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	backend := &fakeBackend{rules: rules}
	backendServer := httptest.NewServer(backend.handler())
	t.Cleanup(backendServer.Close)

	lookupEnv := func(key string) (string, bool) {
		switch key {
		case "NOIRPLAN_ADDR":
			return "localhost:0", true
		case "NOIRPLAN_SQLITE_URL":
			return ":memory:", true
		case "OPENAI_API_KEY":
			return "test-key", true
		case "OPENAI_BASE_URL":
			return backendServer.URL, true
		default:
			return "", false
		}
	}

	// We need to grab the dynamically allocated port from the log output.
	addrCh := make(chan string, 1)
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == "Addr" {
				addrCh <- a.Value.String()
			}
			return a
		},
	})))

	go func() {
		if err := run(ctx, logger, lookupEnv); err != nil {
			cancel()
			assert.NoError(t, err)
		}
	}()
	select {
	case <-ctx.Done():
		t.Fatal("server failed to start")
		return testServer{}
	case addr := <-addrCh:
		serverURL := fmt.Sprintf("http://%s", addr)
		require.NoError(t, waitForReady(ctx, fmt.Sprintf("%s/api/healthy", serverURL)))
		return testServer{url: serverURL, client: http.Client{}, backend: backend}
	}
}

// PostJSON sends the body as JSON and returns the response.
func (s *testServer) PostJSON(t *testing.T, urlPath string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := s.client.Post(s.url+urlPath, "application/json", strings.NewReader(string(raw)))
	require.NoError(t, err)
	return resp
}

// Do sends a bodyless request with the given method.
func (s *testServer) Do(t *testing.T, method, urlPath string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, s.url+urlPath, nil)
	require.NoError(t, err)
	resp, err := s.client.Do(req)
	require.NoError(t, err)
	return resp
}

// Get fetches a URL and returns the response.
func (s *testServer) Get(t *testing.T, urlPath string) *http.Response {
	t.Helper()
	resp, err := s.client.Get(s.url + urlPath)
	require.NoError(t, err)
	return resp
}

// decodeInto decodes the response body into v and closes the body.
func decodeInto(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer func() {
		require.NoError(t, resp.Body.Close())
	}()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

// decodeSession decodes the standard success payload and closes the body.
func decodeSession(t *testing.T, resp *http.Response) sessionResponse {
	t.Helper()
	defer func() {
		require.NoError(t, resp.Body.Close())
	}()
	var session sessionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
	return session
}
