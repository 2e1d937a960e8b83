package scoring

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func checkServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.NotEmpty(t, r.Form.Get("text"))
		require.Equal(t, "en-US", r.Form.Get("language"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestLanguageToolScorer_PerfectSentence(t *testing.T) {
	req := require.New(t)
	server := checkServer(t, `{"matches":[]}`)
	scorer := NewLanguageToolScorer(server.URL, "en-US", time.Second, testLogger())

	score, err := scorer.Score(context.Background(), "The cat sat.")
	req.NoError(err)
	req.Equal(MaxScore, score)
}

func TestLanguageToolScorer_PenaltiesByIssueType(t *testing.T) {
	req := require.New(t)
	// grammar 15 + agreement 12 + typographical 5 + other 10 = 42
	server := checkServer(t, `{"matches":[
		{"rule":{"issueType":"grammar"}},
		{"rule":{"issueType":"agreement"}},
		{"rule":{"issueType":"typographical"}},
		{"rule":{"issueType":"style"}}
	]}`)
	scorer := NewLanguageToolScorer(server.URL, "en-US", time.Second, testLogger())

	score, err := scorer.Score(context.Background(), "Them cat sitted on mat,")
	req.NoError(err)
	req.Equal(100-42, score)
}

func TestLanguageToolScorer_FlooredAtMinScore(t *testing.T) {
	req := require.New(t)
	// Seven grammar issues would score below the floor
	server := checkServer(t, `{"matches":[
		{"rule":{"issueType":"grammar"}},
		{"rule":{"issueType":"grammar"}},
		{"rule":{"issueType":"grammar"}},
		{"rule":{"issueType":"grammar"}},
		{"rule":{"issueType":"grammar"}},
		{"rule":{"issueType":"grammar"}},
		{"rule":{"issueType":"grammar"}}
	]}`)
	scorer := NewLanguageToolScorer(server.URL, "en-US", time.Second, testLogger())

	score, err := scorer.Score(context.Background(), "words words words")
	req.NoError(err)
	req.Equal(MinScore, score)
}

func TestLanguageToolScorer_ServerError(t *testing.T) {
	req := require.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)
	scorer := NewLanguageToolScorer(server.URL, "en-US", time.Second, testLogger())

	_, err := scorer.Score(context.Background(), "The cat sat.")
	req.Error(err)
}

func TestLanguageToolScorer_Timeout(t *testing.T) {
	req := require.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(`{"matches":[]}`))
	}))
	t.Cleanup(server.Close)
	scorer := NewLanguageToolScorer(server.URL, "en-US", 50*time.Millisecond, testLogger())

	_, err := scorer.Score(context.Background(), "The cat sat.")
	req.Error(err)
}

func TestLanguageToolScorer_ContextCancelled(t *testing.T) {
	req := require.New(t)
	server := checkServer(t, `{"matches":[]}`)
	scorer := NewLanguageToolScorer(server.URL, "en-US", time.Second, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := scorer.Score(ctx, "The cat sat.")
	req.Error(err)
}
