package fal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sceneforge/pkg/errors"
)

func testClient(baseUrl string) *Client {
	c := NewClient(Options{
		BaseUrl:           baseUrl,
		ApiKey:            "test-key",
		MaxAttempts:       3,
		FixedClipDuration: 8,
		CostPerSecondUSD:  0.10,
		PromptMaxLen:      1000,
	})
	c.pollInterval = 0 // no waiting in tests
	return c
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func TestGenerateClip_SubmitPollDownload(t *testing.T) {
	var polls int32
	mux := http.NewServeMux()
	var server *httptest.Server

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Key test-key", r.Header.Get("Authorization"))

		var req submitRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "8s", req.Duration, "fixed clip length is policy")

		writeJSON(w, submitResponse{
			RequestID: "req-1",
			StatusURL: server.URL + "/status",
		})
	})
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		resp := statusResponse{Status: "IN_PROGRESS"}
		if atomic.AddInt32(&polls, 1) >= 2 {
			resp.Status = "COMPLETED"
			resp.Video.URL = server.URL + "/clip.mp4"
		}
		writeJSON(w, resp)
	})
	mux.HandleFunc("/clip.mp4", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("fake video bytes"))
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	outPath := filepath.Join(t.TempDir(), "out", "clip.mp4")
	err := testClient(server.URL).GenerateClip(context.Background(), "a calm lake", outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "fake video bytes", string(data))
}

func TestGenerateClip_RetriesTransientThenSucceeds(t *testing.T) {
	var submits int32
	mux := http.NewServeMux()
	var server *httptest.Server

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&submits, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeJSON(w, submitResponse{RequestID: "req-2", StatusURL: server.URL + "/status"})
	})
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		resp := statusResponse{Status: "COMPLETED"}
		resp.Video.URL = server.URL + "/clip.mp4"
		writeJSON(w, resp)
	})
	mux.HandleFunc("/clip.mp4", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	c := testClient(server.URL)
	err := c.GenerateClip(context.Background(), "prompt", filepath.Join(t.TempDir(), "c.mp4"))
	require.NoError(t, err)
	assert.Equal(t, int32(2), submits)
}

func TestGenerateClip_PermanentFailureNotRetried(t *testing.T) {
	var submits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&submits, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	err := testClient(server.URL).GenerateClip(context.Background(), "prompt", filepath.Join(t.TempDir(), "c.mp4"))
	require.Error(t, err)
	assert.Equal(t, int32(1), submits, "4xx responses are not transient")
	assert.True(t, errors.Is(err, errors.CodeGenerateFailed))
}

func TestGenerateClip_RemoteFailureSurfacesDetail(t *testing.T) {
	var polls int32
	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, submitResponse{RequestID: "req-3", StatusURL: server.URL + "/status"})
	})
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&polls, 1)
		writeJSON(w, statusResponse{Status: "FAILED", Error: "nsfw filter"})
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	err := testClient(server.URL).GenerateClip(context.Background(), "prompt", filepath.Join(t.TempDir(), "c.mp4"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeGenerateFailed))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&polls), int32(1), "failure must come from the poll, not the submit")

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "nsfw filter", appErr.Detail)
}

func TestGenerateClip_TruncatesLongPrompt(t *testing.T) {
	var gotPrompt string
	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		var req submitRequest
		json.NewDecoder(r.Body).Decode(&req)
		gotPrompt = req.Prompt
		writeJSON(w, submitResponse{RequestID: "req-4", StatusURL: server.URL + "/status"})
	})
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		resp := statusResponse{Status: "COMPLETED"}
		resp.Video.URL = server.URL + "/clip.mp4"
		writeJSON(w, resp)
	})
	mux.HandleFunc("/clip.mp4", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("x")) })
	server = httptest.NewServer(mux)
	defer server.Close()

	long := strings.Repeat("a", 5000)
	err := testClient(server.URL).GenerateClip(context.Background(), long, filepath.Join(t.TempDir(), "c.mp4"))
	require.NoError(t, err)
	assert.Equal(t, 1000, len(gotPrompt))
	assert.True(t, strings.HasSuffix(gotPrompt, "…"))
}

func TestTruncatePrompt(t *testing.T) {
	assert.Equal(t, "short", truncatePrompt("short", 1000))
	assert.Equal(t, "short", truncatePrompt("short", 0), "zero cap means unlimited")

	// never cuts inside a multi-byte rune
	got := truncatePrompt(strings.Repeat("日", 100), 10)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), 10)
	assert.True(t, strings.HasSuffix(got, "…"))
}

func TestEstimateCost(t *testing.T) {
	c := testClient("http://unused")
	// billing is for the fixed clip length, not the source span
	assert.InDelta(t, 0.8, c.EstimateCost(3.2), 1e-9)
}
