package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"doc-chat/internal/config"
)

func testConfig(t *testing.T, chatURL string) *config.Config {
	t.Helper()
	cfg := &config.Config{ChatURL: chatURL}
	cfg.State.Backend = config.BackendFile
	cfg.State.Dir = t.TempDir()
	return cfg
}

func runCmd(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), cfg, args, &out)
	return out.String(), err
}

func TestRun_Usage(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	_, err := runCmd(t, cfg)
	require.ErrorIs(t, err, errUsage)
	_, err = runCmd(t, cfg, "dance")
	require.ErrorIs(t, err, errUsage)
	_, err = runCmd(t, cfg, "ask", " ")
	require.ErrorIs(t, err, errUsage)
	_, err = runCmd(t, cfg, "upload")
	require.ErrorIs(t, err, errUsage)
}

func TestRun_UploadAskHistory(t *testing.T) {
	var got struct {
		Question string `json:"question"`
		Context  string `json:"context"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"answer":"Within 30 days."}}`))
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	dir := t.TempDir()
	policy := filepath.Join(dir, "policy.txt")
	require.NoError(t, os.WriteFile(policy, []byte("Our refund policy allows returns within 30 days."), 0o644))
	image := filepath.Join(dir, "photo.png")
	require.NoError(t, os.WriteFile(image, []byte{0x89, 'P', 'N', 'G'}, 0o644))

	out, err := runCmd(t, cfg, "upload", policy, image)
	require.Error(t, err)
	require.Contains(t, out, "uploaded policy.txt (48 chars)")
	require.Contains(t, out, "skipped "+image+": please upload a .txt file")

	out, err = runCmd(t, cfg, "docs")
	require.NoError(t, err)
	require.Contains(t, out, "policy.txt")

	out, err = runCmd(t, cfg, "ask", "What", "is", "the", "refund", "policy?")
	require.NoError(t, err)
	require.Equal(t, "Within 30 days.\n", out)
	require.Equal(t, "What is the refund policy?", got.Question)
	require.Equal(t, "Our refund policy allows returns within 30 days.", got.Context)

	out, err = runCmd(t, cfg, "history")
	require.NoError(t, err)
	require.Contains(t, out, "[user] What is the refund policy?\n[ai] Within 30 days.\n")
}

func TestRun_DocsEmpty(t *testing.T) {
	out, err := runCmd(t, testConfig(t, "http://127.0.0.1:1"), "docs")
	require.NoError(t, err)
	require.Equal(t, "no documents uploaded\n", out)
}
