package alert

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhook_Send(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
	}))
	defer srv.Close()

	w := NewWebhook("test", srv.URL, srv.Client())
	err := w.Send(context.Background(), Alert{
		Title:   "Script deploy failed",
		Message: "exit code 1",
		Attachments: []Attachment{
			{Name: "deploy.log", Content: []byte("boom")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Script deploy failed", got.Title)
	assert.Equal(t, "exit code 1", got.Message)
	assert.Equal(t, "boom", got.Attachments["deploy.log"])
}

func TestWebhook_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	w := NewWebhook("test", srv.URL, srv.Client())
	err := w.Send(context.Background(), Alert{Title: "x"})
	assert.ErrorContains(t, err, "502")
}

func TestWebhook_UnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	w := NewWebhook("test", srv.URL, nil)
	err := w.Send(context.Background(), Alert{Title: "x"})
	assert.Error(t, err)
}

func TestWebhook_ContextCancelled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewWebhook("test", srv.URL, srv.Client())
	err := w.Send(ctx, Alert{Title: "x"})
	assert.Error(t, err)
}
