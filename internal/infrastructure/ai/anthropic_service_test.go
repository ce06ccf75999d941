package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/climatiza-api/internal/infrastructure/httpx"
)

func TestAnthropic_CompleteConcatenaTexto(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "clave", r.Header.Get("x-api-key"))
		var req anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "sistema", req.System)
		assert.Equal(t, "no enfría", req.Messages[0].Content)
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{\"category\":"},{"type":"text","text":"\"averia\"}"}]}`))
	}))
	defer srv.Close()

	svc := NewAnthropicService("clave", "claude-test", srv.URL)
	out, err := svc.Complete(context.Background(), "sistema", "no enfría")
	require.NoError(t, err)
	assert.Equal(t, `{"category":"averia"}`, out)
}

func TestAnthropic_ReintentaEn529(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(529)
			return
		}
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"ok"}]}`))
	}))
	defer srv.Close()

	svc := NewAnthropicService("clave", "claude-test", srv.URL)
	svc.retry = httpx.Options{MaxTries: 3, MaxElapsedTime: 2 * time.Second, InitialBackoff: time.Millisecond}
	out, err := svc.Complete(context.Background(), "", "hola")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, int32(2), calls.Load())
}

func TestAnthropic_SinClave(t *testing.T) {
	_, err := NewAnthropicService("", "m", "").Complete(context.Background(), "", "x")
	assert.ErrorContains(t, err, "ANTHROPIC_API_KEY")
}
