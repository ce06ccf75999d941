package speech

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/climatiza-api/pkg/config"
)

func TestTranscribe_EnviaMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "es", r.FormValue("language"))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "nota.m4a", hdr.Filename)
		assert.Equal(t, "AUDIO", string(data))
		_, _ = w.Write([]byte(`{"text":"Cambiado el condensador del ventilador."}`))
	}))
	defer srv.Close()

	c := NewClient(config.AIConfig{TranscriptionURL: srv.URL, TranscriptionKey: "k", TranscriptionLang: "es"})
	text, err := c.Transcribe(context.Background(), "/tmp/nota.m4a", strings.NewReader("AUDIO"))
	require.NoError(t, err)
	assert.Equal(t, "Cambiado el condensador del ventilador.", text)
}

func TestTranscribe_AudioDemasiadoGrande(t *testing.T) {
	c := NewClient(config.AIConfig{TranscriptionURL: "http://127.0.0.1:1"})
	_, err := c.Transcribe(context.Background(), "a.wav", bytes.NewReader(make([]byte, MaxAudioBytes+1)))
	assert.ErrorIs(t, err, ErrAudioTooLarge)
}

func TestTranscribe_SinConfigurar(t *testing.T) {
	_, err := NewClient(config.AIConfig{}).Transcribe(context.Background(), "a.wav", strings.NewReader("x"))
	assert.Error(t, err)
}
