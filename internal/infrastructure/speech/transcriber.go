// Package speech transcribe notas de voz de los técnicos con un endpoint
// compatible con /v1/audio/transcriptions.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"github.com/jhoicas/climatiza-api/internal/application/ports"
	"github.com/jhoicas/climatiza-api/internal/infrastructure/httpx"
	"github.com/jhoicas/climatiza-api/pkg/config"
)

var _ ports.Transcriber = (*Client)(nil)

// MaxAudioBytes tamaño máximo aceptado (25 MB, igual que el proveedor).
const MaxAudioBytes = 25 << 20

// ErrAudioTooLarge el audio supera MaxAudioBytes.
var ErrAudioTooLarge = errors.New("audio demasiado grande")

// Client cliente de transcripción.
type Client struct {
	url    string
	apiKey string
	model  string
	lang   string
	client *http.Client
	retry  httpx.Options
}

// NewClient construye el cliente desde la configuración de IA.
func NewClient(cfg config.AIConfig) *Client {
	return &Client{
		url:    cfg.TranscriptionURL,
		apiKey: cfg.TranscriptionKey,
		model:  "whisper-1",
		lang:   cfg.TranscriptionLang,
		client: &http.Client{Timeout: 60 * time.Second},
		retry:  httpx.DefaultOptions,
	}
}

// Transcribe sube el audio como multipart y devuelve el texto.
func (c *Client) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	if c.url == "" {
		return "", fmt.Errorf("transcripción: TRANSCRIPTION_URL no configurado")
	}
	data, err := io.ReadAll(io.LimitReader(audio, MaxAudioBytes+1))
	if err != nil {
		return "", fmt.Errorf("transcripción: leer audio: %w", err)
	}
	if len(data) > MaxAudioBytes {
		return "", ErrAudioTooLarge
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(data); err != nil {
		return "", err
	}
	_ = mw.WriteField("model", c.model)
	if c.lang != "" {
		_ = mw.WriteField("language", c.lang)
	}
	_ = mw.WriteField("response_format", "json")
	if err := mw.Close(); err != nil {
		return "", err
	}
	payload, contentType := buf.Bytes(), mw.FormDataContentType()

	body, err := httpx.Do(ctx, c.client, c.retry, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
		return req, nil
	})
	if err != nil {
		return "", fmt.Errorf("transcripción: %w", err)
	}
	var out struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("transcripción: respuesta inválida: %w", err)
	}
	return out.Text, nil
}
