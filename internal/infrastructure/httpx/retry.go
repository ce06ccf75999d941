// Package httpx agrupa la llamada HTTP con reintentos que usan los adaptadores externos
// (LLM, geocodificador, calendario, transcripción).
package httpx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// MaxBody límite de lectura de respuestas.
const MaxBody = 1 << 20

// StatusError respuesta HTTP no exitosa.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Body)
}

// Retryable informa si el código merece reintento (429 y 5xx).
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// Options parámetros de reintento.
type Options struct {
	MaxTries       uint
	MaxElapsedTime time.Duration
	InitialBackoff time.Duration
}

// DefaultOptions 3 intentos en un máximo de 10 s.
var DefaultOptions = Options{MaxTries: 3, MaxElapsedTime: 10 * time.Second, InitialBackoff: 300 * time.Millisecond}

// Do ejecuta la petición que construye newReq y devuelve el cuerpo si el estado es 2xx.
// newReq se invoca en cada intento porque el cuerpo de una petición solo se puede leer una vez.
// Los errores 4xx distintos de 429 no se reintentan.
func Do(ctx context.Context, client *http.Client, opts Options, newReq func(ctx context.Context) (*http.Request, error)) ([]byte, error) {
	if opts.MaxTries == 0 {
		opts = DefaultOptions
	}
	bo := backoff.NewExponentialBackOff()
	if opts.InitialBackoff > 0 {
		bo.InitialInterval = opts.InitialBackoff
	}

	op := func() ([]byte, error) {
		req, err := newReq(ctx)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBody))
		if err != nil {
			return nil, fmt.Errorf("leer respuesta: %w", err)
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return body, nil
		}
		statusErr := &StatusError{Status: resp.StatusCode, Body: truncate(string(body), 300)}
		if !Retryable(resp.StatusCode) {
			return nil, backoff.Permanent(statusErr)
		}
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			return nil, backoff.RetryAfter(secs)
		}
		return nil, statusErr
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(opts.MaxTries),
		backoff.WithMaxElapsedTime(opts.MaxElapsedTime),
	)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
