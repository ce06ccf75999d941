package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/climatiza-api/internal/infrastructure/httpx"
	"github.com/jhoicas/climatiza-api/pkg/config"
)

func TestGeocode_PrimerResultado(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Calle Mayor 1, 28013, Madrid", r.URL.Query().Get("q"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`[{"lat":"40.4168","lon":"-3.7038","display_name":"Calle Mayor, Madrid"}]`))
	}))
	defer srv.Close()

	n := NewNominatim(config.GeoConfig{BaseURL: srv.URL, UserAgent: "test-agent"})
	n.retry = httpx.Options{MaxTries: 3, MaxElapsedTime: 5 * time.Second, InitialBackoff: time.Millisecond}

	res, err := n.Geocode(context.Background(), "Calle Mayor 1, 28013, Madrid")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.InDelta(t, 40.4168, res.Lat, 1e-6)
	assert.InDelta(t, -3.7038, res.Lng, 1e-6)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGeocode_SinResultados(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	res, err := NewNominatim(config.GeoConfig{BaseURL: srv.URL}).Geocode(context.Background(), "nada")
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestGeocode_DireccionVaciaNoLlama(t *testing.T) {
	res, err := NewNominatim(config.GeoConfig{BaseURL: "http://127.0.0.1:1"}).Geocode(context.Background(), "  ")
	require.NoError(t, err)
	assert.Nil(t, res)
}
