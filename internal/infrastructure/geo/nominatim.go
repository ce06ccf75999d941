// Package geo geocodifica direcciones contra un servicio compatible con Nominatim.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/application/ports"
	"github.com/jhoicas/climatiza-api/internal/infrastructure/httpx"
	"github.com/jhoicas/climatiza-api/pkg/config"
)

var _ ports.Geocoder = (*Nominatim)(nil)

// Nominatim cliente de /search. Nominatim exige User-Agent identificable.
type Nominatim struct {
	baseURL   string
	userAgent string
	email     string
	client    *http.Client
	retry     httpx.Options
}

// NewNominatim construye el cliente desde la configuración.
func NewNominatim(cfg config.GeoConfig) *Nominatim {
	base := cfg.BaseURL
	if base == "" {
		base = "https://nominatim.openstreetmap.org"
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "climatiza-api/1.0"
	}
	return &Nominatim{
		baseURL:   strings.TrimRight(base, "/"),
		userAgent: ua,
		email:     cfg.Email,
		client:    &http.Client{Timeout: 10 * time.Second},
		retry:     httpx.DefaultOptions,
	}
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode devuelve el primer resultado o (nil, nil) si no hay coincidencias.
func (n *Nominatim) Geocode(ctx context.Context, address string) (*dto.GeocodeResult, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, nil
	}
	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "jsonv2")
	q.Set("limit", "1")
	if n.email != "" {
		q.Set("email", n.email)
	}
	endpoint := n.baseURL + "/search?" + q.Encode()

	body, err := httpx.Do(ctx, n.client, n.retry, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", n.userAgent)
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("geocode: %w", err)
	}

	var results []searchResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("geocode: respuesta inválida: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("geocode: lat %q: %w", results[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("geocode: lon %q: %w", results[0].Lon, err)
	}
	return &dto.GeocodeResult{Lat: lat, Lng: lng, DisplayName: results[0].DisplayName}, nil
}
