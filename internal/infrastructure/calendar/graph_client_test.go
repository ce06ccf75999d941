package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/pkg/config"
)

func TestGraphClient_ListEventsPaginado(t *testing.T) {
	mux := http.NewServeMux()
	var srvURL string
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-123","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/v1.0/users/agenda@frionorte.es/calendarView", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			_, _ = w.Write([]byte(`{"value":[
				{"id":"ev-3","subject":"Cancelada","isCancelled":true,"start":{"dateTime":"2026-10-20T08:00:00.0000000","timeZone":"UTC"},"end":{"dateTime":"2026-10-20T09:00:00.0000000","timeZone":"UTC"}}
			]}`))
			return
		}
		_, _ = w.Write([]byte(`{"value":[
			{"id":"ev-1","subject":"Visita proveedor","bodyPreview":"Daikin","start":{"dateTime":"2026-10-19T08:00:00.0000000","timeZone":"UTC"},"end":{"dateTime":"2026-10-19T09:30:00.0000000","timeZone":"UTC"}},
			{"id":"ev-2","subject":"Vacaciones","isAllDay":true,"start":{"dateTime":"2026-10-21T00:00:00.0000000","timeZone":"UTC"},"end":{"dateTime":"2026-10-22T00:00:00.0000000","timeZone":"UTC"}}
		],"@odata.nextLink":"` + srvURL + `/v1.0/users/agenda@frionorte.es/calendarView?page=2"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	srvURL = srv.URL

	g := newGraphClient(config.CalendarConfig{
		TenantTokenURL: srv.URL + "/token",
		ClientID:       "id",
		ClientSecret:   "secret",
		GraphBaseURL:   srv.URL + "/v1.0",
		CalendarUser:   "agenda@frionorte.es",
	}, srv.Client())

	from := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	events, err := g.ListEvents(context.Background(), from, from.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "ev-1", events[0].ExternalID)
	assert.Equal(t, entity.EventSourceExternal, events[0].Source)
	assert.Equal(t, time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC), events[0].End)
	assert.True(t, events[1].AllDay)
}

func TestParseGraphTime_ZonaHoraria(t *testing.T) {
	got, err := parseGraphTime(graphDateTime{DateTime: "2026-07-01T10:00:00.0000000", TimeZone: "Europe/Madrid"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC), got)

	_, err = parseGraphTime(graphDateTime{DateTime: "ayer"})
	assert.Error(t, err)
}
