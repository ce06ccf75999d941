// Package calendar federa el calendario externo (Microsoft Graph) con la agenda local.
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/jhoicas/climatiza-api/internal/application/ports"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/internal/infrastructure/httpx"
	"github.com/jhoicas/climatiza-api/pkg/config"
)

var _ ports.CalendarProvider = (*GraphClient)(nil)

// maxPages tope de páginas @odata.nextLink por sincronización.
const maxPages = 20

// GraphClient lee /users/{user}/calendarView con un token OAuth2 client-credentials.
type GraphClient struct {
	baseURL string
	user    string
	client  *http.Client
	retry   httpx.Options
}

// NewGraphClient construye el cliente. El token se obtiene y renueva de forma transparente.
func NewGraphClient(cfg config.CalendarConfig) *GraphClient {
	return newGraphClient(cfg, &http.Client{Timeout: 15 * time.Second})
}

func newGraphClient(cfg config.CalendarConfig, base *http.Client) *GraphClient {
	scope := cfg.Scope
	if scope == "" {
		scope = "https://graph.microsoft.com/.default"
	}
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TenantTokenURL,
		Scopes:       []string{scope},
	}
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	client := cc.Client(tokenCtx)
	client.Timeout = base.Timeout

	graph := cfg.GraphBaseURL
	if graph == "" {
		graph = "https://graph.microsoft.com/v1.0"
	}
	return &GraphClient{
		baseURL: strings.TrimRight(graph, "/"),
		user:    cfg.CalendarUser,
		client:  client,
		retry:   httpx.DefaultOptions,
	}
}

type graphDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type graphEvent struct {
	ID          string        `json:"id"`
	Subject     string        `json:"subject"`
	BodyPreview string        `json:"bodyPreview"`
	Start       graphDateTime `json:"start"`
	End         graphDateTime `json:"end"`
	IsAllDay    bool          `json:"isAllDay"`
	IsCancelled bool          `json:"isCancelled"`
}

type graphPage struct {
	Value    []graphEvent `json:"value"`
	NextLink string       `json:"@odata.nextLink"`
}

// ListEvents devuelve los eventos del rango [from, to) mapeados 1:1 como eventos externos.
// Los eventos cancelados se omiten.
func (g *GraphClient) ListEvents(ctx context.Context, from, to time.Time) ([]*entity.CalendarEvent, error) {
	q := url.Values{}
	q.Set("startDateTime", from.UTC().Format(time.RFC3339))
	q.Set("endDateTime", to.UTC().Format(time.RFC3339))
	q.Set("$top", "100")
	next := fmt.Sprintf("%s/users/%s/calendarView?%s", g.baseURL, url.PathEscape(g.user), q.Encode())

	var out []*entity.CalendarEvent
	for page := 0; next != "" && page < maxPages; page++ {
		endpoint := next
		body, err := httpx.Do(ctx, g.client, g.retry, func(ctx context.Context) (*http.Request, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return nil, err
			}
			req.Header.Set("Prefer", `outlook.timezone="UTC"`)
			req.Header.Set("Accept", "application/json")
			return req, nil
		})
		if err != nil {
			return nil, fmt.Errorf("graph calendarView: %w", err)
		}
		var p graphPage
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("graph calendarView: respuesta inválida: %w", err)
		}
		for _, ge := range p.Value {
			if ge.IsCancelled {
				continue
			}
			ev, err := toCalendarEvent(ge)
			if err != nil {
				return nil, err
			}
			out = append(out, ev)
		}
		next = p.NextLink
	}
	return out, nil
}

// graphLayouts formatos de dateTime que devuelve Graph (sin zona, 7 decimales).
var graphLayouts = []string{"2006-01-02T15:04:05.0000000", "2006-01-02T15:04:05", time.RFC3339Nano}

func parseGraphTime(dt graphDateTime) (time.Time, error) {
	loc := time.UTC
	if dt.TimeZone != "" && dt.TimeZone != "UTC" {
		if l, err := time.LoadLocation(dt.TimeZone); err == nil {
			loc = l
		}
	}
	for _, layout := range graphLayouts {
		if t, err := time.ParseInLocation(layout, dt.DateTime, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("graph: fecha %q no reconocida", dt.DateTime)
}

func toCalendarEvent(ge graphEvent) (*entity.CalendarEvent, error) {
	start, err := parseGraphTime(ge.Start)
	if err != nil {
		return nil, err
	}
	end, err := parseGraphTime(ge.End)
	if err != nil {
		return nil, err
	}
	return &entity.CalendarEvent{
		Title:       ge.Subject,
		Description: ge.BodyPreview,
		Start:       start,
		End:         end,
		AllDay:      ge.IsAllDay,
		Kind:        entity.EventExternal,
		Source:      entity.EventSourceExternal,
		ExternalID:  ge.ID,
	}, nil
}
