package postgres

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/climatiza-api/internal/domain/entity"
)

func TestEncodeNotification_RoundTrip(t *testing.T) {
	ev := entity.NewEvent(entity.EventTicketMoved, "c1", "ticket", "t1", map[string]any{"status": "waiting", "position": 2})

	body, err := encodeNotification(ev)
	require.NoError(t, err)

	got, err := decodeNotification(string(body))
	require.NoError(t, err)
	assert.Equal(t, ev.Type, got.Type)
	assert.Equal(t, "c1", got.CompanyID)
	assert.JSONEq(t, `{"status":"waiting","position":2}`, string(got.Payload))
}

func TestEncodeNotification_PayloadGrandeSeRecorta(t *testing.T) {
	big := map[string]string{"notes": strings.Repeat("x", 9000)}
	ev := entity.NewEvent(entity.EventOrderStatus, "c1", "service_order", "o1", big)

	body, err := encodeNotification(ev)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(body), maxNotifyPayload)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &raw))
	_, hasPayload := raw["payload"]
	assert.False(t, hasPayload)
	assert.Equal(t, `"o1"`, string(raw["entity_id"]))
}

func TestDecodeNotification_Invalido(t *testing.T) {
	_, err := decodeNotification("no-json")
	assert.Error(t, err)

	_, err = decodeNotification(`{"type":"ticket.moved"}`)
	assert.Error(t, err)
}
