package kml

import (
	"bytes"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/climatiza-api/internal/domain/entity"
)

func ptr[T any](v T) *T { return &v }

func TestWriteFleet_SoloVehiculosConPosicion(t *testing.T) {
	seen := time.Date(2026, 10, 1, 8, 30, 0, 0, time.UTC)
	vehicles := []*entity.Vehicle{
		{ID: "v1", Plate: "1234 KLM", Make: "Renault", Model: "Kangoo", LastLat: ptr(39.4699), LastLng: ptr(-0.3763), LastSeenAt: &seen},
		{ID: "v2", Plate: "5678 XYZ"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteFleet(&buf, "Flota", vehicles))

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(buf.Bytes()))
	pms := doc.FindElements("//Placemark")
	require.Len(t, pms, 1)
	assert.Equal(t, "1234 KLM", pms[0].FindElement("name").Text())
	assert.Equal(t, "-0.376300,39.469900", pms[0].FindElement("Point/coordinates").Text())
	assert.Equal(t, "2026-10-01T08:30:00Z", pms[0].FindElement("TimeStamp/when").Text())
	assert.Equal(t, namespace, doc.Root().SelectAttrValue("xmlns", ""))
}
