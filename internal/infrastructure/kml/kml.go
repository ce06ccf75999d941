// Package kml exporta la última posición conocida de la flota en formato KML (Google Earth, Maps).
package kml

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/jhoicas/climatiza-api/internal/domain/entity"
)

const namespace = "http://www.opengis.net/kml/2.2"

// WriteFleet escribe un Document con un Placemark por vehículo con posición.
// Los vehículos sin coordenadas se omiten.
func WriteFleet(w io.Writer, name string, vehicles []*entity.Vehicle) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("kml")
	root.CreateAttr("xmlns", namespace)
	d := root.CreateElement("Document")
	d.CreateElement("name").SetText(name)

	for _, v := range vehicles {
		if v.LastLat == nil || v.LastLng == nil {
			continue
		}
		pm := d.CreateElement("Placemark")
		pm.CreateAttr("id", v.ID)
		pm.CreateElement("name").SetText(v.Plate)
		pm.CreateElement("description").SetText(describe(v))
		if v.LastSeenAt != nil {
			pm.CreateElement("TimeStamp").CreateElement("when").SetText(v.LastSeenAt.UTC().Format(time.RFC3339))
		}
		// KML usa lon,lat[,alt]
		coords := strconv.FormatFloat(*v.LastLng, 'f', 6, 64) + "," + strconv.FormatFloat(*v.LastLat, 'f', 6, 64)
		pm.CreateElement("Point").CreateElement("coordinates").SetText(coords)
	}

	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("escribir kml: %w", err)
	}
	return nil
}

func describe(v *entity.Vehicle) string {
	s := v.Make + " " + v.Model
	if v.TechnicianID != "" {
		s += " · técnico " + v.TechnicianID
	}
	return s
}
