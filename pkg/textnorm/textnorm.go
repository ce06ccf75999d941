// Package textnorm normaliza texto libre para comparaciones: minúsculas y sin diacríticos.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize pasa a minúsculas y elimina tildes y diacríticos ("Calefacción" -> "calefaccion").
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Key normaliza y compacta espacios y separadores; útil para cabeceras de hojas de cálculo.
func Key(s string) string {
	f := strings.FieldsFunc(Normalize(s), func(r rune) bool {
		return unicode.IsSpace(r) || r == '_' || r == '-' || r == '.'
	})
	return strings.Join(f, " ")
}
