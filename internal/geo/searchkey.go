package geo

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// searchFolder strips combining marks: decompose, drop marks, recompose.
var searchFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// SearchKey folds a municipality name into its accent-free lowercase form,
// e.g. "São João del-Rei" -> "sao joao del-rei". Used both when populating
// the catalog's search column and when matching a user's query against it.
func SearchKey(name string) string {
	folded, _, err := transform.String(searchFolder, name)
	if err != nil {
		folded = name
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
