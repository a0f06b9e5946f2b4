package sheet

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"mapforge/internal/project"
)

var statusSynonyms = map[string]project.Status{
	"done":      project.StatusDone,
	"fertig":    project.StatusDone,
	"clarified": project.StatusClarified,
	"geklart":   project.StatusClarified,
	"geklaert":  project.StatusClarified,
	"in_review": project.StatusInReview,
	"review":    project.StatusInReview,
	"in review": project.StatusInReview,
}

// fold trims, lowercases and strips diacritics, so "Geklärt " becomes "geklart".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}

	return strings.ToLower(strings.TrimSpace(out))
}

// ParseStatus maps free status text to a status. Unrecognized or empty
// text yields StatusOpen.
func ParseStatus(raw string) project.Status {
	if s, ok := statusSynonyms[fold(raw)]; ok {
		return s
	}

	return project.StatusOpen
}
