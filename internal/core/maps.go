package core

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	atCoordinates   = regexp.MustCompile(`@(-?\d+\.?\d*),\s*(-?\d+\.?\d*)`)
	dataCoordinates = regexp.MustCompile(`!3d(-?\d+\.?\d*)!4d(-?\d+\.?\d*)`)
)

const embedBase = "https://www.google.com/maps?q="

// EmbedMapURL derives an embeddable map URL from a pasted link, address or
// coordinates. Coordinates found in a Google Maps link (either the @lat,lng
// or the !3dlat!4dlng form) are used directly; anything else becomes a place
// query.
func EmbedMapURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	for _, re := range []*regexp.Regexp{atCoordinates, dataCoordinates} {
		if m := re.FindStringSubmatch(trimmed); m != nil {
			return embedBase + m[1] + "," + m[2] + "&output=embed"
		}
	}
	return embedBase + strings.ReplaceAll(url.QueryEscape(trimmed), "+", "%20") + "&output=embed"
}
