package parser

import (
	"regexp"
	"strings"
	"time"
)

// dateLayouts are the renderings observed across portal layout versions.
var dateLayouts = []string{
	"20060102",
	"02-01-2006",
	"02/01/2006",
	"2 January 2006",
	"2006-01-02",
}

// ordinalSuffix strips "st"/"nd"/"rd"/"th" from day numbers so
// "14th March 2024" parses with the plain layout.
var ordinalSuffix = regexp.MustCompile(`(\d{1,2})(st|nd|rd|th)\b`)

// ParseDate parses a portal date rendering. Returns nil for blank or
// placeholder values ("-", "N/A") and for dates outside a sanity window,
// which catches digit soup that happens to match a layout.
func ParseDate(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	switch s {
	case "", "-", "--", "N/A":
		return nil
	}
	s = ordinalSuffix.ReplaceAllString(s, "$1")

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Year() <= 1990 || t.Year() >= 2030 {
			continue
		}
		return &t
	}
	return nil
}
