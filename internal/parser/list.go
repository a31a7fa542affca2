// Package parser extracts structured case data from raw portal payloads.
// Search listings come back as a bespoke delimited format; case histories
// are HTML. Both surfaces are versioned and unstable, so all layout
// knowledge lives here and in the search package.
package parser

import (
	"strings"

	"github.com/nikhilbhat/courtwatch/internal/models"
)

// Listing payload delimiters: records are separated by "##", fields
// within a record by "~".
const (
	recordSep = "##"
	fieldSep  = "~"
)

// ParseCaseList parses a search-result listing into case summaries. Rows
// that do not carry the minimum field count or a well-formed case triple
// are skipped rather than failing the whole listing; an empty result is
// valid and means the portal matched nothing.
func ParseCaseList(payload []byte) []models.CaseSummary {
	raw := strings.TrimSpace(string(payload))
	if raw == "" {
		return nil
	}

	var cases []models.CaseSummary
	for _, block := range strings.Split(raw, recordSep) {
		fields := strings.Split(block, fieldSep)
		if len(fields) < 8 {
			continue
		}

		// fields[1] is "type/year/number".
		triple := strings.SplitN(fields[1], "/", 3)
		if len(triple) < 3 {
			continue
		}
		caseType, regYear, regNo := triple[0], triple[1], triple[2]

		cnr, ok := models.NormalizeCNR(fields[3])
		if !ok {
			continue
		}

		summary := models.CaseSummary{
			CNR:                cnr,
			CaseNumber:         strings.TrimSpace(fields[0]),
			CaseType:           strings.TrimSpace(caseType),
			RegistrationNumber: strings.TrimSpace(regYear) + "/" + strings.TrimSpace(regNo),
			Token:              strings.TrimSpace(fields[7]),
		}
		summary.Petitioner, summary.Respondent = splitParties(fields[2])
		cases = append(cases, summary)
	}
	return cases
}

// splitParties parses the "A Versus B" cell of a listing row.
func splitParties(cell string) (petitioner, respondent string) {
	text := strings.TrimSpace(strings.ReplaceAll(cell, "<br/>", ""))
	if before, after, found := strings.Cut(text, "Versus"); found {
		return strings.TrimSpace(before), strings.TrimSpace(after)
	}
	return text, ""
}

// ParseOptions parses dropdown option payloads ("code~label" per line)
// used for case-type and act-type enumeration.
func ParseOptions(payload []byte) [][2]string {
	var options [][2]string
	for _, line := range strings.Split(string(payload), "\n") {
		if !strings.Contains(line, fieldSep) {
			continue
		}
		parts := strings.SplitN(line, fieldSep, 2)
		options = append(options, [2]string{
			strings.TrimSpace(parts[0]),
			strings.TrimSpace(parts[1]),
		})
	}
	return options
}
