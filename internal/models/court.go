package models

import (
	_ "embed"
	"fmt"
	"net/url"

	"gopkg.in/yaml.v3"

	"github.com/nikhilbhat/courtwatch/internal/faults"
)

//go:embed courts.yaml
var courtsYAML []byte

// Court identifies one high-court bench on the records portal. The state
// code routes the query to the right data partition; the court code picks
// a bench within it. District code is fixed to "1" for high courts.
type Court struct {
	StateCode    string `json:"state_code" yaml:"state"`
	CourtCode    string `json:"court_code,omitempty" yaml:"court"`
	DistrictCode string `json:"district_code,omitempty" yaml:"-"`
	Name         string `json:"name,omitempty" yaml:"name"`
}

type courtTable struct {
	Courts []Court `yaml:"courts"`
}

var benches = loadBenches()

func loadBenches() map[string]Court {
	var table courtTable
	if err := yaml.Unmarshal(courtsYAML, &table); err != nil {
		panic(fmt.Sprintf("embedded court table is invalid: %v", err))
	}
	m := make(map[string]Court, len(table.Courts))
	for _, c := range table.Courts {
		c.DistrictCode = "1"
		m[benchKey(c.StateCode, c.CourtCode)] = c
	}
	return m
}

// benchKey normalizes court code "1" and "" to the same principal bench.
func benchKey(state, court string) string {
	if court == "1" {
		court = ""
	}
	return state + "/" + court
}

// LookupCourt resolves a state/court code pair against the static bench
// table. Fails with an unknown_court fault when the selector is absent.
func LookupCourt(stateCode, courtCode string) (Court, error) {
	c, ok := benches[benchKey(stateCode, courtCode)]
	if !ok {
		return Court{}, faults.Newf(faults.KindUnknownCourt,
			"no bench for state_code=%q court_code=%q", stateCode, courtCode)
	}
	return c, nil
}

// CaseType is one entry of a bench's case-type dropdown; each bench
// registers its own set. The code is the selector case-number searches
// expect.
type CaseType struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// ActType is one entry of the act-wise search dropdown.
type ActType struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Courts returns all known benches, in no particular order.
func Courts() []Court {
	out := make([]Court, 0, len(benches))
	for _, c := range benches {
		out = append(out, c)
	}
	return out
}

// QueryParams returns the selector parameters the portal expects on every
// court-scoped request.
func (c Court) QueryParams() url.Values {
	courtCode := c.CourtCode
	if courtCode == "" {
		courtCode = "1"
	}
	district := c.DistrictCode
	if district == "" {
		district = "1"
	}
	return url.Values{
		"state_code": {c.StateCode},
		"dist_code":  {district},
		"court_code": {courtCode},
	}
}

// Selector renders the state/court pair for logs and store keys.
func (c Court) Selector() string {
	if c.CourtCode == "" || c.CourtCode == "1" {
		return c.StateCode
	}
	return c.StateCode + "-" + c.CourtCode
}
