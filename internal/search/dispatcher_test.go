package search

import (
	"testing"

	"github.com/nikhilbhat/courtwatch/internal/faults"
	"github.com/nikhilbhat/courtwatch/internal/models"
)

func mustCourt(t *testing.T, state, court string) models.Court {
	t.Helper()
	c, err := models.LookupCourt(state, court)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestBuildCNRQuery(t *testing.T) {
	bench := mustCourt(t, "4", "")

	req, err := Build(models.CNRQuery{Bench: bench, CNR: "hcke-01-001234-2024"})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if req.Path != PathCaseNumberSearch {
		t.Errorf("Path = %q, want %q", req.Path, PathCaseNumberSearch)
	}
	if got := req.Params.Get("cino"); got != "HCKE010012342024" {
		t.Errorf("cino = %q, want normalized CNR", got)
	}
	for key, want := range map[string]string{
		"state_code":  "4",
		"dist_code":   "1",
		"court_code":  "1",
		"action_code": "showRecords",
		"caseNoType":  "new",
	} {
		if got := req.Params.Get(key); got != want {
			t.Errorf("param %s = %q, want %q", key, got, want)
		}
	}
}

func TestBuildCaseNumberQuery(t *testing.T) {
	bench := mustCourt(t, "1", "")

	req, err := Build(models.CaseNumberQuery{
		Bench:      bench,
		CaseType:   "WP",
		CaseNumber: "1234/2024",
		Year:       "2024",
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	// Slash-qualified case numbers send only the number part.
	if got := req.Params.Get("case_no"); got != "1234" {
		t.Errorf("case_no = %q, want 1234", got)
	}
	if got := req.Params.Get("case_type"); got != "WP" {
		t.Errorf("case_type = %q, want WP", got)
	}
	if got := req.Params.Get("rgyear"); got != "2024" {
		t.Errorf("rgyear = %q, want 2024", got)
	}
}

func TestBuildDocketAndPartyQueries(t *testing.T) {
	bench := mustCourt(t, "10", "2")

	docket, err := Build(models.DocketQuery{Bench: bench, DocketNumber: "4281", Year: "2023"})
	if err != nil {
		t.Fatalf("Build(docket) error = %v", err)
	}
	if docket.Path != PathDocketSearch {
		t.Errorf("docket path = %q, want %q", docket.Path, PathDocketSearch)
	}
	if got := docket.Params.Get("diary_no"); got != "4281" {
		t.Errorf("diary_no = %q, want 4281", got)
	}

	party, err := Build(models.PartyNameQuery{Bench: bench, Name: "sharma"})
	if err != nil {
		t.Fatalf("Build(party) error = %v", err)
	}
	if party.Path != PathPartySearch {
		t.Errorf("party path = %q, want %q", party.Path, PathPartySearch)
	}
	if got := party.Params.Get("f"); got != "Pending" {
		t.Errorf("f = %q, want Pending", got)
	}
	if party.Params.Has("rgyear") {
		t.Error("rgyear should be absent when the query names no year")
	}
}

func TestBuildFailsFast(t *testing.T) {
	tests := []struct {
		name     string
		query    models.Query
		wantKind faults.Kind
	}{
		{
			"invalid cnr never reaches the wire",
			models.CNRQuery{Bench: mustCourt(t, "4", ""), CNR: "bogus"},
			faults.KindInvalidQuery,
		},
		{
			"unknown bench",
			models.CNRQuery{Bench: models.Court{StateCode: "99"}, CNR: "HCKE010012342024"},
			faults.KindUnknownCourt,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.query)
			if err == nil {
				t.Fatal("Build() = nil, want error")
			}
			if kind := faults.KindOf(err); kind != tt.wantKind {
				t.Errorf("fault kind = %v, want %v", kind, tt.wantKind)
			}
		})
	}
}

func TestBuildHistory(t *testing.T) {
	bench := mustCourt(t, "4", "")
	summary := models.CaseSummary{
		CNR:        "HCKE010012342024",
		CaseNumber: "WP/1234/2024",
		Token:      "a1b2c3",
	}

	req, err := BuildHistory(bench, summary)
	if err != nil {
		t.Fatalf("BuildHistory() error = %v", err)
	}
	if req.Path != PathCaseHistory {
		t.Errorf("Path = %q, want %q", req.Path, PathCaseHistory)
	}
	if got := req.Params.Get("token"); got != "a1b2c3" {
		t.Errorf("token = %q, want a1b2c3", got)
	}

	_, err = BuildHistory(bench, models.CaseSummary{CNR: "HCKE010012342024", CaseNumber: "WP/1/2024"})
	if faults.KindOf(err) != faults.KindInvalidQuery {
		t.Errorf("missing token: kind = %v, want invalid_query", faults.KindOf(err))
	}
}

func TestRequestClone(t *testing.T) {
	req, err := Build(models.CNRQuery{Bench: mustCourt(t, "4", ""), CNR: "HCKE010012342024"})
	if err != nil {
		t.Fatal(err)
	}

	clone := req.Clone()
	clone.Params.Set("captcha", "abc123")

	if req.Params.Has("captcha") {
		t.Error("mutating the clone leaked into the original request")
	}
}

func TestBuildCaseTypes(t *testing.T) {
	req, err := BuildCaseTypes(mustCourt(t, "1", "3"))
	if err != nil {
		t.Fatalf("BuildCaseTypes() error = %v", err)
	}
	if req.Path != PathCaseTypes {
		t.Errorf("Path = %q, want %q", req.Path, PathCaseTypes)
	}
	for key, want := range map[string]string{
		"action_code": "fillCaseType",
		"state_code":  "1",
		"court_code":  "3",
	} {
		if got := req.Params.Get(key); got != want {
			t.Errorf("param %s = %q, want %q", key, got, want)
		}
	}

	if _, err := BuildCaseTypes(models.Court{StateCode: "99"}); faults.KindOf(err) != faults.KindUnknownCourt {
		t.Errorf("unknown bench error kind = %v, want unknown_court", faults.KindOf(err))
	}
}

func TestBuildActTypes(t *testing.T) {
	req, err := BuildActTypes(mustCourt(t, "1", ""), "  criminal ")
	if err != nil {
		t.Fatalf("BuildActTypes() error = %v", err)
	}
	if req.Path != PathActTypes {
		t.Errorf("Path = %q, want %q", req.Path, PathActTypes)
	}
	if got := req.Params.Get("search_act"); got != "criminal" {
		t.Errorf("search_act = %q, want trimmed query", got)
	}
	if got := req.Params.Get("action_code"); got != "fillActType" {
		t.Errorf("action_code = %q", got)
	}
}

func TestBuildOrderDocument(t *testing.T) {
	rec := &models.CaseRecord{
		CNR:                "MHAU010001232024",
		CaseType:           "27",
		RegistrationNumber: "2024/123",
	}
	order := models.Order{Filename: "order1.pdf"}

	req, err := BuildOrderDocument(mustCourt(t, "1", "3"), rec, order)
	if err != nil {
		t.Fatalf("BuildOrderDocument() error = %v", err)
	}
	if req.Path != PathOrderDocument {
		t.Errorf("Path = %q, want %q", req.Path, PathOrderDocument)
	}
	for key, want := range map[string]string{
		"filename":   "order1.pdf",
		"caseno":     "27/2024/123",
		"cCode":      "3",
		"state_code": "1",
		"cino":       "MHAU010001232024",
	} {
		if got := req.Params.Get(key); got != want {
			t.Errorf("param %s = %q, want %q", key, got, want)
		}
	}

	tests := []struct {
		name  string
		rec   models.CaseRecord
		order models.Order
	}{
		{"no filename", *rec, models.Order{}},
		{"no case type", models.CaseRecord{CNR: rec.CNR, RegistrationNumber: rec.RegistrationNumber}, order},
		{"no registration number", models.CaseRecord{CNR: rec.CNR, CaseType: rec.CaseType}, order},
		{"no cnr", models.CaseRecord{CaseType: rec.CaseType, RegistrationNumber: rec.RegistrationNumber}, order},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildOrderDocument(mustCourt(t, "1", "3"), &tt.rec, tt.order)
			if faults.KindOf(err) != faults.KindInvalidQuery {
				t.Errorf("error kind = %v, want invalid_query", faults.KindOf(err))
			}
		})
	}
}
