package models

import "testing"

func TestNormalizeCNR(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{"already canonical", "HCBM010012342024", "HCBM010012342024", true},
		{"lowercase", "hcbm010012342024", "HCBM010012342024", true},
		{"hyphenated", "HCBM-01-001234-2024", "HCBM010012342024", true},
		{"surrounding whitespace", "  HCBM010012342024 ", "HCBM010012342024", true},
		{"too short", "HCBM0100123420", "", false},
		{"too long", "HCBM0100123420245", "", false},
		{"inner punctuation", "HCBM01@012342024", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeCNR(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("NormalizeCNR(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("NormalizeCNR(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNextHearingDate(t *testing.T) {
	rec := &CaseRecord{
		Hearings: []Hearing{
			{Date: "01-02-2024", NextDate: "-"},
			{Date: "15-03-2024", NextDate: "10-06-2024"},
			{Date: "10-06-2024", NextDate: "20-08-2024"},
		},
	}
	// First populated next-date in source order wins.
	if got := rec.NextHearingDate(); got != "10-06-2024" {
		t.Errorf("NextHearingDate() = %q, want 10-06-2024", got)
	}

	empty := &CaseRecord{Hearings: []Hearing{{NextDate: "-"}}}
	if got := empty.NextHearingDate(); got != "" {
		t.Errorf("NextHearingDate() = %q, want empty", got)
	}
}

func TestPartiesByRole(t *testing.T) {
	rec := &CaseRecord{Parties: []Party{
		{Role: RolePetitioner, Name: "A"},
		{Role: RoleRespondent, Name: "B"},
		{Role: RoleRespondent, Name: "C"},
	}}
	if got := len(rec.PartiesByRole(RoleRespondent)); got != 2 {
		t.Errorf("respondents = %d, want 2", got)
	}
	if got := len(rec.PartiesByRole(RolePetitioner)); got != 1 {
		t.Errorf("petitioners = %d, want 1", got)
	}
}

func TestCaseSummaryTitle(t *testing.T) {
	s := CaseSummary{Petitioner: "RAM LAL", Respondent: "STATE"}
	if got := s.Title(); got != "RAM LAL vs STATE" {
		t.Errorf("Title() = %q", got)
	}
	if got := (CaseSummary{Petitioner: "RAM LAL"}).Title(); got != "" {
		t.Errorf("Title() with one side unknown = %q, want empty", got)
	}
}
