package models

import "testing"

func TestLookupCourt(t *testing.T) {
	tests := []struct {
		name      string
		stateCode string
		courtCode string
		wantErr   bool
		wantName  string
	}{
		{"principal bench by empty code", "4", "", false, "High Court of Kerala"},
		{"principal bench by code 1", "4", "1", false, "High Court of Kerala"},
		{"secondary bench", "9", "2", false, "Rajasthan High Court - Principal Seat, Jodhpur"},
		{"unknown state", "99", "", true, ""},
		{"unknown bench within state", "4", "7", true, ""},
		{"empty selector", "", "", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := LookupCourt(tt.stateCode, tt.courtCode)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("LookupCourt(%q, %q) = %v, want error", tt.stateCode, tt.courtCode, c)
				}
				return
			}
			if err != nil {
				t.Fatalf("LookupCourt(%q, %q) error = %v", tt.stateCode, tt.courtCode, err)
			}
			if c.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", c.Name, tt.wantName)
			}
		})
	}
}

func TestCourtQueryParams(t *testing.T) {
	c, err := LookupCourt("16", "3")
	if err != nil {
		t.Fatal(err)
	}
	params := c.QueryParams()
	if got := params.Get("state_code"); got != "16" {
		t.Errorf("state_code = %q, want 16", got)
	}
	if got := params.Get("court_code"); got != "3" {
		t.Errorf("court_code = %q, want 3", got)
	}
	// District is always 1 for high courts.
	if got := params.Get("dist_code"); got != "1" {
		t.Errorf("dist_code = %q, want 1", got)
	}
}

func TestCourtQueryParamsPrincipalBench(t *testing.T) {
	c, err := LookupCourt("4", "")
	if err != nil {
		t.Fatal(err)
	}
	// An absent court code still sends court_code=1 on the wire.
	if got := c.QueryParams().Get("court_code"); got != "1" {
		t.Errorf("court_code = %q, want 1", got)
	}
}

func TestCourtSelector(t *testing.T) {
	tests := []struct {
		court Court
		want  string
	}{
		{Court{StateCode: "4"}, "4"},
		{Court{StateCode: "4", CourtCode: "1"}, "4"},
		{Court{StateCode: "9", CourtCode: "2"}, "9-2"},
	}
	for _, tt := range tests {
		if got := tt.court.Selector(); got != tt.want {
			t.Errorf("Selector() = %q, want %q", got, tt.want)
		}
	}
}
