package parser

import "testing"

func TestParseCaseList(t *testing.T) {
	payload := []byte(
		"WP/1234/2024~WP/2024/1234~RAMESH KUMAR  Versus  STATE OF KERALA~HCKE010012342024~f4~f5~f6~tok123" +
			"##" +
			"CRL/88/2023~CRL/2023/88~ANIL Versus SUNIL~HCKE020000882023~f4~f5~f6~tok456")

	cases := ParseCaseList(payload)
	if len(cases) != 2 {
		t.Fatalf("got %d cases, want 2", len(cases))
	}

	first := cases[0]
	if first.CNR != "HCKE010012342024" {
		t.Errorf("CNR = %q", first.CNR)
	}
	if first.CaseNumber != "WP/1234/2024" {
		t.Errorf("CaseNumber = %q", first.CaseNumber)
	}
	if first.CaseType != "WP" {
		t.Errorf("CaseType = %q", first.CaseType)
	}
	if first.RegistrationNumber != "2024/1234" {
		t.Errorf("RegistrationNumber = %q", first.RegistrationNumber)
	}
	if first.Token != "tok123" {
		t.Errorf("Token = %q", first.Token)
	}
	if first.Petitioner != "RAMESH KUMAR" || first.Respondent != "STATE OF KERALA" {
		t.Errorf("parties = %q / %q", first.Petitioner, first.Respondent)
	}

	if cases[1].Token != "tok456" {
		t.Errorf("second token = %q", cases[1].Token)
	}
}

func TestParseCaseListSkipsMalformedRows(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    int
	}{
		{"empty payload", "", 0},
		{"whitespace only", "  \n ", 0},
		{"too few fields", "a~b~c", 0},
		{"bad case triple", "WP/1/2024~notriple~X Versus Y~HCKE010012342024~f~f~f~tok", 0},
		{"invalid cnr", "WP/1/2024~WP/2024/1~X Versus Y~short~f~f~f~tok", 0},
		{
			"good row survives bad neighbor",
			"a~b~c##WP/1/2024~WP/2024/1~X Versus Y~HCKE010012342024~f~f~f~tok",
			1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(ParseCaseList([]byte(tt.payload))); got != tt.want {
				t.Errorf("got %d cases, want %d", got, tt.want)
			}
		})
	}
}

func TestParseOptions(t *testing.T) {
	payload := []byte("1~WRIT PETITION (CIVIL)\n2~CRIMINAL APPEAL\nno-separator-line\n")
	options := ParseOptions(payload)
	if len(options) != 2 {
		t.Fatalf("got %d options, want 2", len(options))
	}
	if options[0] != [2]string{"1", "WRIT PETITION (CIVIL)"} {
		t.Errorf("first option = %v", options[0])
	}
}
