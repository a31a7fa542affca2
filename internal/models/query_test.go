package models

import (
	"testing"

	"github.com/nikhilbhat/courtwatch/internal/faults"
)

func TestQueryValidate(t *testing.T) {
	bench := Court{StateCode: "1", DistrictCode: "1"}

	tests := []struct {
		name    string
		query   Query
		wantErr bool
	}{
		{"valid cnr", CNRQuery{Bench: bench, CNR: "HCBM010012342024"}, false},
		{"malformed cnr", CNRQuery{Bench: bench, CNR: "nope"}, true},
		{"valid case number", CaseNumberQuery{Bench: bench, CaseType: "WP", CaseNumber: "1234", Year: "2024"}, false},
		{"case number missing type", CaseNumberQuery{Bench: bench, CaseNumber: "1234", Year: "2024"}, true},
		{"case number missing number", CaseNumberQuery{Bench: bench, CaseType: "WP", Year: "2024"}, true},
		{"case number bad year", CaseNumberQuery{Bench: bench, CaseType: "WP", CaseNumber: "1234", Year: "24"}, true},
		{"valid docket", DocketQuery{Bench: bench, DocketNumber: "4281", Year: "2024"}, false},
		{"docket missing number", DocketQuery{Bench: bench, Year: "2024"}, true},
		{"valid party", PartyNameQuery{Bench: bench, Name: "sharma", Year: "2024"}, false},
		{"party without year", PartyNameQuery{Bench: bench, Name: "sharma"}, false},
		{"party blank name", PartyNameQuery{Bench: bench, Name: "   "}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Validate() = nil, want error")
				}
				if kind := faults.KindOf(err); kind != faults.KindInvalidQuery {
					t.Errorf("fault kind = %v, want invalid_query", kind)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
		})
	}
}
