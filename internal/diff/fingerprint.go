// Package diff decides whether a freshly acquired case record represents
// a meaningful change against what is already stored. The fingerprint is
// a pure function of the record's semantic fields: volatile retrieval
// metadata never moves it, and neither does reordering of sub-collections
// that carry no order.
package diff

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/nikhilbhat/courtwatch/internal/models"
)

// canonicalRecord is the fingerprint input: every semantic field of a
// case record, none of the volatile ones (RetrievedAt, Token). Any field
// added to CaseRecord is semantic by default and must be added here
// unless it is explicitly classified volatile.
type canonicalRecord struct {
	CNR                string             `json:"cnr"`
	CaseNumber         string             `json:"case_number"`
	CaseType           string             `json:"case_type"`
	RegistrationNumber string             `json:"registration_number"`
	RegistrationDate   string             `json:"registration_date"`
	FilingNumber       string             `json:"filing_number"`
	FilingDate         string             `json:"filing_date"`
	Status             string             `json:"status"`
	NatureOfDisposal   string             `json:"nature_of_disposal"`
	Coram              string             `json:"coram"`
	Bench              string             `json:"bench"`
	Judicial           string             `json:"judicial"`
	NotBeforeMe        string             `json:"not_before_me"`
	FirstHearingDate   string             `json:"first_hearing_date"`
	DecisionDate       string             `json:"decision_date"`
	Court              string             `json:"court"`
	Parties            []models.Party     `json:"parties"`
	Hearings           []models.Hearing   `json:"hearings"`
	Orders             []models.Order     `json:"orders"`
	Objections         []models.Objection `json:"objections"`
	Category           string             `json:"category"`
	SubCategory        string             `json:"sub_category"`
	FIR                *models.FIR        `json:"fir"`
}

// Fingerprint computes the stable digest of a record's semantic content.
// Parties are an unordered collection within each role and are sorted
// before hashing; hearings and orders keep source order, which is
// meaningful (the portal lists history chronologically and "next
// hearing" display depends on it).
func Fingerprint(rec *models.CaseRecord) (models.Fingerprint, error) {
	canon := canonicalRecord{
		CNR:                rec.CNR,
		CaseNumber:         rec.CaseNumber,
		CaseType:           rec.CaseType,
		RegistrationNumber: rec.RegistrationNumber,
		RegistrationDate:   dateKey(rec.RegistrationDate),
		FilingNumber:       rec.FilingNumber,
		FilingDate:         dateKey(rec.FilingDate),
		Status:             rec.Status,
		NatureOfDisposal:   rec.NatureOfDisposal,
		Coram:              rec.Coram,
		Bench:              rec.Bench,
		Judicial:           rec.Judicial,
		NotBeforeMe:        rec.NotBeforeMe,
		FirstHearingDate:   dateKey(rec.FirstHearingDate),
		DecisionDate:       dateKey(rec.DecisionDate),
		Court:              rec.Court.Selector(),
		Parties:            normalizeParties(rec.Parties),
		Hearings:           normalizeHearings(rec.Hearings),
		Orders:             rec.Orders,
		Objections:         rec.Objections,
		Category:           rec.Category,
		SubCategory:        rec.SubCategory,
		FIR:                rec.FIR,
	}

	payload, err := json.Marshal(canon)
	if err != nil {
		return models.Fingerprint{}, fmt.Errorf("marshal canonical record: %w", err)
	}
	return models.Fingerprint(sha256.Sum256(payload)), nil
}

// Compare decides the refresh outcome for a record against the
// previously stored fingerprint. A nil previous fingerprint always
// yields Created.
func Compare(rec *models.CaseRecord, previous *models.Fingerprint) (models.RefreshOutcome, error) {
	current, err := Fingerprint(rec)
	if err != nil {
		return models.RefreshOutcome{}, err
	}

	outcome := models.RefreshOutcome{CNR: rec.CNR, Record: rec, New: &current}
	switch {
	case previous == nil:
		outcome.Kind = models.OutcomeCreated
	case *previous == current:
		outcome.Kind = models.OutcomeUnchanged
		outcome.Old = previous
	default:
		outcome.Kind = models.OutcomeUpdated
		outcome.Old = previous
	}
	return outcome, nil
}

// normalizeParties sorts parties by role, name and advocate: two
// advocates listed in a different order for the same role are the same
// case content.
func normalizeParties(parties []models.Party) []models.Party {
	if parties == nil {
		return []models.Party{}
	}
	sorted := append([]models.Party(nil), parties...)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Role != b.Role {
			return a.Role < b.Role
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Advocate < b.Advocate
	})
	return sorted
}

// normalizeHearings keeps order but drops the derived ParsedDate so the
// digest depends only on source text.
func normalizeHearings(hearings []models.Hearing) []models.Hearing {
	if hearings == nil {
		return []models.Hearing{}
	}
	out := make([]models.Hearing, len(hearings))
	for i, h := range hearings {
		h.ParsedDate = nil
		out[i] = h
	}
	return out
}

func dateKey(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}
