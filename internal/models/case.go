// Package models defines the case data model shared across the
// acquisition pipeline: courts, search queries, case records and refresh
// outcomes.
package models

import (
	"regexp"
	"strings"
	"time"
)

// PartyRole distinguishes the two sides of a case.
type PartyRole string

const (
	RolePetitioner PartyRole = "petitioner"
	RoleRespondent PartyRole = "respondent"
)

// Party is one petitioner or respondent, with the advocate on record
// when the portal lists one.
type Party struct {
	Role     PartyRole `json:"role"`
	Name     string    `json:"name"`
	Advocate string    `json:"advocate,omitempty"`
}

// Hearing is one row of the case history table. Dates stay strings in
// the portal's own rendering; ParsedDate carries the normalized form when
// the source format was recognizable.
type Hearing struct {
	CauseListType string     `json:"cause_list_type,omitempty"`
	Judge         string     `json:"judge,omitempty"`
	Date          string     `json:"date,omitempty"`
	ParsedDate    *time.Time `json:"parsed_date,omitempty"`
	NextDate      string     `json:"next_date,omitempty"`
	Purpose       string     `json:"purpose,omitempty"`
}

// Order is one order/judgment row, with the portal-side PDF filename when
// a download link was present.
type Order struct {
	Judge    string `json:"judge,omitempty"`
	Date     string `json:"date,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// Objection is one registry scrutiny objection row.
type Objection struct {
	ScrutinyDate   string `json:"scrutiny_date,omitempty"`
	Objection      string `json:"objection,omitempty"`
	ComplianceDate string `json:"compliance_date,omitempty"`
	ReceiptDate    string `json:"receipt_date,omitempty"`
}

// FIR is the criminal-complaint detail block, present only on criminal
// matters.
type FIR struct {
	State         string `json:"state,omitempty"`
	District      string `json:"district,omitempty"`
	PoliceStation string `json:"police_station,omitempty"`
	Number        string `json:"number,omitempty"`
	Year          string `json:"year,omitempty"`
}

// CaseRecord is the structured output of one completed acquisition run.
//
// Hearings and Orders keep the portal's ordering: the source order is
// authoritative for "next hearing" display and is part of the record's
// fingerprint. RetrievedAt and Token are volatile and excluded from
// change detection.
type CaseRecord struct {
	CNR                string     `json:"cnr"`
	CaseNumber         string     `json:"case_number,omitempty"`
	CaseType           string     `json:"case_type,omitempty"`
	RegistrationNumber string     `json:"registration_number,omitempty"`
	RegistrationDate   *time.Time `json:"registration_date,omitempty"`
	FilingNumber       string     `json:"filing_number,omitempty"`
	FilingDate         *time.Time `json:"filing_date,omitempty"`

	Status           string     `json:"status,omitempty"`
	NatureOfDisposal string     `json:"nature_of_disposal,omitempty"`
	Coram            string     `json:"coram,omitempty"`
	Bench            string     `json:"bench,omitempty"`
	Judicial         string     `json:"judicial,omitempty"`
	NotBeforeMe      string     `json:"not_before_me,omitempty"`
	FirstHearingDate *time.Time `json:"first_hearing_date,omitempty"`
	DecisionDate     *time.Time `json:"decision_date,omitempty"`

	Court       Court       `json:"court"`
	Parties     []Party     `json:"parties,omitempty"`
	Hearings    []Hearing   `json:"hearings,omitempty"`
	Orders      []Order     `json:"orders,omitempty"`
	Objections  []Objection `json:"objections,omitempty"`
	Category    string      `json:"category,omitempty"`
	SubCategory string      `json:"sub_category,omitempty"`
	FIR         *FIR        `json:"fir,omitempty"`

	// Volatile metadata, excluded from fingerprinting.
	RetrievedAt time.Time `json:"retrieved_at,omitempty"`
	Token       string    `json:"-"`
}

// CaseSummary is one row of a search-result listing. It carries the view
// token needed to expand the full history.
type CaseSummary struct {
	CNR                string `json:"cnr"`
	CaseNumber         string `json:"case_number,omitempty"`
	CaseType           string `json:"case_type,omitempty"`
	RegistrationNumber string `json:"registration_number,omitempty"`
	Petitioner         string `json:"petitioner,omitempty"`
	Respondent         string `json:"respondent,omitempty"`
	Token              string `json:"-"`
}

// Title renders "petitioner vs respondent" for display, or "" when the
// parties are unknown.
func (s CaseSummary) Title() string {
	if s.Petitioner == "" || s.Respondent == "" {
		return ""
	}
	return s.Petitioner + " vs " + s.Respondent
}

// cnrPattern matches the 16-character alphanumeric unique record number.
var cnrPattern = regexp.MustCompile(`^[A-Za-z0-9]{16}$`)

// NormalizeCNR strips separator hyphens and upper-cases the record
// number. Returns false when the result is not a valid CNR.
func NormalizeCNR(raw string) (string, bool) {
	cnr := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), "-", ""))
	return cnr, cnrPattern.MatchString(cnr)
}

// NextHearingDate returns the first populated next-listing date in source
// order, or "" when the case has no forward listing.
func (r *CaseRecord) NextHearingDate() string {
	for _, h := range r.Hearings {
		if h.NextDate != "" && h.NextDate != "-" {
			return h.NextDate
		}
	}
	return ""
}

// PartiesByRole filters the party list to one side.
func (r *CaseRecord) PartiesByRole(role PartyRole) []Party {
	var out []Party
	for _, p := range r.Parties {
		if p.Role == role {
			out = append(out, p)
		}
	}
	return out
}
