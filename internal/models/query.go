package models

import (
	"regexp"
	"strings"

	"github.com/nikhilbhat/courtwatch/internal/faults"
)

// Query is the tagged union of supported search kinds. Exactly one
// variant backs any search; construction of a variant fixes the kind, so
// a "required field missing for this kind" state is unrepresentable.
type Query interface {
	// Court returns the jurisdiction selector the query targets.
	Court() Court
	// Kind names the search kind for logs.
	Kind() string
	// Validate checks structural preconditions. It never touches the
	// network; a violation is an invalid_query fault.
	Validate() error
}

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// CNRQuery addresses a case by its 16-character unique record number.
type CNRQuery struct {
	Bench Court
	CNR   string
}

func (q CNRQuery) Court() Court { return q.Bench }
func (q CNRQuery) Kind() string { return "cnr" }

func (q CNRQuery) Validate() error {
	if _, ok := NormalizeCNR(q.CNR); !ok {
		return faults.Newf(faults.KindInvalidQuery,
			"cnr must be 16 alphanumeric characters, got %q", q.CNR)
	}
	return nil
}

// CaseNumberQuery addresses a case by type, number and registration year.
type CaseNumberQuery struct {
	Bench      Court
	CaseType   string
	CaseNumber string
	Year       string
}

func (q CaseNumberQuery) Court() Court { return q.Bench }
func (q CaseNumberQuery) Kind() string { return "case_number" }

func (q CaseNumberQuery) Validate() error {
	if strings.TrimSpace(q.CaseType) == "" {
		return faults.New(faults.KindInvalidQuery, "case type is required")
	}
	if strings.TrimSpace(q.CaseNumber) == "" {
		return faults.New(faults.KindInvalidQuery, "case number is required")
	}
	if !yearPattern.MatchString(q.Year) {
		return faults.Newf(faults.KindInvalidQuery,
			"year must be 4 digits, got %q", q.Year)
	}
	return nil
}

// DocketQuery addresses a filing by its court-internal diary number and
// year, usable before a record number is assigned.
type DocketQuery struct {
	Bench        Court
	DocketNumber string
	Year         string
}

func (q DocketQuery) Court() Court { return q.Bench }
func (q DocketQuery) Kind() string { return "docket" }

func (q DocketQuery) Validate() error {
	if strings.TrimSpace(q.DocketNumber) == "" {
		return faults.New(faults.KindInvalidQuery, "docket number is required")
	}
	if !yearPattern.MatchString(q.Year) {
		return faults.Newf(faults.KindInvalidQuery,
			"year must be 4 digits, got %q", q.Year)
	}
	return nil
}

// PartyNameQuery searches by free-text litigant name within a year.
type PartyNameQuery struct {
	Bench Court
	Name  string
	Year  string
}

func (q PartyNameQuery) Court() Court { return q.Bench }
func (q PartyNameQuery) Kind() string { return "party_name" }

func (q PartyNameQuery) Validate() error {
	if strings.TrimSpace(q.Name) == "" {
		return faults.New(faults.KindInvalidQuery, "party name is required")
	}
	if q.Year != "" && !yearPattern.MatchString(q.Year) {
		return faults.Newf(faults.KindInvalidQuery,
			"year must be 4 digits, got %q", q.Year)
	}
	return nil
}
