// Package search maps logical search queries onto the request shapes the
// records portal expects. Build is pure: it validates structural
// preconditions and resolves the bench selector without touching the
// network, so a query that can never succeed costs no captcha attempt.
package search

import (
	"net/url"
	"strings"

	"github.com/nikhilbhat/courtwatch/internal/faults"
	"github.com/nikhilbhat/courtwatch/internal/models"
)

// Portal endpoint paths per search kind. The portal's wire surface is
// versioned and unstable; it is isolated here and in the parser so layout
// changes stay local.
const (
	PathCaseNumberSearch = "/cases/case_no_qry.php"
	PathDocketSearch     = "/cases/diary_no_qry.php"
	PathPartySearch      = "/cases/s_party_qry.php"
	PathCaseHistory      = "/cases/o_civil_case_history.php"
	PathCaseTypes        = "/cases/s_casetype_qry.php"
	PathActTypes         = "/cases/s_actwise_qry.php"
	PathOrderDocument    = "/cases/display_pdf.php"
)

// Request is a validated portal request: the endpoint path and the form
// parameters minus the captcha solution, which the solver loop supplies
// at submission time.
type Request struct {
	Path   string
	Params url.Values
}

// Clone deep-copies the request so per-attempt mutation (captcha field)
// never leaks between attempts.
func (r Request) Clone() Request {
	params := make(url.Values, len(r.Params))
	for k, v := range r.Params {
		params[k] = append([]string(nil), v...)
	}
	return Request{Path: r.Path, Params: params}
}

// Build turns a query into a portal request. It is total over all query
// variants and fails fast with invalid_query or unknown_court before any
// network call.
func Build(q models.Query) (Request, error) {
	if err := q.Validate(); err != nil {
		return Request{}, err
	}

	bench := q.Court()
	court, err := models.LookupCourt(bench.StateCode, bench.CourtCode)
	if err != nil {
		return Request{}, err
	}

	params := court.QueryParams()
	params.Set("action_code", "showRecords")

	switch q := q.(type) {
	case models.CNRQuery:
		cnr, _ := models.NormalizeCNR(q.CNR)
		params.Set("cino", cnr)
		params.Set("caseNoType", "new")
		params.Set("displayOldCaseNo", "NO")
		return Request{Path: PathCaseNumberSearch, Params: params}, nil

	case models.CaseNumberQuery:
		number := q.CaseNumber
		if i := strings.IndexByte(number, '/'); i >= 0 {
			number = number[:i]
		}
		params.Set("case_type", strings.TrimSpace(q.CaseType))
		params.Set("case_no", strings.TrimSpace(number))
		params.Set("rgyear", q.Year)
		params.Set("caseNoType", "new")
		params.Set("displayOldCaseNo", "NO")
		return Request{Path: PathCaseNumberSearch, Params: params}, nil

	case models.DocketQuery:
		params.Set("diary_no", strings.TrimSpace(q.DocketNumber))
		params.Set("rgyear", q.Year)
		return Request{Path: PathDocketSearch, Params: params}, nil

	case models.PartyNameQuery:
		params.Set("petres_name", strings.TrimSpace(q.Name))
		if q.Year != "" {
			params.Set("rgyear", q.Year)
		}
		params.Set("f", "Pending")
		return Request{Path: PathPartySearch, Params: params}, nil

	default:
		// New variants must be mapped here before they can reach the portal.
		return Request{}, faults.Newf(faults.KindInvalidQuery,
			"unsupported query kind %q", q.Kind())
	}
}

// BuildHistory builds the follow-up request that expands a search result
// row into the full case history.
func BuildHistory(court models.Court, summary models.CaseSummary) (Request, error) {
	if summary.Token == "" || summary.CaseNumber == "" {
		return Request{}, faults.New(faults.KindInvalidQuery,
			"case summary is missing the view token or case number")
	}
	cnr, ok := models.NormalizeCNR(summary.CNR)
	if !ok {
		return Request{}, faults.Newf(faults.KindInvalidQuery,
			"case summary carries invalid cnr %q", summary.CNR)
	}

	params := court.QueryParams()
	params.Set("cino", cnr)
	params.Set("token", summary.Token)
	params.Set("case_no", summary.CaseNumber)
	return Request{Path: PathCaseHistory, Params: params}, nil
}

// BuildCaseTypes builds the dropdown enumeration request for the case
// types registered on a bench. The returned codes are what case-number
// searches expect as their case type.
func BuildCaseTypes(bench models.Court) (Request, error) {
	court, err := models.LookupCourt(bench.StateCode, bench.CourtCode)
	if err != nil {
		return Request{}, err
	}
	params := court.QueryParams()
	params.Set("action_code", "fillCaseType")
	return Request{Path: PathCaseTypes, Params: params}, nil
}

// BuildActTypes builds the act-wise enumeration request. An empty query
// lists every act the bench knows.
func BuildActTypes(bench models.Court, query string) (Request, error) {
	court, err := models.LookupCourt(bench.StateCode, bench.CourtCode)
	if err != nil {
		return Request{}, err
	}
	params := court.QueryParams()
	params.Set("action_code", "fillActType")
	params.Set("search_act", strings.TrimSpace(query))
	return Request{Path: PathActTypes, Params: params}, nil
}

// BuildOrderDocument builds the document fetch for one order row. The
// portal keys documents by the full case identity, not the filename
// alone, so a record missing its case type, registration number or CNR
// cannot address its documents.
func BuildOrderDocument(bench models.Court, rec *models.CaseRecord, order models.Order) (Request, error) {
	if order.Filename == "" {
		return Request{}, faults.New(faults.KindInvalidQuery,
			"order carries no document reference")
	}
	if rec.CaseType == "" || rec.RegistrationNumber == "" || rec.CNR == "" {
		return Request{}, faults.Newf(faults.KindInvalidQuery,
			"record %q is missing the identifiers needed to address documents", rec.CNR)
	}
	court, err := models.LookupCourt(bench.StateCode, bench.CourtCode)
	if err != nil {
		return Request{}, err
	}
	courtCode := court.CourtCode
	if courtCode == "" {
		courtCode = "1"
	}
	params := url.Values{
		"filename":   {order.Filename},
		"caseno":     {rec.CaseType + "/" + rec.RegistrationNumber},
		"cCode":      {courtCode},
		"state_code": {court.StateCode},
		"cino":       {rec.CNR},
	}
	return Request{Path: PathOrderDocument, Params: params}, nil
}
