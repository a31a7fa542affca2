package parser

import (
	"bytes"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/nikhilbhat/courtwatch/internal/faults"
	"github.com/nikhilbhat/courtwatch/internal/models"
)

// detailKeyChecks filters case-detail labels to the ones that carry data;
// decorative labels in the same table never contain these words.
var detailKeyChecks = []string{
	"Number", "Key", "Station", "District", "Year", "State", "Type", "Date",
}

var (
	partyLine = regexp.MustCompile(`(?m)\d\)\s+(?P<party>[^\n]+?)(?:\s*\n\s*Advocate\s*-\s*(?P<advocate>[^\n]+))?$`)
	firLine   = regexp.MustCompile(`(?m)(?P<k>[^:\n]+):\s?(?P<v>[\w\d ]+)`)
)

// ParseCaseDetails extracts a case record from a history page. Missing
// optional sections (FIR, advocates, orders) produce a partial record,
// which is valid; a page with no record number AND no case number is a
// parse failure, never an empty record.
func ParseCaseDetails(payload []byte) (*models.CaseRecord, error) {
	if bytes.Contains(bytes.ToLower(payload), []byte("session expired")) {
		return nil, faults.New(faults.KindTransient, "portal session expired")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(payload))
	if err != nil {
		return nil, faults.Wrap(faults.KindParseFailure, "parse html", err)
	}
	// <br> separates party names from advocate lines; make it a real
	// newline so text extraction keeps the boundary.
	doc.Find("br").ReplaceWithHtml("\n")

	details := extractCaseDetails(doc)
	status := extractCaseStatus(doc)

	cnr, ok := models.NormalizeCNR(details["CNR Number"])
	if !ok {
		cnr = ""
	}
	caseNumber := details["Case Number"]
	if caseNumber == "" {
		caseNumber = details["Filing Number"]
	}
	if cnr == "" && caseNumber == "" {
		return nil, faults.New(faults.KindParseFailure,
			"no identifying fields extracted (cnr and case number both absent)")
	}

	rec := &models.CaseRecord{
		CNR:                cnr,
		CaseNumber:         caseNumber,
		CaseType:           details["Case Type"],
		RegistrationNumber: details["Registration Number"],
		RegistrationDate:   ParseDate(details["Registration Date"]),
		FilingNumber:       details["Filing Number"],
		FilingDate:         ParseDate(details["Filing Date"]),

		Status:           firstNonEmpty(status["Case Status"], status["Stage of Case"]),
		NatureOfDisposal: cleanValue(status["Nature of Disposal"]),
		Coram:            status["Coram"],
		Bench:            status["Bench"],
		Judicial:         status["Judicial"],
		NotBeforeMe:      cleanValue(status["Not Before Me"]),
		FirstHearingDate: ParseDate(status["First Hearing Date"]),
		DecisionDate:     ParseDate(status["Decision Date"]),

		Parties:     extractAllParties(doc),
		Hearings:    extractHearings(doc),
		Orders:      extractOrders(doc),
		Objections:  extractObjections(doc),
		FIR:         extractFIR(doc),
		RetrievedAt: time.Now().UTC(),
	}
	rec.Category, rec.SubCategory = extractCategory(doc)
	return rec, nil
}

// extractCaseDetails reads the labeled key/value pairs of the case
// details table. The portal renders values either as a sibling label or
// as ":"-joined text, depending on layout version.
func extractCaseDetails(doc *goquery.Document) map[string]string {
	details := make(map[string]string)
	doc.Find(".case_details_table label").Each(func(_ int, label *goquery.Selection) {
		key := strings.TrimSpace(label.Text())
		if !containsAny(key, detailKeyChecks) {
			return
		}

		var value string
		if next := label.Next(); next.Is("label") {
			value = strings.ReplaceAll(next.Text(), ":", "")
		} else if parent := label.Parent(); strings.Contains(parent.Text(), ":") {
			_, after, _ := strings.Cut(parent.Text(), ":")
			value = after
		} else {
			label.Parent().NextAll().EachWithBreak(func(_ int, sib *goquery.Selection) bool {
				if strings.Contains(sib.Text(), ":") {
					_, after, _ := strings.Cut(sib.Text(), ":")
					value = after
					return false
				}
				return true
			})
		}
		details[key] = cleanText(value)
	})
	return details
}

// extractCaseStatus reads the strong-tag pairs after the Case Status
// heading.
func extractCaseStatus(doc *goquery.Document) map[string]string {
	status := make(map[string]string)
	heading := doc.Find("h2").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), "Case Status")
	}).First()
	if heading.Length() == 0 {
		return status
	}

	heading.Next().Find("label").Each(func(_ int, row *goquery.Selection) {
		strongs := row.Find("strong")
		if strongs.Length() < 2 {
			return
		}
		key := strings.TrimSpace(strongs.Eq(0).Text())
		value := strongs.Eq(1).Text()
		if _, after, found := strings.Cut(value, ":"); found {
			value = after
		}
		status[key] = cleanText(value)
	})
	return status
}

func extractAllParties(doc *goquery.Document) []models.Party {
	parties := extractParties(doc, "Petitioner_Advocate_table", models.RolePetitioner)
	return append(parties, extractParties(doc, "Respondent_Advocate_table", models.RoleRespondent)...)
}

// extractParties reads one side's numbered party block, with the
// "Advocate - NAME" continuation line when present.
func extractParties(doc *goquery.Document, spanClass string, role models.PartyRole) []models.Party {
	block := doc.Find("span." + spanClass).First()
	if block.Length() == 0 {
		return nil
	}

	var parties []models.Party
	text := cleanNBSP(block.Text())
	for _, m := range partyLine.FindAllStringSubmatch(text, -1) {
		p := models.Party{Role: role, Name: strings.TrimSpace(m[1])}
		if len(m) > 2 {
			p.Advocate = strings.TrimSpace(m[2])
		}
		parties = append(parties, p)
	}
	return parties
}

// extractHearings reads the history table following the historyheading
// marker. Rows after an "Order Number" header belong to the order section
// of the older combined layout and are not hearings.
func extractHearings(doc *goquery.Document) []models.Hearing {
	marker := doc.Find("#historyheading").First()
	if marker.Length() == 0 {
		return nil
	}
	table := marker.NextAllFiltered("table").First()
	if table.Length() == 0 {
		table = marker.Parent().Find("table").First()
	}

	var hearings []models.Hearing
	stop := false
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 || stop {
			return
		}
		cells := row.Find("td")
		if cells.Length() < 5 {
			return
		}

		causeListType := cleanText(cells.Eq(0).Text())
		if causeListType == "Order Number" {
			stop = true
			return
		}
		if len(causeListType) < 4 {
			causeListType = ""
		}

		date := cleanText(cells.Eq(2).Text())
		hearings = append(hearings, models.Hearing{
			CauseListType: causeListType,
			Judge:         cleanText(cells.Eq(1).Text()),
			Date:          date,
			ParsedDate:    ParseDate(date),
			NextDate:      cleanText(cells.Eq(3).Text()),
			Purpose:       cleanText(cells.Eq(4).Text()),
		})
	})
	return hearings
}

func extractOrders(doc *goquery.Document) []models.Order {
	var orders []models.Order
	doc.Find("table.order_table tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		cells := row.Find("td")
		if cells.Length() < 5 {
			return
		}
		order := models.Order{
			Judge: cleanText(cells.Eq(2).Text()),
			Date:  cleanText(cells.Eq(3).Text()),
		}
		if href, ok := cells.Eq(4).Find("a").First().Attr("href"); ok {
			order.Filename = filenameParam(href)
		}
		orders = append(orders, order)
	})
	return orders
}

func extractObjections(doc *goquery.Document) []models.Objection {
	table := tableAfterCaption(doc, "OBJECTION")
	if table == nil {
		return nil
	}

	var objections []models.Objection
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		cells := row.Find("td")
		if cells.Length() < 5 {
			return
		}
		objections = append(objections, models.Objection{
			ScrutinyDate:   cleanText(cells.Eq(1).Text()),
			Objection:      cleanText(cells.Eq(2).Text()),
			ComplianceDate: cleanText(cells.Eq(3).Text()),
			ReceiptDate:    cleanText(cells.Eq(4).Text()),
		})
	})
	return objections
}

func extractCategory(doc *goquery.Document) (category, subCategory string) {
	table := tableAfterCaption(doc, "Category Details")
	if table == nil {
		return "", ""
	}
	values := make(map[string]string)
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() >= 2 {
			values[cleanText(cells.Eq(0).Text())] = cleanText(cells.Eq(1).Text())
		}
	})
	return values["Category"], values["Sub Category"]
}

func extractFIR(doc *goquery.Document) *models.FIR {
	block := doc.Find("span.FIR_details_table").First()
	if block.Length() == 0 {
		return nil
	}

	values := make(map[string]string)
	for _, m := range firLine.FindAllStringSubmatch(cleanNBSP(block.Text()), -1) {
		values[strings.TrimSpace(m[1])] = strings.TrimSpace(m[2])
	}
	if len(values) == 0 {
		return nil
	}
	return &models.FIR{
		State:         values["State"],
		District:      values["District"],
		PoliceStation: values["Police Station"],
		Number:        values["FIR Number"],
		Year:          values["Year"],
	}
}

// tableAfterCaption finds the table that follows a table containing the
// given caption text. The portal renders section captions as one-cell
// tables preceding the data table.
func tableAfterCaption(doc *goquery.Document, caption string) *goquery.Selection {
	var result *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, t *goquery.Selection) bool {
		if !strings.Contains(t.Text(), caption) {
			return true
		}
		if next := t.NextAllFiltered("table").First(); next.Length() > 0 {
			result = next
			return false
		}
		return true
	})
	return result
}

func filenameParam(href string) string {
	_, query, found := strings.Cut(href, "?")
	if !found {
		return ""
	}
	for _, pair := range strings.Split(query, "&") {
		if k, v, ok := strings.Cut(pair, "="); ok && k == "filename" {
			return v
		}
	}
	return ""
}

func cleanNBSP(s string) string {
	return strings.ReplaceAll(s, " ", "")
}

func cleanText(s string) string {
	return strings.TrimSpace(cleanNBSP(s))
}

// cleanValue drops the placeholder renderings of an absent value.
func cleanValue(s string) string {
	if s == "--" || s == "-" {
		return ""
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
