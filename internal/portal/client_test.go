package portal

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhat/courtwatch/internal/faults"
	"github.com/nikhilbhat/courtwatch/internal/models"
)

const caseTypesPayload = "0~Select Case Type\n1~CIVIL APPEAL\n27~WRIT PETITION\n"

const actTypesPayload = "0~Select Act\n37~CODE OF CRIMINAL PROCEDURE\n"

// fakeDocPortal scripts the dropdown and document endpoints and records
// the query parameters it was addressed with.
type fakeDocPortal struct {
	mu       sync.Mutex
	docQuery url.Values
	actQuery url.Values
	calls    int
}

func (f *fakeDocPortal) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/cases/case_no.php", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/cases/s_casetype_qry.php", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(caseTypesPayload))
	})
	mux.HandleFunc("/cases/s_actwise_qry.php", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		f.mu.Lock()
		f.actQuery = r.PostForm
		f.mu.Unlock()
		w.Write([]byte(actTypesPayload))
	})
	mux.HandleFunc("/cases/display_pdf.php", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.docQuery = r.URL.Query()
		f.calls++
		f.mu.Unlock()
		if r.URL.Query().Get("filename") == "gone.pdf" {
			w.Header().Set("Location", "errormsg=no+such+document")
			w.WriteHeader(http.StatusFound)
			return
		}
		w.Write([]byte("%PDF-1.4 fake document"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestSession(t *testing.T, baseURL string) *Session {
	t.Helper()
	court, err := models.LookupCourt("1", "3")
	require.NoError(t, err)

	client := NewClient(Config{BaseURL: baseURL, RequestsPerSecond: 1000},
		slog.New(slog.DiscardHandler))
	sess, err := client.NewSession(context.Background(), court)
	require.NoError(t, err)
	return sess
}

func TestSessionCaseTypes(t *testing.T) {
	portal := &fakeDocPortal{}
	sess := newTestSession(t, portal.server(t).URL)

	types, err := sess.CaseTypes(context.Background())
	require.NoError(t, err)

	// The leading "Select ..." placeholder row is not a case type.
	require.Len(t, types, 2)
	assert.Equal(t, models.CaseType{Code: "1", Description: "CIVIL APPEAL"}, types[0])
	assert.Equal(t, models.CaseType{Code: "27", Description: "WRIT PETITION"}, types[1])
}

func TestSessionActTypes(t *testing.T) {
	portal := &fakeDocPortal{}
	sess := newTestSession(t, portal.server(t).URL)

	types, err := sess.ActTypes(context.Background(), "criminal")
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, "37", types[0].Code)

	portal.mu.Lock()
	defer portal.mu.Unlock()
	assert.Equal(t, "criminal", portal.actQuery.Get("search_act"))
	assert.Equal(t, "fillActType", portal.actQuery.Get("action_code"))
}

func orderedRecord() *models.CaseRecord {
	return &models.CaseRecord{
		CNR:                "MHAU010001232024",
		CaseType:           "27",
		RegistrationNumber: "2024/123",
		Orders: []models.Order{
			{Date: "05-02-2024", Filename: "order1.pdf"},
		},
	}
}

func TestSessionDownloadOrder(t *testing.T) {
	portal := &fakeDocPortal{}
	sess := newTestSession(t, portal.server(t).URL)

	rec := orderedRecord()
	data, err := sess.DownloadOrder(context.Background(), rec, rec.Orders[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "%PDF")

	portal.mu.Lock()
	q := portal.docQuery
	portal.mu.Unlock()
	assert.Equal(t, "order1.pdf", q.Get("filename"))
	assert.Equal(t, "27/2024/123", q.Get("caseno"))
	assert.Equal(t, "MHAU010001232024", q.Get("cino"))
	assert.Equal(t, "3", q.Get("cCode"))
	assert.Equal(t, "1", q.Get("state_code"))
}

func TestDownloadOrderIncompleteRecord(t *testing.T) {
	portal := &fakeDocPortal{}
	sess := newTestSession(t, portal.server(t).URL)

	rec := orderedRecord()
	rec.RegistrationNumber = ""
	_, err := sess.DownloadOrder(context.Background(), rec, rec.Orders[0])
	require.Error(t, err)
	assert.Equal(t, faults.KindInvalidQuery, faults.KindOf(err))
	portal.mu.Lock()
	defer portal.mu.Unlock()
	assert.Zero(t, portal.calls, "incomplete record must not reach the portal")
}

func TestDownloadOrderMissingDocument(t *testing.T) {
	portal := &fakeDocPortal{}
	sess := newTestSession(t, portal.server(t).URL)

	rec := orderedRecord()
	_, err := sess.DownloadOrder(context.Background(), rec, models.Order{Filename: "gone.pdf"})
	require.Error(t, err)
	assert.Equal(t, faults.KindNotFound, faults.KindOf(err))
}
