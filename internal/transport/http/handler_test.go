package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"seminar-results-service/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xuri/excelize/v2"
)

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, body
}

func post(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(url, "application/json", nil)
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, body
}

func TestRoundResultsEndpoint(t *testing.T) {
	env := newTestEnv(t, deadline.Add(time.Hour))

	resp, body := get(t, env.server.URL+"/rounds/11/results")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	var rows []domain.ResultRow
	if err := json.Unmarshal(body, &rows); err != nil {
		t.Fatalf("decode rows: %v", err)
	}
	if len(rows) != 2 || rows[0].Participant.ID != 1 || rows[0].Total != 5 {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestFreezeLifecycleEndpoints(t *testing.T) {
	env := newTestEnv(t, deadline.Add(time.Hour))

	resp, body := get(t, env.server.URL+"/rounds/11/state")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), string(domain.StateClosedComputable)) {
		t.Fatalf("unexpected state %d: %s", resp.StatusCode, body)
	}

	resp, _ = post(t, env.server.URL+"/rounds/11/freeze")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	_, frozen := get(t, env.server.URL+"/rounds/11/results")

	resp, _ = post(t, env.server.URL+"/rounds/11/freeze")
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on re-freeze, got %d", resp.StatusCode)
	}

	if err := env.catalog.Grade(1, 0); err != nil {
		t.Fatalf("grade: %v", err)
	}
	_, again := get(t, env.server.URL+"/rounds/11/results")
	if !bytes.Equal(frozen, again) {
		t.Fatalf("frozen body changed:\n%s\n%s", frozen, again)
	}

	resp, _ = post(t, env.server.URL+"/periods/1/freeze")
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for incomplete period, got %d", resp.StatusCode)
	}
}

func TestFreezeBeforeDeadlineConflicts(t *testing.T) {
	env := newTestEnv(t, deadline.Add(-time.Hour))
	resp, body := post(t, env.server.URL+"/rounds/11/freeze")
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", resp.StatusCode, body)
	}
}

func TestErrorStatuses(t *testing.T) {
	env := newTestEnv(t, deadline)

	cases := []struct {
		path   string
		status int
	}{
		{"/rounds/99/results", http.StatusNotFound},
		{"/periods/99/state", http.StatusNotFound},
		{"/rounds/abc/results", http.StatusBadRequest},
		{"/periods/1/participants/42", http.StatusNotFound},
		{"/periods/1/invitations/x/2", http.StatusBadRequest},
	}
	for _, tc := range cases {
		resp, body := get(t, env.server.URL+tc.path)
		if resp.StatusCode != tc.status {
			t.Fatalf("%s: expected %d, got %d: %s", tc.path, tc.status, resp.StatusCode, body)
		}
	}
}

func TestPeriodEndpoints(t *testing.T) {
	env := newTestEnv(t, deadline)

	_, body := get(t, env.server.URL+"/periods/1/results")
	var rows []domain.ResultRow
	if err := json.Unmarshal(body, &rows); err != nil {
		t.Fatalf("decode rows: %v", err)
	}
	if len(rows) != 2 || rows[0].Participant.ID != 2 || rows[0].Total != 7 {
		t.Fatalf("unexpected period rows %+v", rows)
	}

	_, body = get(t, env.server.URL+"/periods/1/participants/1")
	var row domain.ResultRow
	if err := json.Unmarshal(body, &row); err != nil {
		t.Fatalf("decode row: %v", err)
	}
	if row.Total != 5 || len(row.Subtotal) != 2 {
		t.Fatalf("unexpected participant row %+v", row)
	}

	_, body = get(t, env.server.URL+"/periods/1/invitations/1/0")
	var invited []domain.Invitation
	if err := json.Unmarshal(body, &invited); err != nil {
		t.Fatalf("decode invitations: %v", err)
	}
	if len(invited) != 1 || invited[0].LastName != "Young" {
		t.Fatalf("unexpected invitations %+v", invited)
	}

	_, body = get(t, env.server.URL+"/periods/1/school-invitations")
	var groups []domain.SchoolGroup
	if err := json.Unmarshal(body, &groups); err != nil {
		t.Fatalf("decode groups: %v", err)
	}
	if len(groups) != 2 || groups[0].School.Code != "A" {
		t.Fatalf("unexpected groups %+v", groups)
	}
}

func TestSpreadsheetEndpoint(t *testing.T) {
	env := newTestEnv(t, deadline)

	resp, body := get(t, env.server.URL+"/periods/1/results.xlsx")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	f, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Results")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 || rows[1][2] != "Young" {
		t.Fatalf("unexpected sheet %v", rows)
	}
}

func TestSpreadsheetRenderFailure(t *testing.T) {
	env := newTestEnv(t, deadline)
	var logs bytes.Buffer
	h := NewResultsHandler(env.service, 32, 20,
		WithHandlerLogger(slog.New(slog.NewTextHandler(&logs, nil))),
	)
	h.render = func(w io.Writer, _ []domain.ResultRow) error {
		_, _ = w.Write([]byte("PK partial"))
		return errors.New("disk full")
	}
	router := NewRouter(h, NewWSHandler(env.service), prometheus.NewRegistry())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rounds/11/results.xlsx", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected json error, got content type %q", ct)
	}
	if rec.Header().Get("Content-Disposition") != "" || strings.Contains(rec.Body.String(), "PK partial") {
		t.Fatalf("partial spreadsheet leaked: %q", rec.Body.String())
	}
	if !strings.Contains(logs.String(), "xlsx export failed") {
		t.Fatalf("expected failure on injected logger, got %q", logs.String())
	}
}

func TestInvitationsWithHugeCounts(t *testing.T) {
	env := newTestEnv(t, deadline)

	resp, body := get(t, env.server.URL+"/periods/1/invitations/"+strconv.Itoa(math.MaxInt)+"/1")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	var invited []domain.Invitation
	if err := json.Unmarshal(body, &invited); err != nil {
		t.Fatalf("decode invitations: %v", err)
	}
	if len(invited) != 2 {
		t.Fatalf("expected every ranked participant invited, got %+v", invited)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t, deadline)

	if resp, body := get(t, env.server.URL+"/healthz"); resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Fatalf("unexpected health %d %s", resp.StatusCode, body)
	}
	get(t, env.server.URL+"/rounds/11/results")
	_, body := get(t, env.server.URL+"/metrics")
	if !strings.Contains(string(body), "seminar_results_served_total") {
		t.Fatalf("expected results metric, got:\n%s", body)
	}
}
