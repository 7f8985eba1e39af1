package http

import (
	"net/http/httptest"
	"testing"
	"time"

	"seminar-results-service/internal/app"
	"seminar-results-service/internal/domain"
	"seminar-results-service/internal/infra/memory"
	"seminar-results-service/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

var deadline = time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	catalog *memory.Catalog
	service *app.ResultsService
	server  *httptest.Server
}

func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()
	catalog := memory.NewCatalog()
	catalog.AddPeriod(domain.Period{
		ID:          1,
		Competition: "STROM",
		Year:        2024,
		Season:      "winter",
		Rounds: []domain.Round{
			{ID: 11, Order: 1, Deadline: deadline, Problems: []domain.Problem{
				{ID: 111, RoundID: 11, Order: 1},
				{ID: 112, RoundID: 11, Order: 2},
			}},
			{ID: 12, Order: 2, Deadline: deadline, Problems: []domain.Problem{
				{ID: 121, RoundID: 12, Order: 1},
			}},
		},
	},
		domain.Participant{ID: 1, FirstName: "Ada", LastName: "Zeman", School: domain.School{Code: "A", Name: "Alpha"}},
		domain.Participant{ID: 2, FirstName: "Bela", LastName: "Young", School: domain.School{Code: "B", Name: "Beta"}},
	)
	for _, sol := range []domain.Solution{
		{ID: 1, ParticipantID: 1, ProblemID: 111, Score: points(5)},
		{ID: 2, ParticipantID: 2, ProblemID: 112, Score: points(3)},
		{ID: 3, ParticipantID: 2, ProblemID: 121, Score: points(4)},
	} {
		if err := catalog.AddSolution(sol); err != nil {
			t.Fatalf("add solution: %v", err)
		}
	}

	reg := prometheus.NewRegistry()
	service := app.NewResultsService(catalog, catalog, catalog, memory.NewSnapshotStore(),
		app.WithClock(func() time.Time { return now }),
		app.WithRecorder(metrics.NewRecorder(reg)),
	)
	router := NewRouter(NewResultsHandler(service, 32, 20), NewWSHandler(service), reg)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &testEnv{catalog: catalog, service: service, server: server}
}

func points(v int) *int { return &v }
