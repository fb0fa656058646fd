package httpapi

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/americano/internal/infrastructure/repository/memory"
	idgen "github.com/riskibarqy/americano/internal/platform/id"
	"github.com/riskibarqy/americano/internal/platform/logging"
	"github.com/riskibarqy/americano/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope[T any] struct {
	APIVersion string           `json:"apiVersion"`
	Data       T                `json:"data"`
	Error      *googleErrorBody `json:"error"`
}

func newTestRouter(t *testing.T, metrics http.Handler) http.Handler {
	t.Helper()
	svc := usecase.NewTournamentService(memory.NewTournamentRepository(), &idgen.Sequence{Prefix: "t-"}, nil, nil, 2, logging.NewNop())
	return NewRouter(NewHandler(svc, logging.NewNop()), logging.NewNop(), []string{"*"}, metrics)
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var out envelope[T]
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func createBody(players int) string {
	items := make([]string, players)
	for i := range items {
		items[i] = fmt.Sprintf(`{"id":"p%d","name":"Player %d"}`, i+1, i+1)
	}
	return fmt.Sprintf(`{"name":"Sunday","players":[%s],"courts":2,"rounds":3}`, strings.Join(items, ","))
}

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(t, nil)
	rec := do(t, router, http.MethodGet, "/healthz", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "ok", body.Data["status"])
}

func TestRouter_MetricsMountedOnlyWhenProvided(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})

	rec := do(t, newTestRouter(t, metrics), http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# metrics", rec.Body.String())

	rec = do(t, newTestRouter(t, nil), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_TournamentLifecycle(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := do(t, router, http.MethodPost, "/v1/tournaments", createBody(8))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[tournamentDTO](t, rec)
	require.Equal(t, "t-1", created.Data.ID)
	assert.Nil(t, created.Data.Schedule)
	assert.Equal(t, "doubles", created.Data.Format)

	rec = do(t, router, http.MethodGet, "/v1/tournaments", "")
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[[]tournamentSummaryDTO](t, rec)
	require.Len(t, listed.Data, 1)
	assert.False(t, listed.Data[0].HasSchedule)

	rec = do(t, router, http.MethodPut, "/v1/tournaments/t-1/results/0/0", `{"team1_score":6,"team2_score":4}`)
	require.Equal(t, http.StatusConflict, rec.Code, "results need a schedule")

	rec = do(t, router, http.MethodPost, "/v1/tournaments/t-1/schedule", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	generated := decode[tournamentDTO](t, rec)
	require.NotNil(t, generated.Data.Schedule)
	require.Len(t, generated.Data.Schedule.Rounds, 3)
	assert.Len(t, generated.Data.Schedule.Rounds[0].Matches, 2)
	assert.Equal(t, 6, generated.Data.Schedule.Stats.TotalMatches)

	rec = do(t, router, http.MethodPut, "/v1/tournaments/t-1/results/0/1", `{"team1_score":6,"team2_score":4}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	recorded := decode[tournamentDTO](t, rec)
	result := recorded.Data.Schedule.Rounds[0].Matches[1].Result
	require.NotNil(t, result)
	assert.True(t, result.Completed)

	rec = do(t, router, http.MethodGet, "/v1/tournaments/t-1/standings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	table := decode[standingsDTO](t, rec)
	require.Len(t, table.Data.Entries, 8)
	assert.Equal(t, 3, table.Data.Entries[0].Points)
	assert.Equal(t, 2, table.Data.Entries[0].PointDifference)

	rec = do(t, router, http.MethodDelete, "/v1/tournaments/t-1/results/0/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := decode[tournamentDTO](t, rec)
	assert.Nil(t, cleared.Data.Schedule.Rounds[0].Matches[1].Result)

	rec = do(t, router, http.MethodPost, "/v1/tournaments/t-1/schedule/regenerate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	regenerated := decode[tournamentDTO](t, rec)
	assert.Equal(t, 1, regenerated.Data.RegenerateCount)
	assert.Equal(t, 1, regenerated.Data.Variant)

	rec = do(t, router, http.MethodGet, "/v1/tournaments/t-1/schedule/variants", "")
	require.Equal(t, http.StatusOK, rec.Code)
	previews := decode[[]variantPreviewDTO](t, rec)
	require.Len(t, previews.Data, 4)
	assert.True(t, previews.Data[0].Current)
	assert.Equal(t, 1, previews.Data[0].RegenerateCount)
	assert.Equal(t, 4, previews.Data[3].RegenerateCount)
}

func TestRouter_Errors(t *testing.T) {
	router := newTestRouter(t, nil)
	require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/v1/tournaments", createBody(4)).Code)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{name: "unknown field", method: http.MethodPost, path: "/v1/tournaments", body: `{"name":"x","players":[{"id":"a"},{"id":"b"}],"courts":1,"rounds":1,"surface":"clay"}`, status: http.StatusBadRequest},
		{name: "malformed json", method: http.MethodPost, path: "/v1/tournaments", body: `{"name":`, status: http.StatusBadRequest},
		{name: "validation", method: http.MethodPost, path: "/v1/tournaments", body: `{"name":"x","players":[{"id":"a"},{"id":"b"}],"courts":0,"rounds":1}`, status: http.StatusBadRequest},
		{name: "engine precondition", method: http.MethodPost, path: "/v1/tournaments", body: `{"name":"x","players":[{"id":"a"},{"id":"b"},{"id":"c"}],"courts":1,"rounds":1}`, status: http.StatusBadRequest},
		{name: "bad format", method: http.MethodPost, path: "/v1/tournaments", body: `{"name":"x","players":[{"id":"a"},{"id":"b"}],"courts":1,"rounds":1,"format":"triples"}`, status: http.StatusBadRequest},
		{name: "missing tournament", method: http.MethodGet, path: "/v1/tournaments/nope", status: http.StatusNotFound},
		{name: "non numeric round", method: http.MethodDelete, path: "/v1/tournaments/t-1/results/x/0", status: http.StatusBadRequest},
		{name: "missing score", method: http.MethodPut, path: "/v1/tournaments/t-1/results/0/0", body: `{"team1_score":3}`, status: http.StatusBadRequest},
		{name: "negative score", method: http.MethodPut, path: "/v1/tournaments/t-1/results/0/0", body: `{"team1_score":-1,"team2_score":3}`, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, tt.method, tt.path, tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			body := decode[any](t, rec)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.status, body.Error.Code)
		})
	}
}

func TestRouter_RecoversFromPanic(t *testing.T) {
	mux := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
	handler := recoverPanic(logging.NewNop(), mux)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode[any](t, rec)
	require.NotNil(t, body.Error)
	assert.Equal(t, "INTERNAL", body.Error.Status)
}
