package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/utakatalp/worldcup-predictor/internal/league"
	"github.com/utakatalp/worldcup-predictor/internal/predictor"
)

type fakePredictor struct {
	res   *predictor.Result
	err   error
	cause error
	got   []predictor.Request
}

func (f *fakePredictor) Predict(_ context.Context, req predictor.Request) (*predictor.Result, error) {
	f.got = append(f.got, req)
	return f.res, f.err
}

func (f *fakePredictor) Ready() bool       { return f.cause == nil }
func (f *fakePredictor) Err() error        { return f.cause }
func (f *fakePredictor) ModelName() string { return "modelo_avancado" }

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func scenarioResult() *predictor.Result {
	return &predictor.Result{
		Match: league.Match{
			Home: "brasil", Away: "alemanha",
			HomeTeam: "Brazil", AwayTeam: "Germany",
			IsWorldCup: true,
		},
		Probabilities: league.Probabilities{0.5123, 0.2702, 0.2175},
		Outcome:       league.HomeWin,
	}
}

func newServer(f *fakePredictor, origins ...string) http.Handler {
	return NewHandler(f, quietLogger()).Router(Options{AllowedOrigins: origins})
}

func do(t *testing.T, h http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPredict(t *testing.T) {
	f := &fakePredictor{res: scenarioResult()}
	rec := do(t, newServer(f), http.MethodPost, "/predict",
		`{"time_casa": "brasil", "time_visitante": "alemanha", "e_copa_do_mundo": true}`, nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{
		"jogo": "brasil vs. alemanha",
		"nomes_oficiais_usados": "Brazil vs. Germany",
		"probabilidades": {"vitoria_casa": 0.5123, "empate": 0.2702, "vitoria_visitante": 0.2175},
		"resultado_mais_provavel": "vitoria_casa"
	}`, rec.Body.String())
	assert.Equal(t, []predictor.Request{{HomeTeam: "brasil", AwayTeam: "alemanha", IsWorldCup: true}}, f.got)
}

func TestPredictRejectsMalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `time_casa=brasil`},
		{name: "empty", body: ``},
		{name: "array", body: `[]`},
		{name: "missing home", body: `{"time_visitante": "alemanha", "e_copa_do_mundo": true}`},
		{name: "missing away", body: `{"time_casa": "brasil", "e_copa_do_mundo": true}`},
		{name: "missing flag", body: `{"time_casa": "brasil", "time_visitante": "alemanha"}`},
		{name: "null home", body: `{"time_casa": null, "time_visitante": "alemanha", "e_copa_do_mundo": false}`},
		{name: "wrong type", body: `{"time_casa": 7, "time_visitante": "alemanha", "e_copa_do_mundo": false}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakePredictor{res: scenarioResult()}
			rec := do(t, newServer(f), http.MethodPost, "/predict", tt.body, nil)

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Contains(t, rec.Body.String(), `"detail"`)
			assert.Empty(t, f.got)
		})
	}
}

func TestPredictDegraded(t *testing.T) {
	f := &fakePredictor{err: predictor.ErrModelUnavailable, cause: errors.New("loading model: no such file")}
	rec := do(t, newServer(f), http.MethodPost, "/predict",
		`{"time_casa": "brasil", "time_visitante": "alemanha", "e_copa_do_mundo": true}`, nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"erro": "Modelo não foi carregado. Verifique os logs."}`, rec.Body.String())
}

func TestPredictModelFailure(t *testing.T) {
	f := &fakePredictor{err: errors.New("kserve wc returned 500")}
	rec := do(t, newServer(f), http.MethodPost, "/predict",
		`{"time_casa": "brasil", "time_visitante": "alemanha", "e_copa_do_mundo": false}`, nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), `"erro"`)
	assert.NotContains(t, rec.Body.String(), "kserve")
}

func TestStatusAndHealth(t *testing.T) {
	rec := do(t, newServer(&fakePredictor{}), http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "API do Preditor da Copa do Mundo está no ar!"}`, rec.Body.String())

	rec = do(t, newServer(&fakePredictor{}), http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok", "model": "modelo_avancado"}`, rec.Body.String())

	degraded := &fakePredictor{cause: errors.New("loading history: missing column rank")}
	rec = do(t, newServer(degraded), http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status": "degraded", "erro": "loading history: missing column rank"}`, rec.Body.String())

	// liveness stays up in degraded mode
	rec = do(t, newServer(degraded), http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoutesRejectWrongMethod(t *testing.T) {
	rec := do(t, newServer(&fakePredictor{}), http.MethodGet, "/predict", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = do(t, newServer(&fakePredictor{}), http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestID(t *testing.T) {
	rec := do(t, newServer(&fakePredictor{}), http.MethodGet, "/", "", nil)
	assert.Len(t, rec.Header().Get(requestIDHeader), 36)

	rec = do(t, newServer(&fakePredictor{}), http.MethodGet, "/", "", map[string]string{requestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestCORS(t *testing.T) {
	const allowed = "http://localhost:3000"
	srv := newServer(&fakePredictor{res: scenarioResult()}, allowed, "http://127.0.0.1:3000")
	body := `{"time_casa": "brasil", "time_visitante": "alemanha", "e_copa_do_mundo": true}`

	t.Run("allowed origin", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/predict", body, map[string]string{"Origin": allowed})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, allowed, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("preflight", func(t *testing.T) {
		rec := do(t, srv, http.MethodOptions, "/predict", "", map[string]string{
			"Origin":                         allowed,
			"Access-Control-Request-Method":  "POST",
			"Access-Control-Request-Headers": "content-type",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, allowed, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	})

	t.Run("preflight with custom headers", func(t *testing.T) {
		for _, requested := range []string{"content-type, x-api-version", "x-client-trace"} {
			rec := do(t, srv, http.MethodOptions, "/predict", "", map[string]string{
				"Origin":                         allowed,
				"Access-Control-Request-Method":  "POST",
				"Access-Control-Request-Headers": requested,
			})
			assert.Equal(t, http.StatusOK, rec.Code, requested)
			assert.Equal(t, allowed, rec.Header().Get("Access-Control-Allow-Origin"), requested)
			assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"), requested)
			allowedHeaders := strings.ToLower(rec.Header().Get("Access-Control-Allow-Headers"))
			for _, h := range strings.Split(requested, ",") {
				assert.Contains(t, allowedHeaders, strings.TrimSpace(h))
			}
		}
	})

	t.Run("other origin", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/predict", body, map[string]string{"Origin": "https://evil.example.com"})
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("disabled", func(t *testing.T) {
		rec := do(t, newServer(&fakePredictor{res: scenarioResult()}), http.MethodPost, "/predict", body, map[string]string{"Origin": allowed})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
