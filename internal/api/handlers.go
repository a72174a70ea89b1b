// Package api exposes the predictor over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/utakatalp/worldcup-predictor/internal/predictor"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	statusMessage   = "API do Preditor da Copa do Mundo está no ar!"
	degradedMessage = "Modelo não foi carregado. Verifique os logs."
	modelMessage    = "Falha ao consultar o modelo."

	maxBodyBytes = 1 << 20
)

// Predictor is the part of predictor.Service the handlers need.
type Predictor interface {
	Predict(ctx context.Context, req predictor.Request) (*predictor.Result, error)
	Ready() bool
	Err() error
	ModelName() string
}

// Handler serves the prediction API.
type Handler struct {
	svc Predictor
	log logrus.FieldLogger
}

func NewHandler(svc Predictor, log logrus.FieldLogger) *Handler {
	return &Handler{svc: svc, log: log}
}

// SetupRoutes configures the HTTP routes.
func (h *Handler) SetupRoutes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", h.handleStatus).Methods("GET")
	r.HandleFunc("/healthz", h.handleHealth).Methods("GET")
	r.HandleFunc("/predict", h.handlePredict).Methods("POST")
	return r
}

type predictRequest struct {
	HomeTeam   *string `json:"time_casa"`
	AwayTeam   *string `json:"time_visitante"`
	IsWorldCup *bool   `json:"e_copa_do_mundo"`
}

// missing names the first absent field, or "".
func (p *predictRequest) missing() string {
	switch {
	case p.HomeTeam == nil:
		return "time_casa"
	case p.AwayTeam == nil:
		return "time_visitante"
	case p.IsWorldCup == nil:
		return "e_copa_do_mundo"
	}
	return ""
}

type probabilities struct {
	HomeWin float64 `json:"vitoria_casa"`
	Draw    float64 `json:"empate"`
	AwayWin float64 `json:"vitoria_visitante"`
}

type predictResponse struct {
	Match          string        `json:"jogo"`
	CanonicalNames string        `json:"nomes_oficiais_usados"`
	Probabilities  probabilities `json:"probabilidades"`
	Outcome        string        `json:"resultado_mais_provavel"`
}

type errorResponse struct {
	Error string `json:"erro"`
}

type detailResponse struct {
	Detail string `json:"detail"`
}

type statusResponse struct {
	Status string `json:"status"`
	Model  string `json:"model,omitempty"`
	Error  string `json:"erro,omitempty"`
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: statusMessage})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !h.svc.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, statusResponse{Status: "degraded", Error: h.svc.Err().Error()})
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok", Model: h.svc.ModelName()})
}

func (h *Handler) handlePredict(w http.ResponseWriter, r *http.Request) {
	// 1) schema
	var req predictRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, detailResponse{Detail: "invalid JSON body: " + err.Error()})
		return
	}
	if field := req.missing(); field != "" {
		writeJSON(w, http.StatusUnprocessableEntity, detailResponse{Detail: field + ": field required"})
		return
	}

	// 2) prediction
	res, err := h.svc.Predict(r.Context(), predictor.Request{
		HomeTeam:   *req.HomeTeam,
		AwayTeam:   *req.AwayTeam,
		IsWorldCup: *req.IsWorldCup,
	})
	switch {
	case errors.Is(err, predictor.ErrModelUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: degradedMessage})
		return
	case err != nil:
		h.log.WithError(err).Error("prediction failed")
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: modelMessage})
		return
	}

	// 3) response
	h.log.WithFields(logrus.Fields{
		"match":   res.Match.CanonicalLabel(),
		"outcome": res.Outcome.String(),
	}).Debug("prediction served")
	writeJSON(w, http.StatusOK, predictResponse{
		Match:          res.Match.Label(),
		CanonicalNames: res.Match.CanonicalLabel(),
		Probabilities: probabilities{
			HomeWin: res.Probabilities[0],
			Draw:    res.Probabilities[1],
			AwayWin: res.Probabilities[2],
		},
		Outcome: res.Outcome.String(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
