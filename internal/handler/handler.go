// Package handler serves saved analysis runs as HTML and exposes the
// analysis and calibration operations as a JSON API.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/whatif/internal/model"
	"github.com/pavelanni/whatif/internal/report"
	"github.com/pavelanni/whatif/internal/scoring"
	"github.com/pavelanni/whatif/internal/source"
)

// maxBodyBytes bounds API request bodies.
const maxBodyBytes = 8 << 20

// RunStore persists analysis runs.
type RunStore interface {
	SaveRun(run *model.AnalysisRun) error
	GetRun(id string) (*model.AnalysisRun, error)
	ListRuns() ([]model.AnalysisRun, error)
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store             RunStore
	engine            *scoring.Engine
	additionalCorrect int
}

// New creates a new Handler.
func New(s RunStore, engine *scoring.Engine, additionalCorrect int) *Handler {
	return &Handler{store: s, engine: engine, additionalCorrect: additionalCorrect}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Get("/runs/{runID}", h.handleRunPage)
	r.Route("/api", func(api chi.Router) {
		api.Post("/analyze", h.handleAnalyze)
		api.Get("/runs/{runID}", h.handleGetRun)
		api.Get("/runs/{runID}/chart", h.handleRunChart)
		api.Post("/calibrate", h.handleCalibrate)
	})
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	runs, err := h.store.ListRuns()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.RunsPage(runs).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

func (h *Handler) handleRunPage(w http.ResponseWriter, r *http.Request) {
	run, ok := h.loadRun(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.ReportPage(run).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := h.loadRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (h *Handler) handleRunChart(w http.ResponseWriter, r *http.Request) {
	run, ok := h.loadRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report.RunChart(r.Context(), run))
}

// loadRun fetches the run named in the URL, writing the error response
// itself when it cannot.
func (h *Handler) loadRun(w http.ResponseWriter, r *http.Request) (*model.AnalysisRun, bool) {
	id := chi.URLParam(r, "runID")
	run, err := h.store.GetRun(id)
	if err != nil {
		slog.Error("get run", "id", id, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	if run == nil {
		http.NotFound(w, r)
		return nil, false
	}
	return run, true
}

type analyzeRequest struct {
	Candidate  string          `json:"candidate"`
	Responses  json.RawMessage `json:"responses"`
	Additional *int            `json:"additional,omitempty"`
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req.Candidate = strings.TrimSpace(req.Candidate)
	if req.Candidate == "" {
		writeError(w, http.StatusBadRequest, errors.New("candidate is required"))
		return
	}
	if len(req.Responses) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("responses are required"))
		return
	}

	raws, err := source.DecodeRecords(req.Responses)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(raws) == 0 {
		writeError(w, http.StatusUnprocessableEntity, source.ErrNoData)
		return
	}

	additional := h.additionalCorrect
	if req.Additional != nil {
		additional = *req.Additional
	}

	recs := source.Canonicalize(req.Candidate, raws)
	rep := h.engine.Analyze(req.Candidate, recs, additional)
	run := &model.AnalysisRun{
		Threshold:   h.engine.Threshold(),
		Provisional: h.engine.Provisional(),
		Reports:     []model.CandidateReport{rep},
	}
	if err := h.store.SaveRun(run); err != nil {
		slog.Error("save run", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	slog.Info("api analysis saved", "run", run.ID, "candidate", req.Candidate, "responses", len(recs))
	writeJSON(w, http.StatusCreated, run)
}

type calibrateRequest struct {
	Samples []model.ThresholdSample `json:"samples"`
	Min     float64                 `json:"min"`
	Max     float64                 `json:"max"`
	Step    float64                 `json:"step"`
}

func (h *Handler) handleCalibrate(w http.ResponseWriter, r *http.Request) {
	var req calibrateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	candidates := scoring.DefaultCandidates()
	if req.Step != 0 || req.Min != 0 || req.Max != 0 {
		var err error
		candidates, err = scoring.CandidateRange(req.Min, req.Max, req.Step)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, scoring.Calibrate(req.Samples, candidates))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid JSON body: " + err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
