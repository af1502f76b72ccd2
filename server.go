package main

import (
	"context"
	"database/sql"
	"fmt"
	"html/template"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server owns the HTTP surface: the form page, prediction handling, health,
// and metrics. The artifact bundle it holds is read-only.
type Server struct {
	cfg     Config
	arts    *Artifacts
	db      *sql.DB
	metrics *Metrics

	mux    *http.ServeMux
	server *http.Server
	tmpl   *template.Template
}

func NewServer(cfg Config, arts *Artifacts, db *sql.DB) *Server {
	s := &Server{
		cfg:     cfg,
		arts:    arts,
		db:      db,
		metrics: NewMetrics(),
		mux:     http.NewServeMux(),
		tmpl:    template.Must(template.New("page").Parse(pageTemplate)),
	}
	s.metrics.MarkArtifactsLoaded(time.Now())

	s.mux.Handle("/", s.instrument("/", s.handleIndex))
	s.mux.Handle("/healthz", s.instrument("/healthz", s.handleHealthz))
	s.mux.Handle("/recent", s.instrument("/recent", s.handleRecent))
	s.mux.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	s.server = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.mux,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeoutSeconds) * time.Second,
	}
	return s
}

func (s *Server) Serve() error {
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the routing mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(path string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		h(rec, r)
		s.metrics.httpRequests.WithLabelValues(path, strconv.Itoa(rec.code)).Inc()
	})
}

// PredictionResult carries everything the result panel renders.
type PredictionResult struct {
	ITE            float64
	Percent        string
	Recommendation Recommendation
	Message        string
	ImputedCount   int
}

// Predict runs one record through the imputer and the forest and classifies
// the result. The audit insert is best-effort: a storage hiccup must not turn
// a served prediction into a user-facing failure.
func (s *Server) Predict(rec PatientRecord) (*PredictionResult, error) {
	row, err := rec.Vector(s.arts.Covariates)
	if err != nil {
		return nil, fmt.Errorf("assemble record: %w", err)
	}
	missing := rec.MissingCount()

	start := time.Now()
	imputed, err := s.arts.Imputer.Transform(row)
	if err != nil {
		s.metrics.ObservePredictionError()
		return nil, fmt.Errorf("impute: %w", err)
	}
	ite, err := s.arts.Model.Effect(imputed)
	if err != nil {
		s.metrics.ObservePredictionError()
		return nil, fmt.Errorf("estimate effect: %w", err)
	}
	dur := time.Since(start)

	lower, upper := s.arts.LowerCutoff(), s.arts.UpperCutoff()
	recommendation := Classify(ite, lower, upper)
	s.metrics.ObservePrediction(recommendation, dur)

	if err := InsertPrediction(s.db, PredictionEntry{
		Inputs:         inputsSnapshot(s.arts.Covariates, row),
		ImputedCount:   missing,
		ITE:            ite,
		Recommendation: string(recommendation),
	}); err != nil {
		log.Printf("audit insert error: %v", err)
	}

	return &PredictionResult{
		ITE:            ite,
		Percent:        FormatPercent(ite),
		Recommendation: recommendation,
		Message:        RecommendationMessage(recommendation, ite, lower, upper),
		ImputedCount:   missing,
	}, nil
}

// inputsSnapshot renders the submitted row as "name=value" pairs in covariate
// order, with "?" for fields left blank.
func inputsSnapshot(covariates []string, row []float64) string {
	parts := make([]string, len(covariates))
	for i, name := range covariates {
		if math.IsNaN(row[i]) {
			parts[i] = name + "=?"
		} else {
			parts[i] = name + "=" + strconv.FormatFloat(row[i], 'g', -1, 64)
		}
	}
	return strings.Join(parts, " ")
}

type fieldView struct {
	Name     string
	Label    string
	Value    string
	IsBinary bool
	Step     string
	SelNo    bool
	SelYes   bool
}

type pageView struct {
	Fields []fieldView
	Result *PredictionResult
	Error  string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	var rec PatientRecord
	var view pageView

	switch r.Method {
	case http.MethodGet:
		rec = RecordFromQuery(r.URL.Query())
		if AutoRun(r.URL.Query()) {
			s.runPrediction(rec, &view)
		}
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		rec = RecordFromForm(r.PostForm)
		s.runPrediction(rec, &view)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	view.Fields = fieldViews(rec)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, view); err != nil {
		log.Printf("render error: %v", err)
	}
}

func (s *Server) runPrediction(rec PatientRecord, view *pageView) {
	result, err := s.Predict(rec)
	if err != nil {
		// Inference failures render inline; the form stays usable for a
		// corrected re-submission.
		view.Error = fmt.Sprintf("Prediction failed: %v", err)
		return
	}
	view.Result = result
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintln(w, "ok")
}

// handleRecent dumps the latest audit entries as plain text, newest first.
func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	entries, err := GetRecentPredictions(s.db, 50)
	if err != nil {
		log.Printf("audit query error: %v", err)
		http.Error(w, "audit query failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\tITE=%.4f\timputed=%d\t%s\n",
			e.CreatedAt.Format(time.RFC3339), e.Recommendation, e.ITE, e.ImputedCount, e.Inputs)
	}
}

func fieldViews(rec PatientRecord) []fieldView {
	specs := FieldSpecs()
	views := make([]fieldView, 0, len(specs))
	for _, spec := range specs {
		v := rec[spec.Name]
		fv := fieldView{
			Name:     spec.Name,
			Label:    spec.Label,
			Value:    formatFieldValue(spec, v),
			IsBinary: spec.Kind == KindBinary,
			Step:     "any",
		}
		if spec.Kind == KindInt {
			fv.Step = "1"
		}
		if fv.IsBinary && !math.IsNaN(v) {
			fv.SelNo = v == 0
			fv.SelYes = v == 1
		}
		views = append(views, fv)
	}
	return views
}

func formatFieldValue(spec FieldSpec, v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	if spec.Kind == KindFloat {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.Itoa(int(v))
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>OHCA Sodium Bicarbonate ITE Predictor</title>
<style>
body { font-family: sans-serif; max-width: 64rem; margin: 2rem auto; padding: 0 1rem; }
fieldset { border: 1px solid #ccc; margin-bottom: 1rem; }
.grid { display: grid; grid-template-columns: repeat(4, 1fr); gap: 0.5rem 1rem; }
label { display: block; font-size: 0.85rem; margin-top: 0.5rem; }
input, select { width: 100%; box-sizing: border-box; }
.result { border: 1px solid #4a4; background: #efe; padding: 1rem; margin-top: 1rem; }
.error { border: 1px solid #a44; background: #fee; padding: 1rem; margin-top: 1rem; }
.ite { font-size: 1.6rem; font-weight: bold; }
</style>
</head>
<body>
<h1>OHCA Sodium Bicarbonate ITE Predictor</h1>
<p>Predicts the <strong>Individualized Treatment Effect (ITE)</strong> of sodium
bicarbonate for OHCA patients. Enter the patient's clinical parameters below.
Leave a field blank if the value is unknown; it will be imputed.</p>
<form method="post" action="/">
<fieldset>
<legend>Patient Data</legend>
<div class="grid">
{{range .Fields}}
<div>
<label for="{{.Name}}">{{.Label}}</label>
{{if .IsBinary}}
<select id="{{.Name}}" name="{{.Name}}">
<option value="0"{{if .SelNo}} selected{{end}}>No (0)</option>
<option value="1"{{if .SelYes}} selected{{end}}>Yes (1)</option>
</select>
{{else}}
<input type="number" id="{{.Name}}" name="{{.Name}}" step="{{.Step}}" value="{{.Value}}">
{{end}}
</div>
{{end}}
</div>
</fieldset>
<button type="submit">Predict ITE</button>
</form>
{{if .Error}}
<div class="error">{{.Error}}</div>
{{end}}
{{with .Result}}
<div class="result">
<div class="ite">Predicted ITE: {{.Percent}}</div>
<p>{{.Message}}</p>
{{if .ImputedCount}}<p>{{.ImputedCount}} missing value(s) were imputed.</p>{{end}}
</div>
{{end}}
</body>
</html>
`
