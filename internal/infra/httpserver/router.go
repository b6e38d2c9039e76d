package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	appanalytics "github.com/jholscan/jholscan/internal/application/analytics"
	"github.com/jholscan/jholscan/internal/application/present"
	appscans "github.com/jholscan/jholscan/internal/application/scans"
	domai "github.com/jholscan/jholscan/internal/domain/ai"
	domain "github.com/jholscan/jholscan/internal/domain/scans"
	"github.com/jholscan/jholscan/internal/middleware"
)

type Router struct {
	scansSvc     *appscans.Service
	analyticsSvc *appanalytics.Service
}

func NewRouter(scansSvc *appscans.Service, analyticsSvc *appanalytics.Service) http.Handler {
	r := &Router{scansSvc: scansSvc, analyticsSvc: analyticsSvc}
	mux := chi.NewRouter()

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/mode", r.wrap(r.handleSwitchMode))
		rt.Post("/input/text", r.wrap(r.handleStageText))
		rt.Post("/input/file", r.wrap(r.handleStageFile))
		rt.Delete("/input/file", r.wrap(r.handleRemoveFile))

		rt.Post("/analyze", r.wrap(r.handleAnalyze))
		rt.Post("/humanize", r.wrap(r.handleHumanize))
		rt.Post("/reset", r.wrap(r.handleReset))
		rt.Get("/result", r.wrap(r.handleResult))

		rt.Get("/history", r.wrap(r.handleHistory))
		rt.Get("/history/{id}", r.wrap(r.handleHistoryGet))
		rt.Post("/history/{id}/select", r.wrap(r.handleSelect))
		rt.Delete("/history", r.wrap(r.handleClearHistory))

		rt.Get("/analytics/trend", r.wrap(r.handleTrend))
		rt.Get("/analytics/distribution", r.wrap(r.handleDistribution))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			http.Error(w, err.Error(), statusFor(err))
		}
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrBusy), errors.Is(err, domain.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, domain.ErrOversize):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrBadExtension):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrEmptyText),
		errors.Is(err, domain.ErrNoStagedInput),
		errors.Is(err, domain.ErrNoResult):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrBadMode), errors.Is(err, domain.ErrConfirmRequired):
		return http.StatusBadRequest
	case errors.Is(err, domai.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrHumanizeFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

// POST /v1/mode
// Body: {"mode": "text" | "file" | "image"}
func (r *Router) handleSwitchMode(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBadMode, err)
	}
	if err := middleware.ValidateMode(body.Mode); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBadMode, err)
	}
	mode := domain.ScanMode(strings.ToLower(body.Mode))
	if err := r.scansSvc.SwitchMode(mode); err != nil {
		return err
	}
	return writeJSON(w, map[string]any{"mode": mode})
}

// POST /v1/input/text
// Body: {"text": "..."}
func (r *Router) handleStageText(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: invalid body", domain.ErrEmptyText)
	}
	if err := r.scansSvc.StageText(body.Text); err != nil {
		return err
	}
	return writeJSON(w, map[string]any{"staged": true, "chars": len(body.Text)})
}

// POST /v1/input/file: multipart form with a "file" part
func (r *Router) handleStageFile(w http.ResponseWriter, req *http.Request) error {
	// Body cap just above the largest accepted upload
	req.Body = http.MaxBytesReader(w, req.Body, appscans.DocumentSizeLimit+(1<<20))

	f, header, err := req.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("%w: request body exceeds %d bytes", domain.ErrOversize, maxErr.Limit)
		}
		return fmt.Errorf("%w: missing file part", domain.ErrNoStagedInput)
	}
	defer f.Close()

	mimeType := header.Header.Get("Content-Type")
	if err := r.scansSvc.StageFile(header.Filename, mimeType, header.Size, f); err != nil {
		return err
	}
	return writeJSON(w, map[string]any{
		"staged":     true,
		"name":       header.Filename,
		"size_bytes": header.Size,
	})
}

// DELETE /v1/input/file
func (r *Router) handleRemoveFile(w http.ResponseWriter, req *http.Request) error {
	r.scansSvc.RemoveFile()
	return writeJSON(w, map[string]any{"staged": false})
}

// POST /v1/analyze
// Runs one analysis on the staged input. Success appends to history and
// becomes the displayed result; a failed analysis is returned for display
// but stored nowhere.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	middleware.IncrementAnalyses()
	rec, err := r.scansSvc.Analyze(req.Context())
	if err != nil {
		middleware.IncrementAnalysesFailed()
		return err
	}
	if rec.Error {
		middleware.IncrementAnalysesFailed()
	}
	_, humanizing := r.scansSvc.Busy()
	return writeJSON(w, present.Build(rec, humanizing))
}

// POST /v1/humanize
// Merges only the humanizer sub-record into the displayed result.
func (r *Router) handleHumanize(w http.ResponseWriter, req *http.Request) error {
	middleware.IncrementHumanize()
	rec, err := r.scansSvc.Humanize(req.Context())
	if err != nil {
		middleware.IncrementHumanizeFailed()
		return err
	}
	return writeJSON(w, present.Build(rec, false))
}

// POST /v1/reset: "scan again"
func (r *Router) handleReset(w http.ResponseWriter, req *http.Request) error {
	r.scansSvc.Reset()
	return writeJSON(w, map[string]any{"reset": true, "at": time.Now()})
}

// GET /v1/result
func (r *Router) handleResult(w http.ResponseWriter, req *http.Request) error {
	rec := r.scansSvc.Current()
	if rec == nil {
		return fmt.Errorf("%w: no result displayed", domain.ErrNotFound)
	}
	_, humanizing := r.scansSvc.Busy()
	return writeJSON(w, present.Build(rec, humanizing))
}

// historyItem is one row of the history listing.
type historyItem struct {
	ScanID    domain.ScanID    `json:"scan_id"`
	Timestamp time.Time        `json:"timestamp"`
	Mode      domain.ScanMode  `json:"mode"`
	RiskLevel domain.RiskLevel `json:"risk_level"`
	RiskScore float64          `json:"risk_score"`
	Summary   string           `json:"summary"`
}

// GET /v1/history?limit=50: newest first
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	limit = middleware.ValidateLimit(limit)

	records, err := r.scansSvc.Records(req.Context())
	if err != nil {
		return err
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	items := make([]historyItem, 0, len(records))
	for _, rec := range records {
		items = append(items, historyItem{
			ScanID:    rec.ScanID,
			Timestamp: rec.Timestamp,
			Mode:      rec.Mode,
			RiskLevel: rec.Detection.RiskLevel,
			RiskScore: rec.Detection.RiskScore,
			Summary:   rec.Detection.Summary,
		})
	}
	return writeJSON(w, items)
}

// GET /v1/history/{id}
func (r *Router) handleHistoryGet(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateScanID(id); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	}
	rec, err := r.scansSvc.History.Get(req.Context(), domain.ScanID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, rec)
}

// POST /v1/history/{id}/select: promote a past record to the display
func (r *Router) handleSelect(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateScanID(id); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	}
	rec, err := r.scansSvc.Select(req.Context(), domain.ScanID(id))
	if err != nil {
		return err
	}
	_, humanizing := r.scansSvc.Busy()
	return writeJSON(w, present.Build(rec, humanizing))
}

// DELETE /v1/history?confirm=true: irreversible
func (r *Router) handleClearHistory(w http.ResponseWriter, req *http.Request) error {
	confirmed := req.URL.Query().Get("confirm") == "true"
	if err := r.scansSvc.ClearHistory(req.Context(), confirmed); err != nil {
		return err
	}
	return writeJSON(w, map[string]any{"cleared": true})
}

// GET /v1/analytics/trend
func (r *Router) handleTrend(w http.ResponseWriter, req *http.Request) error {
	points, err := r.analyticsSvc.Trend(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, points)
}

// GET /v1/analytics/distribution
func (r *Router) handleDistribution(w http.ResponseWriter, req *http.Request) error {
	rows, err := r.analyticsSvc.Distribution(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, rows)
}
