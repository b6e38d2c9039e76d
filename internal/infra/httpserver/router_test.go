package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jholscan/jholscan/internal/application"
	appanalytics "github.com/jholscan/jholscan/internal/application/analytics"
	appscans "github.com/jholscan/jholscan/internal/application/scans"
	domai "github.com/jholscan/jholscan/internal/domain/ai"
	filestore "github.com/jholscan/jholscan/internal/infra/history/file"
)

// queueClient pops canned model responses in order.
type queueClient struct {
	responses []string
}

func (c *queueClient) Analyze(ctx context.Context, req domai.Request) (string, error) {
	if len(c.responses) == 0 {
		return "", context.DeadlineExceeded
	}
	resp := c.responses[0]
	c.responses = c.responses[1:]
	return resp, nil
}

const highRiskResponse = `{
	"scan_id": "scan_router_1",
	"detection": {
		"is_ai_generated": true,
		"ai_probability": 0.9,
		"human_probability": 0.1,
		"risk_score": 85,
		"risk_level": "HIGH",
		"confidence": "high",
		"summary": "Likely machine generated.",
		"signals": ["uniform phrasing"],
		"detailed_analysis": "d"
	},
	"recommendations": ["rewrite"]
}`

const humanizedResponse = `{
	"detection": {"risk_score": 0, "risk_level": "LOW"},
	"humanizer": {"humanized_text": "rewritten", "changes_made": ["x"], "improvement_score": 70}
}`

func newTestHandler(t *testing.T, responses ...string) http.Handler {
	t.Helper()
	store, err := filestore.New(filepath.Join(t.TempDir(), "history.json"))
	if err != nil {
		t.Fatal(err)
	}
	adapter := &appscans.Adapter{
		Client: &queueClient{responses: responses},
		Clock:  application.SystemClock{},
	}
	svc := appscans.NewService(store, adapter, nil, application.SystemClock{})
	return NewRouter(svc, appanalytics.NewService(store))
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestAnalyzeTextFlow(t *testing.T) {
	h := newTestHandler(t, highRiskResponse)

	w := do(t, h, http.MethodPost, "/v1/input/text", `{"text": "Hello world, this is a test."}`)
	if w.Code != http.StatusOK {
		t.Fatalf("stage text: %d %s", w.Code, w.Body)
	}

	w = do(t, h, http.MethodPost, "/v1/analyze", "")
	if w.Code != http.StatusOK {
		t.Fatalf("analyze: %d %s", w.Code, w.Body)
	}
	var view struct {
		Verdict      string  `json:"verdict"`
		VerdictColor string  `json:"verdict_color"`
		RiskScore    float64 `json:"risk_score"`
		CountUp      struct {
			To float64 `json:"to"`
		} `json:"count_up"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatal(err)
	}
	if view.Verdict != "AI GENERATED" {
		t.Errorf("verdict = %q", view.Verdict)
	}
	if view.VerdictColor != "#DC143C" {
		t.Errorf("color = %q", view.VerdictColor)
	}
	if view.RiskScore != 85 || view.CountUp.To != 85 {
		t.Errorf("score = %v, count up to %v", view.RiskScore, view.CountUp.To)
	}

	// The record landed in history.
	w = do(t, h, http.MethodGet, "/v1/history", "")
	if w.Code != http.StatusOK {
		t.Fatalf("history: %d", w.Code)
	}
	var items []struct {
		ScanID string `json:"scan_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].ScanID != "scan_router_1" {
		t.Errorf("history = %+v", items)
	}

	// And the displayed result survives a re-read.
	w = do(t, h, http.MethodGet, "/v1/result", "")
	if w.Code != http.StatusOK {
		t.Errorf("result: %d", w.Code)
	}
}

func TestAnalyzeWithoutInput(t *testing.T) {
	h := newTestHandler(t)
	w := do(t, h, http.MethodPost, "/v1/analyze", "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("code = %d, want 422", w.Code)
	}
}

func TestResultBeforeAnalyze(t *testing.T) {
	h := newTestHandler(t)
	w := do(t, h, http.MethodGet, "/v1/result", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("code = %d, want 404", w.Code)
	}
}

func TestSwitchModeValidation(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, http.MethodPost, "/v1/mode", `{"mode": "image"}`)
	if w.Code != http.StatusOK {
		t.Errorf("image mode: %d", w.Code)
	}
	w = do(t, h, http.MethodPost, "/v1/mode", `{"mode": "video"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("video mode: %d, want 400", w.Code)
	}
	w = do(t, h, http.MethodPost, "/v1/mode", `{"mode": "telepathy"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown mode: %d, want 400", w.Code)
	}
}

func TestStageTextEmpty(t *testing.T) {
	h := newTestHandler(t)
	w := do(t, h, http.MethodPost, "/v1/input/text", `{"text": "   "}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("code = %d, want 422", w.Code)
	}
}

// zeroReader yields zero bytes forever, so oversized upload bodies can be
// streamed without holding them in memory.
type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func multipartUpload(name, mimeType string, content io.Reader) (io.Reader, string) {
	const boundary = "filepartboundary"
	head := fmt.Sprintf(
		"--%s\r\nContent-Disposition: form-data; name=\"file\"; filename=%q\r\nContent-Type: %s\r\n\r\n",
		boundary, name, mimeType,
	)
	tail := fmt.Sprintf("\r\n--%s--\r\n", boundary)
	body := io.MultiReader(strings.NewReader(head), content, strings.NewReader(tail))
	return body, "multipart/form-data; boundary=" + boundary
}

func TestStageFileUpload(t *testing.T) {
	h := newTestHandler(t)
	do(t, h, http.MethodPost, "/v1/mode", `{"mode": "file"}`)

	body, contentType := multipartUpload("report.pdf", "application/pdf", strings.NewReader("%PDF-1.4 data"))
	req := httptest.NewRequest(http.MethodPost, "/v1/input/file", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("stage file: %d %s", w.Code, w.Body)
	}

	wd := do(t, h, http.MethodDelete, "/v1/input/file", "")
	if wd.Code != http.StatusOK {
		t.Errorf("remove file: %d", wd.Code)
	}
}

func TestStageFileOversizedBody(t *testing.T) {
	h := newTestHandler(t)
	do(t, h, http.MethodPost, "/v1/mode", `{"mode": "file"}`)

	// A 120 MB upload blows past the body cap and must report the size
	// problem, not a missing file part.
	oversize := io.LimitReader(zeroReader{}, 120<<20)
	body, contentType := multipartUpload("huge.pdf", "application/pdf", oversize)
	req := httptest.NewRequest(http.MethodPost, "/v1/input/file", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("code = %d, want 413", w.Code)
	}
}

func TestHumanizeFlow(t *testing.T) {
	h := newTestHandler(t, highRiskResponse, humanizedResponse)

	do(t, h, http.MethodPost, "/v1/input/text", `{"text": "Hello world, this is a test."}`)
	do(t, h, http.MethodPost, "/v1/analyze", "")

	w := do(t, h, http.MethodPost, "/v1/humanize", "")
	if w.Code != http.StatusOK {
		t.Fatalf("humanize: %d %s", w.Code, w.Body)
	}
	var view struct {
		Verdict   string `json:"verdict"`
		Humanizer struct {
			State         string  `json:"state"`
			HumanizedText *string `json:"humanized_text"`
		} `json:"humanizer"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatal(err)
	}
	if view.Humanizer.State != "done" || view.Humanizer.HumanizedText == nil {
		t.Errorf("humanizer = %+v", view.Humanizer)
	}
	// The verdict of the original analysis is untouched.
	if view.Verdict != "AI GENERATED" {
		t.Errorf("verdict = %q", view.Verdict)
	}
}

func TestHumanizeWithoutResult(t *testing.T) {
	h := newTestHandler(t)
	w := do(t, h, http.MethodPost, "/v1/humanize", "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("code = %d, want 422", w.Code)
	}
}

func TestSelectAndHistoryGet(t *testing.T) {
	h := newTestHandler(t, highRiskResponse)

	do(t, h, http.MethodPost, "/v1/input/text", `{"text": "Hello world, this is a test."}`)
	do(t, h, http.MethodPost, "/v1/analyze", "")
	do(t, h, http.MethodPost, "/v1/reset", "")

	if w := do(t, h, http.MethodGet, "/v1/result", ""); w.Code != http.StatusNotFound {
		t.Fatalf("result after reset: %d", w.Code)
	}

	w := do(t, h, http.MethodGet, "/v1/history/scan_router_1", "")
	if w.Code != http.StatusOK {
		t.Errorf("history get: %d", w.Code)
	}
	w = do(t, h, http.MethodPost, "/v1/history/scan_router_1/select", "")
	if w.Code != http.StatusOK {
		t.Errorf("select: %d", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/v1/result", ""); w.Code != http.StatusOK {
		t.Errorf("result after select: %d", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/v1/history/nope", ""); w.Code != http.StatusNotFound {
		t.Errorf("missing record: %d", w.Code)
	}
}

func TestClearHistoryConfirmation(t *testing.T) {
	h := newTestHandler(t, highRiskResponse)

	do(t, h, http.MethodPost, "/v1/input/text", `{"text": "Hello world, this is a test."}`)
	do(t, h, http.MethodPost, "/v1/analyze", "")

	if w := do(t, h, http.MethodDelete, "/v1/history", ""); w.Code != http.StatusBadRequest {
		t.Errorf("unconfirmed clear: %d, want 400", w.Code)
	}
	if w := do(t, h, http.MethodDelete, "/v1/history?confirm=true", ""); w.Code != http.StatusOK {
		t.Errorf("confirmed clear: %d", w.Code)
	}

	w := do(t, h, http.MethodGet, "/v1/history", "")
	var items []json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("history not empty after clear: %d items", len(items))
	}
}

func TestAnalyticsEndpoints(t *testing.T) {
	h := newTestHandler(t, highRiskResponse)

	do(t, h, http.MethodPost, "/v1/input/text", `{"text": "Hello world, this is a test."}`)
	do(t, h, http.MethodPost, "/v1/analyze", "")

	w := do(t, h, http.MethodGet, "/v1/analytics/trend", "")
	if w.Code != http.StatusOK {
		t.Fatalf("trend: %d", w.Code)
	}
	var points []struct {
		Label     string  `json:"label"`
		RiskScore float64 `json:"risk_score"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &points); err != nil {
		t.Fatal(err)
	}
	if len(points) != 1 || points[0].Label != "Scan 1" || points[0].RiskScore != 85 {
		t.Errorf("trend = %+v", points)
	}

	w = do(t, h, http.MethodGet, "/v1/analytics/distribution", "")
	if w.Code != http.StatusOK {
		t.Fatalf("distribution: %d", w.Code)
	}
	var rows []struct {
		Name string `json:"name"`
		High int    `json:"high"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[0].Name != "Text" || rows[0].High != 1 {
		t.Errorf("distribution = %+v", rows)
	}
}
