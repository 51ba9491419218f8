package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/devfikr/subpolish/internal/api/handlers"
	"github.com/devfikr/subpolish/internal/api/routes"
	"github.com/devfikr/subpolish/internal/models"
	"github.com/devfikr/subpolish/internal/providers/llm"
	"github.com/devfikr/subpolish/internal/ratelimit"
	"github.com/devfikr/subpolish/internal/services"
)

const threeCaptionSRT = `1
00:00:01,000 --> 00:00:02,000
One

2
00:00:03,000 --> 00:00:04,000
Two

3
00:00:05,000 --> 00:00:06,000
Three
`

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func newRouter(t *testing.T, factory services.ProviderFactory, maxPerWindow int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	l := quietLogger()

	store := ratelimit.NewMemoryStore(0)
	t.Cleanup(store.Close)

	r := gin.New()
	routes.RegisterRoutes(r, routes.Deps{
		Subtitle: handlers.NewSubtitleHandler(services.NewConvertService(l), l),
		Optimize: handlers.NewOptimizeHandler(services.NewOptimizeService(factory, l)),
		Limiter:  ratelimit.New(store, time.Minute, maxPerWindow),
		Log:      l,
	})
	return r
}

func noProvider(context.Context, string, string) (llm.Provider, error) {
	return nil, errors.New("no provider in this test")
}

func uploadRequest(t *testing.T, target, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestParseUpload(t *testing.T) {
	r := newRouter(t, noProvider, 100)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/api/parse", "movie.srt", threeCaptionSRT, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var doc models.CaptionDocument
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Captions) != 3 {
		t.Fatalf("got %d captions, want 3", len(doc.Captions))
	}
	for i, c := range doc.Captions {
		if c.Index != i+1 {
			t.Errorf("caption %d index = %d", i, c.Index)
		}
	}
}

func TestConvertSRTToVTT(t *testing.T) {
	r := newRouter(t, noProvider, 100)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/api/convert", "movie.srt", threeCaptionSRT,
		map[string]string{"targetFormat": "vtt"}))

	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/vtt" {
		t.Errorf("content type = %q, want text/vtt", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "movie-aipolished.vtt") {
		t.Errorf("content disposition = %q", cd)
	}
	if !strings.Contains(w.Body.String(), "WEBVTT") {
		t.Error("body missing WEBVTT header")
	}
}

func TestConvertRejectsUnknownTarget(t *testing.T) {
	r := newRouter(t, noProvider, 100)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/api/convert", "movie.srt", threeCaptionSRT,
		map[string]string{"targetFormat": "docx"}))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
}

func TestOptimizeOverItemCap(t *testing.T) {
	subs := make([]models.CaptionContent, 60)
	for i := range subs {
		subs[i] = models.CaptionContent{Index: i + 1, Content: "text"}
	}
	body, _ := json.Marshal(map[string]any{"apiKey": "k", "subtitles": subs})

	r := newRouter(t, noProvider, 100)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/optimize", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
	var resp handlers.OptimizeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Success {
		t.Error("success = true on failure")
	}
	if !strings.Contains(resp.Error, "Maximum 50") {
		t.Errorf("error = %q, want mention of Maximum 50", resp.Error)
	}
}

func TestRateLimitDenies(t *testing.T) {
	r := newRouter(t, noProvider, 2)
	for i := 1; i <= 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, uploadRequest(t, "/api/parse", "movie.srt", threeCaptionSRT, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("call %d: status %d", i, w.Code)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/api/parse", "movie.srt", threeCaptionSRT, nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status %d, want 429", w.Code)
	}
}

func TestFormatsEndpoint(t *testing.T) {
	r := newRouter(t, noProvider, 100)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/formats", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var resp struct {
		Formats []struct {
			Extension   string `json:"extension"`
			ContentType string `json:"contentType"`
		} `json:"formats"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Formats) != 9 {
		t.Fatalf("got %d formats, want 9", len(resp.Formats))
	}
}
