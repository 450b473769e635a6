package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"tangled.org/atscan.net/urlcheck/engine"
	"tangled.org/atscan.net/urlcheck/model"
	"tangled.org/atscan.net/urlcheck/server"
)

// testLogger forwards to t.Log until the test completes; websocket
// goroutines may still log after that
type testLogger struct {
	t    *testing.T
	mu   sync.Mutex
	done bool
}

func newTestLogger(t *testing.T) *testLogger {
	l := &testLogger{t: t}
	t.Cleanup(func() {
		l.mu.Lock()
		l.done = true
		l.mu.Unlock()
	})
	return l
}

func (l *testLogger) Printf(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.done {
		l.t.Logf(format, v...)
	}
}

func (l *testLogger) Println(v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.done {
		l.t.Log(v...)
	}
}

type stubClassifier struct {
	label int
}

func (s *stubClassifier) Kind() string                     { return "stub" }
func (s *stubClassifier) NumFeatures() int                 { return 4 }
func (s *stubClassifier) Predict(x []float64) (int, error) { return s.label, nil }

// ====================================================================================
// HTTP ENDPOINT TESTS
// ====================================================================================

func TestServerHTTPEndpoints(t *testing.T) {
	handler, _ := setupTestServer(t, false, nil)

	ts := httptest.NewServer(handler)
	defer ts.Close()

	t.Run("Health", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/")
		if err != nil {
			t.Fatalf("GET / failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != 200 {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}

		var health map[string]interface{}
		if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
			t.Fatalf("failed to parse health JSON: %v", err)
		}

		if health["status"] != "running" {
			t.Errorf("status = %v, want running", health["status"])
		}
		if health["model_loaded"] != false {
			t.Errorf("model_loaded = %v, want false", health["model_loaded"])
		}
	})

	t.Run("CheckURL_Safe", func(t *testing.T) {
		got := postCheck(t, ts.URL, `{"url": "http://a.com"}`, 200)
		want := map[string]interface{}{
			"url":              "http://a.com",
			"verdict":          "safe",
			"confidence":       0.1,
			"detection_method": "heuristic",
		}
		assertBody(t, got, want)
	})

	t.Run("CheckURL_Suspicious", func(t *testing.T) {
		got := postCheck(t, ts.URL, `{"url": "http://a-b.com"}`, 200)
		want := map[string]interface{}{
			"url":              "http://a-b.com",
			"verdict":          "suspicious",
			"confidence":       0.6,
			"detection_method": "heuristic",
		}
		assertBody(t, got, want)
	})

	t.Run("CheckURL_TrimsURL", func(t *testing.T) {
		got := postCheck(t, ts.URL, `{"url": "   http://a.com  "}`, 200)
		if got["url"] != "http://a.com" {
			t.Errorf("url = %v, want trimmed", got["url"])
		}
	})

	t.Run("CheckURL_Errors", func(t *testing.T) {
		tests := []struct {
			name        string
			contentType string
			body        string
			wantError   string
		}{
			{"NotJSONContentType", "text/plain", `{"url": "http://a.com"}`, "JSON body required"},
			{"NoContentType", "", `{"url": "http://a.com"}`, "JSON body required"},
			{"MalformedJSON", "application/json", `{"url": `, "JSON body required"},
			{"ArrayBody", "application/json", `["http://a.com"]`, "JSON body required"},
			{"NullBody", "application/json", `null`, "JSON body required"},
			{"MissingURL", "application/json", `{}`, "URL is required"},
			{"EmptyURL", "application/json", `{"url": ""}`, "URL is required"},
			{"WhitespaceURL", "application/json", `{"url": "   "}`, "URL is required"},
			{"NonStringURL", "application/json", `{"url": 42}`, "URL is required"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				req, _ := http.NewRequest("POST", ts.URL+"/api/check_url", strings.NewReader(tt.body))
				if tt.contentType != "" {
					req.Header.Set("Content-Type", tt.contentType)
				}

				resp, err := http.DefaultClient.Do(req)
				if err != nil {
					t.Fatalf("POST failed: %v", err)
				}
				defer resp.Body.Close()

				if resp.StatusCode != 400 {
					t.Errorf("expected 400, got %d", resp.StatusCode)
				}

				var body map[string]string
				if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
					t.Fatalf("error body not JSON: %v", err)
				}
				if body["error"] != tt.wantError {
					t.Errorf("error = %q, want %q", body["error"], tt.wantError)
				}
			})
		}
	})

	t.Run("CheckURL_VendorJSONContentType", func(t *testing.T) {
		req, _ := http.NewRequest("POST", ts.URL+"/api/check_url", strings.NewReader(`{"url":"http://a.com"}`))
		req.Header.Set("Content-Type", "application/vnd.api+json; charset=utf-8")

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("POST failed: %v", err)
		}
		resp.Body.Close()

		if resp.StatusCode != 200 {
			t.Errorf("expected 200 for +json content type, got %d", resp.StatusCode)
		}
	})

	t.Run("CheckURL_WrongMethod", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/check_url")
		if err != nil {
			t.Fatalf("GET failed: %v", err)
		}
		resp.Body.Close()

		if resp.StatusCode != 405 {
			t.Errorf("expected 405, got %d", resp.StatusCode)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/nope")
		if err != nil {
			t.Fatalf("GET failed: %v", err)
		}
		resp.Body.Close()

		if resp.StatusCode != 404 {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		first := postCheck(t, ts.URL, `{"url": "http://a-b.com"}`, 200)
		for i := 0; i < 5; i++ {
			assertBody(t, postCheck(t, ts.URL, `{"url": "http://a-b.com"}`, 200), first)
		}
	})
}

func TestServerModelActive(t *testing.T) {
	handler, _ := setupTestServer(t, false, &stubClassifier{label: 1})

	ts := httptest.NewServer(handler)
	defer ts.Close()

	t.Run("HealthReportsModel", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/")
		if err != nil {
			t.Fatalf("GET / failed: %v", err)
		}
		defer resp.Body.Close()

		var health map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&health)
		if health["model_loaded"] != true {
			t.Errorf("model_loaded = %v, want true", health["model_loaded"])
		}
	})

	t.Run("PhishingVerdict", func(t *testing.T) {
		got := postCheck(t, ts.URL, `{"url": "anything"}`, 200)
		want := map[string]interface{}{
			"url":              "anything",
			"verdict":          "phishing",
			"confidence":       0.9,
			"detection_method": "ml-model",
		}
		assertBody(t, got, want)
	})

	t.Run("EmptyURLStillRejected", func(t *testing.T) {
		got := postCheck(t, ts.URL, `{"url": "  "}`, 400)
		if got["error"] != "URL is required" {
			t.Errorf("error = %v", got["error"])
		}
	})
}

// ====================================================================================
// BATCH TESTS
// ====================================================================================

func TestServerBatch(t *testing.T) {
	handler, _ := setupTestServer(t, false, nil)

	ts := httptest.NewServer(handler)
	defer ts.Close()

	t.Run("MixedResults", func(t *testing.T) {
		body := `{"urls": ["http://a.com", "http://a-b.com", "  ", 7]}`
		resp, err := http.Post(ts.URL+"/api/check_urls", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("POST failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != 200 {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		var batch server.BatchResponse
		if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
			t.Fatalf("failed to parse batch: %v", err)
		}

		if len(batch.Results) != 4 {
			t.Fatalf("got %d results, want 4", len(batch.Results))
		}
		if batch.Results[0].Verdict != "safe" || batch.Results[1].Verdict != "suspicious" {
			t.Errorf("unexpected verdicts: %+v", batch.Results[:2])
		}
		if batch.Results[1].Method != "heuristic" || batch.Results[1].Confidence != 0.6 {
			t.Errorf("unexpected result: %+v", batch.Results[1])
		}
		for _, i := range []int{2, 3} {
			if batch.Results[i].Error != "URL is required" {
				t.Errorf("result %d error = %q", i, batch.Results[i].Error)
			}
			if batch.Results[i].Verdict != "" {
				t.Errorf("result %d should carry no verdict", i)
			}
		}
	})

	t.Run("Empty", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/api/check_urls", "application/json", strings.NewReader(`{"urls": []}`))
		if err != nil {
			t.Fatalf("POST failed: %v", err)
		}
		resp.Body.Close()

		if resp.StatusCode != 400 {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("TooMany", func(t *testing.T) {
		urls := make([]string, 101)
		for i := range urls {
			urls[i] = fmt.Sprintf("http://host%d.example", i)
		}
		data, _ := json.Marshal(map[string]interface{}{"urls": urls})

		resp, err := http.Post(ts.URL+"/api/check_urls", "application/json", bytes.NewReader(data))
		if err != nil {
			t.Fatalf("POST failed: %v", err)
		}
		resp.Body.Close()

		if resp.StatusCode != 400 {
			t.Errorf("expected 400 over batch limit, got %d", resp.StatusCode)
		}
	})
}

// ====================================================================================
// STATUS & CORS TESTS
// ====================================================================================

func TestServerStatus(t *testing.T) {
	handler, _ := setupTestServer(t, true, nil)

	ts := httptest.NewServer(handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/status")
	if err != nil {
		t.Fatalf("GET /status failed: %v", err)
	}
	defer resp.Body.Close()

	var status server.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("failed to parse status: %v", err)
	}

	if status.Server.Version != "test" {
		t.Errorf("version = %s, want test", status.Server.Version)
	}
	if status.Engine.State != string(engine.StateHeuristicOnly) || status.Engine.ModelLoaded {
		t.Errorf("unexpected engine status: %+v", status.Engine)
	}
	if status.Model.Loaded || status.Model.Error == "" {
		t.Errorf("model info should report load failure: %+v", status.Model)
	}
	if !strings.HasPrefix(status.Server.WebSocketURL, "ws://") {
		t.Errorf("websocket url = %q", status.Server.WebSocketURL)
	}
	if len(status.Detectors) != 3 || status.Detectors[0].Name != "at_sign" {
		t.Errorf("unexpected detectors: %+v", status.Detectors)
	}
}

func TestCORS(t *testing.T) {
	handler, _ := setupTestServer(t, false, nil)

	ts := httptest.NewServer(handler)
	defer ts.Close()

	t.Run("Preflight", func(t *testing.T) {
		req, _ := http.NewRequest("OPTIONS", ts.URL+"/api/check_url", nil)
		req.Header.Set("Origin", "chrome-extension://abc")
		req.Header.Set("Access-Control-Request-Headers", "content-type")

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("OPTIONS failed: %v", err)
		}
		resp.Body.Close()

		if resp.StatusCode != 204 {
			t.Errorf("expected 204, got %d", resp.StatusCode)
		}
		if resp.Header.Get("Access-Control-Allow-Headers") != "content-type" {
			t.Errorf("allow-headers = %q", resp.Header.Get("Access-Control-Allow-Headers"))
		}
	})

	t.Run("HeadersOnResponses", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/api/check_url", "application/json", strings.NewReader(`{}`))
		if err != nil {
			t.Fatalf("POST failed: %v", err)
		}
		resp.Body.Close()

		if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
			t.Error("missing CORS header on error response")
		}
	})
}

// ====================================================================================
// WEBSOCKET TESTS
// ====================================================================================

func TestServerWebSocket(t *testing.T) {
	handler, _ := setupTestServer(t, true, nil)

	ts := httptest.NewServer(handler)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	t.Run("EvaluateStream", func(t *testing.T) {
		ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatalf("WebSocket dial failed: %v", err)
		}
		defer ws.Close()

		ws.SetReadDeadline(time.Now().Add(5 * time.Second))

		messages := []struct {
			send string
			want map[string]interface{}
		}{
			{`{"url": "http://a.com"}`, map[string]interface{}{
				"url": "http://a.com", "verdict": "safe", "confidence": 0.1, "detection_method": "heuristic",
			}},
			{`{"url": "http://a-b.com"}`, map[string]interface{}{
				"url": "http://a-b.com", "verdict": "suspicious", "confidence": 0.6, "detection_method": "heuristic",
			}},
			{`{"url": ""}`, map[string]interface{}{"error": "URL is required"}},
			{`not json`, map[string]interface{}{"error": "JSON body required"}},
		}

		for _, m := range messages {
			if err := ws.WriteMessage(websocket.TextMessage, []byte(m.send)); err != nil {
				t.Fatalf("write failed: %v", err)
			}

			_, data, err := ws.ReadMessage()
			if err != nil {
				t.Fatalf("read failed: %v", err)
			}

			var got map[string]interface{}
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("reply not JSON: %v", err)
			}
			assertBody(t, got, m.want)
		}
	})

	t.Run("CloseGracefully", func(t *testing.T) {
		ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatalf("WebSocket dial failed: %v", err)
		}

		err = ws.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		if err != nil {
			t.Logf("close message error (may be OK): %v", err)
		}

		ws.Close()
	})

	t.Run("DisabledByDefault", func(t *testing.T) {
		plain, _ := setupTestServer(t, false, nil)
		ts2 := httptest.NewServer(plain)
		defer ts2.Close()

		resp, err := http.Get(ts2.URL + "/ws")
		if err != nil {
			t.Fatalf("GET /ws failed: %v", err)
		}
		resp.Body.Close()

		if resp.StatusCode != 404 {
			t.Errorf("expected 404 with websocket disabled, got %d", resp.StatusCode)
		}
	})
}

// ====================================================================================
// HELPERS
// ====================================================================================

func setupTestServer(t *testing.T, enableWebSocket bool, classifier model.Classifier) (http.Handler, *server.Server) {
	t.Helper()
	logger := newTestLogger(t)

	var adapter *model.Adapter
	if classifier != nil {
		adapter = model.NewAdapterWithClassifier(classifier)
	} else {
		adapter = model.NewAdapter(filepath.Join(t.TempDir(), "phishing_model.json"), logger)
	}

	eng := engine.New(adapter, nil, nil, logger)

	config := &server.Config{
		Addr:            ":5000",
		EnableWebSocket: enableWebSocket,
		LogRequests:     true,
		Version:         "test",
		Logger:          logger,
	}

	srv := server.New(eng, config)

	return srv.Handler(), srv
}

func postCheck(t *testing.T, baseURL, body string, wantStatus int) map[string]interface{} {
	t.Helper()

	resp, err := http.Post(baseURL+"/api/check_url", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /api/check_url failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		t.Errorf("expected %d, got %d", wantStatus, resp.StatusCode)
	}

	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Errorf("wrong content type: %s", ct)
	}

	data, _ := io.ReadAll(resp.Body)

	var got map[string]interface{}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("response not JSON: %v (%s)", err, data)
	}
	return got
}

func assertBody(t *testing.T, got, want map[string]interface{}) {
	t.Helper()

	if len(got) != len(want) {
		t.Errorf("body has %d fields, want %d: %v", len(got), len(want), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
}
