package server

import (
	"time"

	"tangled.org/atscan.net/urlcheck/model"
)

// Client-facing error messages
const (
	errJSONRequired = "JSON body required"
	errURLRequired  = "URL is required"
	errURLsRequired = "URLs are required"
)

// HealthResponse is the GET / response
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

// ErrorResponse is returned for client errors
type ErrorResponse struct {
	Error string `json:"error"`
}

// BatchRequest is the POST /api/check_urls body
type BatchRequest struct {
	URLs []interface{} `json:"urls"`
}

// BatchResponse is the POST /api/check_urls response
type BatchResponse struct {
	Results []BatchResult `json:"results"`
}

// BatchResult is one evaluation in a batch; Error is set instead of the
// verdict fields when the input was rejected
type BatchResult struct {
	URL        string  `json:"url"`
	Verdict    string  `json:"verdict,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Method     string  `json:"detection_method,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// StatusResponse is the /status endpoint response
type StatusResponse struct {
	Server    ServerStatus     `json:"server"`
	Engine    EngineStatus     `json:"engine"`
	Model     model.Info       `json:"model"`
	Detectors []DetectorStatus `json:"detectors"`
}

// ServerStatus contains server information
type ServerStatus struct {
	Version          string `json:"version"`
	WebSocketEnabled bool   `json:"websocket_enabled"`
	WebSocketURL     string `json:"websocket_url,omitempty"`
	MaxBatch         int    `json:"max_batch"`
	UptimeSeconds    int    `json:"uptime_seconds"`
}

// EngineStatus describes the detection path in use
type EngineStatus struct {
	State       string `json:"state"`
	ModelLoaded bool   `json:"model_loaded"`
}

// DetectorStatus describes one heuristic rule
type DetectorStatus struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

// RequestLog represents a logged HTTP request
type RequestLog struct {
	Timestamp  time.Time `json:"timestamp"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Status     int       `json:"status"`
	DurationMs float64   `json:"duration_ms"`
	UserAgent  string    `json:"user_agent"`
	RemoteAddr string    `json:"remote_addr"`
}
