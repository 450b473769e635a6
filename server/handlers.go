package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"tangled.org/atscan.net/urlcheck/engine"
)

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sendJSON(w, 200, HealthResponse{
			Status:      "running",
			ModelLoaded: s.engine.ModelLoaded(),
		})
	}
}

func (s *Server) handleCheckURL() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := s.readJSONObject(w, r)
		if !ok {
			return
		}

		url, _ := body["url"].(string)

		result, err := s.engine.Evaluate(url)
		if err != nil {
			if errors.Is(err, engine.ErrInvalidInput) {
				sendError(w, 400, errURLRequired)
				return
			}
			sendError(w, 500, err.Error())
			return
		}

		sendJSON(w, 200, result)
	}
}

func (s *Server) handleCheckURLs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !isJSONRequest(r) {
			sendError(w, 400, errJSONRequired)
			return
		}

		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes))
		if err != nil {
			sendError(w, 400, errJSONRequired)
			return
		}

		var req BatchRequest
		if err := json.Unmarshal(data, &req); err != nil {
			sendError(w, 400, errJSONRequired)
			return
		}

		if len(req.URLs) == 0 {
			sendError(w, 400, errURLsRequired)
			return
		}
		if len(req.URLs) > s.config.MaxBatch {
			sendError(w, 400, fmt.Sprintf("too many URLs (max %d)", s.config.MaxBatch))
			return
		}

		// Non-string entries evaluate as empty and come back as per-item errors
		urls := make([]string, len(req.URLs))
		for i, v := range req.URLs {
			urls[i], _ = v.(string)
		}

		items := s.engine.EvaluateBatch(r.Context(), urls)

		resp := BatchResponse{Results: make([]BatchResult, len(items))}
		for i, item := range items {
			if item.Err != nil {
				msg := item.Err.Error()
				if errors.Is(item.Err, engine.ErrInvalidInput) {
					msg = errURLRequired
				}
				resp.Results[i] = BatchResult{URL: strings.TrimSpace(item.Input), Error: msg}
				continue
			}
			resp.Results[i] = BatchResult{
				URL:        item.Result.URL,
				Verdict:    string(item.Result.Verdict),
				Confidence: item.Result.Confidence,
				Method:     string(item.Result.Method),
			}
		}

		sendJSON(w, 200, resp)
	}
}

func (s *Server) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := StatusResponse{
			Server: ServerStatus{
				Version:          s.config.Version,
				WebSocketEnabled: s.config.EnableWebSocket,
				MaxBatch:         s.config.MaxBatch,
				UptimeSeconds:    int(time.Since(s.startTime).Seconds()),
			},
			Engine: EngineStatus{
				State:       string(s.engine.State()),
				ModelLoaded: s.engine.ModelLoaded(),
			},
			Model: s.engine.ModelInfo(),
		}

		if s.config.EnableWebSocket {
			response.Server.WebSocketURL = getWSURL(r) + "/ws"
		}

		for _, d := range s.engine.Heuristic().Detectors() {
			response.Detectors = append(response.Detectors, DetectorStatus{
				Name:        d.Name(),
				Description: d.Description(),
				Version:     d.Version(),
			})
		}

		sendJSON(w, 200, response)
	}
}

// readJSONObject parses the request body as a JSON object, writing the
// client error itself when it cannot
func (s *Server) readJSONObject(w http.ResponseWriter, r *http.Request) (map[string]interface{}, bool) {
	if !isJSONRequest(r) {
		sendError(w, 400, errJSONRequired)
		return nil, false
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes))
	if err != nil {
		sendError(w, 400, errJSONRequired)
		return nil, false
	}

	body, err := parseJSONObject(data)
	if err != nil {
		sendError(w, 400, errJSONRequired)
		return nil, false
	}

	return body, true
}

// parseJSONObject rejects anything but a JSON object
func parseJSONObject(data []byte) (map[string]interface{}, error) {
	var body map[string]interface{}
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, err
	}
	if body == nil {
		return nil, errors.New("body is not a JSON object")
	}
	return body, nil
}
