package server

import (
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// getScheme determines the HTTP scheme
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}

	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}

	if r.Header.Get("X-Forwarded-Ssl") == "on" {
		return "https"
	}

	return "http"
}

// getWSScheme determines the WebSocket scheme
func getWSScheme(r *http.Request) string {
	if getScheme(r) == "https" {
		return "wss"
	}
	return "ws"
}

// getWSURL returns the base URL for WebSocket
func getWSURL(r *http.Request) string {
	scheme := getWSScheme(r)
	host := r.Host
	return fmt.Sprintf("%s://%s", scheme, host)
}

// isJSONRequest reports whether the request declares a JSON body
// (application/json or application/*+json)
func isJSONRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	if mediaType == "application/json" {
		return true
	}
	return strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json")
}
