// Package server normalizes and validates HTTP origins for WebSocket requests
// to enforce configured access control.
package server

import (
	"net/http"
	"net/url"
	"strings"
)

// normalizeOrigins canonicalizes a configured allowlist. A bare "*" entry
// turns matching off entirely; entries that do not parse as scheme://host
// origins are logged and skipped.
func normalizeOrigins(origins []string) ([]string, bool) {
	if len(origins) == 0 {
		return nil, false
	}

	normalized := make([]string, 0, len(origins))
	allowAll := false
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		switch {
		case trimmed == "":
		case trimmed == "*":
			allowAll = true
		default:
			canonical, ok := normalizeOrigin(trimmed)
			if !ok {
				Log.Warnw("ignoring invalid origin in configuration", "origin", origin)
				continue
			}
			normalized = append(normalized, canonical)
		}
	}
	return normalized, allowAll
}

// normalizeOrigin lowercases scheme and host so allowlist lookups are
// case-insensitive, matching how browsers send the Origin header.
func normalizeOrigin(origin string) (string, bool) {
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host), true
}

// isOriginAllowed reports whether the given Origin header value passes the
// configured allowlist. An absent or malformed value never passes.
func isOriginAllowed(origin string) bool {
	canonical, ok := normalizeOrigin(origin)
	if !ok {
		return false
	}

	configMu.RLock()
	defer configMu.RUnlock()

	if allowAllOrigins {
		return true
	}
	_, exists := allowedOrigins[canonical]
	return exists
}

// checkOrigin is the upgrader hook; rejections are logged with the raw
// header so operators can extend the allowlist.
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if isOriginAllowed(origin) {
		return true
	}
	Log.Warnw("blocked WebSocket connection from disallowed origin", "origin", origin)
	return false
}
