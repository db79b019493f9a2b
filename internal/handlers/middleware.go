package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
)

// allowedStreamParams is the whitelist of query parameters for the stream
var allowedStreamParams = map[string]bool{
	"playerId": true,
	"datastar": true, // Datastar automatically sends this with client state
}

// allowedDatastarSignals lists the signals a stream client may echo back
var allowedDatastarSignals = map[string]bool{
	"room":  true,
	"error": true,
}

const (
	maxStreamQuery   = 10000
	maxDatastarState = 8192
	maxPlayerIDLen   = 64
)

// ValidateStreamRequest rejects stream requests with unexpected or oversized
// query parameters before the connection is upgraded to SSE
func ValidateStreamRequest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(r.URL.RawQuery) > maxStreamQuery {
			http.Error(w, "Query string too large", http.StatusRequestURITooLong)
			return
		}

		params, err := url.ParseQuery(r.URL.RawQuery)
		if err != nil {
			http.Error(w, "Invalid query parameters", http.StatusBadRequest)
			return
		}

		for key, values := range params {
			if !allowedStreamParams[key] {
				http.Error(w, "Invalid parameter", http.StatusBadRequest)
				return
			}
			if len(values) != 1 {
				http.Error(w, "Repeated parameter", http.StatusBadRequest)
				return
			}

			switch key {
			case "playerId":
				if len(values[0]) > maxPlayerIDLen {
					http.Error(w, "Invalid playerId", http.StatusBadRequest)
					return
				}
			case "datastar":
				if len(values[0]) > maxDatastarState {
					http.Error(w, "Datastar state too large", http.StatusBadRequest)
					return
				}
				if values[0] == "" {
					continue
				}
				var signals map[string]any
				if err := json.Unmarshal([]byte(values[0]), &signals); err != nil {
					http.Error(w, "Invalid datastar JSON", http.StatusBadRequest)
					return
				}
				for name := range signals {
					if !allowedDatastarSignals[name] {
						http.Error(w, "Invalid signal in datastar", http.StatusBadRequest)
						return
					}
				}
			}
		}

		next(w, r)
	}
}
