package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// writeJSON encodes body before touching the response so an encoding
// failure can still become a 500.
func writeJSON(w http.ResponseWriter, status int, body any) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			slog.Error("response not encodable", "type", fmt.Sprintf("%T", body), "error", err)
			status = http.StatusInternalServerError
			buf.Reset()
			buf.WriteString(`{"error":"Internal Server Error"}` + "\n")
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// writeError answers with {"error": <status text>, "message": message}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}{http.StatusText(status), message})
}

// APIError is an engine failure mapped onto an HTTP status and a stable code.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string { return e.Code + ": " + e.Message }
