package httpapi

import (
	"encoding/json"
	"net/http"

	goRotate "github.com/MrEthical07/goRotate"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, ErrorResponse{Error: code})
}

// mapError renders an engine error. Only the public code crosses the wire.
func mapError(w http.ResponseWriter, err error) {
	writeError(w, goRotate.HTTPStatus(err), goRotate.Code(err))
}
