package middleware

import (
	"encoding/json"
	"net/http"

	goRotate "github.com/MrEthical07/goRotate"
)

// CodeForbidden is returned when a valid token lacks the required grant.
const CodeForbidden = "FORBIDDEN"

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: code})
}

func writeUnauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, goRotate.CodeUnauthorized)
}

func writeForbidden(w http.ResponseWriter) {
	writeError(w, http.StatusForbidden, CodeForbidden)
}
