package middleware

import (
	"encoding/json"
	"net/http"
)

// writeJSONError writes the {"error": msg} body used by every API route.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
