// internal/common/http/json.go
package http

import (
	"encoding/json"
	"net/http"
)

// WriteJSON encodes v with the given status. Encoding errors are dropped
// because the status line has already been sent.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
