package authapi

import (
	"encoding/json"
	"io"
	"net/http"
)

const (
	maxBodySize = 64 * 1024
)

type (
	messageResponse struct {
		Message string `json:"message"`
	}
)

func readJSON(r *http.Request, out interface{}) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}
