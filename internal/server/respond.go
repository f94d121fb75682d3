package server

import (
	"encoding/json"
	"net/http"

	"polaris/internal/git"
)

// APIResponse is the envelope for all HTTP API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// writeJSON writes a successful response.
func writeJSON(w http.ResponseWriter, data interface{}) {
	json.NewEncoder(w).Encode(APIResponse{Success: true, Data: data})
}

// writeError writes an error response with the given status code.
func writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{Success: false, Error: message})
}

// writeGitError maps a git package error to an HTTP status and a
// machine readable code.
func writeGitError(w http.ResponseWriter, err error) {
	code := git.ErrorCode(err)
	status := http.StatusInternalServerError
	switch code {
	case "NOT_A_REPOSITORY", "BRANCH_NOT_FOUND", "COMMIT_NOT_FOUND", "REMOTE_NOT_FOUND":
		status = http.StatusNotFound
	case "CLI_NOT_FOUND":
		status = http.StatusFailedDependency
	}
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{Success: false, Error: err.Error(), Code: code})
}

// decodeJSON parses the request body into dst.
func decodeJSON(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
