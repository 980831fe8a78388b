// internal/api/response.go
package api

import (
	"encoding/json"
	"net/http"

	apperrors "mentor-match/internal/common/errors"
)

type errorBody struct {
	Error     *apperrors.StandardError `json:"error"`
	RequestID string                   `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := apperrors.Normalize(err)
	writeJSON(w, apperrors.HTTPStatus(stdErr.Code), errorBody{
		Error:     stdErr,
		RequestID: RequestIDFrom(r.Context()),
	})
}
