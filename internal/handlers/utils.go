package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"dailies-server/internal/errs"
	"dailies-server/internal/logging"
)

// writeJSON encodes v with the given status. Encoding errors are logged;
// there is nothing useful to send the client at that point.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// errorBody is the uniform error envelope.
type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError maps a domain error to its HTTP status and the JSON error
// envelope. Unknown errors become opaque 500s; the detail goes to the log,
// not the client.
func writeError(w http.ResponseWriter, err error) {
	status := errs.HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logging.Error("request failed: %v", err)
		message = "internal server error"
	}
	writeJSON(w, status, errorBody{
		Success: false,
		Error:   http.StatusText(status),
		Message: message,
	})
}

// decodeBody parses a JSON request body into dst. An empty body leaves dst
// at its zero value so optional bodies stay optional.
func decodeBody(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil && errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return errs.Validationf("invalid JSON body: %v", err)
	}
	return nil
}
