package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"nutrifases-backend/internal/types"
)

const maxBodyBytes = 1 << 20

// readHistory validates the chat request body and returns the history
// untouched. The body must be a JSON object with a non-empty "history" array.
func readHistory(w http.ResponseWriter, r *http.Request) ([]types.Turn, *Error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, newError(KindInvalidRequestBody, "invalid request: body is too large", err)
		}
		return nil, newError(KindInvalidRequestBody, "invalid request: body could not be read", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, newError(KindInvalidRequestBody, "invalid request: body is not a valid JSON object", err)
	}

	raw, ok := fields["history"]
	if !ok || string(raw) == "null" {
		return nil, errNoHistory
	}

	var history []types.Turn
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, newError(KindInvalidRequestBody, "invalid request: history must be a list of turns", err)
	}
	if len(history) == 0 {
		return nil, errNoHistory
	}
	return history, nil
}
