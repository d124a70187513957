package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/enginemock/enginemock/internal/observability"
	"github.com/enginemock/enginemock/internal/query"
)

const maxBodyBytes = 8 << 20

// requestError is a malformed request. It maps to 422 like the engines'
// request validation does.
type requestError struct {
	detail string
}

func (e *requestError) Error() string {
	return e.detail
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	// Numbers inside documents must round-trip exactly, including integers past 2^53.
	decoder.UseNumber()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &requestError{detail: "request body is required"}
		}
		return &requestError{detail: fmt.Sprintf("invalid request body: %v", err)}
	}
	if decoder.More() {
		return &requestError{detail: "invalid request body: unexpected data after JSON value"}
	}
	return nil
}

func requireSQL(sqlText *string) (string, error) {
	if sqlText == nil {
		return "", &requestError{detail: "sql: field required"}
	}
	return *sqlText, nil
}

func parseBoolParam(r *http.Request, key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	switch strings.ToLower(raw) {
	case "true", "1", "yes", "on", "t", "y":
		return true, nil
	case "false", "0", "no", "off", "f", "n":
		return false, nil
	}
	return false, &requestError{detail: fmt.Sprintf("%s: value could not be parsed to a boolean", key)}
}

func parseIntParam(r *http.Request, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &requestError{detail: fmt.Sprintf("%s: value is not a valid integer", key)}
	}
	return value, nil
}

// writeRequestFailure answers a decode or validation failure.
func writeRequestFailure(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		writeDetail(r.Context(), w, http.StatusUnprocessableEntity, reqErr.detail)
	case errors.Is(err, query.ErrEmptySQL):
		writeDetail(r.Context(), w, http.StatusBadRequest, "Empty SQL query")
	case errors.Is(err, query.ErrInvalidSQL):
		writeDetail(r.Context(), w, http.StatusBadRequest, "Invalid SQL query")
	default:
		writeDetail(r.Context(), w, http.StatusInternalServerError, err.Error())
	}
}

func validationOutcome(err error) string {
	switch {
	case err == nil:
		return observability.OutcomeValid
	case errors.Is(err, query.ErrEmptySQL):
		return observability.OutcomeEmpty
	default:
		return observability.OutcomeRejected
	}
}
