package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/ahmedsps3/personal-budget-app/internal/auth"
	"github.com/ahmedsps3/personal-budget-app/internal/core"
)

// Error codes carried in the RPC envelope.
const (
	codeValidation         = "validation"
	codeUnauthorized       = "unauthorized"
	codeNotFound           = "not_found"
	codeStorageUnavailable = "storage_unavailable"
	codeInternal           = "internal"
)

const maxBodyBytes = 1 << 20

type rpcError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type resultEnvelope struct {
	Result any `json:"result"`
}

type errorEnvelope struct {
	Error rpcError `json:"error"`
}

func writeResult(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resultEnvelope{Result: v}); err != nil {
		slog.Error("Failed to encode RPC result", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	code, status := classifyError(err)

	msg := err.Error()
	if code == codeInternal {
		// Internal details stay in the logs.
		msg = "internal error"
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(errorEnvelope{Error: rpcError{Code: code, Message: msg}}); encErr != nil {
		slog.Error("Failed to encode RPC error", "error", encErr)
	}
}

// validationError wraps a message into the validation error class.
type validationError struct {
	msg string
}

func (e validationError) Error() string { return e.msg }

func validationErrorf(format string, args ...any) error {
	return validationError{msg: fmt.Sprintf(format, args...)}
}

func classifyError(err error) (code string, status int) {
	var ve validationError
	switch {
	case errors.As(err, &ve),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidFrequency),
		errors.Is(err, core.ErrInvalidMonth),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrInvalidDate):
		return codeValidation, http.StatusBadRequest
	case errors.Is(err, core.ErrUnauthorized), errors.Is(err, auth.ErrInvalidPassword):
		return codeUnauthorized, http.StatusUnauthorized
	case errors.Is(err, core.ErrNotFound):
		return codeNotFound, http.StatusNotFound
	case errors.Is(err, core.ErrStorageUnavailable):
		return codeStorageUnavailable, http.StatusServiceUnavailable
	default:
		return codeInternal, http.StatusInternalServerError
	}
}

// decodeInput reads the JSON request body into v. An empty body decodes to
// the zero value so no-argument procedures accept bare POSTs.
func decodeInput(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return validationErrorf("read request body: %v", err)
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return validationErrorf("invalid JSON input: %v", err)
	}
	return nil
}
