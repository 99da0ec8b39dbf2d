package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	apperrors "github.com/veilspire/gridlink/internal/platform/errors"
	"github.com/veilspire/gridlink/internal/platform/requestctx"
)

// maxRequestBody caps JSON request bodies.
const maxRequestBody = 1 << 20

// errorBody is the JSON error envelope returned to the grid.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, logger *log.Logger, err error) {
	code := apperrors.CodeOf(err)
	status := code.HTTPStatus()
	if status >= http.StatusInternalServerError && logger != nil {
		logger.Printf("request failed path=%s code=%s request_id=%s err=%v",
			r.URL.Path, code, requestctx.RequestIDFromContext(r.Context()), err)
	}

	message := err.Error()
	if status >= http.StatusInternalServerError {
		// Internal details stay in the logs.
		message = "internal error"
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: string(code), Message: message}})
}

func decodeJSON(r *http.Request, into any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(into); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.New(apperrors.CodeRequestInvalid, "request body is required")
		}
		return apperrors.Wrap(apperrors.CodeRequestInvalid, "request body is not valid JSON", err)
	}
	return nil
}
