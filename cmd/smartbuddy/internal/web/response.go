package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/germanamz/smartbuddy/pkg/completion"
	"github.com/germanamz/smartbuddy/pkg/engine"
	"github.com/germanamz/smartbuddy/pkg/enforce"
	"github.com/germanamz/smartbuddy/pkg/language"
	"github.com/germanamz/smartbuddy/pkg/modeladapter"
	"github.com/germanamz/smartbuddy/pkg/prompts"
	"github.com/germanamz/smartbuddy/pkg/retry"
)

// Error kinds reported to clients.
const (
	kindValidation    = "validation"
	kindConfiguration = "configuration"
	kindBusy          = "busy"
	kindProvider      = "provider"
	kindCorrection    = "correction"
	kindTimeout       = "timeout"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, kind, msg string) {
	writeJSON(w, code, errorResponse{Error: msg, Kind: kind})
}

// classify maps a pipeline error to an HTTP status and error kind.
func classify(err error) (int, string) {
	var (
		cfgErr *completion.ConfigError
		corrEr *enforce.CorrectionError
		exhErr *retry.ExhaustedError
		stErr  *modeladapter.StatusError
		maxErr *http.MaxBytesError
	)

	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge, kindValidation
	case errors.Is(err, prompts.ErrEmptyInput),
		errors.Is(err, prompts.ErrInvalidOption),
		errors.Is(err, prompts.ErrUnknownFeature),
		errors.Is(err, language.ErrUnknownLanguage):
		return http.StatusBadRequest, kindValidation
	case errors.As(err, &cfgErr):
		return http.StatusServiceUnavailable, kindConfiguration
	case errors.Is(err, engine.ErrSessionBusy):
		return http.StatusConflict, kindBusy
	case errors.As(err, &corrEr):
		return http.StatusBadGateway, kindCorrection
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, kindTimeout
	case errors.As(err, &exhErr), errors.As(err, &stErr), errors.Is(err, modeladapter.ErrEmptyResponse):
		return http.StatusBadGateway, kindProvider
	default:
		return http.StatusInternalServerError, kindProvider
	}
}
