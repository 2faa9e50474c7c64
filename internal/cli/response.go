package cli

import (
	"errors"
	"io"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/fixture-sync/internal/usecase"
)

const (
	apiVersion  = "1.0"
	errorDomain = "fixture-sync"
)

// Exit codes follow sysexits(3) where one fits.
const (
	exitOK          = 0
	exitFailure     = 1
	exitUsage       = 2
	exitUnavailable = 69
	exitTempFail    = 75
	exitConfig      = 78
)

type responseEnvelope struct {
	APIVersion string     `json:"apiVersion"`
	Data       any        `json:"data,omitempty"`
	Error      *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Status  string      `json:"status"`
	Errors  []errorItem `json:"errors,omitempty"`
}

type errorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	ExitCode int
	Reason   string
	Status   string
}

func writeJSON(w io.Writer, payload any) error {
	enc := sonic.ConfigDefault.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func writeSuccess(w io.Writer, data any) error {
	return writeJSON(w, responseEnvelope{APIVersion: apiVersion, Data: data})
}

func writeError(w io.Writer, err error) int {
	mapped := mapError(err)
	_ = writeJSON(w, responseEnvelope{
		APIVersion: apiVersion,
		Error: &errorBody{
			Code:    mapped.ExitCode,
			Message: err.Error(),
			Status:  mapped.Status,
			Errors: []errorItem{{
				Domain:  errorDomain,
				Reason:  mapped.Reason,
				Message: err.Error(),
			}},
		},
	})
	return mapped.ExitCode
}

func mapError(err error) mappedError {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return mappedError{ExitCode: exitUsage, Reason: "invalidInput", Status: "INVALID_ARGUMENT"}
	case errors.Is(err, usecase.ErrInvalidConfig):
		return mappedError{ExitCode: exitConfig, Reason: "invalidConfig", Status: "FAILED_PRECONDITION"}
	case errors.Is(err, usecase.ErrRateLimited):
		return mappedError{ExitCode: exitTempFail, Reason: "rateLimited", Status: "RESOURCE_EXHAUSTED"}
	case errors.Is(err, usecase.ErrUpstreamFailed):
		return mappedError{ExitCode: exitUnavailable, Reason: "upstreamFailed", Status: "UNAVAILABLE"}
	case errors.Is(err, usecase.ErrDependencyUnavailable):
		return mappedError{ExitCode: exitUnavailable, Reason: "dependencyUnavailable", Status: "UNAVAILABLE"}
	default:
		return mappedError{ExitCode: exitFailure, Reason: "internalError", Status: "INTERNAL"}
	}
}
