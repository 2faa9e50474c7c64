package upstream

import (
	"encoding/json"

	crerr "github.com/cockroachdb/errors"
)

// Outcome is the closed set of fetch results.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeRateLimited
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeRateLimited:
		return "rate_limited"
	default:
		return "failed"
	}
}

// Result carries either the raw records or the reason they are missing.
// Records stay opaque JSON until a provider mapper reads them.
type Result struct {
	Outcome Outcome
	Records []json.RawMessage
	Err     error
}

func OK(records []json.RawMessage) Result {
	return Result{Outcome: OutcomeOK, Records: records}
}

func RateLimited(err error) Result {
	return Result{Outcome: OutcomeRateLimited, Err: err}
}

func Failed(err error) Result {
	if err == nil {
		err = crerr.New("upstream request failed")
	}
	return Result{Outcome: OutcomeFailed, Err: err}
}

// FromError classifies an error returned by Fetcher.Get.
func FromError(err error) Result {
	if IsRateLimited(err) {
		return RateLimited(err)
	}
	return Failed(err)
}
