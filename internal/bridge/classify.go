package bridge

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is a stable classification of a worker failure. Callers branch on
// kinds; the raw worker message is preserved for diagnostics only.
type Kind string

const (
	KindCredentialsMissing      Kind = "credentials_missing"
	KindCredentialsInvalid      Kind = "credentials_invalid"
	KindLocalResourceMissing    Kind = "local_resource_missing"
	KindDependencyMissing       Kind = "dependency_missing"
	KindNetworkFailure          Kind = "network_failure"
	KindRateLimited             Kind = "rate_limited"
	KindQuotaExhausted          Kind = "quota_exhausted"
	KindInputNotFound           Kind = "input_not_found"
	KindNativeDependencyMissing Kind = "native_dependency_missing"
	KindWorkerTerminated        Kind = "worker_terminated"
	KindUnavailable             Kind = "worker_unavailable"
	KindUnknown                 Kind = "unknown"
)

// WorkerError is a classified failure surfaced by a worker call.
type WorkerError struct {
	Kind Kind
	// Raw is the worker's original error text, empty for failures that
	// never reached the worker (dead pipe, termination).
	Raw string
}

func (e *WorkerError) Error() string {
	return e.UserMessage()
}

// UserMessage returns the actionable message shown to the user. Unknown
// failures carry the original worker text for diagnosability.
func (e *WorkerError) UserMessage() string {
	switch e.Kind {
	case KindCredentialsMissing:
		return "No OpenAI API key configured. Add one in Settings or download a local model."
	case KindCredentialsInvalid:
		return "The OpenAI API key was rejected. Check the key in Settings."
	case KindLocalResourceMissing:
		return "No local whisper models are installed. Download one from the Models screen."
	case KindDependencyMissing:
		return "A bundled tool (whisper.cpp or FFmpeg) is missing. Reinstall the app to restore it."
	case KindNetworkFailure:
		return "A network request failed. Check your connection and try again."
	case KindRateLimited:
		return "The transcription service is rate limiting requests. Wait a moment and retry."
	case KindQuotaExhausted:
		return "Your OpenAI quota is exhausted. Check your plan and billing details."
	case KindInputNotFound:
		return "The input file could not be found. It may have been moved or deleted."
	case KindNativeDependencyMissing:
		return "A native library failed to load. Reinstall the app to repair it."
	case KindWorkerTerminated:
		return "The caption worker stopped unexpectedly before finishing."
	case KindUnavailable:
		return "The caption worker is not available."
	default:
		if e.Raw == "" {
			return "The caption worker reported an unknown error."
		}
		return fmt.Sprintf("The caption worker reported an unexpected error: %s", e.Raw)
	}
}

// classifyRule pairs a kind with the worker message fragments that select
// it. Rules are applied in order; some fragments are substrings of phrases
// matched by later rules, so the order is load-bearing.
type classifyRule struct {
	kind      Kind
	fragments []string
}

var classifyRules = []classifyRule{
	{KindCredentialsMissing, []string{"API key not provided", "didn't provide an API key"}},
	{KindCredentialsInvalid, []string{"401 Unauthorized", "Unauthorized"}},
	{KindLocalResourceMissing, []string{"No whisper models found", "No local whisper models available"}},
	{KindDependencyMissing, []string{"whisper.cpp binary not found", "FFmpeg not found"}},
	{KindNetworkFailure, []string{"Network", "fetch", "ENOTFOUND"}},
	{KindRateLimited, []string{"rate limit", "Too Many Requests"}},
	{KindQuotaExhausted, []string{"insufficient_quota", "quota"}},
	{KindInputNotFound, []string{"file not found", "No such file"}},
	{KindNativeDependencyMissing, []string{"Library not loaded", "image not found"}},
}

// Classify maps a raw worker error string onto the bridge taxonomy.
func Classify(raw string) *WorkerError {
	for _, rule := range classifyRules {
		for _, fragment := range rule.fragments {
			if strings.Contains(raw, fragment) {
				return &WorkerError{Kind: rule.kind, Raw: raw}
			}
		}
	}
	return &WorkerError{Kind: KindUnknown, Raw: raw}
}

// IsKind reports whether err is a WorkerError of the given kind.
func IsKind(err error, kind Kind) bool {
	var werr *WorkerError
	return errors.As(err, &werr) && werr.Kind == kind
}
