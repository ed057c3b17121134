package engine

import (
	"fmt"
	"strings"
)

// ErrorCategory is the coarse bucket surfaced to clients in chat error
// events.
type ErrorCategory string

const (
	// CategoryConfiguration: no usable provider, missing soul file, bad config.
	CategoryConfiguration ErrorCategory = "configuration_error"
	// CategoryGeneration: the model call itself failed.
	CategoryGeneration ErrorCategory = "generation_error"
	// CategoryRequest: the client sent something unusable.
	CategoryRequest ErrorCategory = "request_error"
)

// TurnError wraps a turn failure with its client-facing category.
type TurnError struct {
	Category ErrorCategory
	Class    ErrorClass
	Err      error
}

func (e *TurnError) Error() string {
	if e.Class != "" {
		return fmt.Sprintf("%s (%s): %v", e.Category, e.Class, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Category, e.Err)
}

func (e *TurnError) Unwrap() error { return e.Err }

func configurationError(err error) *TurnError {
	return &TurnError{Category: CategoryConfiguration, Err: err}
}

func generationError(err error) *TurnError {
	return &TurnError{Category: CategoryGeneration, Class: ClassifyError(err), Err: err}
}

func requestError(err error) *TurnError {
	return &TurnError{Category: CategoryRequest, Err: err}
}

// ErrorClass refines generation errors for logging and fallback decisions.
type ErrorClass string

const (
	ErrorClassAuth            ErrorClass = "AUTH"
	ErrorClassRateLimit       ErrorClass = "RATE_LIMIT"
	ErrorClassTimeout         ErrorClass = "TIMEOUT"
	ErrorClassBilling         ErrorClass = "BILLING"
	ErrorClassContextOverflow ErrorClass = "CONTEXT_OVERFLOW"
	ErrorClassContentFilter   ErrorClass = "CONTENT_FILTER"
	ErrorClassValidation      ErrorClass = "VALIDATION"
	ErrorClassNetwork         ErrorClass = "NETWORK"
	ErrorClassModel           ErrorClass = "MODEL"
	ErrorClassUnknown         ErrorClass = "UNKNOWN"
)

// ClassifyError inspects an LLM error message for known patterns and
// returns the most specific class that matches.
func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ErrorClassUnknown
	}
	msg := strings.ToLower(err.Error())

	if strings.Contains(msg, "401") ||
		strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "invalid key") ||
		strings.Contains(msg, "invalid api key") ||
		strings.Contains(msg, "forbidden") ||
		strings.Contains(msg, "403") {
		return ErrorClassAuth
	}

	if strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "rate_limit") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "too many requests") {
		return ErrorClassRateLimit
	}

	if strings.Contains(msg, "deadline exceeded") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "timed out") {
		return ErrorClassTimeout
	}

	if strings.Contains(msg, "billing") ||
		strings.Contains(msg, "payment") ||
		strings.Contains(msg, "insufficient funds") {
		return ErrorClassBilling
	}

	if strings.Contains(msg, "context_length") ||
		strings.Contains(msg, "context length") ||
		strings.Contains(msg, "token limit") ||
		strings.Contains(msg, "max tokens") ||
		strings.Contains(msg, "maximum context") ||
		strings.Contains(msg, "context window") {
		return ErrorClassContextOverflow
	}

	if strings.Contains(msg, "content filter") ||
		strings.Contains(msg, "content_filter") ||
		strings.Contains(msg, "safety") ||
		strings.Contains(msg, "blocked") {
		return ErrorClassContentFilter
	}

	if strings.Contains(msg, "invalid request") ||
		strings.Contains(msg, "invalid_request") ||
		strings.Contains(msg, "validation") ||
		strings.Contains(msg, "400") {
		return ErrorClassValidation
	}

	if strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "network") ||
		strings.Contains(msg, "eof") {
		return ErrorClassNetwork
	}

	if strings.Contains(msg, "500") ||
		strings.Contains(msg, "502") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "internal server error") {
		return ErrorClassModel
	}

	return ErrorClassUnknown
}

// fallbackWorthy reports whether an error class justifies trying the next
// provider in the chain. Client mistakes and oversized prompts would fail
// the same way everywhere.
func fallbackWorthy(class ErrorClass) bool {
	switch class {
	case ErrorClassAuth, ErrorClassRateLimit, ErrorClassTimeout,
		ErrorClassBilling, ErrorClassNetwork, ErrorClassModel, ErrorClassUnknown:
		return true
	default:
		return false
	}
}
