package types

import "fmt"

// ErrorKind classifies failures across the pipeline so callers can decide
// on retries and status codes without string matching.
type ErrorKind string

const (
	ErrKindConfig            ErrorKind = "config"
	ErrKindEmbeddingProvider ErrorKind = "embedding_provider"
	ErrKindRetrieval         ErrorKind = "retrieval"
	ErrKindGeneration        ErrorKind = "generation"
	ErrKindTimeout           ErrorKind = "timeout"
	ErrKindNotFound          ErrorKind = "not_found"
	ErrKindConflict          ErrorKind = "conflict"
	ErrKindCancelled         ErrorKind = "cancelled"
)

// AppError carries an error kind and a retryable flag alongside the message.
// Retryable is only meaningful for provider errors; the service itself never
// retries automatically.
type AppError struct {
	Kind      ErrorKind
	Message   string
	Retryable bool
	Err       error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func NewConfigError(message string) *AppError {
	return &AppError{Kind: ErrKindConfig, Message: message}
}

func NewEmbeddingProviderError(message string, retryable bool, err error) *AppError {
	return &AppError{Kind: ErrKindEmbeddingProvider, Message: message, Retryable: retryable, Err: err}
}

func NewRetrievalError(message string, err error) *AppError {
	return &AppError{Kind: ErrKindRetrieval, Message: message, Err: err}
}

func NewGenerationError(message string, retryable bool, err error) *AppError {
	return &AppError{Kind: ErrKindGeneration, Message: message, Retryable: retryable, Err: err}
}

func NewTimeoutError(message string, err error) *AppError {
	return &AppError{Kind: ErrKindTimeout, Message: message, Retryable: true, Err: err}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Kind: ErrKindNotFound, Message: message}
}

func NewConflictError(message string) *AppError {
	return &AppError{Kind: ErrKindConflict, Message: message}
}

func NewCancelledError(err error) *AppError {
	return &AppError{Kind: ErrKindCancelled, Message: "request cancelled by caller", Err: err}
}

// KindOf returns the error kind of err, walking the wrap chain.
// Unclassified errors return the empty kind.
func KindOf(err error) ErrorKind {
	for err != nil {
		if appErr, ok := err.(*AppError); ok {
			return appErr.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}

// IsRetryable reports whether err is a provider error marked retryable.
func IsRetryable(err error) bool {
	for err != nil {
		if appErr, ok := err.(*AppError); ok {
			return appErr.Retryable
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
