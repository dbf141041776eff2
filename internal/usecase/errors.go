package usecase

import "fmt"

type ErrorCode string

const (
	ErrorValidation    ErrorCode = "VALIDATION_ERROR"
	ErrorConfiguration ErrorCode = "CONFIGURATION_ERROR"
	ErrorProvider      ErrorCode = "PROVIDER_ERROR"
	ErrorUnknown       ErrorCode = "UNKNOWN_ERROR"
)

const (
	MsgQuestionRequired   = "Invalid request body: 'question' is required."
	MsgMalformedBody      = "Invalid request body: Malformed JSON."
	MsgMissingCredential  = "Server misconfiguration: OPENAI_API_KEY is not set."
	MsgInternalFallback   = "Internal Server Error"
	msgProviderPrefix     = "OpenAI API Error: "
	msgProviderUnknown    = "Unknown error"
	msgCredentialLoadFail = "Server misconfiguration: OpenAI API key could not be loaded."
)

// Error is the only error type returned by AnswerService. Message is safe to
// show to the caller; Status is set for provider errors only.
type Error struct {
	Code    ErrorCode
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Message)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}
