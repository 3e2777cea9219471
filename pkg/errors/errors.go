package errors

import (
	stdErrors "errors"
	"fmt"
)

type Code string

const (
	// CodeNetwork marks failures where the request never reached the cart
	// service or no response came back (DNS, dial, timeout).
	CodeNetwork Code = "NETWORK_ERROR"
	// CodeServer marks a non-2xx response from the cart service.
	CodeServer Code = "SERVER_ERROR"
	// CodeMalformedResponse marks a response whose shape matched no known
	// envelope. Callers are expected to fall back to a resync.
	CodeMalformedResponse Code = "MALFORMED_RESPONSE"
	// CodeSession marks a cart operation attempted without an active session.
	CodeSession Code = "SESSION_ERROR"
	// CodeValidation marks bad inputs from the embedding application.
	CodeValidation Code = "VALIDATION_ERROR"
	// CodeInternal marks library bugs and everything unclassifiable.
	CodeInternal Code = "INTERNAL_ERROR"
)

type Metadata struct {
	Retryable     bool
	PublicMessage string
}

var metadataByCode = map[Code]Metadata{
	CodeNetwork: {
		Retryable:     true,
		PublicMessage: "cart service unreachable",
	},
	CodeServer: {
		Retryable:     true,
		PublicMessage: "cart service rejected the request",
	},
	CodeMalformedResponse: {
		Retryable:     true,
		PublicMessage: "cart service returned an unrecognized payload",
	},
	CodeSession: {
		Retryable:     false,
		PublicMessage: "no active session",
	},
	CodeValidation: {
		Retryable:     false,
		PublicMessage: "validation failed",
	},
	CodeInternal: {
		Retryable:     false,
		PublicMessage: "internal error",
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}
