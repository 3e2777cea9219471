package errors

import (
	stdErrors "errors"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		publicMsg string
		retryable bool
	}{
		{code: CodeNetwork, publicMsg: "cart service unreachable", retryable: true},
		{code: CodeServer, publicMsg: "cart service rejected the request", retryable: true},
		{code: CodeMalformedResponse, publicMsg: "cart service returned an unrecognized payload", retryable: true},
		{code: CodeSession, publicMsg: "no active session"},
		{code: CodeValidation, publicMsg: "validation failed"},
		{code: CodeInternal, publicMsg: "internal error"},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.PublicMessage != "internal error" {
		t.Fatalf("expected internal metadata, got %q", meta.PublicMessage)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing quantity")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing quantity" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	base.WithDetails(map[string]any{"field": "quantity"})
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeServer, cause, "update quantity")
	if wrapped.Unwrap() != cause {
		t.Fatalf("expected cause to be preserved")
	}
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("errors.Is should see through the wrapper")
	}
	if Wrap(CodeServer, nil, "no cause").Unwrap() != nil {
		t.Fatalf("nil cause should produce nil unwrap")
	}
}

func TestAsAndHasCode(t *testing.T) {
	err := Wrap(CodeNetwork, stdErrors.New("dial tcp: refused"), "list cart")
	outer := stdErrors.Join(stdErrors.New("op failed"), err)

	typed := As(outer)
	if typed == nil || typed.Code() != CodeNetwork {
		t.Fatalf("expected network code through join, got %v", typed)
	}
	if !HasCode(outer, CodeNetwork) {
		t.Fatalf("HasCode should match the wrapped code")
	}
	if HasCode(outer, CodeSession) {
		t.Fatalf("HasCode should not match a different code")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should be nil")
	}
	if As(stdErrors.New("plain")) != nil {
		t.Fatalf("plain errors should not convert")
	}
}
