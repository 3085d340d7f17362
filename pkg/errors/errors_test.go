package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code   Code
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeDrawerClosed, http.StatusConflict},
		{CodeStockInsufficient, http.StatusConflict},
		{CodeSettlementWrite, http.StatusInternalServerError},
		{CodeDependency, http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		if got := MetadataFor(tc.code).HTTPStatus; got != tc.status {
			t.Fatalf("MetadataFor(%s).HTTPStatus = %d, want %d", tc.code, got, tc.status)
		}
	}
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	meta := MetadataFor(Code("NOT_A_CODE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unexpected fallback status %d", meta.HTTPStatus)
	}
}

func TestSettlementWriteIsNotRetryable(t *testing.T) {
	// partial writes must be verified by the operator before a retry
	if MetadataFor(CodeSettlementWrite).Retryable {
		t.Fatal("settlement write failures must not be marked retryable")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("disk full")
	err := Wrap(CodeSettlementWrite, cause, "writing inventory movement")

	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable via errors.Is")
	}
	if err.Code() != CodeSettlementWrite {
		t.Fatalf("unexpected code %s", err.Code())
	}
}

func TestAsFindsTypedErrorInChain(t *testing.T) {
	inner := New(CodeDrawerClosed, "no open session for today")
	wrapped := Wrap(CodeInternal, inner, "gate check")

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error")
	}
	if typed.Code() != CodeInternal {
		t.Fatalf("outermost code should win, got %s", typed.Code())
	}
	if As(nil) != nil {
		t.Fatal("As(nil) should be nil")
	}
}

func TestWithDetails(t *testing.T) {
	err := New(CodeValidation, "discount out of bounds").WithDetails(map[string]any{"field": "discount"})
	details, ok := err.Details().(map[string]any)
	if !ok || details["field"] != "discount" {
		t.Fatalf("unexpected details %v", err.Details())
	}
}
