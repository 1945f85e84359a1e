package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeMethodNotAllowed, status: http.StatusMethodNotAllowed, publicMsg: "method not allowed"},
		{code: CodeInvalidTransition, status: http.StatusUnprocessableEntity, publicMsg: "status transition not allowed", detailsOK: true},
		{code: CodeInvalidSchedule, status: http.StatusBadRequest, publicMsg: "invalid schedule", detailsOK: true},
		{code: CodeUnsupportedProvider, status: http.StatusBadRequest, publicMsg: "unsupported ach provider", detailsOK: true},
		{code: CodeBelowMinimum, status: http.StatusUnprocessableEntity, publicMsg: "amount below ach minimum", detailsOK: true},
		{code: CodeDuplicatePayout, status: http.StatusConflict, publicMsg: "payout already exists for transaction", detailsOK: true},
		{code: CodeCalculation, status: http.StatusUnprocessableEntity, publicMsg: "commission calculation failed", detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"field": "foo"}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeForbidden, "no entry")
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestDumpCollectsChain(t *testing.T) {
	cause := stdErrors.New("connection reset")
	err := Wrap(CodeDependency, cause, "update payout")

	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("expected dependency code, got %s", dump.Code)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %v", dump.Chain)
	}
	if dump.PGCode != "" {
		t.Fatalf("expected no pg code for plain errors, got %q", dump.PGCode)
	}
}

func TestDumpReadsPostgresDiagnostics(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "uq_commission_payouts_transaction", TableName: "commission_payouts"}
	dump := Dump(Wrap(CodeConflict, pgErr, "insert payout"))

	if dump.PGCode != "23505" || dump.PGConstraint != "uq_commission_payouts_transaction" {
		t.Fatalf("expected pg diagnostics, got %+v", dump)
	}
	fields := dump.LogFields()
	if fields["pg_table"] != "commission_payouts" {
		t.Fatalf("expected pg_table in log fields, got %v", fields)
	}
	if _, ok := fields["pg_detail"]; ok {
		t.Fatalf("empty values should be omitted, got %v", fields)
	}
}

func TestHasCodeAndIs(t *testing.T) {
	err := fmt.Errorf("schedule payout: %w", New(CodeInvalidSchedule, "scheduled date is in the past"))

	if !HasCode(err, CodeInvalidSchedule) {
		t.Fatal("expected wrapped code to match")
	}
	if HasCode(err, CodeConflict) {
		t.Fatal("unexpected code match")
	}
	if !stdErrors.Is(err, New(CodeInvalidSchedule, "")) {
		t.Fatal("errors.Is should compare by code")
	}
	if stdErrors.Is(err, New(CodeBelowMinimum, "")) {
		t.Fatal("errors.Is matched a different code")
	}
}
