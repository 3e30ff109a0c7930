package errors

import (
	stderrors "errors"
	"testing"

	goerrors "github.com/agilira/go-errors"
)

func TestNewKeyNotFoundIsCodedStructuredError(t *testing.T) {
	err := NewKeyNotFound("missing")

	if !IsKeyNotFound(err) {
		t.Fatal("IsKeyNotFound(err) = false, want true")
	}

	var structured *goerrors.Error
	if !stderrors.As(err, &structured) {
		t.Fatal("expected err to be a *goerrors.Error")
	}
}

func TestIsKeyNotFoundFalseForOtherErrors(t *testing.T) {
	if IsKeyNotFound(stderrors.New("boom")) {
		t.Fatal("IsKeyNotFound should be false for an unrelated error")
	}
}
