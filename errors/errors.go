// Package errors defines the library's one observable failure kind:
// KeyNotFound, returned by Remove when the requested key has no live
// node in its bucket.
//
// Errors are built with github.com/agilira/go-errors, the same
// structured-error library the reference cache package in this lineage
// uses, rather than a bare errors.New — callers can both test for the
// sentinel code with IsKeyNotFound (a wrapper over go-errors' HasCode)
// and recover the offending key from
// the error's field context.
package errors

import (
	goerrors "github.com/agilira/go-errors"
)

// CodeKeyNotFound identifies a Remove call against a key with no live
// node in the map.
const CodeKeyNotFound goerrors.ErrorCode = "CONHASHMAP_KEY_NOT_FOUND"

const msgKeyNotFound = "key not found"

// NewKeyNotFound builds the error Remove returns when k has no live
// entry. The key is attached as field context so callers can recover it
// without string-parsing the error message.
func NewKeyNotFound(key any) error {
	return goerrors.NewWithField(CodeKeyNotFound, msgKeyNotFound, "key", key)
}

// IsKeyNotFound reports whether err is (or wraps) a KeyNotFound error.
func IsKeyNotFound(err error) bool {
	return goerrors.HasCode(err, CodeKeyNotFound)
}
