package models

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	ErrDecode  = errors.New("malformed transfer event")
	ErrLookup  = errors.New("lookup failed")
	ErrPublish = errors.New("publish failed")
	// ErrSkipped marks a transfer dropped by the sale filter.
	ErrSkipped = errors.New("transfer skipped")
)

type DecodeError struct {
	TxHash string
	Field  string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s of tx %s: %s", e.Field, e.TxHash, e.Reason)
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}
