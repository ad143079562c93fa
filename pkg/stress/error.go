// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package stress

import (
	"errors"
	"fmt"

	"github.com/zeebo/errs"
	"go.uber.org/zap"
)

// Error is the default error class for engine failures seen by the exerciser.
var Error = errs.Class("kvstress")

// Kind classifies an integrity violation.
type Kind int

const (
	// KeyMismatch means the key sequence is not dense from 1.
	KeyMismatch Kind = iota
	// ValueMismatch means a value is not a prefix of the canonical pattern.
	ValueMismatch
	// CountMismatch means a scan saw a different number of records than
	// the executor committed.
	CountMismatch
	// Unreachable means the engine returned a state it must never return.
	Unreachable
)

// String implements fmt.Stringer.
func (kind Kind) String() string {
	switch kind {
	case KeyMismatch:
		return "key mismatch"
	case ValueMismatch:
		return "value mismatch"
	case CountMismatch:
		return "count mismatch"
	case Unreachable:
		return "unreachable"
	default:
		return fmt.Sprintf("Kind(%d)", int(kind))
	}
}

// IntegrityError is returned when the database contents break the dense
// key range or the canonical value pattern. It is never retried.
type IntegrityError struct {
	Kind     Kind
	Expected uint64
	Actual   uint64
	Key      []byte
	Value    []byte
	Offset   int
}

// Error implements error.
func (err *IntegrityError) Error() string {
	switch err.Kind {
	case KeyMismatch:
		if len(err.Key) != KeySize {
			return fmt.Sprintf("integrity violation: expected key %d, got undecodable key %x", err.Expected, err.Key)
		}
		return fmt.Sprintf("integrity violation: expected key %d, got %d", err.Expected, err.Actual)
	case ValueMismatch:
		return fmt.Sprintf("integrity violation: key %d: value of length %d differs from pattern at offset %d",
			err.Actual, len(err.Value), err.Offset)
	case CountMismatch:
		return fmt.Sprintf("integrity violation: expected %d records, got %d", err.Expected, err.Actual)
	default:
		return "integrity violation: " + err.Kind.String()
	}
}

// Fields returns the diagnostic context of the violation.
func (err *IntegrityError) Fields() []zap.Field {
	fields := []zap.Field{
		zap.Stringer("kind", err.Kind),
		zap.Uint64("expected", err.Expected),
		zap.Uint64("actual", err.Actual),
	}
	if err.Key != nil {
		fields = append(fields, zap.Binary("key", err.Key))
	}
	if err.Value != nil {
		fields = append(fields,
			zap.Int("value length", len(err.Value)),
			zap.Int("offset", err.Offset),
			zap.Binary("value", err.Value))
	}
	return fields
}

// IsIntegrity returns the integrity violation carried by err, if any.
func IsIntegrity(err error) (*IntegrityError, bool) {
	var violation *IntegrityError
	if errors.As(err, &violation) {
		return violation, true
	}
	return nil, false
}
