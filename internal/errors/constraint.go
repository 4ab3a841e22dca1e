package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ConstraintViolation is returned by a store when a write is rejected by a
// uniqueness constraint. Field names the logical field that collided, e.g.
// "external_order_id", independent of the backend that enforced it.
type ConstraintViolation struct {
	Field string
	Err   error
}

func (e *ConstraintViolation) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("duplicate value for %s", e.Field)
	}
	return fmt.Sprintf("duplicate value for %s: %s", e.Field, e.Err.Error())
}

func (e *ConstraintViolation) Unwrap() error {
	return e.Err
}

// NewConstraintViolation builds a uniqueness violation on field, marked as
// ErrAlreadyExists so callers that only care about the category still match.
func NewConstraintViolation(field string, cause error) error {
	return errors.Mark(&ConstraintViolation{Field: field, Err: cause}, ErrAlreadyExists)
}

// ConstraintField returns the field of the first ConstraintViolation in the
// chain, if any.
func ConstraintField(err error) (string, bool) {
	var cv *ConstraintViolation
	if errors.As(err, &cv) {
		return cv.Field, true
	}
	return "", false
}
