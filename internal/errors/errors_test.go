package errors

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/suite"
)

type ErrorsSuite struct {
	suite.Suite
}

func TestErrors(t *testing.T) {
	suite.Run(t, &ErrorsSuite{})
}

func (s *ErrorsSuite) TestMarksSurviveWrapping() {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{name: "not found", err: NewError("missing").Mark(ErrNotFound), check: IsNotFound},
		{name: "validation", err: NewError("bad").WithHint("Amount is required").Mark(ErrValidation), check: IsValidation},
		{name: "version conflict", err: NewError("paid").Mark(ErrVersionConflict), check: IsVersionConflict},
		{name: "http client", err: WithError(errors.New("timeout")).Mark(ErrHTTPClient), check: IsHTTPClient},
		{name: "database", err: WithError(errors.New("reset")).Mark(ErrDatabase), check: IsDatabase},
		{name: "system", err: NewError("boom").Mark(ErrSystem), check: IsSystem},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.True(tt.check(tt.err))
			s.True(tt.check(errors.Wrap(tt.err, "outer")))
		})
	}
}

func (s *ErrorsSuite) TestConstraintViolation() {
	err := NewConstraintViolation("external_order_id", NewError("duplicate").Mark(ErrAlreadyExists))
	wrapped := errors.Wrap(err, "create recurring donation")

	field, ok := ConstraintField(wrapped)
	s.True(ok)
	s.Equal("external_order_id", field)
	s.True(IsAlreadyExists(wrapped))
	s.Contains(err.Error(), "duplicate value for external_order_id")

	_, ok = ConstraintField(NewError("plain").Mark(ErrAlreadyExists))
	s.False(ok)
}

func (s *ErrorsSuite) TestConstraintViolationWithoutCauseStillMatches() {
	err := NewConstraintViolation("external_invoice_number", nil)

	s.True(IsAlreadyExists(err))
	s.Equal("duplicate value for external_invoice_number", err.Error())
}
