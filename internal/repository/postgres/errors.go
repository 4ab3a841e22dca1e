package postgres

import (
	"database/sql"

	"github.com/cockroachdb/errors"
	ierr "github.com/flexprice/donorsync/internal/errors"
	"github.com/flexprice/donorsync/internal/types"
	"github.com/lib/pq"
)

const pqUniqueViolation pq.ErrorCode = "23505"

// uniqueConstraints maps the unique constraints of the schema to the logical
// field they guard
var uniqueConstraints = map[string]string{
	"recurring_donations_external_order_id_key": types.ConstraintFieldExternalOrderID,
	"opportunities_external_invoice_number_key": types.ConstraintFieldExternalInvoiceNumber,
	"accounting_units_name_key":                 types.ConstraintFieldFundName,
}

// mapError converts driver errors into the errors the services match on
func mapError(err error, hint string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ierr.WithError(err).
			WithHint(hint).
			Mark(ierr.ErrNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		field, ok := uniqueConstraints[pqErr.Constraint]
		if !ok {
			field = pqErr.Constraint
		}
		return ierr.NewConstraintViolation(field, ierr.WithError(err).
			WithHintf("A record with this %s already exists", field).
			Mark(ierr.ErrAlreadyExists))
	}

	return ierr.WithError(err).
		WithHint(hint).
		Mark(ierr.ErrDatabase)
}
