package salesforce

import (
	"encoding/json"
	"net/http"
	"strings"

	ierr "github.com/flexprice/donorsync/internal/errors"
	"github.com/flexprice/donorsync/internal/httpclient"
	"github.com/flexprice/donorsync/internal/types"
)

const (
	errorCodeDuplicateValue = "DUPLICATE_VALUE"
	errorCodeNotFound       = "NOT_FOUND"
)

// uniqueFields maps the API names of unique Salesforce fields to the logical
// field reported in a constraint violation
var uniqueFields = map[string]string{
	FieldCommitmentID:  types.ConstraintFieldExternalOrderID,
	FieldInvoiceNumber: types.ConstraintFieldExternalInvoiceNumber,
}

type apiError struct {
	Message   string   `json:"message"`
	ErrorCode string   `json:"errorCode"`
	Fields    []string `json:"fields"`
}

type apiErrors []apiError

// toError converts the Salesforce error list into a domain error. A
// DUPLICATE_VALUE error becomes a constraint violation on the logical field.
func (errs apiErrors) toError(cause error) error {
	if len(errs) == 0 {
		if cause == nil {
			return ierr.NewError("salesforce request failed").
				WithHint("Salesforce returned no error details").
				Mark(ierr.ErrHTTPClient)
		}
		return ierr.WithError(cause).
			WithHint("Salesforce request failed").
			Mark(ierr.ErrHTTPClient)
	}

	first := errs[0]
	var base *ierr.ErrorBuilder
	if cause != nil {
		base = ierr.WithError(cause)
	} else {
		base = ierr.NewError(first.Message)
	}

	for _, e := range errs {
		if e.ErrorCode == errorCodeDuplicateValue {
			field := duplicateField(e)
			return ierr.NewConstraintViolation(field, base.
				WithHint(e.Message).
				WithReportableDetails(map[string]interface{}{"field": field}).
				Mark(ierr.ErrAlreadyExists))
		}
	}

	if first.ErrorCode == errorCodeNotFound {
		return base.WithHint(first.Message).Mark(ierr.ErrNotFound)
	}
	return base.
		WithHint(first.Message).
		WithReportableDetails(map[string]interface{}{"error_code": first.ErrorCode}).
		Mark(ierr.ErrHTTPClient)
}

// duplicateField finds the unique field a DUPLICATE_VALUE error refers to.
// Salesforce does not always fill in fields, so the message is searched too.
func duplicateField(e apiError) string {
	for _, f := range e.Fields {
		if logical, ok := uniqueFields[f]; ok {
			return logical
		}
	}
	for apiName, logical := range uniqueFields {
		if strings.Contains(e.Message, apiName) {
			return logical
		}
	}
	if len(e.Fields) > 0 {
		return e.Fields[0]
	}
	return ""
}

// decodeError turns an HTTP error response into a domain error
func decodeError(err error) error {
	httpErr, ok := httpclient.IsHTTPError(err)
	if !ok {
		return err
	}

	var errs apiErrors
	if jsonErr := json.Unmarshal(httpErr.Response, &errs); jsonErr != nil || len(errs) == 0 {
		if httpErr.StatusCode == http.StatusNotFound {
			return ierr.WithError(err).
				WithHint("Salesforce record not found").
				Mark(ierr.ErrNotFound)
		}
		return ierr.WithError(err).
			WithHintf("Salesforce returned status %d", httpErr.StatusCode).
			Mark(ierr.ErrHTTPClient)
	}
	return errs.toError(err)
}
