package salesforce

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/flexprice/donorsync/internal/domain/fieldmapping"
	ierr "github.com/flexprice/donorsync/internal/errors"
	"github.com/flexprice/donorsync/internal/logger"
	"github.com/flexprice/donorsync/internal/types"
)

// gateway config columns are named <canonical field>CustomFieldNumber__c
const customFieldNumberSuffix = "CustomFieldNumber__c"

type fieldMappingRepository struct {
	client Client
	logger *logger.Logger
}

// NewFieldMappingRepository reads the custom field numbers from the gateway
// configuration record
func NewFieldMappingRepository(client Client, logger *logger.Logger) fieldmapping.Repository {
	return &fieldMappingRepository{client: client, logger: logger}
}

func (r *fieldMappingRepository) Get(ctx context.Context) (fieldmapping.Mapping, error) {
	columns := make([]string, 0, len(types.CanonicalFields))
	for _, f := range types.CanonicalFields {
		columns = append(columns, f.String()+customFieldNumberSuffix)
	}

	records, err := r.client.Query(ctx, selectFrom(SObjectGatewayConfig, columns, "")+" LIMIT 1")
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ierr.NewError("gateway configuration not found").
			WithHintf("No %s record exists", SObjectGatewayConfig).
			Mark(ierr.ErrNotFound)
	}

	var row map[string]interface{}
	if err := json.Unmarshal(records[0], &row); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to decode gateway configuration").
			Mark(ierr.ErrHTTPClient)
	}

	mapping := make(fieldmapping.Mapping, len(types.CanonicalFields))
	for _, f := range types.CanonicalFields {
		key := fieldmapping.KeyForNumber(customFieldNumber(row[f.String()+customFieldNumberSuffix]))
		if key != "" {
			mapping[f] = key
		}
	}
	return mapping, nil
}

// customFieldNumber accepts the column as text ("05") or as a number (5)
func customFieldNumber(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
}
