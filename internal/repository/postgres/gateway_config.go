package postgres

import (
	"context"

	"github.com/flexprice/donorsync/internal/domain/fieldmapping"
	"github.com/flexprice/donorsync/internal/logger"
	"github.com/flexprice/donorsync/internal/postgres"
	"github.com/flexprice/donorsync/internal/types"
	"github.com/samber/lo"
)

type fieldMappingRow struct {
	CanonicalField string `db:"canonical_field"`
	FieldNumber    string `db:"field_number"`
}

type fieldMappingRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewFieldMappingRepository reads the custom field numbers from the
// gateway_field_mappings table
func NewFieldMappingRepository(db *postgres.DB, logger *logger.Logger) fieldmapping.Repository {
	return &fieldMappingRepository{db: db, logger: logger}
}

func (r *fieldMappingRepository) Get(ctx context.Context) (fieldmapping.Mapping, error) {
	finish, ctx := r.db.StartSpan(ctx, "field_mapping.get", nil)
	defer finish()

	var rows []fieldMappingRow
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &rows,
		`SELECT canonical_field, field_number FROM gateway_field_mappings`)
	if err != nil {
		return nil, mapError(err, "Failed to read gateway field mapping")
	}
	return mappingFromRows(rows), nil
}

// mappingFromRows keeps known canonical fields with a configured number
func mappingFromRows(rows []fieldMappingRow) fieldmapping.Mapping {
	mapping := make(fieldmapping.Mapping, len(rows))
	for _, row := range rows {
		field := types.CanonicalField(row.CanonicalField)
		key := fieldmapping.KeyForNumber(row.FieldNumber)
		if key != "" && lo.Contains(types.CanonicalFields, field) {
			mapping[field] = key
		}
	}
	return mapping
}
