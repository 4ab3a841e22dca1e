package postgres

import (
	"context"
	"time"

	"github.com/flexprice/donorsync/internal/domain/donor"
	"github.com/flexprice/donorsync/internal/logger"
	"github.com/flexprice/donorsync/internal/postgres"
	"github.com/flexprice/donorsync/internal/types"
)

const donorColumns = `id, owner_id, email, first_name, last_name, mobile_phone, lead_source, created_at`

type donorRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewDonorRepository(db *postgres.DB, logger *logger.Logger) donor.Repository {
	return &donorRepository{db: db, logger: logger}
}

func (r *donorRepository) Create(ctx context.Context, d *donor.Donor) error {
	finish, ctx := r.db.StartSpan(ctx, "donor.create", map[string]interface{}{
		"email": d.Email,
	})
	defer finish()

	if d.ID == "" {
		d.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DONOR)
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO donors (
			id, owner_id, email, first_name, last_name, mobile_phone, lead_source, created_at
		) VALUES (
			:id, :owner_id, :email, :first_name, :last_name, :mobile_phone, :lead_source, :created_at
		)`

	r.logger.Debugw("creating donor",
		"donor_id", d.ID,
		"email", d.Email,
	)

	_, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, d)
	return mapError(err, "Failed to create donor")
}

func (r *donorRepository) Get(ctx context.Context, id string) (*donor.Donor, error) {
	finish, ctx := r.db.StartSpan(ctx, "donor.get", map[string]interface{}{
		"donor_id": id,
	})
	defer finish()

	var d donor.Donor
	err := r.db.GetQuerier(ctx).GetContext(ctx, &d,
		`SELECT `+donorColumns+` FROM donors WHERE id = $1`, id)
	if err != nil {
		return nil, mapError(err, "Donor "+id+" not found")
	}
	return &d, nil
}

func (r *donorRepository) ListByEmail(ctx context.Context, email string) ([]*donor.Donor, error) {
	finish, ctx := r.db.StartSpan(ctx, "donor.list_by_email", map[string]interface{}{
		"email": email,
	})
	defer finish()

	var donors []*donor.Donor
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &donors,
		`SELECT `+donorColumns+` FROM donors WHERE email = $1 ORDER BY created_at, id`, email)
	if err != nil {
		return nil, mapError(err, "Failed to list donors")
	}
	return donors, nil
}
