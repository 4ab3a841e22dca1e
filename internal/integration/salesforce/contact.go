package salesforce

import (
	"context"

	"github.com/flexprice/donorsync/internal/domain/donor"
	ierr "github.com/flexprice/donorsync/internal/errors"
	"github.com/flexprice/donorsync/internal/logger"
	"github.com/flexprice/donorsync/internal/types"
)

var contactFields = []string{"Id", "OwnerId", "Email", "FirstName", "LastName", "MobilePhone", "LeadSource", "CreatedDate"}

type contactRecord struct {
	ID          string `json:"Id"`
	OwnerID     string `json:"OwnerId"`
	Email       string `json:"Email"`
	FirstName   string `json:"FirstName"`
	LastName    string `json:"LastName"`
	MobilePhone string `json:"MobilePhone"`
	LeadSource  string `json:"LeadSource"`
	CreatedDate sfTime `json:"CreatedDate"`
}

func (r *contactRecord) toDonor() *donor.Donor {
	return &donor.Donor{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Email:       r.Email,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		MobilePhone: r.MobilePhone,
		LeadSource:  types.LeadSource(r.LeadSource),
		CreatedAt:   r.CreatedDate.Time,
	}
}

type donorRepository struct {
	client Client
	logger *logger.Logger
}

// NewDonorRepository stores donors as Salesforce contacts
func NewDonorRepository(client Client, logger *logger.Logger) donor.Repository {
	return &donorRepository{client: client, logger: logger}
}

func (r *donorRepository) Create(ctx context.Context, d *donor.Donor) error {
	fields := Fields{
		"Email":     d.Email,
		"FirstName": d.FirstName,
		"LastName":  d.LastName,
	}
	setIfNotEmpty(fields, "MobilePhone", d.MobilePhone)
	setIfNotEmpty(fields, "LeadSource", string(d.LeadSource))
	setIfNotEmpty(fields, "OwnerId", d.OwnerID)

	id, err := r.client.Create(ctx, SObjectContact, fields)
	if err != nil {
		return err
	}
	d.ID = id
	return nil
}

func (r *donorRepository) Get(ctx context.Context, id string) (*donor.Donor, error) {
	records, err := queryAs[contactRecord](ctx, r.client,
		selectFrom(SObjectContact, contactFields, "Id = "+quote(id)))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ierr.NewError("contact not found").
			WithHintf("Contact %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	return records[0].toDonor(), nil
}

func (r *donorRepository) ListByEmail(ctx context.Context, email string) ([]*donor.Donor, error) {
	records, err := queryAs[contactRecord](ctx, r.client,
		selectFrom(SObjectContact, contactFields, "Email = "+quote(email)))
	if err != nil {
		return nil, err
	}
	out := make([]*donor.Donor, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.toDonor())
	}
	return out, nil
}
