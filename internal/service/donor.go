package service

import (
	"context"

	"github.com/flexprice/donorsync/internal/domain/donor"
	ierr "github.com/flexprice/donorsync/internal/errors"
	"github.com/flexprice/donorsync/internal/interfaces"
	"github.com/flexprice/donorsync/internal/types"
	"github.com/samber/lo"
)

type DonorResolver = interfaces.DonorResolver

type donorResolver struct {
	ServiceParams
}

func NewDonorResolver(params ServiceParams) DonorResolver {
	return &donorResolver{
		ServiceParams: params,
	}
}

func (s *donorResolver) Resolve(ctx context.Context, email, fullName, phone string) (*donor.Donor, error) {
	if email == "" {
		return nil, ierr.NewError("email is required to resolve a donor").
			WithHint("The webhook carries neither a contact id nor an email").
			Mark(ierr.ErrValidation)
	}

	candidates, err := s.DonorRepo.ListByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	switch len(candidates) {
	case 0:
		return s.create(ctx, email, fullName, phone)
	case 1:
		return candidates[0], nil
	default:
		picked := Disambiguate(candidates, fullName, phone)
		s.Logger.Infow("multiple donors share an email",
			"request_id", types.GetRequestID(ctx),
			"candidates", len(candidates),
			"picked_donor_id", picked.ID,
		)
		return picked, nil
	}
}

func (s *donorResolver) create(ctx context.Context, email, fullName, phone string) (*donor.Donor, error) {
	first, last := donor.SplitFullName(fullName)
	d := &donor.Donor{
		Email:       email,
		FirstName:   first,
		LastName:    last,
		MobilePhone: phone,
		LeadSource:  types.LeadSourceWeb,
	}

	if err := s.DonorRepo.Create(ctx, d); err != nil {
		return nil, err
	}

	// the owner is assigned by the CRM, so read the record back
	created, err := s.DonorRepo.Get(ctx, d.ID)
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("created donor",
		"request_id", types.GetRequestID(ctx),
		"donor_id", created.ID,
	)
	return created, nil
}

// Disambiguate picks one donor out of several sharing an email: the first
// whose mobile matches phone, else the first whose first and last name match
// fullName, else the first candidate. candidates must not be empty.
func Disambiguate(candidates []*donor.Donor, fullName, phone string) *donor.Donor {
	if d, ok := lo.Find(candidates, func(d *donor.Donor) bool {
		return d.PhoneMatches(phone)
	}); ok {
		return d
	}

	first, last := donor.NameTokens(fullName)
	if first != "" {
		if d, ok := lo.Find(candidates, func(d *donor.Donor) bool {
			return d.NameMatches(first, last)
		}); ok {
			return d
		}
	}

	return candidates[0]
}
