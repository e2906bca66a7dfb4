package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	patients Repository
}

func NewService(patients Repository) *Service {
	return &Service{patients: patients}
}

type CreateInput struct {
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	DateOfBirth Date      `json:"dateOfBirth"`
	Gender      string    `json:"gender"`
	Email       *string   `json:"email"`
	Phone       *string   `json:"phone"`
	Address     *string   `json:"address"`
	City        *string   `json:"city"`
	PostalCode  *string   `json:"postalCode"`
	BloodType   *string   `json:"bloodType"`
	Allergies   []Allergy `json:"allergies"`
	Conditions  []string  `json:"conditions"`
	Notes       *string   `json:"notes"`
}

func (in CreateInput) validate() error {
	if in.FirstName == "" || in.LastName == "" {
		return fmt.Errorf("first and last name are required")
	}
	if in.DateOfBirth.IsZero() {
		return fmt.Errorf("dateOfBirth is required")
	}
	if !validGenders[in.Gender] {
		return fmt.Errorf("invalid gender: %s", in.Gender)
	}
	if in.BloodType != nil && !validBloodTypes[*in.BloodType] {
		return fmt.Errorf("invalid blood type: %s", *in.BloodType)
	}
	for _, a := range in.Allergies {
		if a.Name == "" {
			return fmt.Errorf("allergy name is required")
		}
		if !validSeverities[a.Severity] {
			return fmt.Errorf("invalid allergy severity: %s", a.Severity)
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in CreateInput, createdBy uuid.UUID) (*Patient, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	p := &Patient{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		DateOfBirth: in.DateOfBirth,
		Gender:      in.Gender,
		Email:       in.Email,
		Phone:       in.Phone,
		Address:     in.Address,
		City:        in.City,
		PostalCode:  in.PostalCode,
		BloodType:   in.BloodType,
		Allergies:   in.Allergies,
		Conditions:  in.Conditions,
		Notes:       in.Notes,
		IsActive:    true,
	}
	if createdBy != uuid.Nil {
		p.CreatedBy = &createdBy
	}
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

// UpdateInput applies a partial update; nil fields keep their current value.
type UpdateInput struct {
	FirstName   *string    `json:"firstName"`
	LastName    *string    `json:"lastName"`
	DateOfBirth *Date      `json:"dateOfBirth"`
	Gender      *string    `json:"gender"`
	Email       *string    `json:"email"`
	Phone       *string    `json:"phone"`
	Address     *string    `json:"address"`
	City        *string    `json:"city"`
	PostalCode  *string    `json:"postalCode"`
	BloodType   *string    `json:"bloodType"`
	Allergies   *[]Allergy `json:"allergies"`
	Conditions  *[]string  `json:"conditions"`
	Notes       *string    `json:"notes"`
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		p.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		p.LastName = *in.LastName
	}
	if in.DateOfBirth != nil {
		p.DateOfBirth = *in.DateOfBirth
	}
	if in.Gender != nil {
		if !validGenders[*in.Gender] {
			return nil, fmt.Errorf("invalid gender: %s", *in.Gender)
		}
		p.Gender = *in.Gender
	}
	if in.Email != nil {
		p.Email = in.Email
	}
	if in.Phone != nil {
		p.Phone = in.Phone
	}
	if in.Address != nil {
		p.Address = in.Address
	}
	if in.City != nil {
		p.City = in.City
	}
	if in.PostalCode != nil {
		p.PostalCode = in.PostalCode
	}
	if in.BloodType != nil {
		if !validBloodTypes[*in.BloodType] {
			return nil, fmt.Errorf("invalid blood type: %s", *in.BloodType)
		}
		p.BloodType = in.BloodType
	}
	if in.Allergies != nil {
		for _, a := range *in.Allergies {
			if a.Name == "" {
				return nil, fmt.Errorf("allergy name is required")
			}
			if !validSeverities[a.Severity] {
				return nil, fmt.Errorf("invalid allergy severity: %s", a.Severity)
			}
		}
		p.Allergies = *in.Allergies
	}
	if in.Conditions != nil {
		p.Conditions = *in.Conditions
	}
	if in.Notes != nil {
		p.Notes = in.Notes
	}

	if err := s.patients.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Archive soft-deletes the patient: the row stays, listings skip it.
func (s *Service) Archive(ctx context.Context, id uuid.UUID) error {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return err
	}
	p.IsActive = false
	return s.patients.Update(ctx, p)
}

func (s *Service) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, f, limit, offset)
}
