package institution

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/compliedu/backend/core"
)

// Accreditation statuses
const (
	StatusPending       = "pending"
	StatusAccredited    = "accredited"
	StatusNotAccredited = "not-accredited"
)

// Institution is the organization submitting SAR applications. Static
// reference data from the aggregation core's perspective: only the
// onboarding flow and the pre-qualifier flow mutate it.
type Institution struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	InstitutionCode     string `json:"institutionCode"` // eg. "RGUKT", used in application ids
	InstitutionCategory string `json:"institutionCategory"`
	TierCategory        string `json:"tierCategory"`

	Address         string `json:"address"`
	ContactEmail    string `json:"contactEmail"`
	ContactPhone    string `json:"contactPhone"`
	EstablishedYear int    `json:"establishedYear"`

	CoordinatorName        string `json:"coordinatorName"`
	CoordinatorDesignation string `json:"coordinatorDesignation"`
	CoordinatorEmail       string `json:"coordinatorEmail"`
	CoordinatorPhone       string `json:"coordinatorPhone"`

	AccreditationStatus    string `json:"accreditationStatus"`
	PreQualifiersCompleted bool   `json:"preQualifiersCompleted"`

	CreatedAt time.Time `json:"createdAt"` // UTC
	UpdatedAt time.Time `json:"updatedAt"` // UTC
}

// NewInstitution contains information collected by the onboarding wizard.
type NewInstitution struct {
	Name                string `json:"name" validate:"required"`
	InstitutionCode     string `json:"institutionCode" validate:"required,deptcode"`
	InstitutionCategory string `json:"institutionCategory" validate:"required"`
	TierCategory        string `json:"tierCategory" validate:"required"`

	Address         string `json:"address" validate:"required"`
	ContactEmail    string `json:"contactEmail" validate:"required,email"`
	ContactPhone    string `json:"contactPhone" validate:"required"`
	EstablishedYear int    `json:"establishedYear" validate:"required,min=1800,max=2100"`

	CoordinatorName        string `json:"coordinatorName" validate:"required"`
	CoordinatorDesignation string `json:"coordinatorDesignation"`
	CoordinatorEmail       string `json:"coordinatorEmail" validate:"required,email"`
	CoordinatorPhone       string `json:"coordinatorPhone"`
}

func (ni *NewInstitution) Validate(validate *validator.Validate, svc *Service) error {
	ni.Name = core.CleanString(ni.Name)
	ni.InstitutionCode = core.CleanString(ni.InstitutionCode)
	ni.ContactEmail = core.CleanString(ni.ContactEmail, true /* lower */)
	ni.CoordinatorEmail = core.CleanString(ni.CoordinatorEmail, true /* lower */)

	if err := validate.Struct(ni); err != nil {
		return err
	}
	return svc.checkCodeUniqueness(ni.InstitutionCode)
}
