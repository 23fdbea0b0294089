package institution

import (
	"errors"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/compliedu/backend/core"
)

var (
	// errors
	ErrNotFound   = errors.New("institution not found")
	ErrCodeExists = errors.New("an institution with this code already exists")
)

type Repository interface {
	CheckCodeUniqueness(code string) error
	CreateInstitution(inst Institution) (Institution, error)
	QueryAllInstitutions() ([]Institution, error)
	GetInstitutionByID(id string) (Institution, error)
	GetInstitutionByCode(code string) (Institution, error)
	UpdateInstitution(inst Institution) (Institution, error)
}

type Service struct {
	repo    Repository
	mailSvc core.EmailService
}

func NewService(repo Repository, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, mailSvc: mailSvc}
}

func (svc *Service) checkCodeUniqueness(code string) error {
	if err := svc.repo.CheckCodeUniqueness(code); err != nil {
		if err == ErrCodeExists {
			return core.NewValidationError(err, core.FieldError{Field: "institutionCode", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Onboard registers a new Institution and welcomes its SAR coordinator.
func (svc *Service) Onboard(ni NewInstitution) (Institution, error) {
	now := time.Now().UTC()
	inst := Institution{
		ID:                  uuid.New().String(),
		Name:                ni.Name,
		InstitutionCode:     ni.InstitutionCode,
		InstitutionCategory: ni.InstitutionCategory,
		TierCategory:        ni.TierCategory,

		Address:         ni.Address,
		ContactEmail:    ni.ContactEmail,
		ContactPhone:    ni.ContactPhone,
		EstablishedYear: ni.EstablishedYear,

		CoordinatorName:        ni.CoordinatorName,
		CoordinatorDesignation: ni.CoordinatorDesignation,
		CoordinatorEmail:       ni.CoordinatorEmail,
		CoordinatorPhone:       ni.CoordinatorPhone,

		AccreditationStatus: StatusPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	inst, err := svc.repo.CreateInstitution(inst)
	if err != nil {
		return Institution{}, err
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: inst.CoordinatorName, Address: inst.CoordinatorEmail}},
		Subject:      "Welcome to the Accreditation Portal",
		TemplateName: "welcome",
		TemplateData: struct {
			CoordinatorName string
			InstitutionName string
		}{inst.CoordinatorName, inst.Name},
	})
	return inst, nil
}

func (svc *Service) QueryAll() ([]Institution, error) {
	return svc.repo.QueryAllInstitutions()
}

func (svc *Service) GetByID(id string) (Institution, error) {
	return svc.repo.GetInstitutionByID(id)
}

func (svc *Service) GetByCode(code string) (Institution, error) {
	return svc.repo.GetInstitutionByCode(core.CleanString(code))
}

// SetPreQualifiersCompleted flags the institution's pre-qualifier stage.
func (svc *Service) SetPreQualifiersCompleted(id string, completed bool) (Institution, error) {
	inst, err := svc.repo.GetInstitutionByID(id)
	if err != nil {
		return Institution{}, err
	}
	inst.PreQualifiersCompleted = completed
	inst.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateInstitution(inst)
}

// SetAccreditationStatus records the outcome of an accreditation review.
func (svc *Service) SetAccreditationStatus(id, status string) (Institution, error) {
	switch status {
	case StatusPending, StatusAccredited, StatusNotAccredited:
	default:
		return Institution{}, core.NewValidationError(errors.New("invalid accreditation status"),
			core.FieldError{Field: "accreditationStatus", Error: "invalid accreditation status"})
	}
	inst, err := svc.repo.GetInstitutionByID(id)
	if err != nil {
		return Institution{}, err
	}
	inst.AccreditationStatus = status
	inst.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateInstitution(inst)
}
